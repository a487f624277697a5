package application

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-standings/internal/domain"
)

// RegisterTournamentValidators registers the custom tags used by
// TournamentConfig: scoringtype, aggmethod, roundsagg, rankmethod and
// semver. Aggregation tags are checked against registry so methods added
// at startup are accepted; a nil registry accepts only the built-ins.
// RegisterTournamentValidators returns an error if any registration fails.
func RegisterTournamentValidators(v *validator.Validate, registry *AggregatorRegistry) error {
	validators := map[string]validator.Func{
		"semver":      validateSemver,
		"scoringtype": validateScoringType,
		"rankmethod":  validateRankingMethod,
		"aggmethod": func(fl validator.FieldLevel) bool {
			return knownAggregation(domain.AggregationMethod(strings.ToLower(fl.Field().String())), registry)
		},
		"roundsagg": func(fl validator.FieldLevel) bool {
			return knownRounds(domain.RoundsAggregation(strings.ToLower(fl.Field().String())), registry)
		},
	}

	for _, tag := range []string{"semver", "scoringtype", "rankmethod", "aggmethod", "roundsagg"} {
		if err := v.RegisterValidation(tag, validators[tag]); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

func validateScoringType(fl validator.FieldLevel) bool {
	return domain.ScoringType(strings.ToLower(fl.Field().String())).Valid()
}

func validateRankingMethod(fl validator.FieldLevel) bool {
	return domain.RankingMethod(strings.ToLower(fl.Field().String())).Valid()
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}
