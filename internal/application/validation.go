package application

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/ahrav/go-standings/internal/domain"
)

// ValidateRankingInput checks tournament areas and ranking configuration
// for contract misuse before any scoring happens. Every problem found is
// collected into one *domain.ValidationError, which matches
// domain.ErrInvalidConfiguration. A nil registry checks aggregation tags
// against the built-in methods.
func ValidateRankingInput(areas []domain.TournamentArea, cfg domain.RankingConfig, registry *AggregatorRegistry) error {
	verr := domain.NewValidationError("ranking input")

	if !cfg.Method.Valid() {
		verr.AddErrorf("unknown ranking method %q", cfg.Method)
	}

	codes := make(map[string]struct{}, len(areas))
	for i, a := range areas {
		label := a.Code
		if strings.TrimSpace(a.Code) == "" {
			verr.AddErrorf("area at index %d has no code", i)
			label = a.ID
		} else if _, dup := codes[a.Code]; dup {
			verr.AddErrorf("duplicate area code %q", a.Code)
		}
		codes[a.Code] = struct{}{}

		if !a.ScoringType.Valid() {
			verr.AddErrorf("area %s: unknown scoring type %q", label, a.ScoringType)
		} else if a.Scoring != nil && a.Scoring.Type() != a.ScoringType {
			verr.AddErrorf("area %s: scoring configuration is %s but scoring type is %s", label, a.Scoring.Type(), a.ScoringType)
		}
		if !validWeight(a.Weight) {
			verr.AddErrorf("area %s: weight must be a non-negative number, got %v", label, a.Weight)
		}
		if !knownAggregation(a.AggregationMethod, registry) {
			verr.AddErrorf("area %s: unknown aggregation method %q", label, a.AggregationMethod)
		}
		if a.AllowRounds && !knownRounds(a.RoundsAggregation, registry) {
			verr.AddErrorf("area %s: unknown rounds aggregation %q", label, a.RoundsAggregation)
		}
		if a.MaxRounds < 0 {
			verr.AddErrorf("area %s: max rounds cannot be negative", label)
		}
	}

	for _, code := range slices.Sorted(maps.Keys(cfg.Weights)) {
		w := cfg.Weights[code]
		if _, ok := codes[code]; !ok {
			verr.AddErrorf("weight override for unknown area %q", code)
		}
		if !validWeight(w) {
			verr.AddErrorf("weight override for %s must be a non-negative number, got %v", code, w)
		}
	}
	for _, code := range cfg.TieBreak {
		if _, ok := codes[code]; !ok {
			verr.AddErrorf("tie-break references unknown area %q", code)
		}
	}

	return verr.ErrOrNil()
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

func knownAggregation(m domain.AggregationMethod, registry *AggregatorRegistry) bool {
	if registry == nil {
		return m.Valid()
	}
	_, err := registry.Evaluation(m)
	return err == nil
}

func knownRounds(m domain.RoundsAggregation, registry *AggregatorRegistry) bool {
	if registry == nil {
		return m.Valid()
	}
	_, err := registry.Rounds(m)
	return err == nil
}
