package application

import (
	"strings"

	"github.com/ahrav/go-standings/internal/domain"
)

// TournamentConfig defines a complete tournament as it is written in YAML
// and serves as the entry point for file-based tournament definitions.
// Use TournamentConfig when a tournament's areas, roster and ranking rules
// are managed as a document rather than through the storage layer.
type TournamentConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across system updates.
	Version string `yaml:"version" validate:"required,semver"`
	// Tournament identifies the competition and carries its display name.
	Tournament TournamentMetadata `yaml:"tournament" validate:"required"`
	// Areas defines the judged categories, their scoring configuration
	// and how multiple evaluations collapse into one score.
	Areas []AreaConfig `yaml:"areas" validate:"required,min=1,dive"`
	// Teams is the enrolled roster. It may be empty when teams are
	// supplied separately.
	Teams []TeamConfig `yaml:"teams" validate:"dive"`
	// Ranking holds the leaderboard method, weight overrides and
	// tie-break order.
	Ranking RankingSection `yaml:"ranking"`
}

// TournamentMetadata provides the identity of a tournament.
type TournamentMetadata struct {
	// ID is the stable identifier evaluations refer to.
	ID string `yaml:"id" validate:"required,min=1,max=100"`
	// Name is the human-readable tournament name.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description is free text for operators.
	Description string `yaml:"description" validate:"max=1000"`
}

// AreaConfig defines one judged category of a tournament.
type AreaConfig struct {
	// ID identifies the area in evaluations. It defaults to Code.
	ID string `yaml:"id" validate:"omitempty,max=100"`
	// Code is the stable short identifier used by tie-break lists,
	// weight overrides and the legacy rubric catalog.
	Code string `yaml:"code" validate:"required,min=1,max=64"`
	// Name is the display name.
	Name string `yaml:"name" validate:"max=255"`
	// Order positions the area in score sheets and ranking iteration.
	Order int `yaml:"order" validate:"min=0"`
	// ScoringType selects which scoring blobs apply.
	ScoringType string `yaml:"scoring_type" validate:"required,scoringtype"`
	// Weight multiplies the area's contribution. Zero means 1.
	Weight float64 `yaml:"weight" validate:"min=0,max=1000"`
	// Aggregation collapses several evaluations of the same team into
	// one score. Empty means last.
	Aggregation string `yaml:"aggregation" validate:"omitempty,aggmethod"`
	// Rounds enables multi-round scoring when present.
	Rounds *RoundsConfig `yaml:"rounds,omitempty"`
	// Rubric is the criteria list of rubric and mixed areas. When it and
	// Performance are both absent the legacy catalog is consulted.
	Rubric *domain.RubricConfig `yaml:"rubric,omitempty"`
	// Performance lists missions and penalty types of performance and
	// mixed areas.
	Performance *domain.PerformanceConfig `yaml:"performance,omitempty"`
}

// RoundsConfig enables multi-round scoring for an area.
type RoundsConfig struct {
	// Max is the highest round counted. Zero means unbounded.
	Max int `yaml:"max" validate:"min=0,max=50"`
	// Aggregation combines per-round results. Empty means best.
	Aggregation string `yaml:"aggregation" validate:"omitempty,roundsagg"`
}

// TeamConfig is one roster entry.
type TeamConfig struct {
	ID       string            `yaml:"id" validate:"required,min=1,max=100"`
	Name     string            `yaml:"name" validate:"required,min=1,max=255"`
	Code     string            `yaml:"code" validate:"max=32"`
	SchoolID string            `yaml:"school_id" validate:"max=100"`
	Grade    string            `yaml:"grade" validate:"max=100"`
	Shift    string            `yaml:"shift" validate:"max=100"`
	Metadata map[string]string `yaml:"metadata" validate:"max=50"`
}

// RankingSection configures how the leaderboard is computed.
type RankingSection struct {
	// Method is "percentage" (default) or "raw".
	Method string `yaml:"method" validate:"omitempty,rankmethod"`
	// Weights overrides area weights by area code.
	Weights map[string]float64 `yaml:"weights" validate:"dive,min=0"`
	// TieBreak lists area codes compared, in order, after percentage
	// and total score tie.
	TieBreak []string `yaml:"tie_break" validate:"dive,required"`
}

// ToDomain converts the configuration into the domain model. It does
// not validate; the loader validates before converting.
func (c *TournamentConfig) ToDomain() (domain.Tournament, error) {
	t := domain.Tournament{
		ID:   c.Tournament.ID,
		Name: c.Tournament.Name,
		Ranking: domain.RankingConfig{
			Method:   domain.RankingMethod(strings.ToLower(c.Ranking.Method)),
			Weights:  c.Ranking.Weights,
			TieBreak: c.Ranking.TieBreak,
		},
	}

	for _, ac := range c.Areas {
		area, err := ac.area(c.Tournament.ID)
		if err != nil {
			return domain.Tournament{}, err
		}
		t.Areas = append(t.Areas, area)
	}
	for _, tc := range c.Teams {
		t.Teams = append(t.Teams, domain.Team{
			ID:       tc.ID,
			Name:     tc.Name,
			Code:     tc.Code,
			SchoolID: tc.SchoolID,
			Grade:    tc.Grade,
			Shift:    tc.Shift,
			Metadata: tc.Metadata,
		})
	}
	return t, nil
}

func (ac AreaConfig) area(tournamentID string) (domain.TournamentArea, error) {
	st := domain.ScoringType(strings.ToLower(ac.ScoringType))
	cfg, err := domain.NewScoringConfig(st, ac.Rubric, ac.Performance)
	if err != nil {
		return domain.TournamentArea{}, err
	}

	id := ac.ID
	if id == "" {
		id = ac.Code
	}
	a := domain.TournamentArea{
		ID:                id,
		TournamentID:      tournamentID,
		Code:              ac.Code,
		Name:              ac.Name,
		Order:             ac.Order,
		ScoringType:       st,
		Weight:            ac.Weight,
		AggregationMethod: domain.AggregationMethod(strings.ToLower(ac.Aggregation)),
		Scoring:           cfg,
	}
	if ac.Rounds != nil {
		a.AllowRounds = true
		a.MaxRounds = ac.Rounds.Max
		a.RoundsAggregation = domain.RoundsAggregation(strings.ToLower(ac.Rounds.Aggregation))
	}
	return a, nil
}
