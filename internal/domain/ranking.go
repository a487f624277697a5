package domain

import "time"

// RankingMethod selects how a team's final percentage is computed.
type RankingMethod string

// Supported ranking methods.
const (
	// RankPercentage ranks by the weighted average of per-area
	// percentages over the areas a team was evaluated in.
	RankPercentage RankingMethod = "percentage"

	// RankRaw ranks by weighted total score over weighted maximum score.
	RankRaw RankingMethod = "raw"
)

// Valid reports whether m is supported. Empty means RankPercentage.
func (m RankingMethod) Valid() bool {
	switch m {
	case "", RankPercentage, RankRaw:
		return true
	}
	return false
}

// OrDefault returns m, or RankPercentage when m is empty.
func (m RankingMethod) OrDefault() RankingMethod {
	if m == "" {
		return RankPercentage
	}
	return m
}

// RankingConfig is the tournament-level ranking configuration.
type RankingConfig struct {
	Method RankingMethod `json:"method" yaml:"method"`

	// Weights overrides area weights by area code.
	Weights map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty"`

	// TieBreak lists area codes compared in order, by area percentage,
	// after percentage and total score tie.
	TieBreak []string `json:"tie_break,omitempty" yaml:"tie_break,omitempty"`
}

// RoundScore is the aggregated result of one round of a multi-round area.
type RoundScore struct {
	Round           int     `json:"round"`
	Score           float64 `json:"score"`
	Percentage      float64 `json:"percentage"`
	EvaluationCount int     `json:"evaluation_count"`
}

// AreaScore is the per-area detail of a ranking row. Score and Percentage
// follow the area's aggregation policy; the judge, time, breakdown and
// penalties describe the most recent submission.
type AreaScore struct {
	AreaID string `json:"area_id"`
	Name   string `json:"name"`

	// Evaluated is false when no active evaluation exists for the area.
	Evaluated bool `json:"evaluated"`

	// Score is the aggregated, unweighted score.
	Score float64 `json:"score"`

	// Percentage is the aggregated, unweighted percentage.
	Percentage float64 `json:"percentage"`

	MaxScore float64 `json:"max_score"`
	Weight   float64 `json:"weight"`

	EvaluatedBy    string        `json:"evaluated_by,omitempty"`
	EvaluationTime time.Duration `json:"evaluation_time,omitempty"`
	Breakdown      []ScoreEntry  `json:"breakdown,omitempty"`
	Penalties      []Penalty     `json:"penalties,omitempty"`

	EvaluationCount   int               `json:"evaluation_count"`
	AggregationMethod AggregationMethod `json:"aggregation_method"`
	Rounds            []RoundScore      `json:"rounds,omitempty"`

	// Skipped counts evaluations dropped because their scores were not
	// finite numbers.
	Skipped int `json:"skipped,omitempty"`
}

// TeamRanking is one row of a computed leaderboard. It is derived on every
// request and never persisted.
type TeamRanking struct {
	Position         int                  `json:"position"`
	Team             TeamSummary          `json:"team"`
	TotalScore       float64              `json:"total_score"`
	MaxPossibleScore float64              `json:"max_possible_score"`
	Percentage       float64              `json:"percentage"`
	AreaScores       map[string]AreaScore `json:"area_scores"`
}
