package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ScoringType tags how an area is scored and which ScoringConfig variant
// it carries.
type ScoringType string

// Supported scoring types.
const (
	ScoringRubric      ScoringType = "rubric"
	ScoringPerformance ScoringType = "performance"
	ScoringMixed       ScoringType = "mixed"
)

// Valid reports whether t is one of the supported scoring types.
func (t ScoringType) Valid() bool {
	switch t {
	case ScoringRubric, ScoringPerformance, ScoringMixed:
		return true
	}
	return false
}

// AggregationMethod is the policy that collapses several evaluations of the
// same team in the same area into one score.
type AggregationMethod string

// Supported aggregation methods.
const (
	AggregateLast    AggregationMethod = "last"
	AggregateAverage AggregationMethod = "average"
	AggregateMedian  AggregationMethod = "median"
	AggregateBest    AggregationMethod = "best"
	AggregateWorst   AggregationMethod = "worst"
)

// AggregationMethods lists every supported method in declaration order.
var AggregationMethods = []AggregationMethod{
	AggregateLast, AggregateAverage, AggregateMedian, AggregateBest, AggregateWorst,
}

// String returns the string representation of the aggregation method.
func (m AggregationMethod) String() string { return string(m) }

// Valid reports whether m is a supported method. The empty method is
// valid and means AggregateLast.
func (m AggregationMethod) Valid() bool {
	return m == "" || slices.Contains(AggregationMethods, m)
}

// OrDefault returns m, or AggregateLast when m is empty.
func (m AggregationMethod) OrDefault() AggregationMethod {
	if m == "" {
		return AggregateLast
	}
	return m
}

// RoundsAggregation combines per-round results of a multi-round area.
type RoundsAggregation string

// Supported round aggregation methods.
const (
	RoundsBest    RoundsAggregation = "best"
	RoundsAverage RoundsAggregation = "average"
	RoundsSum     RoundsAggregation = "sum"
)

// String returns the string representation of the rounds aggregation.
func (r RoundsAggregation) String() string { return string(r) }

// Valid reports whether r is supported. The empty value means RoundsBest.
func (r RoundsAggregation) Valid() bool {
	switch r {
	case "", RoundsBest, RoundsAverage, RoundsSum:
		return true
	}
	return false
}

// OrDefault returns r, or RoundsBest when r is empty.
func (r RoundsAggregation) OrDefault() RoundsAggregation {
	if r == "" {
		return RoundsBest
	}
	return r
}

// DefaultWeight is the weight of an area that does not set one.
const DefaultWeight = 1.0

// TournamentArea is a judged category of a tournament.
type TournamentArea struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`

	// Code is the stable identifier used by legacy data, tie-break lists
	// and the per-area ranking detail.
	Code string `json:"code"`
	Name string `json:"name"`

	// Order positions the area in score sheets and ranking iteration.
	Order int `json:"order"`

	ScoringType ScoringType `json:"scoring_type"`

	// Weight multiplies the area's contribution. Zero means DefaultWeight.
	Weight float64 `json:"weight"`

	AggregationMethod AggregationMethod `json:"aggregation_method"`

	AllowRounds       bool              `json:"allow_rounds"`
	MaxRounds         int               `json:"max_rounds"`
	RoundsAggregation RoundsAggregation `json:"rounds_aggregation"`

	// Scoring is the area's rubric and/or performance configuration. Nil
	// means no custom configuration; the legacy catalog is consulted by
	// area code instead.
	Scoring ScoringConfig `json:"-"`
}

// EffectiveWeight returns the weight used for ranking. A non-zero override
// map entry for the area code wins over the area's own weight; a zero
// weight falls back to DefaultWeight.
func (a TournamentArea) EffectiveWeight(overrides map[string]float64) float64 {
	if w, ok := overrides[a.Code]; ok && w != 0 {
		return w
	}
	if a.Weight == 0 {
		return DefaultWeight
	}
	return a.Weight
}

type areaFields TournamentArea

type areaWire struct {
	areaFields
	Scoring *ScoringDocument `json:"scoring,omitempty"`
}

// MarshalJSON writes the area with its scoring configuration in
// ScoringDocument form.
func (a TournamentArea) MarshalJSON() ([]byte, error) {
	w := areaWire{areaFields: areaFields(a)}
	if a.Scoring != nil {
		doc := DocumentOf(a.Scoring)
		w.Scoring = &doc
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads an area written by MarshalJSON, converting the
// scoring document to the variant named by scoring_type.
func (a *TournamentArea) UnmarshalJSON(data []byte) error {
	var w areaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = TournamentArea(w.areaFields)
	if w.Scoring == nil {
		return nil
	}
	cfg, err := w.Scoring.Config(a.ScoringType)
	if err != nil {
		return fmt.Errorf("area %s: %w", a.Code, err)
	}
	a.Scoring = cfg
	return nil
}

// ScoringConfig is the sealed sum type of per-area scoring configuration.
// The variants are RubricConfig, PerformanceConfig and MixedConfig.
type ScoringConfig interface {
	// Type reports the scoring type tag of the variant.
	Type() ScoringType
	isScoringConfig()
}

// Criterion is one line of a rubric.
type Criterion struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	MaxScore float64 `json:"max_score" yaml:"max_score"`

	// AllowedValues is the optional discrete set a judge may pick from.
	// Membership is enforced by the judging UI, not by the calculator.
	AllowedValues []float64 `json:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`
}

// Mission is a scorable task of a performance round.
type Mission struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Points   float64 `json:"points" yaml:"points"`
	Quantity int     `json:"quantity" yaml:"quantity"`
}

// PenaltyType is a deduction a performance area allows judges to record.
type PenaltyType struct {
	Type   string  `json:"type" yaml:"type"`
	Name   string  `json:"name" yaml:"name"`
	Points float64 `json:"points" yaml:"points"`
}

// RubricConfig is the criteria list of a rubric-scored area.
type RubricConfig struct {
	Criteria []Criterion `json:"criteria" yaml:"criteria"`
}

// PerformanceConfig lists missions and penalty types of a
// performance-scored area.
type PerformanceConfig struct {
	Missions     []Mission     `json:"missions" yaml:"missions"`
	PenaltyTypes []PenaltyType `json:"penalty_types,omitempty" yaml:"penalty_types,omitempty"`
}

// MixedConfig carries both a rubric and a performance part.
type MixedConfig struct {
	Rubric      RubricConfig
	Performance PerformanceConfig
}

// Type implements ScoringConfig.
func (RubricConfig) Type() ScoringType { return ScoringRubric }

// Type implements ScoringConfig.
func (PerformanceConfig) Type() ScoringType { return ScoringPerformance }

// Type implements ScoringConfig.
func (MixedConfig) Type() ScoringType { return ScoringMixed }

func (RubricConfig) isScoringConfig()      {}
func (PerformanceConfig) isScoringConfig() {}
func (MixedConfig) isScoringConfig()       {}

// NewScoringConfig builds the ScoringConfig variant for t from the
// separately stored rubric and performance blobs. It returns a nil config
// when the blobs relevant to t are absent, which callers treat as
// "configuration missing".
func NewScoringConfig(t ScoringType, rubric *RubricConfig, performance *PerformanceConfig) (ScoringConfig, error) {
	switch t {
	case ScoringRubric:
		if rubric == nil {
			return nil, nil
		}
		return *rubric, nil
	case ScoringPerformance:
		if performance == nil {
			return nil, nil
		}
		return *performance, nil
	case ScoringMixed:
		if rubric == nil && performance == nil {
			return nil, nil
		}
		var m MixedConfig
		if rubric != nil {
			m.Rubric = *rubric
		}
		if performance != nil {
			m.Performance = *performance
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScoringType, t)
	}
}

// SplitScoringConfig is the inverse of NewScoringConfig, used by storage
// adapters that persist the two blobs separately.
func SplitScoringConfig(cfg ScoringConfig) (*RubricConfig, *PerformanceConfig) {
	switch c := cfg.(type) {
	case RubricConfig:
		return &c, nil
	case PerformanceConfig:
		return nil, &c
	case MixedConfig:
		return &c.Rubric, &c.Performance
	default:
		return nil, nil
	}
}

// PenaltyTypesOf returns the penalty types a scoring configuration allows.
func PenaltyTypesOf(cfg ScoringConfig) []PenaltyType {
	switch c := cfg.(type) {
	case PerformanceConfig:
		return c.PenaltyTypes
	case MixedConfig:
		return c.Performance.PenaltyTypes
	default:
		return nil
	}
}
