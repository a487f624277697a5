package domain

import "time"

// Sample is one finalized evaluation as seen by an aggregator.
type Sample struct {
	// Score is the evaluation total after penalties.
	Score float64

	// Percentage is Score relative to the area maximum, 0-100 before
	// ranking-level clamping.
	Percentage float64

	EvaluatedBy string
	Timestamp   time.Time
}

// Result is the representative score of a set of samples.
type Result struct {
	Score      float64 `json:"score"`
	Percentage float64 `json:"percentage"`
}

// RoundSample is the aggregated result of one round.
type RoundSample struct {
	Round      int
	Score      float64
	Percentage float64
}

// Aggregator defines the interface for collapsing the evaluations of one
// team in one area into a single representative result.
type Aggregator interface {
	// Method returns the tag the aggregator implements.
	Method() AggregationMethod

	// Aggregate combines the samples. Implementations must return the
	// zero Result for an empty slice and must not reorder the caller's
	// slice.
	//
	// Example:
	//
	//	samples := []Sample{{Score: 8, Percentage: 80}, {Score: 6, Percentage: 60}}
	//	res, err := aggregator.Aggregate(samples)
	Aggregate(samples []Sample) (Result, error)
}

// RoundAggregator combines per-round results of a multi-round area.
type RoundAggregator interface {
	Method() RoundsAggregation
	Aggregate(samples []RoundSample) (Result, error)
}
