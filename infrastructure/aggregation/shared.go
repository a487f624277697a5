// Package aggregation provides the domain.Aggregator and
// domain.RoundAggregator implementations that collapse the evaluations of
// one team in one area, and the rounds of a multi-round area, into a single
// representative score and percentage.
package aggregation

import (
	"errors"
	"fmt"
	"math"

	"github.com/ahrav/go-standings/infrastructure/scoring"
	"github.com/ahrav/go-standings/internal/domain"
)

// Common errors returned by aggregators.
var (
	// ErrInvalidSample is returned when a sample carries a NaN or infinite
	// score or percentage.
	ErrInvalidSample = errors.New("invalid sample")
)

// Rounding applied by averaging aggregators.
const (
	scorePlaces      = 1
	percentagePlaces = 0
)

var (
	evaluationAggregators = map[domain.AggregationMethod]domain.Aggregator{
		domain.AggregateLast:    LastAggregator{},
		domain.AggregateAverage: AverageAggregator{},
		domain.AggregateMedian:  MedianAggregator{},
		domain.AggregateBest:    BestAggregator{},
		domain.AggregateWorst:   WorstAggregator{},
	}

	roundAggregators = map[domain.RoundsAggregation]domain.RoundAggregator{
		domain.RoundsBest:    BestRoundAggregator{},
		domain.RoundsAverage: AverageRoundAggregator{},
		domain.RoundsSum:     SumRoundAggregator{},
	}
)

// ForMethod returns the aggregator for an evaluation aggregation method.
// The empty method resolves to AggregateLast.
func ForMethod(method domain.AggregationMethod) (domain.Aggregator, error) {
	agg, ok := evaluationAggregators[method.OrDefault()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAggregation, method)
	}
	return agg, nil
}

// ForRounds returns the aggregator for a rounds aggregation method. The
// empty method resolves to RoundsBest.
func ForRounds(method domain.RoundsAggregation) (domain.RoundAggregator, error) {
	agg, ok := roundAggregators[method.OrDefault()]
	if !ok {
		return nil, fmt.Errorf("%w: rounds %q", domain.ErrUnknownAggregation, method)
	}
	return agg, nil
}

// AggregateEvaluations collapses samples with the named method.
//
// Example:
//
//	res, err := AggregateEvaluations([]domain.Sample{
//	    {Score: 8, Percentage: 80},
//	    {Score: 6, Percentage: 60},
//	}, domain.AggregateAverage)
//	// res == domain.Result{Score: 7, Percentage: 70}
func AggregateEvaluations(samples []domain.Sample, method domain.AggregationMethod) (domain.Result, error) {
	agg, err := ForMethod(method)
	if err != nil {
		return domain.Result{}, err
	}
	return agg.Aggregate(samples)
}

// AggregateRounds combines per-round results with the named method.
func AggregateRounds(samples []domain.RoundSample, method domain.RoundsAggregation) (domain.Result, error) {
	agg, err := ForRounds(method)
	if err != nil {
		return domain.Result{}, err
	}
	return agg.Aggregate(samples)
}

func checkSamples(samples []domain.Sample) error {
	for i, s := range samples {
		if !finite(s.Score) || !finite(s.Percentage) {
			return fmt.Errorf("%w at index %d: score=%f percentage=%f", ErrInvalidSample, i, s.Score, s.Percentage)
		}
	}
	return nil
}

func checkRoundSamples(samples []domain.RoundSample) error {
	for i, s := range samples {
		if !finite(s.Score) || !finite(s.Percentage) {
			return fmt.Errorf("%w at round index %d: score=%f percentage=%f", ErrInvalidSample, i, s.Score, s.Percentage)
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// mean returns the arithmetic mean of xs rounded to places decimals.
func mean(xs []float64, places int32) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return scoring.Round(sum/float64(len(xs)), places)
}
