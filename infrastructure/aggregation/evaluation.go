package aggregation

import (
	"slices"

	"github.com/ahrav/go-standings/internal/domain"
)

var (
	_ domain.Aggregator = LastAggregator{}
	_ domain.Aggregator = AverageAggregator{}
	_ domain.Aggregator = MedianAggregator{}
	_ domain.Aggregator = BestAggregator{}
	_ domain.Aggregator = WorstAggregator{}
)

// LastAggregator selects the most recent evaluation. When several share the
// latest timestamp the first of them in input order wins, which matches a
// stable descending sort by timestamp.
type LastAggregator struct{}

// Method implements domain.Aggregator.
func (LastAggregator) Method() domain.AggregationMethod { return domain.AggregateLast }

// Aggregate implements domain.Aggregator.
func (LastAggregator) Aggregate(samples []domain.Sample) (domain.Result, error) {
	if len(samples) == 0 {
		return domain.Result{}, nil
	}
	if err := checkSamples(samples); err != nil {
		return domain.Result{}, err
	}
	latest := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp.After(samples[latest].Timestamp) {
			latest = i
		}
	}
	return domain.Result{Score: samples[latest].Score, Percentage: samples[latest].Percentage}, nil
}

// AverageAggregator averages score and percentage independently. The mean
// score is rounded to one decimal and the mean percentage to a whole
// number.
type AverageAggregator struct{}

// Method implements domain.Aggregator.
func (AverageAggregator) Method() domain.AggregationMethod { return domain.AggregateAverage }

// Aggregate implements domain.Aggregator.
func (AverageAggregator) Aggregate(samples []domain.Sample) (domain.Result, error) {
	if len(samples) == 0 {
		return domain.Result{}, nil
	}
	if err := checkSamples(samples); err != nil {
		return domain.Result{}, err
	}
	scores, pcts := split(samples)
	return domain.Result{
		Score:      mean(scores, scorePlaces),
		Percentage: mean(pcts, percentagePlaces),
	}, nil
}

// MedianAggregator takes the median of percentages and, independently, the
// median of scores. An even count yields the mean of the two middle values.
type MedianAggregator struct{}

// Method implements domain.Aggregator.
func (MedianAggregator) Method() domain.AggregationMethod { return domain.AggregateMedian }

// Aggregate implements domain.Aggregator.
func (MedianAggregator) Aggregate(samples []domain.Sample) (domain.Result, error) {
	if len(samples) == 0 {
		return domain.Result{}, nil
	}
	if err := checkSamples(samples); err != nil {
		return domain.Result{}, err
	}
	scores, pcts := split(samples)
	return domain.Result{Score: median(scores), Percentage: median(pcts)}, nil
}

// median sorts xs in place and returns its median. xs must be a copy the
// caller owns.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	slices.Sort(xs)
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}

// BestAggregator selects the evaluation with the highest percentage. The
// first one encountered wins ties.
type BestAggregator struct{}

// Method implements domain.Aggregator.
func (BestAggregator) Method() domain.AggregationMethod { return domain.AggregateBest }

// Aggregate implements domain.Aggregator.
func (BestAggregator) Aggregate(samples []domain.Sample) (domain.Result, error) {
	return pick(samples, func(candidate, current float64) bool { return candidate > current })
}

// WorstAggregator selects the evaluation with the lowest percentage. The
// first one encountered wins ties.
type WorstAggregator struct{}

// Method implements domain.Aggregator.
func (WorstAggregator) Method() domain.AggregationMethod { return domain.AggregateWorst }

// Aggregate implements domain.Aggregator.
func (WorstAggregator) Aggregate(samples []domain.Sample) (domain.Result, error) {
	return pick(samples, func(candidate, current float64) bool { return candidate < current })
}

// pick returns the sample whose percentage beats every earlier one under
// better. Strict comparison keeps the first of equal percentages.
func pick(samples []domain.Sample, better func(candidate, current float64) bool) (domain.Result, error) {
	if len(samples) == 0 {
		return domain.Result{}, nil
	}
	if err := checkSamples(samples); err != nil {
		return domain.Result{}, err
	}
	winner := 0
	for i := 1; i < len(samples); i++ {
		if better(samples[i].Percentage, samples[winner].Percentage) {
			winner = i
		}
	}
	return domain.Result{Score: samples[winner].Score, Percentage: samples[winner].Percentage}, nil
}

// split copies scores and percentages into fresh slices so callers' samples
// are never reordered.
func split(samples []domain.Sample) (scores, pcts []float64) {
	scores = make([]float64, len(samples))
	pcts = make([]float64, len(samples))
	for i, s := range samples {
		scores[i] = s.Score
		pcts[i] = s.Percentage
	}
	return scores, pcts
}
