package aggregation

import "github.com/ahrav/go-standings/internal/domain"

var (
	_ domain.RoundAggregator = BestRoundAggregator{}
	_ domain.RoundAggregator = AverageRoundAggregator{}
	_ domain.RoundAggregator = SumRoundAggregator{}
)

// BestRoundAggregator keeps the round with the highest percentage; the
// earliest listed round wins ties.
type BestRoundAggregator struct{}

// Method implements domain.RoundAggregator.
func (BestRoundAggregator) Method() domain.RoundsAggregation { return domain.RoundsBest }

// Aggregate implements domain.RoundAggregator.
func (BestRoundAggregator) Aggregate(samples []domain.RoundSample) (domain.Result, error) {
	if len(samples) == 0 {
		return domain.Result{}, nil
	}
	if err := checkRoundSamples(samples); err != nil {
		return domain.Result{}, err
	}
	best := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].Percentage > samples[best].Percentage {
			best = i
		}
	}
	return domain.Result{Score: samples[best].Score, Percentage: samples[best].Percentage}, nil
}

// AverageRoundAggregator averages scores and percentages across rounds with
// the same rounding as AverageAggregator.
type AverageRoundAggregator struct{}

// Method implements domain.RoundAggregator.
func (AverageRoundAggregator) Method() domain.RoundsAggregation { return domain.RoundsAverage }

// Aggregate implements domain.RoundAggregator.
func (AverageRoundAggregator) Aggregate(samples []domain.RoundSample) (domain.Result, error) {
	if len(samples) == 0 {
		return domain.Result{}, nil
	}
	if err := checkRoundSamples(samples); err != nil {
		return domain.Result{}, err
	}
	scores := make([]float64, len(samples))
	pcts := make([]float64, len(samples))
	for i, s := range samples {
		scores[i] = s.Score
		pcts[i] = s.Percentage
	}
	return domain.Result{
		Score:      mean(scores, scorePlaces),
		Percentage: mean(pcts, percentagePlaces),
	}, nil
}

// SumRoundAggregator adds scores and percentages across rounds. The summed
// percentage may exceed 100; the ranking clamps only the final team
// percentage.
type SumRoundAggregator struct{}

// Method implements domain.RoundAggregator.
func (SumRoundAggregator) Method() domain.RoundsAggregation { return domain.RoundsSum }

// Aggregate implements domain.RoundAggregator.
func (SumRoundAggregator) Aggregate(samples []domain.RoundSample) (domain.Result, error) {
	if err := checkRoundSamples(samples); err != nil {
		return domain.Result{}, err
	}
	var res domain.Result
	for _, s := range samples {
		res.Score += s.Score
		res.Percentage += s.Percentage
	}
	return res, nil
}
