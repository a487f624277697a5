package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstAggregator is a minimal Aggregator used to exercise the contract.
type firstAggregator struct{}

func (firstAggregator) Method() AggregationMethod { return "first" }

func (firstAggregator) Aggregate(samples []Sample) (Result, error) {
	if len(samples) == 0 {
		return Result{}, nil
	}
	return Result{Score: samples[0].Score, Percentage: samples[0].Percentage}, nil
}

// TestAggregatorInterface verifies the Aggregator contract can be
// implemented and that an empty input yields the zero Result.
func TestAggregatorInterface(t *testing.T) {
	var agg Aggregator = firstAggregator{}

	res, err := agg.Aggregate(nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	res, err = agg.Aggregate([]Sample{{Score: 8, Percentage: 80}, {Score: 6, Percentage: 60}})
	require.NoError(t, err)
	assert.Equal(t, Result{Score: 8, Percentage: 80}, res)
}

func TestAggregationMethod(t *testing.T) {
	tests := []struct {
		method AggregationMethod
		valid  bool
		want   AggregationMethod
	}{
		{method: "", valid: true, want: AggregateLast},
		{method: AggregateLast, valid: true, want: AggregateLast},
		{method: AggregateAverage, valid: true, want: AggregateAverage},
		{method: AggregateMedian, valid: true, want: AggregateMedian},
		{method: AggregateBest, valid: true, want: AggregateBest},
		{method: AggregateWorst, valid: true, want: AggregateWorst},
		{method: "mode", valid: false, want: "mode"},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.method.Valid())
			assert.Equal(t, tt.want, tt.method.OrDefault())
		})
	}
}

func TestRoundsAggregationAndRankingMethod(t *testing.T) {
	assert.True(t, RoundsAggregation("").Valid())
	assert.Equal(t, RoundsBest, RoundsAggregation("").OrDefault())
	assert.True(t, RoundsSum.Valid())
	assert.False(t, RoundsAggregation("median").Valid())

	assert.True(t, RankingMethod("").Valid())
	assert.Equal(t, RankPercentage, RankingMethod("").OrDefault())
	assert.True(t, RankRaw.Valid())
	assert.False(t, RankingMethod("points").Valid())
}
