// Package scoring computes per-evaluation totals, maximum scores,
// percentages and penalty adjustments for tournament areas.
package scoring

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/ahrav/go-standings/internal/domain"
)

// CalculateTotalScore sums the submitted entries of one evaluation.
//
// Rubric and mixed areas sum criterion scores; performance areas sum the
// raw mission scores, which are already point totals. Neither path checks
// entries against AllowedValues or mission limits; that is the judging
// UI's job. Non-finite scores are ignored so the total is always a number;
// use ValidateEntries to reject them up front.
//
// Both paths are the same sum, so the configuration is not read. It stays
// in the signature to pair with MaxPossibleScore.
func CalculateTotalScore(entries []domain.ScoreEntry, _ domain.ScoringConfig) float64 {
	var total float64
	for _, e := range entries {
		if !isFinite(e.Score) {
			continue
		}
		total += e.Score
	}
	return total
}

// MaxPossibleScore returns the unweighted maximum of a scoring
// configuration. A nil configuration yields 0.
//
// Rubric and mixed configurations sum each criterion's MaxScore; a mixed
// configuration without criteria falls back to its missions. Performance
// configurations sum Points x Quantity per mission, counting a zero
// quantity as one.
func MaxPossibleScore(cfg domain.ScoringConfig) float64 {
	switch c := cfg.(type) {
	case domain.RubricConfig:
		return rubricMax(c)
	case domain.PerformanceConfig:
		return performanceMax(c)
	case domain.MixedConfig:
		if len(c.Rubric.Criteria) > 0 {
			return rubricMax(c.Rubric)
		}
		return performanceMax(c.Performance)
	default:
		return 0
	}
}

func rubricMax(c domain.RubricConfig) float64 {
	var total float64
	for _, cr := range c.Criteria {
		total += cr.MaxScore
	}
	return total
}

func performanceMax(c domain.PerformanceConfig) float64 {
	var total float64
	for _, m := range c.Missions {
		qty := m.Quantity
		if qty < 1 {
			qty = 1
		}
		total += m.Points * float64(qty)
	}
	return total
}

// Percentage returns round(100 * score / maxScore), or 0 when maxScore is
// not positive. The result is not clamped.
func Percentage(score, maxScore float64) float64 {
	if maxScore <= 0 || !isFinite(score) {
		return 0
	}
	return Round(100*score/maxScore, 0)
}

// ValidateEntries rejects entries whose kind does not fit the scoring type
// or whose score is not a finite number.
func ValidateEntries(entries []domain.ScoreEntry, t domain.ScoringType) error {
	for i, e := range entries {
		if !isFinite(e.Score) {
			return fmt.Errorf("%w: entry %d score is not finite", domain.ErrInvalidInput, i)
		}
		if e.RefID == "" {
			return fmt.Errorf("%w: entry %d has no criterion or mission id", domain.ErrInvalidInput, i)
		}
		switch t {
		case domain.ScoringRubric:
			if e.Kind != domain.EntryRubric {
				return fmt.Errorf("%w: entry %d is %s in a rubric area", domain.ErrInvalidInput, i, e.Kind)
			}
		case domain.ScoringPerformance:
			if e.Kind != domain.EntryPerformance {
				return fmt.Errorf("%w: entry %d is %s in a performance area", domain.ErrInvalidInput, i, e.Kind)
			}
		case domain.ScoringMixed:
			if e.Kind != domain.EntryRubric && e.Kind != domain.EntryPerformance {
				return fmt.Errorf("%w: entry %d has kind %q", domain.ErrInvalidInput, i, e.Kind)
			}
		}
	}
	return nil
}

// Round rounds x to the given number of decimal places, halves away from
// zero. Decimal arithmetic keeps values like 0.285 from rounding down
// through their binary representation.
func Round(x float64, places int32) float64 {
	if !isFinite(x) {
		return 0
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
