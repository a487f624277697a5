package application

import (
	"cmp"
	"slices"

	"github.com/ahrav/go-standings/infrastructure/scoring"
	"github.com/ahrav/go-standings/internal/domain"
)

// notEvaluated ranks an area a team was never evaluated in below any real
// percentage during tie-breaks.
const notEvaluated = -1.0

// TeamPercentage returns the final 0-100 percentage of a ranking row.
//
// With RankPercentage it is the weighted average of the percentages of the
// areas the team was evaluated in, visited in areaOrder; unevaluated areas
// add neither weight nor score. A zero total weight falls back to the
// simple average and a team with no evaluated area gets 0. With RankRaw it
// is TotalScore over MaxPossibleScore. Both are rounded to a whole number
// and clamped to [0, 100].
func TeamPercentage(r domain.TeamRanking, areaOrder []string, method domain.RankingMethod) float64 {
	var pct float64
	switch method.OrDefault() {
	case domain.RankRaw:
		pct = scoring.Percentage(r.TotalScore, r.MaxPossibleScore)
	default:
		var weighted, weights, plain float64
		var n int
		for _, code := range areaOrder {
			as, ok := r.AreaScores[code]
			if !ok || !as.Evaluated {
				continue
			}
			weighted += as.Percentage * as.Weight
			weights += as.Weight
			plain += as.Percentage
			n++
		}
		switch {
		case n == 0:
			pct = 0
		case weights == 0:
			pct = scoring.Round(plain/float64(n), 0)
		default:
			pct = scoring.Round(weighted/weights, 0)
		}
	}
	return scoring.Clamp(pct, 0, 100)
}

// SortRankings orders rows by percentage, then total score, then the
// percentage of each tie-break area in turn, all descending. Rows still
// tied keep their input order. Positions are assigned as index + 1, so
// tied rows get distinct positions.
func SortRankings(rankings []domain.TeamRanking, tieBreak []string) {
	slices.SortStableFunc(rankings, func(a, b domain.TeamRanking) int {
		if c := cmp.Compare(b.Percentage, a.Percentage); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalScore, a.TotalScore); c != 0 {
			return c
		}
		for _, code := range tieBreak {
			if c := cmp.Compare(tieBreakValue(b, code), tieBreakValue(a, code)); c != 0 {
				return c
			}
		}
		return 0
	})
	for i := range rankings {
		rankings[i].Position = i + 1
	}
}

func tieBreakValue(r domain.TeamRanking, code string) float64 {
	as, ok := r.AreaScores[code]
	if !ok || !as.Evaluated {
		return notEvaluated
	}
	return as.Percentage
}
