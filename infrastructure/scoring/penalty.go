package scoring

import "github.com/ahrav/go-standings/internal/domain"

// ApplyPenalties folds penalty points into a raw total and floors the
// result at zero. Points are added as stored, so deductions must already be
// negative. The floor applies once, after every penalty is summed.
func ApplyPenalties(rawTotal float64, penalties []domain.Penalty) float64 {
	total := rawTotal
	for _, p := range penalties {
		if !isFinite(p.Points) {
			continue
		}
		total += p.Points
	}
	if total < 0 {
		return 0
	}
	return total
}

// FinalScore is CalculateTotalScore followed by ApplyPenalties.
func FinalScore(ev domain.Evaluation, cfg domain.ScoringConfig) float64 {
	return ApplyPenalties(CalculateTotalScore(ev.Scores, cfg), ev.Penalties)
}
