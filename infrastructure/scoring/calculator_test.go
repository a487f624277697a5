package scoring

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-standings/internal/domain"
)

func rubric(maxima ...float64) domain.RubricConfig {
	var cfg domain.RubricConfig
	for i, m := range maxima {
		cfg.Criteria = append(cfg.Criteria, domain.Criterion{
			ID:       string(rune('a' + i)),
			MaxScore: m,
		})
	}
	return cfg
}

func TestCalculateTotalScore(t *testing.T) {
	tests := []struct {
		name    string
		entries []domain.ScoreEntry
		cfg     domain.ScoringConfig
		want    float64
	}{
		{
			name:    "rubric sums criterion scores",
			entries: []domain.ScoreEntry{domain.RubricScore("a", 3), domain.RubricScore("b", 4)},
			cfg:     rubric(4, 4),
			want:    7,
		},
		{
			name: "performance sums raw mission scores",
			entries: []domain.ScoreEntry{
				domain.PerformanceScore("m1", 30),
				domain.PerformanceScore("m2", 15),
			},
			cfg:  domain.PerformanceConfig{Missions: []domain.Mission{{ID: "m1", Points: 10, Quantity: 3}}},
			want: 45,
		},
		{
			name:    "allowed values are not enforced",
			entries: []domain.ScoreEntry{domain.RubricScore("a", 2.5)},
			cfg: domain.RubricConfig{Criteria: []domain.Criterion{
				{ID: "a", MaxScore: 4, AllowedValues: []float64{1, 2, 3, 4}},
			}},
			want: 2.5,
		},
		{
			name:    "missing configuration still counts scores",
			entries: []domain.ScoreEntry{domain.RubricScore("a", 5)},
			cfg:     nil,
			want:    5,
		},
		{
			name: "non-finite values are ignored",
			entries: []domain.ScoreEntry{
				domain.RubricScore("a", math.NaN()),
				domain.RubricScore("b", 2),
				domain.RubricScore("c", math.Inf(1)),
			},
			cfg:  rubric(4, 4, 4),
			want: 2,
		},
		{
			name: "empty entries",
			cfg:  rubric(4),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateTotalScore(tt.entries, tt.cfg), 1e-9)
		})
	}
}

func TestCalculateTotalScore_IndependentOfConfiguration(t *testing.T) {
	entries := []domain.ScoreEntry{domain.RubricScore("a", 3), domain.PerformanceScore("m1", 20)}
	configs := []domain.ScoringConfig{
		nil,
		rubric(4),
		domain.PerformanceConfig{Missions: []domain.Mission{{ID: "m1", Points: 10, Quantity: 2}}},
		domain.MixedConfig{Rubric: rubric(4)},
	}
	for _, cfg := range configs {
		assert.InDelta(t, 23.0, CalculateTotalScore(entries, cfg), 1e-9)
	}
}

func TestMaxPossibleScore(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.ScoringConfig
		want float64
	}{
		{name: "nil configuration", cfg: nil, want: 0},
		{name: "rubric", cfg: rubric(4, 4, 2), want: 10},
		{name: "empty rubric", cfg: domain.RubricConfig{}, want: 0},
		{
			name: "performance multiplies points by quantity",
			cfg: domain.PerformanceConfig{Missions: []domain.Mission{
				{ID: "m1", Points: 10, Quantity: 3},
				{ID: "m2", Points: 25, Quantity: 1},
			}},
			want: 55,
		},
		{
			name: "performance zero quantity counts once",
			cfg: domain.PerformanceConfig{Missions: []domain.Mission{
				{ID: "m1", Points: 20, Quantity: 0},
			}},
			want: 20,
		},
		{
			name: "mixed uses rubric maxima",
			cfg: domain.MixedConfig{
				Rubric:      rubric(4, 4),
				Performance: domain.PerformanceConfig{Missions: []domain.Mission{{ID: "m", Points: 100}}},
			},
			want: 8,
		},
		{
			name: "mixed without criteria falls back to missions",
			cfg: domain.MixedConfig{
				Performance: domain.PerformanceConfig{Missions: []domain.Mission{{ID: "m", Points: 50, Quantity: 2}}},
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxPossibleScore(tt.cfg), 1e-9)
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		maxScore float64
		want     float64
	}{
		{name: "exact", score: 8, maxScore: 10, want: 80},
		{name: "rounds half up", score: 1, maxScore: 8, want: 13},
		{name: "rounds down", score: 1, maxScore: 3, want: 33},
		{name: "two thirds", score: 2, maxScore: 3, want: 67},
		{name: "zero maximum", score: 5, maxScore: 0, want: 0},
		{name: "negative maximum", score: 5, maxScore: -1, want: 0},
		{name: "not clamped above 100", score: 12, maxScore: 10, want: 120},
		{name: "non-finite score", score: math.NaN(), maxScore: 10, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentage(tt.score, tt.maxScore), 1e-9)
		})
	}
}

func TestRound(t *testing.T) {
	assert.InDelta(t, 0.29, Round(0.285, 2), 1e-12)
	assert.InDelta(t, 7.1, Round(7.05, 1), 1e-12)
	assert.InDelta(t, 70, Round(69.5, 0), 1e-12)
	assert.InDelta(t, 0, Round(math.Inf(-1), 0), 1e-12)
}

func TestValidateEntries(t *testing.T) {
	tests := []struct {
		name      string
		entries   []domain.ScoreEntry
		scoring   domain.ScoringType
		wantError bool
		errorMsg  string
	}{
		{
			name:    "rubric entries in rubric area",
			entries: []domain.ScoreEntry{domain.RubricScore("a", 3)},
			scoring: domain.ScoringRubric,
		},
		{
			name:      "mission entry in rubric area",
			entries:   []domain.ScoreEntry{domain.PerformanceScore("m", 3)},
			scoring:   domain.ScoringRubric,
			wantError: true,
			errorMsg:  "rubric area",
		},
		{
			name:      "criterion entry in performance area",
			entries:   []domain.ScoreEntry{domain.RubricScore("a", 3)},
			scoring:   domain.ScoringPerformance,
			wantError: true,
			errorMsg:  "performance area",
		},
		{
			name: "mixed accepts both kinds",
			entries: []domain.ScoreEntry{
				domain.RubricScore("a", 3),
				domain.PerformanceScore("m", 10),
			},
			scoring: domain.ScoringMixed,
		},
		{
			name:      "not a number",
			entries:   []domain.ScoreEntry{domain.RubricScore("a", math.NaN())},
			scoring:   domain.ScoringRubric,
			wantError: true,
			errorMsg:  "not finite",
		},
		{
			name:      "missing reference",
			entries:   []domain.ScoreEntry{{Kind: domain.EntryRubric, Score: 1}},
			scoring:   domain.ScoringRubric,
			wantError: true,
			errorMsg:  "no criterion or mission id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntries(tt.entries, tt.scoring)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidInput))
				assert.True(t, strings.Contains(err.Error(), tt.errorMsg), err.Error())
				return
			}
			assert.NoError(t, err)
		})
	}
}
