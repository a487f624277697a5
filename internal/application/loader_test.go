package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-standings/internal/domain"
)

const minimalTournament = `
version: "1.0.0"
tournament:
  id: t-1
  name: Torneio
areas:
  - code: pesquisa
    scoring_type: rubric
    rubric:
      criteria:
        - id: c1
          max_score: 10
`

func newLoader(t *testing.T) *TournamentLoader {
	t.Helper()
	l, err := NewTournamentLoader(nil)
	require.NoError(t, err)
	return l
}

func TestTournamentLoader_LoadFromFile(t *testing.T) {
	tour, err := newLoader(t).LoadFromFile(context.Background(), "testdata/tournament.yaml")
	require.NoError(t, err)

	assert.Equal(t, "regional-2026", tour.ID)
	require.Len(t, tour.Areas, 3)
	require.Len(t, tour.Teams, 2)

	prog := tour.Areas[0]
	assert.Equal(t, "programacao", prog.ID, "id defaults to code")
	assert.Equal(t, "regional-2026", prog.TournamentID)
	assert.Nil(t, prog.Scoring, "legacy area without scoring blobs")
	assert.Equal(t, domain.AggregateAverage, prog.AggregationMethod)

	rg := tour.Areas[1]
	assert.True(t, rg.AllowRounds)
	assert.Equal(t, 3, rg.MaxRounds)
	assert.Equal(t, domain.RoundsBest, rg.RoundsAggregation)
	perf, ok := rg.Scoring.(domain.PerformanceConfig)
	require.True(t, ok)
	assert.Len(t, perf.Missions, 2)
	assert.Equal(t, -5.0, perf.PenaltyTypes[0].Points)

	design, ok := tour.Areas[2].Scoring.(domain.MixedConfig)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 1, 2}, design.Rubric.Criteria[1].AllowedValues)

	assert.Equal(t, domain.RankPercentage, tour.Ranking.Method)
	assert.Equal(t, map[string]float64{"design": 1.5}, tour.Ranking.Weights)
	assert.Equal(t, []string{"robot_game", "programacao"}, tour.Ranking.TieBreak)
	assert.Equal(t, "Turno da Tarde", tour.Teams[1].Metadata[domain.MetaOriginalShift])
}

func TestTournamentLoader_LoadFromReader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		wantIs  error
	}{
		{
			name:    "unknown field",
			yaml:    minimalTournament + "\nextra: true\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "bad version",
			yaml:    strings.Replace(minimalTournament, `"1.0.0"`, `"one"`, 1),
			wantErr: "semver",
		},
		{
			name:    "unknown scoring type",
			yaml:    strings.Replace(minimalTournament, "scoring_type: rubric", "scoring_type: essay", 1),
			wantErr: "scoringtype",
		},
		{
			name:    "unknown aggregation",
			yaml:    strings.Replace(minimalTournament, "scoring_type: rubric", "scoring_type: rubric\n    aggregation: mode", 1),
			wantErr: "aggmethod",
		},
		{
			name:    "negative weight",
			yaml:    strings.Replace(minimalTournament, "scoring_type: rubric", "scoring_type: rubric\n    weight: -1", 1),
			wantErr: "Weight",
		},
		{
			name:    "unknown ranking method",
			yaml:    minimalTournament + "ranking:\n  method: elo\n",
			wantErr: "rankmethod",
		},
		{
			name:    "tie-break for unknown area",
			yaml:    minimalTournament + "ranking:\n  tie_break: [valores]\n",
			wantErr: `tie-break references unknown area "valores"`,
			wantIs:  domain.ErrInvalidConfiguration,
		},
		{
			name:    "duplicate team",
			yaml:    minimalTournament + "teams:\n  - {id: a, name: A}\n  - {id: a, name: B}\n",
			wantErr: `duplicate team id "a"`,
			wantIs:  domain.ErrInvalidConfiguration,
		},
		{
			name:    "criterion without id",
			yaml:    strings.Replace(minimalTournament, "- id: c1", "- id: \"\"", 1),
			wantErr: "criterion 0 has no id",
		},
		{
			name:    "no areas",
			yaml:    "version: \"1.0.0\"\ntournament: {id: x, name: y}\n",
			wantErr: "Areas",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newLoader(t).LoadFromReader(context.Background(), strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs))
			}
		})
	}
}

func TestTournamentLoader_Caching(t *testing.T) {
	l := newLoader(t)
	ctx := context.Background()

	_, err := l.LoadFromReader(ctx, strings.NewReader(minimalTournament))
	require.NoError(t, err)
	assert.Equal(t, 1, l.CachedCount())

	// Same document with different formatting hits the same entry.
	reformatted := strings.ReplaceAll(minimalTournament, "\n", "\n\n")
	_, err = l.LoadFromReader(ctx, strings.NewReader(reformatted))
	require.NoError(t, err)
	assert.Equal(t, 1, l.CachedCount())

	_, err = l.LoadFromReader(ctx, strings.NewReader(strings.Replace(minimalTournament, "t-1", "t-2", 1)))
	require.NoError(t, err)
	assert.Equal(t, 2, l.CachedCount())

	l.ClearCache()
	assert.Zero(t, l.CachedCount())
}

func TestTournamentLoader_ConcurrentLoads(t *testing.T) {
	l := newLoader(t)
	var wg sync.WaitGroup
	results := make([]domain.Tournament, 16)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tour, err := l.LoadFromReader(context.Background(), strings.NewReader(minimalTournament))
			assert.NoError(t, err)
			results[i] = tour
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "t-1", r.ID)
	}
	assert.Equal(t, 1, l.CachedCount())
}

func TestTournamentLoader_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newLoader(t).LoadFromReader(ctx, strings.NewReader(minimalTournament))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTournamentLoader_CustomAggregation(t *testing.T) {
	yaml := strings.Replace(minimalTournament, "scoring_type: rubric", "scoring_type: rubric\n    aggregation: trimmed_mean", 1)

	_, err := newLoader(t).LoadFromReader(context.Background(), strings.NewReader(yaml))
	require.Error(t, err)

	r := NewAggregatorRegistry()
	require.NoError(t, r.Register(trimmedMeanAggregator{}))
	l, err := NewTournamentLoader(r)
	require.NoError(t, err)

	tour, err := l.LoadFromReader(context.Background(), strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, domain.AggregationMethod("trimmed_mean"), tour.Areas[0].AggregationMethod)
}

func TestTournamentLoader_RanksLoadedTournament(t *testing.T) {
	tour, err := newLoader(t).LoadFromFile(context.Background(), "testdata/tournament.yaml")
	require.NoError(t, err)

	evals := []domain.Evaluation{
		{ID: "e1", TeamID: "t1", AreaID: "robot_game", JudgeID: "j", Round: 1, IsActive: true, SubmittedAt: t0,
			Scores: []domain.ScoreEntry{domain.PerformanceScore("ponte", 20), domain.PerformanceScore("blocos", 20)}},
		{ID: "e2", TeamID: "t2", AreaID: "robot_game", JudgeID: "j", Round: 1, IsActive: true, SubmittedAt: t0,
			Scores: []domain.ScoreEntry{domain.PerformanceScore("ponte", 20)}},
	}

	got, err := NewEngine(DefaultOptions()).ComputeRanking(tour.Teams, tour.Areas, domain.IndexEvaluations(evals), tour.Ranking)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].Team.ID)
	assert.Equal(t, 67.0, got[0].Percentage)
	assert.Equal(t, "tarde", got[1].Team.Shift)
	assert.Equal(t, "1º ano ensino medio", got[1].Team.Grade)
}
