package application

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-standings/internal/domain"
	"github.com/ahrav/go-standings/internal/testutils"
)

var t0 = time.Date(2026, 5, 16, 9, 0, 0, 0, time.UTC)

func rubricArea(id, code string, max float64) domain.TournamentArea {
	return domain.TournamentArea{
		ID: id, Code: code, Name: code, ScoringType: domain.ScoringRubric, Weight: 1,
		Scoring: domain.RubricConfig{Criteria: []domain.Criterion{{ID: "c1", MaxScore: max}}},
	}
}

func performanceArea(id, code string, points float64) domain.TournamentArea {
	return domain.TournamentArea{
		ID: id, Code: code, Name: code, ScoringType: domain.ScoringPerformance, Weight: 1,
		Scoring: domain.PerformanceConfig{Missions: []domain.Mission{{ID: "m1", Points: points, Quantity: 1}}},
	}
}

func rubricEval(id, team, area, judge string, score float64, at time.Time) domain.Evaluation {
	return domain.Evaluation{
		ID: id, TeamID: team, AreaID: area, JudgeID: judge, IsActive: true, Version: 1,
		Scores: []domain.ScoreEntry{domain.RubricScore("c1", score)}, SubmittedAt: at,
	}
}

func performanceEval(id, team, area, judge string, score float64, at time.Time) domain.Evaluation {
	return domain.Evaluation{
		ID: id, TeamID: team, AreaID: area, JudgeID: judge, IsActive: true, Version: 1,
		Scores: []domain.ScoreEntry{domain.PerformanceScore("m1", score)}, SubmittedAt: at,
	}
}

func TestEngine_ComputeRanking_WeightedPercentage(t *testing.T) {
	area1 := rubricArea("a1", "programacao", 10)
	area1.Order = 1
	area2 := performanceArea("a2", "robot_game", 20)
	area2.Order = 2
	area2.Weight = 2

	teams := []domain.Team{{ID: "team-a", Name: "A"}}
	index := domain.IndexEvaluations([]domain.Evaluation{
		rubricEval("e1", "team-a", "a1", "j1", 8, t0),
		performanceEval("e2", "team-a", "a2", "j2", 10, t0),
	})

	got, err := NewEngine(DefaultOptions()).ComputeRanking(teams, []domain.TournamentArea{area1, area2}, index, domain.RankingConfig{Method: domain.RankPercentage})
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, 1, r.Position)
	assert.Equal(t, 60.0, r.Percentage)
	assert.Equal(t, 28.0, r.TotalScore)
	assert.Equal(t, 50.0, r.MaxPossibleScore)
	assert.Equal(t, 80.0, r.AreaScores["programacao"].Percentage)
	assert.Equal(t, 50.0, r.AreaScores["robot_game"].Percentage)
	assert.Equal(t, 2.0, r.AreaScores["robot_game"].Weight)

	got, err = NewEngine(DefaultOptions()).ComputeRanking(teams, []domain.TournamentArea{area1, area2}, index, domain.RankingConfig{Method: domain.RankRaw})
	require.NoError(t, err)
	assert.Equal(t, 56.0, got[0].Percentage, "raw mode is 28/50")
}

func TestEngine_ComputeRanking_WeightOverrides(t *testing.T) {
	areas := []domain.TournamentArea{rubricArea("a1", "x", 10), rubricArea("a2", "y", 10)}
	index := domain.IndexEvaluations([]domain.Evaluation{
		rubricEval("e1", "t1", "a1", "j", 10, t0),
		rubricEval("e2", "t1", "a2", "j", 4, t0),
	})
	cfg := domain.RankingConfig{Weights: map[string]float64{"x": 3}}

	got, err := NewEngine(DefaultOptions()).ComputeRanking([]domain.Team{{ID: "t1"}}, areas, index, cfg)
	require.NoError(t, err)
	// (100*3 + 40*1) / 4 = 85
	assert.Equal(t, 85.0, got[0].Percentage)
	assert.Equal(t, 3.0, got[0].AreaScores["x"].Weight)
}

func TestEngine_ComputeRanking_UnevaluatedAreas(t *testing.T) {
	areas := []domain.TournamentArea{rubricArea("a1", "x", 10), rubricArea("a2", "y", 10)}
	index := domain.IndexEvaluations([]domain.Evaluation{
		rubricEval("e1", "t1", "a1", "j", 7, t0),
	})
	teams := []domain.Team{{ID: "t1"}, {ID: "t2"}}

	got, err := NewEngine(DefaultOptions()).ComputeRanking(teams, areas, index, domain.RankingConfig{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "t1", got[0].Team.ID)
	assert.Equal(t, 70.0, got[0].Percentage, "unevaluated area adds no weight")
	assert.False(t, got[0].AreaScores["y"].Evaluated)
	assert.Equal(t, 20.0, got[0].MaxPossibleScore)

	assert.Equal(t, "t2", got[1].Team.ID)
	assert.Zero(t, got[1].Percentage)
	assert.Zero(t, got[1].AreaScores["x"].EvaluationCount)
	assert.Equal(t, domain.AggregateLast, got[1].AreaScores["x"].AggregationMethod)
}

func TestEngine_ComputeRanking_PenaltyFloor(t *testing.T) {
	area := performanceArea("a1", "robot_game", 20)
	ev := performanceEval("e1", "t1", "a1", "j", 10, t0)
	ev.Penalties = []domain.Penalty{{Type: "toque", Points: -5}, {Type: "reinicio", Points: -8}}

	got, err := NewEngine(DefaultOptions()).ComputeRanking(
		[]domain.Team{{ID: "t1"}}, []domain.TournamentArea{area}, domain.IndexEvaluations([]domain.Evaluation{ev}), domain.RankingConfig{},
	)
	require.NoError(t, err)
	as := got[0].AreaScores["robot_game"]
	assert.True(t, as.Evaluated)
	assert.Zero(t, as.Score)
	assert.Zero(t, got[0].Percentage)
	assert.Equal(t, ev.Penalties, as.Penalties)
}

func TestEngine_ComputeRanking_LatestDisplayMetadata(t *testing.T) {
	area := rubricArea("a1", "x", 10)
	area.AggregationMethod = domain.AggregateBest

	first := rubricEval("e1", "t1", "a1", "j1", 9, t0)
	first.JudgeName = "Ana"
	first.ElapsedSeconds = 300
	second := rubricEval("e2", "t1", "a1", "j2", 5, t0.Add(time.Hour))
	second.JudgeName = "Bruno"
	second.ElapsedSeconds = 120
	inactive := rubricEval("e3", "t1", "a1", "j3", 10, t0.Add(2*time.Hour))
	inactive.IsActive = false

	got, err := NewEngine(DefaultOptions()).ComputeRanking(
		[]domain.Team{{ID: "t1"}}, []domain.TournamentArea{area},
		domain.IndexEvaluations([]domain.Evaluation{first, second, inactive}), domain.RankingConfig{},
	)
	require.NoError(t, err)

	as := got[0].AreaScores["x"]
	assert.Equal(t, 9.0, as.Score, "best of active evaluations")
	assert.Equal(t, 90.0, as.Percentage)
	assert.Equal(t, 2, as.EvaluationCount)
	assert.Equal(t, "Bruno", as.EvaluatedBy)
	assert.Equal(t, 2*time.Minute, as.EvaluationTime)
	assert.Equal(t, second.Scores, as.Breakdown)
}

func TestEngine_ComputeRanking_SkipsNonFinite(t *testing.T) {
	area := rubricArea("a1", "x", 10)
	good := rubricEval("e1", "t1", "a1", "j1", 6, t0)
	bad := rubricEval("e2", "t1", "a1", "j2", math.NaN(), t0.Add(time.Minute))
	inf := rubricEval("e3", "t1", "a1", "j3", 4, t0.Add(2*time.Minute))
	inf.Penalties = []domain.Penalty{{Points: math.Inf(-1)}}

	got, err := NewEngine(DefaultOptions()).ComputeRanking(
		[]domain.Team{{ID: "t1"}}, []domain.TournamentArea{area},
		domain.IndexEvaluations([]domain.Evaluation{good, bad, inf}), domain.RankingConfig{},
	)
	require.NoError(t, err)
	as := got[0].AreaScores["x"]
	assert.Equal(t, 2, as.Skipped)
	assert.Equal(t, 1, as.EvaluationCount)
	assert.Equal(t, 60.0, as.Percentage)
	assert.False(t, math.IsNaN(got[0].Percentage))
}

func TestEngine_ComputeRanking_Rounds(t *testing.T) {
	area := performanceArea("a1", "robot_game", 100)
	area.AllowRounds = true
	area.MaxRounds = 2
	area.AggregationMethod = domain.AggregateAverage
	area.RoundsAggregation = domain.RoundsBest

	evals := []domain.Evaluation{
		performanceEval("r1a", "t1", "a1", "j1", 40, t0),
		performanceEval("r1b", "t1", "a1", "j2", 60, t0.Add(time.Minute)),
		performanceEval("r2a", "t1", "a1", "j1", 70, t0.Add(time.Hour)),
		performanceEval("r3a", "t1", "a1", "j1", 100, t0.Add(2*time.Hour)),
	}
	evals[0].Round, evals[1].Round, evals[2].Round, evals[3].Round = 1, 1, 2, 3

	got, err := NewEngine(DefaultOptions()).ComputeRanking(
		[]domain.Team{{ID: "t1"}}, []domain.TournamentArea{area}, domain.IndexEvaluations(evals), domain.RankingConfig{},
	)
	require.NoError(t, err)

	as := got[0].AreaScores["robot_game"]
	assert.Equal(t, 70.0, as.Score, "best round wins; round 3 is beyond MaxRounds")
	assert.Equal(t, 70.0, as.Percentage)
	assert.Equal(t, 3, as.EvaluationCount)
	assert.Equal(t, []domain.RoundScore{
		{Round: 1, Score: 50, Percentage: 50, EvaluationCount: 2},
		{Round: 2, Score: 70, Percentage: 70, EvaluationCount: 1},
	}, as.Rounds)

	area.RoundsAggregation = domain.RoundsSum
	got, err = NewEngine(DefaultOptions()).ComputeRanking(
		[]domain.Team{{ID: "t1"}}, []domain.TournamentArea{area}, domain.IndexEvaluations(evals), domain.RankingConfig{},
	)
	require.NoError(t, err)
	assert.Equal(t, 120.0, got[0].AreaScores["robot_game"].Score)
}

func TestEngine_ComputeRanking_LegacyCatalog(t *testing.T) {
	area := domain.TournamentArea{ID: "a1", Code: "design", ScoringType: domain.ScoringRubric}
	ev := domain.Evaluation{
		ID: "e1", TeamID: "t1", AreaID: "a1", JudgeID: "j", IsActive: true, SubmittedAt: t0,
		Scores: []domain.ScoreEntry{domain.RubricScore("any", 5)},
	}
	index := domain.IndexEvaluations([]domain.Evaluation{ev})
	teams := []domain.Team{{ID: "t1"}}

	got, err := NewEngine(DefaultOptions()).ComputeRanking(teams, []domain.TournamentArea{area}, index, domain.RankingConfig{})
	require.NoError(t, err)
	assert.Equal(t, 10.0, got[0].AreaScores["design"].MaxScore)
	assert.Equal(t, 50.0, got[0].Percentage)

	// Without a catalog the area has no maximum and contributes nothing.
	got, err = NewEngine(Options{}).ComputeRanking(teams, []domain.TournamentArea{area}, index, domain.RankingConfig{})
	require.NoError(t, err)
	assert.Zero(t, got[0].AreaScores["design"].MaxScore)
	assert.Zero(t, got[0].Percentage)
}

func TestEngine_ComputeRanking_DisplayAttributes(t *testing.T) {
	teams := []domain.Team{
		{ID: "t1", Grade: "2º Ano", Metadata: map[string]string{domain.MetaOriginalShift: "Turno da Manhã"}},
		{ID: "t2", Grade: "turma especial", Shift: "noite"},
	}
	got, err := NewEngine(DefaultOptions()).ComputeRanking(teams, nil, nil, domain.RankingConfig{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "2º ano", got[0].Team.Grade)
	assert.Equal(t, "manha", got[0].Team.Shift)
	assert.Equal(t, "turma especial", got[1].Team.Grade)
	assert.Equal(t, "noite", got[1].Team.Shift)
}

func TestEngine_ComputeRanking_ValidationErrors(t *testing.T) {
	bad := rubricArea("a1", "x", 10)
	bad.Weight = -1

	_, err := NewEngine(DefaultOptions()).ComputeRanking(nil, []domain.TournamentArea{bad}, nil, domain.RankingConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Errors, 1)
}

func TestEngine_ComputeRanking_Idempotent(t *testing.T) {
	snap := testutils.NewFixtureGenerator(testutils.DefaultFixtureConfig()).Snapshot()
	tour := snap.Tournament
	engine := NewEngine(DefaultOptions())

	first, err := engine.ComputeRanking(tour.Teams, tour.Areas, domain.IndexEvaluations(snap.Evaluations), tour.Ranking)
	require.NoError(t, err)
	second, err := engine.ComputeRanking(tour.Teams, tour.Areas, domain.IndexEvaluations(snap.Evaluations), tour.Ranking)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("rankings differ between calls (-first +second):\n%s", diff)
	}
}

func TestEngine_ComputeRanking_Properties(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	for seed := int64(1); seed <= 25; seed++ {
		cfg := testutils.DefaultFixtureConfig()
		cfg.Seed = seed
		cfg.Coverage = 0.6
		snap := testutils.NewFixtureGenerator(cfg).Snapshot()
		tour := snap.Tournament

		for _, method := range []domain.RankingMethod{domain.RankPercentage, domain.RankRaw} {
			rc := tour.Ranking
			rc.Method = method
			got, err := engine.ComputeRanking(tour.Teams, tour.Areas, domain.IndexEvaluations(snap.Evaluations), rc)
			require.NoError(t, err, "seed %d", seed)
			require.Len(t, got, len(tour.Teams))

			for i, r := range got {
				assert.Equal(t, i+1, r.Position)
				assert.GreaterOrEqual(t, r.Percentage, 0.0, "seed %d", seed)
				assert.LessOrEqual(t, r.Percentage, 100.0, "seed %d", seed)
				for code, as := range r.AreaScores {
					assert.GreaterOrEqual(t, as.Score, 0.0, "seed %d area %s", seed, code)
				}
				if i == 0 {
					continue
				}
				prev := got[i-1]
				require.GreaterOrEqual(t, prev.Percentage, r.Percentage, "seed %d", seed)
				if prev.Percentage == r.Percentage {
					require.GreaterOrEqual(t, prev.TotalScore, r.TotalScore, "seed %d", seed)
				}
			}
		}
	}
}
