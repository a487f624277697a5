package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreEntry_JSON(t *testing.T) {
	entries := []ScoreEntry{RubricScore("logica", 3), PerformanceScore("m1", 40)}

	data, err := json.Marshal(entries)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"criterion_id":"logica","score":3},{"mission_id":"m1","score":40}]`, string(data))

	var decoded []ScoreEntry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entries, decoded)
}

func TestScoreEntry_UnmarshalRejectsAmbiguousEntries(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "both identifiers", input: `{"criterion_id":"a","mission_id":"m","score":1}`},
		{name: "no identifier", input: `{"score":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e ScoreEntry
			err := json.Unmarshal([]byte(tt.input), &e)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}

	_, err := json.Marshal(ScoreEntry{Kind: "essay", RefID: "x"})
	assert.Error(t, err)
}

func TestEvaluation_Key(t *testing.T) {
	ev := Evaluation{
		TournamentID:   "t1",
		TeamID:         "team-7",
		AreaID:         "a2",
		JudgeID:        "j3",
		Round:          2,
		ElapsedSeconds: 90,
	}

	assert.Equal(t, EvaluationKey{TournamentID: "t1", TeamID: "team-7", AreaID: "a2", JudgeID: "j3", Round: 2}, ev.Key())
	assert.Equal(t, "t1/team-7/a2/j3/2", ev.Key().String())
	assert.Equal(t, 90*time.Second, ev.Elapsed())
}

func TestIndexEvaluations(t *testing.T) {
	evals := []Evaluation{
		{ID: "1", TeamID: "a", AreaID: "x", IsActive: true},
		{ID: "2", TeamID: "a", AreaID: "x", IsActive: false},
		{ID: "3", TeamID: "a", AreaID: "y", IsActive: true},
		{ID: "4", TeamID: "b", AreaID: "x", IsActive: true},
	}

	idx := IndexEvaluations(evals)
	require.Len(t, idx, 3)
	assert.Len(t, idx[TeamAreaKey{TeamID: "a", AreaID: "x"}], 2, "inactive evaluations are kept")
	assert.Equal(t, "3", idx[TeamAreaKey{TeamID: "a", AreaID: "y"}][0].ID)
	assert.Empty(t, idx[TeamAreaKey{TeamID: "b", AreaID: "y"}])
}

func TestTournament_Lookups(t *testing.T) {
	tr := Tournament{
		Areas: []TournamentArea{{ID: "a1", Code: "design"}},
		Teams: []Team{{ID: "team-1"}},
	}

	a, ok := tr.Area("a1")
	require.True(t, ok)
	assert.Equal(t, "design", a.Code)

	_, ok = tr.Area("missing")
	assert.False(t, ok)

	assert.True(t, tr.HasTeam("team-1"))
	assert.False(t, tr.HasTeam("team-2"))
}
