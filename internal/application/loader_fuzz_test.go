package application

import (
	"bytes"
	"context"
	"math"
	"os"
	"testing"

	"github.com/ahrav/go-standings/internal/domain"
)

// FuzzTournamentLoader_LoadFromReader checks that arbitrary input never
// panics the loader and that anything it accepts can be ranked.
func FuzzTournamentLoader_LoadFromReader(f *testing.F) {
	f.Add([]byte(minimalTournament))
	if data, err := os.ReadFile("testdata/tournament.yaml"); err == nil {
		f.Add(data)
	}
	f.Add([]byte("version: \"1.0.0\"\n"))
	f.Add([]byte("areas: [{code: x, scoring_type: rubric, weight: .nan}]"))
	f.Add([]byte("{{{{"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		l, err := NewTournamentLoader(nil)
		if err != nil {
			t.Fatal(err)
		}
		tour, err := l.LoadFromReader(context.Background(), bytes.NewReader(data))
		if err != nil {
			return
		}

		for _, a := range tour.Areas {
			if a.Weight < 0 || math.IsNaN(a.Weight) {
				t.Fatalf("accepted invalid weight %v", a.Weight)
			}
		}

		got, err := NewEngine(DefaultOptions()).ComputeRanking(tour.Teams, tour.Areas, domain.EvaluationIndex{}, tour.Ranking)
		if err != nil {
			t.Fatalf("accepted tournament failed to rank: %v", err)
		}
		if len(got) != len(tour.Teams) {
			t.Fatalf("got %d rows for %d teams", len(got), len(tour.Teams))
		}
	})
}
