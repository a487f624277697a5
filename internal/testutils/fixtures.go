// Package testutils provides seeded fixture generation and helpers shared by
// the project's test suites and the fixture command. It is not part of the
// public API.
package testutils

import (
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/ahrav/go-standings/infrastructure/scoring"
	"github.com/ahrav/go-standings/internal/domain"
)

// Raw grade and shift spellings as they arrive from hand-typed rosters.
var (
	rawGrades = []string{"2º Ano", "3 ano", "4º ano fund.", "5ºano", "1º EM", "2 ano ensino medio", "9º Ano"}
	rawShifts = []string{"Manhã", "MANHA  1", "manha", "Turno da Tarde", "tarde", "morning", "Afternoon"}
)

// FixtureConfig controls the size and shape of a generated tournament.
type FixtureConfig struct {
	// Seed makes generation reproducible.
	Seed int64 `json:"seed"`

	// Teams is the number of enrolled teams.
	Teams int `json:"teams"`

	// JudgesPerArea is the number of judges scoring each area.
	JudgesPerArea int `json:"judges_per_area"`

	// Rounds is the number of rounds of the robot game area.
	Rounds int `json:"rounds"`

	// Coverage is the probability in [0, 1] that a judge evaluated a given
	// team in a given area and round.
	Coverage float64 `json:"coverage"`

	// Start is the time of the first submission.
	Start time.Time `json:"start"`
}

// DefaultFixtureConfig returns a small tournament with partial coverage.
func DefaultFixtureConfig() FixtureConfig {
	return FixtureConfig{
		Seed:          1,
		Teams:         12,
		JudgesPerArea: 2,
		Rounds:        2,
		Coverage:      0.85,
		Start:         time.Date(2026, 5, 16, 8, 0, 0, 0, time.UTC),
	}
}

// FixtureGenerator builds synthetic tournaments and evaluations.
type FixtureGenerator struct {
	faker *gofakeit.Faker
	cfg   FixtureConfig
}

// NewFixtureGenerator creates a generator seeded from cfg.Seed. A zero
// seed uses the current time.
func NewFixtureGenerator(cfg FixtureConfig) *FixtureGenerator {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Start.IsZero() {
		cfg.Start = DefaultFixtureConfig().Start
	}
	return &FixtureGenerator{
		faker: gofakeit.New(uint64(cfg.Seed)),
		cfg:   cfg,
	}
}

// Seed returns the seed the generator was built with.
func (g *FixtureGenerator) Seed() int64 { return g.cfg.Seed }

// Snapshot generates a tournament and evaluations for it.
func (g *FixtureGenerator) Snapshot() domain.Snapshot {
	t := g.Tournament()
	return domain.Snapshot{Tournament: t, Evaluations: g.Evaluations(t)}
}

// Tournament generates a tournament with four areas covering every scoring
// type, a legacy area without configuration and a multi-round area.
func (g *FixtureGenerator) Tournament() domain.Tournament {
	id := g.faker.UUID()
	t := domain.Tournament{
		ID:   id,
		Name: fmt.Sprintf("Torneio %s %d", g.faker.City(), g.cfg.Start.Year()),
		Areas: []domain.TournamentArea{
			{
				ID: g.faker.UUID(), TournamentID: id, Code: "programacao", Name: "Programação", Order: 1,
				ScoringType: domain.ScoringRubric, Weight: 1, AggregationMethod: domain.AggregateAverage,
			},
			{
				ID: g.faker.UUID(), TournamentID: id, Code: "pesquisa", Name: "Pesquisa", Order: 2,
				ScoringType: domain.ScoringRubric, Weight: 1, AggregationMethod: domain.AggregateLast,
				Scoring: domain.RubricConfig{Criteria: []domain.Criterion{
					{ID: "problema", Name: "Problema", MaxScore: 5, AllowedValues: []float64{1, 2, 3, 4, 5}},
					{ID: "solucao", Name: "Solução", MaxScore: 5, AllowedValues: []float64{1, 2, 3, 4, 5}},
				}},
			},
			{
				ID: g.faker.UUID(), TournamentID: id, Code: "robot_game", Name: "Desafio do Robô", Order: 3,
				ScoringType: domain.ScoringPerformance, Weight: 2, AggregationMethod: domain.AggregateBest,
				AllowRounds: g.cfg.Rounds > 1, MaxRounds: g.cfg.Rounds, RoundsAggregation: domain.RoundsBest,
				Scoring: domain.PerformanceConfig{
					Missions: []domain.Mission{
						{ID: "ponte", Name: "Ponte", Points: 20, Quantity: 1},
						{ID: "blocos", Name: "Blocos", Points: 10, Quantity: 4},
						{ID: "estacionar", Name: "Estacionar", Points: 30, Quantity: 1},
					},
					PenaltyTypes: []domain.PenaltyType{
						{Type: "toque", Name: "Toque no robô", Points: -5},
						{Type: "reinicio", Name: "Reinício", Points: -10},
					},
				},
			},
			{
				ID: g.faker.UUID(), TournamentID: id, Code: "design", Name: "Design", Order: 4,
				ScoringType: domain.ScoringMixed, Weight: 1, AggregationMethod: domain.AggregateMedian,
				Scoring: domain.MixedConfig{
					Rubric: domain.RubricConfig{Criteria: []domain.Criterion{
						{ID: "mecanica", Name: "Mecânica", MaxScore: 4},
						{ID: "estetica", Name: "Estética", MaxScore: 2},
					}},
				},
			},
		},
		Ranking: domain.RankingConfig{
			Method:   domain.RankPercentage,
			TieBreak: []string{"robot_game", "programacao"},
		},
	}

	for i := 0; i < g.cfg.Teams; i++ {
		t.Teams = append(t.Teams, g.team(i))
	}
	return t
}

func (g *FixtureGenerator) team(i int) domain.Team {
	tm := domain.Team{
		ID:       g.faker.UUID(),
		Name:     fmt.Sprintf("%s %s", g.faker.Color(), g.faker.Animal()),
		Code:     fmt.Sprintf("T%02d", i+1),
		SchoolID: fmt.Sprintf("school-%d", g.faker.Number(1, 4)),
		Grade:    g.faker.RandomString(rawGrades),
	}
	shift := g.faker.RandomString(rawShifts)
	// Some imported rosters only kept the label they arrived with.
	if g.faker.Number(0, 3) == 0 {
		tm.Metadata = map[string]string{domain.MetaOriginalShift: shift}
	} else {
		tm.Shift = shift
	}
	return tm
}

// Evaluations generates judge submissions for every team, area, judge and
// round of t, skipping a fraction according to Coverage.
func (g *FixtureGenerator) Evaluations(t domain.Tournament) []domain.Evaluation {
	catalog := scoring.DefaultCatalog()
	var evals []domain.Evaluation
	minute := 0
	for _, area := range t.Areas {
		cfg := scoring.ResolveScoring(area, catalog)
		rounds := 1
		if area.AllowRounds && area.MaxRounds > 0 {
			rounds = area.MaxRounds
		}
		for j := 1; j <= g.cfg.JudgesPerArea; j++ {
			judgeID := fmt.Sprintf("judge-%s-%d", area.Code, j)
			judgeName := g.faker.Name()
			for _, team := range t.Teams {
				for r := 1; r <= rounds; r++ {
					if g.faker.Float64Range(0, 1) > g.cfg.Coverage {
						continue
					}
					minute += g.faker.Number(1, 6)
					ev := domain.Evaluation{
						ID:             g.faker.UUID(),
						TournamentID:   t.ID,
						TeamID:         team.ID,
						AreaID:         area.ID,
						JudgeID:        judgeID,
						JudgeName:      judgeName,
						Scores:         g.scores(cfg),
						Penalties:      g.penalties(cfg),
						ElapsedSeconds: g.faker.Number(120, 900),
						Version:        1,
						IsActive:       true,
						SubmittedAt:    g.cfg.Start.Add(time.Duration(minute) * time.Minute),
					}
					if area.AllowRounds {
						ev.Round = r
					}
					evals = append(evals, ev)
				}
			}
		}
	}
	return evals
}

func (g *FixtureGenerator) scores(cfg domain.ScoringConfig) []domain.ScoreEntry {
	var out []domain.ScoreEntry
	rubric := func(rc domain.RubricConfig) {
		for _, c := range rc.Criteria {
			var v float64
			if len(c.AllowedValues) > 0 {
				v = c.AllowedValues[g.faker.Number(0, len(c.AllowedValues)-1)]
			} else {
				v = math.Round(g.faker.Float64Range(0, c.MaxScore))
			}
			out = append(out, domain.RubricScore(c.ID, v))
		}
	}
	perf := func(pc domain.PerformanceConfig) {
		for _, m := range pc.Missions {
			qty := max(m.Quantity, 1)
			out = append(out, domain.PerformanceScore(m.ID, float64(g.faker.Number(0, qty))*m.Points))
		}
	}

	switch c := cfg.(type) {
	case domain.RubricConfig:
		rubric(c)
	case domain.PerformanceConfig:
		perf(c)
	case domain.MixedConfig:
		rubric(c.Rubric)
		perf(c.Performance)
	}
	return out
}

func (g *FixtureGenerator) penalties(cfg domain.ScoringConfig) []domain.Penalty {
	types := domain.PenaltyTypesOf(cfg)
	if len(types) == 0 || g.faker.Number(0, 2) != 0 {
		return nil
	}
	pt := types[g.faker.Number(0, len(types)-1)]
	return []domain.Penalty{{Type: pt.Type, Points: pt.Points, Description: pt.Name}}
}
