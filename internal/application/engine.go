package application

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/ahrav/go-standings/infrastructure/scoring"
	"github.com/ahrav/go-standings/internal/domain"
)

// Engine computes tournament rankings from an in-memory snapshot. It holds
// no state between calls and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine. Nil collaborators in opts are replaced with
// the defaults, except Catalog, which stays disabled when nil.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options returns the collaborators the engine was built with.
func (e *Engine) Options() Options { return e.opts }

// areaPlan is the per-area data shared by every team of one computation.
type areaPlan struct {
	area     domain.TournamentArea
	scoring  domain.ScoringConfig
	maxScore float64
	weight   float64
	agg      domain.Aggregator

	// rounds is nil unless the area allows rounds.
	rounds domain.RoundAggregator
}

// scoredEvaluation pairs an evaluation with its finalized sample.
type scoredEvaluation struct {
	ev     domain.Evaluation
	round  int
	sample domain.Sample
}

// ComputeRanking scores every team in every area, derives team percentages
// with the configured ranking method and returns the rows sorted with
// positions assigned.
//
// Teams are ranked as given; apply FilterTeams first to restrict the
// field. Configuration errors (negative weights, unknown method tags,
// duplicate area codes, tie-break codes without an area) are reported as a
// *domain.ValidationError before any scoring happens. Missing scoring
// configuration, missing evaluations and non-finite scores are absorbed:
// they yield a zero maximum, an unevaluated area and a Skipped count
// respectively.
func (e *Engine) ComputeRanking(
	teams []domain.Team,
	areas []domain.TournamentArea,
	index domain.EvaluationIndex,
	cfg domain.RankingConfig,
) ([]domain.TeamRanking, error) {
	if err := ValidateRankingInput(areas, cfg, e.opts.Aggregators); err != nil {
		return nil, err
	}

	plans, err := e.plan(areas, cfg)
	if err != nil {
		return nil, err
	}
	order := make([]string, len(plans))
	for i, p := range plans {
		order[i] = p.area.Code
	}

	method := cfg.Method.OrDefault()
	rankings := make([]domain.TeamRanking, 0, len(teams))
	for _, team := range teams {
		r, err := e.assembleTeam(team, plans, index)
		if err != nil {
			return nil, err
		}
		r.Percentage = TeamPercentage(r, order, method)
		rankings = append(rankings, r)
	}

	SortRankings(rankings, cfg.TieBreak)
	return rankings, nil
}

// plan orders areas by Order, keeping input order for equal values, and
// resolves each area's scoring, weight and aggregators.
func (e *Engine) plan(areas []domain.TournamentArea, cfg domain.RankingConfig) ([]areaPlan, error) {
	ordered := slices.Clone(areas)
	slices.SortStableFunc(ordered, func(a, b domain.TournamentArea) int {
		return cmp.Compare(a.Order, b.Order)
	})

	plans := make([]areaPlan, 0, len(ordered))
	for _, a := range ordered {
		agg, err := e.opts.Aggregators.Evaluation(a.AggregationMethod)
		if err != nil {
			return nil, fmt.Errorf("area %s: %w", a.Code, err)
		}
		p := areaPlan{
			area:    a,
			scoring: scoring.ResolveScoring(a, e.opts.Catalog),
			weight:  a.EffectiveWeight(cfg.Weights),
			agg:     agg,
		}
		p.maxScore = scoring.MaxPossibleScore(p.scoring)
		if a.AllowRounds {
			if p.rounds, err = e.opts.Aggregators.Rounds(a.RoundsAggregation); err != nil {
				return nil, fmt.Errorf("area %s: %w", a.Code, err)
			}
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (e *Engine) assembleTeam(team domain.Team, plans []areaPlan, index domain.EvaluationIndex) (domain.TeamRanking, error) {
	grade, shift := displayAttributes(team, e.opts.Normalizer)
	r := domain.TeamRanking{
		Team:       team.Summary(grade, shift),
		AreaScores: make(map[string]domain.AreaScore, len(plans)),
	}

	var total, maxTotal float64
	for _, p := range plans {
		as, err := assembleArea(p, index[domain.TeamAreaKey{TeamID: team.ID, AreaID: p.area.ID}])
		if err != nil {
			return domain.TeamRanking{}, fmt.Errorf("team %s area %s: %w", team.ID, p.area.Code, err)
		}
		maxTotal += p.maxScore * p.weight
		if as.Evaluated {
			total += as.Score * p.weight
		}
		r.AreaScores[p.area.Code] = as
	}
	r.TotalScore = scoring.Round(total, 2)
	r.MaxPossibleScore = scoring.Round(maxTotal, 2)
	return r, nil
}

// assembleArea aggregates one team's evaluations in one area. The score
// and percentage follow the area's aggregation policy while the judge,
// time, breakdown and penalties come from the latest evaluation.
func assembleArea(p areaPlan, evals []domain.Evaluation) (domain.AreaScore, error) {
	as := domain.AreaScore{
		AreaID:            p.area.ID,
		Name:              p.area.Name,
		MaxScore:          p.maxScore,
		Weight:            p.weight,
		AggregationMethod: p.area.AggregationMethod.OrDefault(),
	}

	used := make([]scoredEvaluation, 0, len(evals))
	for _, ev := range evals {
		if !ev.IsActive {
			continue
		}
		if !finiteEvaluation(ev) {
			as.Skipped++
			continue
		}
		round := ev.Round
		if p.rounds != nil {
			if round < 1 {
				round = 1
			}
			if p.area.MaxRounds > 0 && round > p.area.MaxRounds {
				continue
			}
		}
		final := scoring.FinalScore(ev, p.scoring)
		used = append(used, scoredEvaluation{
			ev:    ev,
			round: round,
			sample: domain.Sample{
				Score:       final,
				Percentage:  scoring.Percentage(final, p.maxScore),
				EvaluatedBy: judgeLabel(ev),
				Timestamp:   ev.SubmittedAt,
			},
		})
	}
	if len(used) == 0 {
		return as, nil
	}

	var (
		res domain.Result
		err error
	)
	if p.rounds != nil {
		res, as.Rounds, err = aggregateRounds(p, used)
	} else {
		res, err = p.agg.Aggregate(samplesOf(used))
	}
	if err != nil {
		return domain.AreaScore{}, err
	}

	latest := used[latestIndex(used)].ev
	as.Evaluated = true
	as.Score = res.Score
	as.Percentage = res.Percentage
	as.EvaluationCount = len(used)
	as.EvaluatedBy = judgeLabel(latest)
	as.EvaluationTime = latest.Elapsed()
	as.Breakdown = slices.Clone(latest.Scores)
	as.Penalties = slices.Clone(latest.Penalties)
	return as, nil
}

// aggregateRounds aggregates judges within each round with the area method
// and then combines rounds with the rounds method. Rounds are reported in
// ascending order.
func aggregateRounds(p areaPlan, used []scoredEvaluation) (domain.Result, []domain.RoundScore, error) {
	byRound := make(map[int][]domain.Sample)
	for _, u := range used {
		byRound[u.round] = append(byRound[u.round], u.sample)
	}
	numbers := make([]int, 0, len(byRound))
	for n := range byRound {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	scores := make([]domain.RoundScore, 0, len(numbers))
	samples := make([]domain.RoundSample, 0, len(numbers))
	for _, n := range numbers {
		res, err := p.agg.Aggregate(byRound[n])
		if err != nil {
			return domain.Result{}, nil, fmt.Errorf("round %d: %w", n, err)
		}
		scores = append(scores, domain.RoundScore{
			Round:           n,
			Score:           res.Score,
			Percentage:      res.Percentage,
			EvaluationCount: len(byRound[n]),
		})
		samples = append(samples, domain.RoundSample{Round: n, Score: res.Score, Percentage: res.Percentage})
	}

	res, err := p.rounds.Aggregate(samples)
	if err != nil {
		return domain.Result{}, nil, err
	}
	return res, scores, nil
}

func samplesOf(used []scoredEvaluation) []domain.Sample {
	out := make([]domain.Sample, len(used))
	for i, u := range used {
		out[i] = u.sample
	}
	return out
}

// latestIndex returns the index of the most recent evaluation; the first
// of equal timestamps wins.
func latestIndex(used []scoredEvaluation) int {
	latest := 0
	for i := 1; i < len(used); i++ {
		if used[i].ev.SubmittedAt.After(used[latest].ev.SubmittedAt) {
			latest = i
		}
	}
	return latest
}

func finiteEvaluation(ev domain.Evaluation) bool {
	for _, s := range ev.Scores {
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) {
			return false
		}
	}
	for _, p := range ev.Penalties {
		if math.IsNaN(p.Points) || math.IsInf(p.Points, 0) {
			return false
		}
	}
	return true
}

func judgeLabel(ev domain.Evaluation) string {
	if ev.JudgeName != "" {
		return ev.JudgeName
	}
	return ev.JudgeID
}
