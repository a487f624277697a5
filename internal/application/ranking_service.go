package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ahrav/go-standings/internal/domain"
	"github.com/ahrav/go-standings/internal/ports"
)

// RankingResult is a computed leaderboard together with what produced it.
type RankingResult struct {
	TournamentID   string               `json:"tournament_id"`
	TournamentName string               `json:"tournament_name,omitempty"`
	Filter         FilterOptions        `json:"filter"`
	Rankings       []domain.TeamRanking `json:"rankings"`

	// Skipped totals the evaluations dropped for non-finite values across
	// every row.
	Skipped int `json:"skipped,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// RankSnapshot filters the snapshot's teams and ranks them with engine.
// Evaluations of other tournaments in the snapshot are ignored.
func RankSnapshot(engine *Engine, snap domain.Snapshot, filter FilterOptions) (RankingResult, error) {
	t := snap.Tournament
	evals := make([]domain.Evaluation, 0, len(snap.Evaluations))
	for _, ev := range snap.Evaluations {
		if ev.TournamentID == "" || ev.TournamentID == t.ID {
			evals = append(evals, ev)
		}
	}

	teams := FilterTeams(t.Teams, filter, engine.Options().Normalizer)
	rankings, err := engine.ComputeRanking(teams, t.Areas, domain.IndexEvaluations(evals), t.Ranking)
	if err != nil {
		return RankingResult{}, fmt.Errorf("rank tournament %s: %w", t.ID, err)
	}

	res := RankingResult{
		TournamentID:   t.ID,
		TournamentName: t.Name,
		Filter:         filter,
		Rankings:       rankings,
		GeneratedAt:    time.Now().UTC(),
	}
	for _, r := range rankings {
		for _, as := range r.AreaScores {
			res.Skipped += as.Skipped
		}
	}
	return res, nil
}

// RankingService serves leaderboards read from the stores. It is safe for
// concurrent use.
type RankingService struct {
	tournaments ports.TournamentReader
	evaluations ports.EvaluationStore
	engine      *Engine
	logger      zerolog.Logger
	observer    ports.Observer

	group singleflight.Group
}

// RankingServiceOption configures a RankingService.
type RankingServiceOption func(*RankingService)

// WithRankingLogger sets the service logger.
func WithRankingLogger(l zerolog.Logger) RankingServiceOption {
	return func(s *RankingService) { s.logger = l }
}

// WithRankingObserver sets the lifecycle observer.
func WithRankingObserver(o ports.Observer) RankingServiceOption {
	return func(s *RankingService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewRankingService creates a RankingService. A nil engine uses
// NewEngine(DefaultOptions()).
func NewRankingService(
	tournaments ports.TournamentReader,
	evaluations ports.EvaluationStore,
	engine *Engine,
	opts ...RankingServiceOption,
) *RankingService {
	if engine == nil {
		engine = NewEngine(DefaultOptions())
	}
	s := &RankingService{
		tournaments: tournaments,
		evaluations: evaluations,
		engine:      engine,
		logger:      zerolog.Nop(),
		observer:    ports.NoopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ranking computes the leaderboard of a tournament restricted by filter.
//
// The tournament and its evaluations are read concurrently. Identical
// concurrent requests share one computation and therefore one result,
// which callers must treat as read-only. Nothing is cached once the call
// returns.
//
// The shared computation runs detached from any single caller's
// cancellation. A caller whose ctx ends stops waiting and gets ctx.Err()
// while the others still receive the result.
func (s *RankingService) Ranking(ctx context.Context, tournamentID string, filter FilterOptions) (RankingResult, error) {
	key := tournamentID + "\x00" + filter.Shift + "\x00" + filter.Grade
	ch := s.group.DoChan(key, func() (any, error) {
		return s.compute(context.WithoutCancel(ctx), tournamentID, filter)
	})

	select {
	case <-ctx.Done():
		return RankingResult{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return RankingResult{}, r.Err
		}
		if r.Shared {
			s.logger.Debug().Str("tournament_id", tournamentID).Msg("ranking shared with concurrent request")
		}
		return r.Val.(RankingResult), nil
	}
}

func (s *RankingService) compute(ctx context.Context, tournamentID string, filter FilterOptions) (res RankingResult, err error) {
	start := time.Now()
	ctx = s.observer.RankingStarted(ctx, tournamentID)
	summary := ports.RankingSummary{TournamentID: tournamentID, Filtered: !filter.IsZero()}
	defer func() {
		summary.Elapsed = time.Since(start)
		s.observer.RankingFinished(ctx, summary, err)
		if err != nil {
			s.logger.Error().Err(err).Str("tournament_id", tournamentID).Msg("ranking failed")
		}
	}()

	snap, err := s.snapshot(ctx, tournamentID)
	if err != nil {
		return RankingResult{}, err
	}

	res, err = RankSnapshot(s.engine, snap, filter)
	if err != nil {
		return RankingResult{}, err
	}

	summary.Teams = len(res.Rankings)
	summary.Areas = len(snap.Tournament.Areas)
	summary.Evaluations = len(snap.Evaluations)
	summary.Skipped = res.Skipped
	summary.Percentages = make([]float64, len(res.Rankings))
	for i, r := range res.Rankings {
		summary.Percentages[i] = r.Percentage
	}

	s.logger.Info().
		Str("tournament_id", tournamentID).
		Int("teams", summary.Teams).
		Int("areas", summary.Areas).
		Int("evaluations", summary.Evaluations).
		Int("skipped", summary.Skipped).
		Str("shift", filter.Shift).
		Str("grade", filter.Grade).
		Dur("duration", time.Since(start)).
		Msg("ranking computed")
	return res, nil
}

// snapshot reads the tournament and its evaluations concurrently.
func (s *RankingService) snapshot(ctx context.Context, tournamentID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournaments.Tournament(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("load tournament %s: %w", tournamentID, err)
		}
		snap.Tournament = t
		return nil
	})
	g.Go(func() error {
		evals, err := s.evaluations.ListByTournament(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("load evaluations of %s: %w", tournamentID, err)
		}
		snap.Evaluations = evals
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}
