package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-standings/infrastructure/scoring"
	"github.com/ahrav/go-standings/internal/domain"
	"github.com/ahrav/go-standings/internal/ports"
)

// SubmitRequest is one judge's evaluation of a team in an area.
type SubmitRequest struct {
	TournamentID   string              `json:"tournament_id" validate:"required"`
	TeamID         string              `json:"team_id" validate:"required"`
	AreaID         string              `json:"area_id" validate:"required"`
	JudgeID        string              `json:"judge_id" validate:"required"`
	JudgeName      string              `json:"judge_name,omitempty" validate:"max=200"`
	Round          int                 `json:"round,omitempty" validate:"min=0"`
	Scores         []domain.ScoreEntry `json:"scores" validate:"required,min=1"`
	Penalties      []domain.Penalty    `json:"penalties,omitempty"`
	Comments       string              `json:"comments,omitempty" validate:"max=4000"`
	ElapsedSeconds int                 `json:"elapsed_seconds,omitempty" validate:"min=0"`
}

func (r SubmitRequest) evaluation() domain.Evaluation {
	return domain.Evaluation{
		TournamentID:   r.TournamentID,
		TeamID:         r.TeamID,
		AreaID:         r.AreaID,
		JudgeID:        r.JudgeID,
		JudgeName:      r.JudgeName,
		Round:          r.Round,
		Scores:         r.Scores,
		Penalties:      r.Penalties,
		Comments:       r.Comments,
		ElapsedSeconds: r.ElapsedSeconds,
		IsActive:       true,
	}
}

// SubmissionService validates judge evaluations against their area and
// stores them. Resubmitting the same (tournament, team, area, judge,
// round) replaces the stored row and bumps its version.
type SubmissionService struct {
	tournaments ports.TournamentReader
	evaluations ports.EvaluationStore
	validator   *validator.Validate
	logger      zerolog.Logger
	observer    ports.Observer

	limit    rate.Limit
	burst    int
	limitMu  sync.Mutex
	limiters map[string]*rate.Limiter

	keys keyedMutex
}

// SubmissionServiceOption configures a SubmissionService.
type SubmissionServiceOption func(*SubmissionService)

// WithSubmissionLogger sets the service logger.
func WithSubmissionLogger(l zerolog.Logger) SubmissionServiceOption {
	return func(s *SubmissionService) { s.logger = l }
}

// WithSubmissionObserver sets the lifecycle observer.
func WithSubmissionObserver(o ports.Observer) SubmissionServiceOption {
	return func(s *SubmissionService) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithJudgeRateLimit limits each judge to perSecond sustained submissions
// with the given burst. A non-positive rate disables limiting.
func WithJudgeRateLimit(perSecond float64, burst int) SubmissionServiceOption {
	return func(s *SubmissionService) {
		if perSecond <= 0 {
			s.limit = rate.Inf
			return
		}
		s.limit = rate.Limit(perSecond)
		s.burst = max(burst, 1)
	}
}

// NewSubmissionService creates a SubmissionService without rate limiting.
func NewSubmissionService(
	tournaments ports.TournamentReader,
	evaluations ports.EvaluationStore,
	opts ...SubmissionServiceOption,
) *SubmissionService {
	s := &SubmissionService{
		tournaments: tournaments,
		evaluations: evaluations,
		validator:   validator.New(),
		logger:      zerolog.Nop(),
		observer:    ports.NoopObserver{},
		limit:       rate.Inf,
		limiters:    make(map[string]*rate.Limiter),
		keys:        keyedMutex{locks: make(map[string]*keyLock)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates req and upserts it. The stored evaluation is returned
// with its ID, version and submission time.
//
// Errors wrap domain.ErrInvalidInput for malformed requests,
// ports.ErrNotFound for an unknown tournament, team or area and
// ports.ErrRateLimited when the judge submits too fast.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (stored domain.Evaluation, err error) {
	start := time.Now()
	ctx = s.observer.SubmissionStarted(ctx, req.TournamentID)
	defer func() {
		s.observer.SubmissionFinished(ctx, ports.SubmissionSummary{
			TournamentID: req.TournamentID,
			AreaID:       req.AreaID,
			JudgeID:      req.JudgeID,
			Round:        req.Round,
			Version:      stored.Version,
			Elapsed:      time.Since(start),
		}, err)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("tournament_id", req.TournamentID).
				Str("team_id", req.TeamID).
				Str("area_id", req.AreaID).
				Str("judge_id", req.JudgeID).
				Msg("submission rejected")
		}
	}()

	if err := s.validator.Struct(req); err != nil {
		return domain.Evaluation{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !s.allow(req.JudgeID) {
		return domain.Evaluation{}, fmt.Errorf("judge %s: %w", req.JudgeID, ports.ErrRateLimited)
	}

	t, err := s.tournaments.Tournament(ctx, req.TournamentID)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("load tournament %s: %w", req.TournamentID, err)
	}
	if !t.HasTeam(req.TeamID) {
		return domain.Evaluation{}, fmt.Errorf("team %s in tournament %s: %w", req.TeamID, req.TournamentID, ports.ErrNotFound)
	}
	area, ok := t.Area(req.AreaID)
	if !ok {
		return domain.Evaluation{}, fmt.Errorf("area %s in tournament %s: %w", req.AreaID, req.TournamentID, ports.ErrNotFound)
	}
	if err := ValidateSubmission(area, req); err != nil {
		return domain.Evaluation{}, err
	}

	ev := req.evaluation()
	unlock := s.keys.Lock(ev.Key().String())
	defer unlock()

	stored, err = s.evaluations.Upsert(ctx, ev)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("store evaluation %s: %w", ev.Key(), err)
	}

	s.logger.Info().
		Str("evaluation_id", stored.ID).
		Str("key", ev.Key().String()).
		Int("version", stored.Version).
		Msg("evaluation stored")
	return stored, nil
}

// Deactivate excludes an evaluation from rankings without deleting it.
func (s *SubmissionService) Deactivate(ctx context.Context, evaluationID string) error {
	if strings.TrimSpace(evaluationID) == "" {
		return fmt.Errorf("%w: evaluation id is required", domain.ErrInvalidInput)
	}
	if err := s.evaluations.Deactivate(ctx, evaluationID); err != nil {
		return fmt.Errorf("deactivate evaluation %s: %w", evaluationID, err)
	}
	s.logger.Info().Str("evaluation_id", evaluationID).Msg("evaluation deactivated")
	return nil
}

// ValidateSubmission checks a request against the area it targets: entry
// kinds fit the scoring type, entries reference known criteria and
// missions when the area carries its own scoring, penalties are finite
// deductions of a known type, and the round fits the area's round policy.
func ValidateSubmission(area domain.TournamentArea, req SubmitRequest) error {
	if err := scoring.ValidateEntries(req.Scores, area.ScoringType); err != nil {
		return fmt.Errorf("area %s: %w", area.Code, err)
	}

	var errs []error
	if area.Scoring != nil {
		criteria, missions := referenceIDs(area.Scoring)
		for i, e := range req.Scores {
			known := criteria
			if e.Kind == domain.EntryPerformance {
				known = missions
			}
			if _, ok := known[e.RefID]; !ok {
				errs = append(errs, fmt.Errorf("entry %d references unknown %s %q", i, e.Kind, e.RefID))
			}
		}
	}

	penaltyTypes := make(map[string]struct{})
	for _, pt := range domain.PenaltyTypesOf(area.Scoring) {
		penaltyTypes[pt.Type] = struct{}{}
	}
	for i, p := range req.Penalties {
		if strings.TrimSpace(p.Type) == "" {
			errs = append(errs, fmt.Errorf("penalty %d has no type", i))
		} else if _, ok := penaltyTypes[p.Type]; len(penaltyTypes) > 0 && !ok {
			errs = append(errs, fmt.Errorf("penalty %d has unknown type %q", i, p.Type))
		}
		if math.IsNaN(p.Points) || math.IsInf(p.Points, 0) || p.Points > 0 {
			errs = append(errs, fmt.Errorf("penalty %d points must be a finite deduction, got %v", i, p.Points))
		}
	}

	switch {
	case !area.AllowRounds && req.Round != 0:
		errs = append(errs, fmt.Errorf("area does not allow rounds, got round %d", req.Round))
	case area.AllowRounds && req.Round < 1:
		errs = append(errs, errors.New("round is required"))
	case area.AllowRounds && area.MaxRounds > 0 && req.Round > area.MaxRounds:
		errs = append(errs, fmt.Errorf("round %d exceeds max rounds %d", req.Round, area.MaxRounds))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: area %s: %w", domain.ErrInvalidInput, area.Code, errors.Join(errs...))
	}
	return nil
}

func referenceIDs(cfg domain.ScoringConfig) (criteria, missions map[string]struct{}) {
	criteria = make(map[string]struct{})
	missions = make(map[string]struct{})
	r, p := domain.SplitScoringConfig(cfg)
	if r != nil {
		for _, c := range r.Criteria {
			criteria[c.ID] = struct{}{}
		}
	}
	if p != nil {
		for _, m := range p.Missions {
			missions[m.ID] = struct{}{}
		}
	}
	return criteria, missions
}

func (s *SubmissionService) allow(judgeID string) bool {
	if s.limit == rate.Inf {
		return true
	}
	s.limitMu.Lock()
	l, ok := s.limiters[judgeID]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[judgeID] = l
	}
	s.limitMu.Unlock()
	return l.Allow()
}

// keyedMutex serializes work per string key. Entries are removed when
// their last holder unlocks.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu      sync.Mutex
	waiters int
}

// Lock acquires the lock for key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.waiters++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.waiters--
		if l.waiters == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
