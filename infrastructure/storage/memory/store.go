// Package memory provides in-process implementations of the storage ports,
// used by the CLI, by tests and for fixtures loaded from snapshot files.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-standings/internal/domain"
	"github.com/ahrav/go-standings/internal/ports"
)

var (
	_ ports.EvaluationStore = (*Store)(nil)
	_ ports.TournamentStore = (*Store)(nil)
)

// Store keeps tournaments and evaluations in memory. It is safe for
// concurrent use. Values are copied on the way in and out so callers never
// share slices with the store.
type Store struct {
	mu          sync.RWMutex
	tournaments map[string]domain.Tournament
	evaluations map[string]domain.Evaluation
	byKey       map[domain.EvaluationKey]string
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tournaments: make(map[string]domain.Tournament),
		evaluations: make(map[string]domain.Evaluation),
		byKey:       make(map[domain.EvaluationKey]string),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromSnapshot creates a store holding the snapshot's tournament and
// evaluations exactly as given, including IDs, versions and timestamps.
// When several evaluations share a key the last one wins.
func NewFromSnapshot(snap domain.Snapshot, opts ...Option) *Store {
	s := New(opts...)
	s.tournaments[snap.Tournament.ID] = cloneTournament(snap.Tournament)
	for _, ev := range snap.Evaluations {
		if old, ok := s.byKey[ev.Key()]; ok {
			delete(s.evaluations, old)
		}
		s.evaluations[ev.ID] = cloneEvaluation(ev)
		s.byKey[ev.Key()] = ev.ID
	}
	return s
}

// SaveTournament implements ports.TournamentWriter.
func (s *Store) SaveTournament(_ context.Context, t domain.Tournament) error {
	if t.ID == "" {
		return ports.NewStoreError("save_tournament", "", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tournaments[t.ID] = cloneTournament(t)
	return nil
}

// Tournament implements ports.TournamentReader. Areas are returned sorted
// by Order.
func (s *Store) Tournament(_ context.Context, id string) (domain.Tournament, error) {
	s.mu.RLock()
	t, ok := s.tournaments[id]
	s.mu.RUnlock()

	if !ok {
		return domain.Tournament{}, ports.NewStoreError("get_tournament", id, ports.ErrNotFound)
	}
	t = cloneTournament(t)
	slices.SortStableFunc(t.Areas, func(a, b domain.TournamentArea) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return t, nil
}

// Upsert implements ports.EvaluationStore. A new key gets a fresh UUID
// unless ev.ID is set, version 1 and the current time; an existing key
// keeps its ID, bumps its version and is reactivated.
func (s *Store) Upsert(_ context.Context, ev domain.Evaluation) (domain.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ev.Key()
	stored := cloneEvaluation(ev)
	stored.IsActive = true
	stored.SubmittedAt = s.now().UTC()

	if id, ok := s.byKey[key]; ok {
		prev := s.evaluations[id]
		stored.ID = prev.ID
		stored.Version = prev.Version + 1
	} else {
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		} else if _, taken := s.evaluations[stored.ID]; taken {
			return domain.Evaluation{}, ports.NewStoreError("upsert_evaluation", stored.ID, domain.ErrInvalidInput)
		}
		stored.Version = 1
	}

	s.evaluations[stored.ID] = stored
	s.byKey[key] = stored.ID
	return cloneEvaluation(stored), nil
}

// Get implements ports.EvaluationStore.
func (s *Store) Get(_ context.Context, id string) (domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.evaluations[id]
	if !ok {
		return domain.Evaluation{}, ports.NewStoreError("get_evaluation", id, ports.ErrNotFound)
	}
	return cloneEvaluation(ev), nil
}

// ListByTournament implements ports.EvaluationStore. Evaluations are
// ordered by submission time, then ID.
func (s *Store) ListByTournament(_ context.Context, tournamentID string) ([]domain.Evaluation, error) {
	s.mu.RLock()
	out := make([]domain.Evaluation, 0, len(s.evaluations))
	for _, ev := range s.evaluations {
		if ev.TournamentID == tournamentID {
			out = append(out, cloneEvaluation(ev))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Evaluation) int {
		if c := a.SubmittedAt.Compare(b.SubmittedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Deactivate implements ports.EvaluationStore.
func (s *Store) Deactivate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.evaluations[id]
	if !ok {
		return ports.NewStoreError("deactivate_evaluation", id, ports.ErrNotFound)
	}
	ev.IsActive = false
	s.evaluations[id] = ev
	return nil
}

// Snapshot returns the tournament and all of its evaluations.
func (s *Store) Snapshot(ctx context.Context, tournamentID string) (domain.Snapshot, error) {
	t, err := s.Tournament(ctx, tournamentID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	evals, err := s.ListByTournament(ctx, tournamentID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{Tournament: t, Evaluations: evals}, nil
}

func cloneEvaluation(ev domain.Evaluation) domain.Evaluation {
	ev.Scores = slices.Clone(ev.Scores)
	ev.Penalties = slices.Clone(ev.Penalties)
	return ev
}

// cloneTournament copies the slices and maps a caller could mutate. Scoring
// configurations are treated as immutable values.
func cloneTournament(t domain.Tournament) domain.Tournament {
	t.Areas = slices.Clone(t.Areas)
	t.Teams = slices.Clone(t.Teams)
	t.Ranking.TieBreak = slices.Clone(t.Ranking.TieBreak)
	t.Ranking.Weights = maps.Clone(t.Ranking.Weights)
	return t
}
