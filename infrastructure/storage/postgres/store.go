// Package postgres implements the tournament and evaluation stores on
// Postgres through bun.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/ahrav/go-standings/infrastructure/storage/postgres/migrations"
	"github.com/ahrav/go-standings/internal/domain"
	"github.com/ahrav/go-standings/internal/ports"
)

// Store implements ports.TournamentStore and ports.EvaluationStore.
type Store struct {
	db *bun.DB
}

var (
	_ ports.TournamentStore = (*Store)(nil)
	_ ports.EvaluationStore = (*Store)(nil)
)

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, ports.NewStoreError("open", "postgres", fmt.Errorf("%w: %v", ports.ErrStoreUnavailable, err))
	}
	return New(bun.NewDB(sqldb, pgdialect.New())), nil
}

// New wraps an existing bun database.
func New(db *bun.DB) *Store {
	db.RegisterModel((*TournamentModel)(nil), (*AreaModel)(nil), (*TeamModel)(nil), (*EvaluationModel)(nil))
	return &Store{db: db}
}

// DB returns the underlying bun database.
func (s *Store) DB() *bun.DB { return s.db }

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the migration tables when missing and applies every
// pending migration. It returns the applied group, empty when the schema
// was already current.
func (s *Store) Migrate(ctx context.Context) (*migrate.MigrationGroup, error) {
	m := migrate.NewMigrator(s.db, migrations.Migrations)
	if err := m.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Lock(ctx); err != nil {
		return nil, fmt.Errorf("lock migrations: %w", err)
	}
	defer func() { _ = m.Unlock(ctx) }()

	group, err := m.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return group, nil
}

// SaveTournament replaces the tournament with its areas and teams in one
// transaction.
func (s *Store) SaveTournament(ctx context.Context, t domain.Tournament) error {
	if t.ID == "" {
		return ports.NewStoreError("save_tournament", "", fmt.Errorf("%w: tournament id is required", domain.ErrInvalidInput))
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		tm := toTournamentModel(t)
		tm.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewInsert().
			Model(tm).
			On("CONFLICT (id) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("ranking = EXCLUDED.ranking").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert tournament: %w", err)
		}

		if _, err := tx.NewDelete().Model((*AreaModel)(nil)).Where("tournament_id = ?", t.ID).Exec(ctx); err != nil {
			return fmt.Errorf("clear areas: %w", err)
		}
		if _, err := tx.NewDelete().Model((*TeamModel)(nil)).Where("tournament_id = ?", t.ID).Exec(ctx); err != nil {
			return fmt.Errorf("clear teams: %w", err)
		}

		if len(t.Areas) > 0 {
			areas := make([]AreaModel, len(t.Areas))
			for i, a := range t.Areas {
				areas[i] = toAreaModel(t.ID, i, a)
			}
			if _, err := tx.NewInsert().Model(&areas).Exec(ctx); err != nil {
				return fmt.Errorf("insert areas: %w", err)
			}
		}
		if len(t.Teams) > 0 {
			teams := make([]TeamModel, len(t.Teams))
			for i, tm := range t.Teams {
				teams[i] = toTeamModel(t.ID, i, tm)
			}
			if _, err := tx.NewInsert().Model(&teams).Exec(ctx); err != nil {
				return fmt.Errorf("insert teams: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return ports.NewStoreError("save_tournament", t.ID, err)
	}
	return nil
}

// Tournament loads a tournament with its areas ordered by Order and its
// teams in roster order.
func (s *Store) Tournament(ctx context.Context, id string) (domain.Tournament, error) {
	tm := new(TournamentModel)
	if err := s.db.NewSelect().Model(tm).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.Tournament{}, ports.NewStoreError("get_tournament", id, notFound(err))
	}

	var areas []AreaModel
	if err := s.db.NewSelect().
		Model(&areas).
		Where("tournament_id = ?", id).
		Order("sort_order ASC", "position ASC").
		Scan(ctx); err != nil {
		return domain.Tournament{}, ports.NewStoreError("get_tournament_areas", id, err)
	}

	var teams []TeamModel
	if err := s.db.NewSelect().
		Model(&teams).
		Where("tournament_id = ?", id).
		Order("position ASC").
		Scan(ctx); err != nil {
		return domain.Tournament{}, ports.NewStoreError("get_tournament_teams", id, err)
	}

	t := domain.Tournament{ID: tm.ID, Name: tm.Name, Ranking: tm.Ranking}
	t.Areas = make([]domain.TournamentArea, 0, len(areas))
	for _, am := range areas {
		a, err := am.toDomain()
		if err != nil {
			return domain.Tournament{}, ports.NewStoreError("get_tournament_areas", id, fmt.Errorf("area %s: %w", am.ID, err))
		}
		t.Areas = append(t.Areas, a)
	}
	t.Teams = make([]domain.Team, len(teams))
	for i, tm := range teams {
		t.Teams[i] = tm.toDomain()
	}
	return t, nil
}

// Upsert inserts the evaluation or bumps the version of the row with the
// same key in a single statement, so concurrent resubmissions never lose
// an increment.
func (s *Store) Upsert(ctx context.Context, ev domain.Evaluation) (domain.Evaluation, error) {
	m := toEvaluationModel(ev)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Version = 1
	m.IsActive = true
	m.SubmittedAt = time.Now().UTC()

	if _, err := s.db.NewInsert().
		Model(m).
		On("CONFLICT (tournament_id, team_id, area_id, judge_id, round) DO UPDATE").
		Set("judge_name = EXCLUDED.judge_name").
		Set("scores = EXCLUDED.scores").
		Set("penalties = EXCLUDED.penalties").
		Set("comments = EXCLUDED.comments").
		Set("elapsed_seconds = EXCLUDED.elapsed_seconds").
		Set("submitted_at = EXCLUDED.submitted_at").
		Set("is_active = TRUE").
		Set("version = ?TableAlias.version + 1").
		Returning("*").
		Exec(ctx); err != nil {
		return domain.Evaluation{}, ports.NewStoreError("upsert_evaluation", ev.Key().String(), err)
	}
	return m.toDomain(), nil
}

// Get returns one evaluation by ID.
func (s *Store) Get(ctx context.Context, id string) (domain.Evaluation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Evaluation{}, ports.NewStoreError("get_evaluation", id, ports.ErrNotFound)
	}
	m := new(EvaluationModel)
	if err := s.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx); err != nil {
		return domain.Evaluation{}, ports.NewStoreError("get_evaluation", id, notFound(err))
	}
	return m.toDomain(), nil
}

// ListByTournament returns every evaluation of a tournament ordered by
// submission time.
func (s *Store) ListByTournament(ctx context.Context, tournamentID string) ([]domain.Evaluation, error) {
	var models []EvaluationModel
	if err := s.db.NewSelect().
		Model(&models).
		Where("tournament_id = ?", tournamentID).
		Order("submitted_at ASC", "id ASC").
		Scan(ctx); err != nil {
		return nil, ports.NewStoreError("list_evaluations", tournamentID, err)
	}
	out := make([]domain.Evaluation, len(models))
	for i, m := range models {
		out[i] = m.toDomain()
	}
	return out, nil
}

// Deactivate marks an evaluation inactive.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ports.NewStoreError("deactivate_evaluation", id, ports.ErrNotFound)
	}
	res, err := s.db.NewUpdate().
		Model((*EvaluationModel)(nil)).
		Set("is_active = FALSE").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return ports.NewStoreError("deactivate_evaluation", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ports.NewStoreError("deactivate_evaluation", id, ports.ErrNotFound)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}
	return err
}
