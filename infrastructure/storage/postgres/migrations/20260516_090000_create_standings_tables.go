package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Table snapshots as of this migration. Later schema changes get their own
// snapshot structs.

type tournamentV20260516 struct {
	bun.BaseModel `bun:"table:tournaments"`

	ID        string    `bun:"id,pk,type:varchar(64)"`
	Name      string    `bun:"name,notnull"`
	Ranking   []byte    `bun:"ranking,type:jsonb,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type areaV20260516 struct {
	bun.BaseModel `bun:"table:tournament_areas"`

	TournamentID      string  `bun:"tournament_id,pk,type:varchar(64)"`
	ID                string  `bun:"id,pk,type:varchar(64)"`
	Code              string  `bun:"code,notnull"`
	Name              string  `bun:"name,notnull"`
	SortOrder         int     `bun:"sort_order,notnull,default:0"`
	Position          int     `bun:"position,notnull,default:0"`
	ScoringType       string  `bun:"scoring_type,notnull"`
	Weight            float64 `bun:"weight,notnull,default:1"`
	AggregationMethod string  `bun:"aggregation_method,notnull,default:''"`
	AllowRounds       bool    `bun:"allow_rounds,notnull,default:false"`
	MaxRounds         int     `bun:"max_rounds,notnull,default:0"`
	RoundsAggregation string  `bun:"rounds_aggregation,notnull,default:''"`
	Scoring           []byte  `bun:"scoring,type:jsonb"`
}

type teamV20260516 struct {
	bun.BaseModel `bun:"table:teams"`

	TournamentID string `bun:"tournament_id,pk,type:varchar(64)"`
	ID           string `bun:"id,pk,type:varchar(64)"`
	Position     int    `bun:"position,notnull,default:0"`
	Name         string `bun:"name,notnull"`
	Code         string `bun:"code,notnull,default:''"`
	SchoolID     string `bun:"school_id,notnull,default:''"`
	Grade        string `bun:"grade,notnull,default:''"`
	Shift        string `bun:"shift,notnull,default:''"`
	Metadata     []byte `bun:"metadata,type:jsonb"`
}

type evaluationV20260516 struct {
	bun.BaseModel `bun:"table:evaluations"`

	ID             string    `bun:"id,pk,type:uuid"`
	TournamentID   string    `bun:"tournament_id,notnull,type:varchar(64)"`
	TeamID         string    `bun:"team_id,notnull,type:varchar(64)"`
	AreaID         string    `bun:"area_id,notnull,type:varchar(64)"`
	JudgeID        string    `bun:"judge_id,notnull,type:varchar(64)"`
	JudgeName      string    `bun:"judge_name,notnull,default:''"`
	Round          int       `bun:"round,notnull,default:0"`
	Scores         []byte    `bun:"scores,type:jsonb,notnull"`
	Penalties      []byte    `bun:"penalties,type:jsonb"`
	Comments       string    `bun:"comments,notnull,default:''"`
	ElapsedSeconds int       `bun:"elapsed_seconds,notnull,default:0"`
	Version        int       `bun:"version,notnull,default:1"`
	IsActive       bool      `bun:"is_active,notnull,default:true"`
	SubmittedAt    time.Time `bun:"submitted_at,notnull,default:current_timestamp"`
}

func init() {
	Migrations.MustRegister(createStandingsTables, dropStandingsTables)
}

func createStandingsTables(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		models := []any{
			(*tournamentV20260516)(nil),
			(*areaV20260516)(nil),
			(*teamV20260516)(nil),
			(*evaluationV20260516)(nil),
		}
		for _, m := range models {
			if _, err := tx.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("create table for %T: %w", m, err)
			}
		}

		if _, err := tx.NewCreateIndex().
			Model((*evaluationV20260516)(nil)).
			Index("evaluations_key_idx").
			Unique().
			IfNotExists().
			Column("tournament_id", "team_id", "area_id", "judge_id", "round").
			Exec(ctx); err != nil {
			return fmt.Errorf("create evaluations key index: %w", err)
		}
		if _, err := tx.NewCreateIndex().
			Model((*evaluationV20260516)(nil)).
			Index("evaluations_tournament_submitted_idx").
			IfNotExists().
			Column("tournament_id", "submitted_at").
			Exec(ctx); err != nil {
			return fmt.Errorf("create evaluations tournament index: %w", err)
		}
		return nil
	})
}

func dropStandingsTables(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*evaluationV20260516)(nil),
		(*teamV20260516)(nil),
		(*areaV20260516)(nil),
		(*tournamentV20260516)(nil),
	}
	for _, m := range models {
		if _, err := db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("drop table for %T: %w", m, err)
		}
	}
	return nil
}
