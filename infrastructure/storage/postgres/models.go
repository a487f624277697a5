package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/ahrav/go-standings/internal/domain"
)

// TournamentModel is a row of the tournaments table.
type TournamentModel struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID        string               `bun:"id,pk,type:varchar(64)"`
	Name      string               `bun:"name,notnull"`
	Ranking   domain.RankingConfig `bun:"ranking,type:jsonb,notnull"`
	CreatedAt time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// AreaModel is a row of the tournament_areas table.
type AreaModel struct {
	bun.BaseModel `bun:"table:tournament_areas,alias:a"`

	TournamentID      string                  `bun:"tournament_id,pk,type:varchar(64)"`
	ID                string                  `bun:"id,pk,type:varchar(64)"`
	Code              string                  `bun:"code,notnull"`
	Name              string                  `bun:"name,notnull"`
	SortOrder         int                     `bun:"sort_order,notnull,default:0"`
	Position          int                     `bun:"position,notnull,default:0"`
	ScoringType       string                  `bun:"scoring_type,notnull"`
	Weight            float64                 `bun:"weight,notnull,default:1"`
	AggregationMethod string                  `bun:"aggregation_method,notnull,default:''"`
	AllowRounds       bool                    `bun:"allow_rounds,notnull,default:false"`
	MaxRounds         int                     `bun:"max_rounds,notnull,default:0"`
	RoundsAggregation string                  `bun:"rounds_aggregation,notnull,default:''"`
	Scoring           *domain.ScoringDocument `bun:"scoring,type:jsonb"`
}

// TeamModel is a row of the teams table.
type TeamModel struct {
	bun.BaseModel `bun:"table:teams,alias:tm"`

	TournamentID string            `bun:"tournament_id,pk,type:varchar(64)"`
	ID           string            `bun:"id,pk,type:varchar(64)"`
	Position     int               `bun:"position,notnull,default:0"`
	Name         string            `bun:"name,notnull"`
	Code         string            `bun:"code,notnull,default:''"`
	SchoolID     string            `bun:"school_id,notnull,default:''"`
	Grade        string            `bun:"grade,notnull,default:''"`
	Shift        string            `bun:"shift,notnull,default:''"`
	Metadata     map[string]string `bun:"metadata,type:jsonb"`
}

// EvaluationModel is a row of the evaluations table. The columns
// (tournament_id, team_id, area_id, judge_id, round) are unique.
type EvaluationModel struct {
	bun.BaseModel `bun:"table:evaluations,alias:ev"`

	ID             string              `bun:"id,pk,type:uuid"`
	TournamentID   string              `bun:"tournament_id,notnull,type:varchar(64)"`
	TeamID         string              `bun:"team_id,notnull,type:varchar(64)"`
	AreaID         string              `bun:"area_id,notnull,type:varchar(64)"`
	JudgeID        string              `bun:"judge_id,notnull,type:varchar(64)"`
	JudgeName      string              `bun:"judge_name,notnull,default:''"`
	Round          int                 `bun:"round,notnull,default:0"`
	Scores         []domain.ScoreEntry `bun:"scores,type:jsonb,notnull"`
	Penalties      []domain.Penalty    `bun:"penalties,type:jsonb"`
	Comments       string              `bun:"comments,notnull,default:''"`
	ElapsedSeconds int                 `bun:"elapsed_seconds,notnull,default:0"`
	Version        int                 `bun:"version,notnull,default:1"`
	IsActive       bool                `bun:"is_active,notnull,default:true"`
	SubmittedAt    time.Time           `bun:"submitted_at,notnull,default:current_timestamp"`
}

func toTournamentModel(t domain.Tournament) *TournamentModel {
	return &TournamentModel{ID: t.ID, Name: t.Name, Ranking: t.Ranking}
}

func toAreaModel(tournamentID string, position int, a domain.TournamentArea) AreaModel {
	m := AreaModel{
		TournamentID:      tournamentID,
		ID:                a.ID,
		Code:              a.Code,
		Name:              a.Name,
		SortOrder:         a.Order,
		Position:          position,
		ScoringType:       string(a.ScoringType),
		Weight:            a.Weight,
		AggregationMethod: string(a.AggregationMethod),
		AllowRounds:       a.AllowRounds,
		MaxRounds:         a.MaxRounds,
		RoundsAggregation: string(a.RoundsAggregation),
	}
	if a.Scoring != nil {
		doc := domain.DocumentOf(a.Scoring)
		m.Scoring = &doc
	}
	return m
}

func (m AreaModel) toDomain() (domain.TournamentArea, error) {
	a := domain.TournamentArea{
		ID:                m.ID,
		TournamentID:      m.TournamentID,
		Code:              m.Code,
		Name:              m.Name,
		Order:             m.SortOrder,
		ScoringType:       domain.ScoringType(m.ScoringType),
		Weight:            m.Weight,
		AggregationMethod: domain.AggregationMethod(m.AggregationMethod),
		AllowRounds:       m.AllowRounds,
		MaxRounds:         m.MaxRounds,
		RoundsAggregation: domain.RoundsAggregation(m.RoundsAggregation),
	}
	if m.Scoring != nil {
		cfg, err := m.Scoring.Config(a.ScoringType)
		if err != nil {
			return domain.TournamentArea{}, err
		}
		a.Scoring = cfg
	}
	return a, nil
}

func toTeamModel(tournamentID string, position int, t domain.Team) TeamModel {
	return TeamModel{
		TournamentID: tournamentID,
		ID:           t.ID,
		Position:     position,
		Name:         t.Name,
		Code:         t.Code,
		SchoolID:     t.SchoolID,
		Grade:        t.Grade,
		Shift:        t.Shift,
		Metadata:     t.Metadata,
	}
}

func (m TeamModel) toDomain() domain.Team {
	return domain.Team{
		ID:       m.ID,
		Name:     m.Name,
		Code:     m.Code,
		SchoolID: m.SchoolID,
		Grade:    m.Grade,
		Shift:    m.Shift,
		Metadata: m.Metadata,
	}
}

func toEvaluationModel(ev domain.Evaluation) *EvaluationModel {
	return &EvaluationModel{
		ID:             ev.ID,
		TournamentID:   ev.TournamentID,
		TeamID:         ev.TeamID,
		AreaID:         ev.AreaID,
		JudgeID:        ev.JudgeID,
		JudgeName:      ev.JudgeName,
		Round:          ev.Round,
		Scores:         ev.Scores,
		Penalties:      ev.Penalties,
		Comments:       ev.Comments,
		ElapsedSeconds: ev.ElapsedSeconds,
		Version:        ev.Version,
		IsActive:       ev.IsActive,
		SubmittedAt:    ev.SubmittedAt,
	}
}

func (m EvaluationModel) toDomain() domain.Evaluation {
	return domain.Evaluation{
		ID:             m.ID,
		TournamentID:   m.TournamentID,
		TeamID:         m.TeamID,
		AreaID:         m.AreaID,
		JudgeID:        m.JudgeID,
		JudgeName:      m.JudgeName,
		Round:          m.Round,
		Scores:         m.Scores,
		Penalties:      m.Penalties,
		Comments:       m.Comments,
		ElapsedSeconds: m.ElapsedSeconds,
		Version:        m.Version,
		IsActive:       m.IsActive,
		SubmittedAt:    m.SubmittedAt.UTC(),
	}
}
