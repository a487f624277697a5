package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntryKind discriminates rubric score entries from performance ones.
type EntryKind string

// Supported score entry kinds.
const (
	EntryRubric      EntryKind = "rubric"
	EntryPerformance EntryKind = "performance"
)

// ScoreEntry is one scored line of an evaluation: a criterion score for
// rubric areas or a mission score for performance areas. Construct entries
// with RubricScore or PerformanceScore.
type ScoreEntry struct {
	Kind EntryKind

	// RefID is the criterion ID for rubric entries and the mission ID for
	// performance entries.
	RefID string

	Score float64
}

// RubricScore returns a rubric entry for the given criterion.
func RubricScore(criterionID string, score float64) ScoreEntry {
	return ScoreEntry{Kind: EntryRubric, RefID: criterionID, Score: score}
}

// PerformanceScore returns a performance entry for the given mission.
func PerformanceScore(missionID string, score float64) ScoreEntry {
	return ScoreEntry{Kind: EntryPerformance, RefID: missionID, Score: score}
}

type scoreEntryWire struct {
	CriterionID string  `json:"criterion_id,omitempty"`
	MissionID   string  `json:"mission_id,omitempty"`
	Score       float64 `json:"score"`
}

// MarshalJSON writes rubric entries as {criterion_id, score} and
// performance entries as {mission_id, score}.
func (e ScoreEntry) MarshalJSON() ([]byte, error) {
	w := scoreEntryWire{Score: e.Score}
	switch e.Kind {
	case EntryRubric:
		w.CriterionID = e.RefID
	case EntryPerformance:
		w.MissionID = e.RefID
	default:
		return nil, fmt.Errorf("%w: score entry kind %q", ErrInvalidInput, e.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts exactly one of criterion_id or mission_id.
func (e *ScoreEntry) UnmarshalJSON(data []byte) error {
	var w scoreEntryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.CriterionID != "" && w.MissionID != "":
		return fmt.Errorf("%w: score entry has both criterion_id and mission_id", ErrInvalidInput)
	case w.CriterionID != "":
		*e = RubricScore(w.CriterionID, w.Score)
	case w.MissionID != "":
		*e = PerformanceScore(w.MissionID, w.Score)
	default:
		return fmt.Errorf("%w: score entry needs criterion_id or mission_id", ErrInvalidInput)
	}
	return nil
}

// Penalty is a signed deduction attached to an evaluation.
type Penalty struct {
	Type        string  `json:"type"`
	Points      float64 `json:"points"`
	Description string  `json:"description,omitempty"`
}

// Evaluation is one judge's submission for one team in one area,
// optionally scoped to a round.
type Evaluation struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`
	TeamID       string `json:"team_id"`
	AreaID       string `json:"area_id"`
	JudgeID      string `json:"judge_id"`
	JudgeName    string `json:"judge_name,omitempty"`

	// Round is the 1-based round number, or 0 when the submission is not
	// round scoped.
	Round int `json:"round,omitempty"`

	Scores    []ScoreEntry `json:"scores"`
	Penalties []Penalty    `json:"penalties,omitempty"`
	Comments  string       `json:"comments,omitempty"`

	// ElapsedSeconds is how long the judge spent evaluating.
	ElapsedSeconds int `json:"elapsed_seconds,omitempty"`

	// Version starts at 1 and increments on every resubmission of the
	// same key.
	Version int `json:"version"`

	// IsActive false excludes the evaluation from rankings without
	// deleting it.
	IsActive bool `json:"is_active"`

	SubmittedAt time.Time `json:"submitted_at"`
}

// Key returns the uniqueness key of the evaluation.
func (e Evaluation) Key() EvaluationKey {
	return EvaluationKey{
		TournamentID: e.TournamentID,
		TeamID:       e.TeamID,
		AreaID:       e.AreaID,
		JudgeID:      e.JudgeID,
		Round:        e.Round,
	}
}

// Elapsed returns ElapsedSeconds as a duration.
func (e Evaluation) Elapsed() time.Duration {
	return time.Duration(e.ElapsedSeconds) * time.Second
}

// EvaluationKey identifies the single stored row a judge owns for a team,
// area and round.
type EvaluationKey struct {
	TournamentID string
	TeamID       string
	AreaID       string
	JudgeID      string
	Round        int
}

// String renders the key for logs and lock maps.
func (k EvaluationKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%d", k.TournamentID, k.TeamID, k.AreaID, k.JudgeID, k.Round)
}

// TeamAreaKey groups evaluations of one team in one area.
type TeamAreaKey struct {
	TeamID string
	AreaID string
}

// EvaluationIndex maps (team, area) to every evaluation recorded for it.
type EvaluationIndex map[TeamAreaKey][]Evaluation

// IndexEvaluations groups evaluations by team and area. Inactive
// evaluations are kept; the ranking engine skips them.
func IndexEvaluations(evals []Evaluation) EvaluationIndex {
	idx := make(EvaluationIndex)
	for _, ev := range evals {
		k := TeamAreaKey{TeamID: ev.TeamID, AreaID: ev.AreaID}
		idx[k] = append(idx[k], ev)
	}
	return idx
}
