// Package domain contains pure, dependency-free domain models and types
// for the tournament scoring and ranking engine.
package domain

// Metadata keys consulted when a team's dedicated grade or shift field is
// empty. Imported rosters keep the label they arrived with under the
// "original" keys.
const (
	MetaGrade         = "grade"
	MetaShift         = "shift"
	MetaOriginalGrade = "originalGrade"
	MetaOriginalShift = "originalShift"
)

// Team is a school team competing in one or more tournaments.
type Team struct {
	// ID uniquely identifies the team.
	ID string `json:"id" yaml:"id"`

	// Name is the display name.
	Name string `json:"name" yaml:"name"`

	// Code is an optional short code printed on score sheets.
	Code string `json:"code,omitempty" yaml:"code,omitempty"`

	// SchoolID links the team to its school.
	SchoolID string `json:"school_id,omitempty" yaml:"school_id,omitempty"`

	// Grade is the free-text school grade ("2º ano", "1 EM", ...).
	Grade string `json:"grade,omitempty" yaml:"grade,omitempty"`

	// Shift is the free-text school shift ("Manhã", "morning", ...).
	Shift string `json:"shift,omitempty" yaml:"shift,omitempty"`

	// Metadata is the loosely typed bag imported rosters carry. See the
	// Meta* keys for the entries the ranking engine reads.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// TeamSummary is the slice of a Team that travels with a ranking row.
type TeamSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	SchoolID string `json:"school_id,omitempty"`
	Grade    string `json:"grade,omitempty"`
	Shift    string `json:"shift,omitempty"`
}

// Summary returns the TeamSummary for t. Grade and shift are supplied by
// the caller because they come from the attribute resolver, not the raw
// fields.
func (t Team) Summary(grade, shift string) TeamSummary {
	return TeamSummary{
		ID:       t.ID,
		Name:     t.Name,
		Code:     t.Code,
		SchoolID: t.SchoolID,
		Grade:    grade,
		Shift:    shift,
	}
}
