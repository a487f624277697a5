package domain

import "slices"

// Tournament is a competition definition: its areas, enrolled teams and
// ranking configuration.
type Tournament struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Areas   []TournamentArea `json:"areas"`
	Teams   []Team           `json:"teams"`
	Ranking RankingConfig    `json:"ranking"`
}

// Area returns the area with the given ID.
func (t Tournament) Area(id string) (TournamentArea, bool) {
	i := slices.IndexFunc(t.Areas, func(a TournamentArea) bool { return a.ID == id })
	if i < 0 {
		return TournamentArea{}, false
	}
	return t.Areas[i], true
}

// HasTeam reports whether a team with the given ID is enrolled.
func (t Tournament) HasTeam(id string) bool {
	return slices.ContainsFunc(t.Teams, func(tm Team) bool { return tm.ID == id })
}

// Snapshot is everything a ranking computation reads: the tournament
// definition and its evaluations.
type Snapshot struct {
	Tournament  Tournament   `json:"tournament"`
	Evaluations []Evaluation `json:"evaluations"`
}
