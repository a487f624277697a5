package application

import (
	"strings"

	"github.com/ahrav/go-standings/infrastructure/normalize"
	"github.com/ahrav/go-standings/internal/domain"
)

// FilterOptions holds the requested grade and shift filters. Values may be
// in Portuguese ("Manhã", "2º ano") or the English system form
// ("morning"). Empty fields do not filter.
type FilterOptions struct {
	Shift string `json:"shift,omitempty"`
	Grade string `json:"grade,omitempty"`
}

// IsZero reports whether no filter is requested.
func (o FilterOptions) IsZero() bool {
	return strings.TrimSpace(o.Shift) == "" && strings.TrimSpace(o.Grade) == ""
}

// FilterTeams returns the teams matching every requested filter, in input
// order. Both sides are normalized before comparison and team values are
// read through ResolveAttribute. A nil normalizer uses normalize.Default.
func FilterTeams(teams []domain.Team, opts FilterOptions, n *normalize.Normalizer) []domain.Team {
	if opts.IsZero() {
		return teams
	}
	if n == nil {
		n = normalize.Default()
	}

	shift := newShiftMatcher(opts.Shift, n)
	grade := newGradeMatcher(opts.Grade, n)

	out := make([]domain.Team, 0, len(teams))
	for _, t := range teams {
		if shift != nil && !shift(ResolveAttribute(t, AttributeShift)) {
			continue
		}
		if grade != nil && !grade(ResolveAttribute(t, AttributeGrade)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

type matcher func(teamValue string) bool

func newShiftMatcher(requested string, n *normalize.Normalizer) matcher {
	if strings.TrimSpace(requested) == "" {
		return nil
	}
	want, ok := normalize.ShiftFromSystemFormat(requested)
	if !ok {
		want, ok = n.NormalizeShift(requested)
	}
	if !ok {
		return textMatcher(requested, n)
	}
	return func(v string) bool {
		got, ok := n.NormalizeShift(v)
		return ok && got == want
	}
}

func newGradeMatcher(requested string, n *normalize.Normalizer) matcher {
	if strings.TrimSpace(requested) == "" {
		return nil
	}
	want, ok := n.NormalizeGrade(requested)
	if !ok {
		return textMatcher(requested, n)
	}
	return func(v string) bool {
		got, ok := n.NormalizeGrade(v)
		return ok && got == want
	}
}

// textMatcher compares normalized text for requested values outside the
// grade and shift vocabularies.
func textMatcher(requested string, n *normalize.Normalizer) matcher {
	want := n.NormalizeText(requested)
	return func(v string) bool {
		return v != "" && n.NormalizeText(v) == want
	}
}

// displayAttributes returns the canonical grade and shift of a team for
// ranking rows, falling back to the raw resolved value when it does not
// normalize.
func displayAttributes(t domain.Team, n *normalize.Normalizer) (grade, shift string) {
	grade = ResolveAttribute(t, AttributeGrade)
	if g, ok := n.NormalizeGrade(grade); ok {
		grade = g
	}
	shift = ResolveAttribute(t, AttributeShift)
	if s, ok := n.NormalizeShift(shift); ok {
		shift = string(s)
	}
	return grade, shift
}
