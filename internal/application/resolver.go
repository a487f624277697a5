package application

import (
	"strings"

	"github.com/ahrav/go-standings/internal/domain"
)

// Attribute names a team attribute that may live in a dedicated field or
// in the metadata bag.
type Attribute string

// Attributes the resolver understands.
const (
	AttributeGrade Attribute = "grade"
	AttributeShift Attribute = "shift"
)

// ResolveAttribute returns the raw value of attr for team. Precedence is
// the dedicated field, then metadata[attr], then the metadata "original"
// key; the first non-blank value wins. It returns "" when none is set.
func ResolveAttribute(team domain.Team, attr Attribute) string {
	var field, metaKey, originalKey string
	switch attr {
	case AttributeGrade:
		field, metaKey, originalKey = team.Grade, domain.MetaGrade, domain.MetaOriginalGrade
	case AttributeShift:
		field, metaKey, originalKey = team.Shift, domain.MetaShift, domain.MetaOriginalShift
	default:
		return ""
	}

	for _, v := range []string{field, team.Metadata[metaKey], team.Metadata[originalKey]} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
