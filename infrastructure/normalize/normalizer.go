// Package normalize canonicalizes the free-text grade and shift labels that
// school rosters arrive with, so teams can be filtered and displayed with a
// single vocabulary.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Shift is the canonical Portuguese shift token.
type Shift string

// Canonical shift tokens.
const (
	ShiftMorning   Shift = "manha"
	ShiftAfternoon Shift = "tarde"
)

// System format tokens used by older records and the API.
const (
	systemMorning   = "morning"
	systemAfternoon = "afternoon"
)

var validate = validator.New()

var (
	ordinalReplacer = strings.NewReplacer("º", "o", "°", "o", "ª", "a")

	// gradeOrdinalPattern matches "2o ano", "2 ano", "2oano", "3a serie".
	gradeOrdinalPattern = regexp.MustCompile(`\b([1-9])\s*[oa]?\s*(?:ano|serie)\b`)

	// gradeBareDigitPattern matches a lone digit such as "turma 3" or "3o".
	gradeBareDigitPattern = regexp.MustCompile(`\b([1-9])[oa]?\b`)

	// gluedTokenPattern splits roster shorthand such as "1em" or "2oef"
	// into its number and the letters after it.
	gluedTokenPattern = regexp.MustCompile(`^([0-9]+[oa]?)([a-z]+)$`)
)

// defaultAbbreviations expands tokens found in hand-typed rosters.
var defaultAbbreviations = map[string]string{
	"fund":   "fundamental",
	"fundam": "fundamental",
	"ef":     "ensino fundamental",
	"em":     "ensino medio",
	"ens":    "ensino",
	"med":    "medio",
}

// shiftCategory is one canonical shift and the spellings that map to it.
type shiftCategory struct {
	shift    Shift
	variants []string
}

// defaultShiftCategories is ordered: the first matching category wins.
var defaultShiftCategories = []shiftCategory{
	{shift: ShiftMorning, variants: []string{"manha", "manha1", "turno manha", "morning"}},
	{shift: ShiftAfternoon, variants: []string{"tarde", "tard", "turno tarde", "afternoon"}},
}

// Config tunes the tolerant shift matcher.
type Config struct {
	// SimilarityThreshold is the minimum Levenshtein similarity
	// (1 - distance/maxLen) for a shift variant to match.
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold" validate:"min=0.0,max=1.0"`

	// MinContainedLength is the shortest normalized input allowed to match
	// by being a substring of a variant. It keeps inputs like "a" or "t"
	// from matching every category.
	MinContainedLength int `yaml:"min_contained_length" json:"min_contained_length" validate:"min=0,max=32"`
}

// DefaultConfig returns the matcher configuration used in production.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.7,
		MinContainedLength:  3,
	}
}

// Normalizer canonicalizes grade and shift labels. It is immutable after
// construction and safe for concurrent use.
type Normalizer struct {
	config        Config
	categories    []shiftCategory
	abbreviations map[string]string
}

// New creates a Normalizer with the given configuration.
func New(config Config) (*Normalizer, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &Normalizer{
		config:        config,
		categories:    defaultShiftCategories,
		abbreviations: defaultAbbreviations,
	}, nil
}

// Default returns a Normalizer built from DefaultConfig.
func Default() *Normalizer {
	n, err := New(DefaultConfig())
	if err != nil {
		panic(err) // DefaultConfig is statically valid.
	}
	return n
}

// Config returns the normalizer's configuration.
func (n *Normalizer) Config() Config { return n.config }

// NormalizeText runs the shared pipeline: case folding, diacritic
// stripping, ordinal markers to letters, punctuation to spaces, whitespace
// collapsing and abbreviation expansion. Empty input yields "".
func (n *Normalizer) NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// Casers and transform chains carry state; build them per call.
	s = cases.Fold().String(s)
	s = stripDiacritics(s)
	s = ordinalReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)

	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = n.expand(f)
	}
	return strings.Join(fields, " ")
}

// expand replaces an abbreviation token with its long form. A number
// glued to an abbreviation ("1em") is split first; other glued tokens such
// as "9oano" are left alone.
func (n *Normalizer) expand(token string) string {
	if exp, ok := n.abbreviations[token]; ok {
		return exp
	}
	if m := gluedTokenPattern.FindStringSubmatch(token); m != nil {
		if exp, ok := n.abbreviations[m[2]]; ok {
			return m[1] + " " + exp
		}
	}
	return token
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeShift maps a free-text shift label to ShiftMorning or
// ShiftAfternoon. The second result is false when the label is empty or
// matches neither category.
func (n *Normalizer) NormalizeShift(s string) (Shift, bool) {
	text := n.NormalizeText(s)
	if text == "" {
		return "", false
	}
	for _, cat := range n.categories {
		for _, variant := range cat.variants {
			if n.matchesVariant(text, variant) {
				return cat.shift, true
			}
		}
	}
	return "", false
}

func (n *Normalizer) matchesVariant(text, variant string) bool {
	if text == variant || strings.Contains(text, variant) {
		return true
	}
	if utf8.RuneCountInString(text) >= n.config.MinContainedLength && strings.Contains(variant, text) {
		return true
	}
	return similarity(text, variant) >= n.config.SimilarityThreshold
}

// similarity returns 1 - distance/max(len) over runes, in [0, 1].
func similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	maxLen := utf8.RuneCountInString(s1)
	if l := utf8.RuneCountInString(s2); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	sim := 1.0 - float64(levenshtein.ComputeDistance(s1, s2))/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}

// NormalizeGrade extracts a canonical grade label such as "2º ano" or
// "1º ano ensino medio". Matching is purely pattern based; the second
// result is false when no single digit 1-9 can be found.
func (n *Normalizer) NormalizeGrade(s string) (string, bool) {
	text := n.NormalizeText(s)
	if text == "" {
		return "", false
	}

	m := gradeOrdinalPattern.FindStringSubmatch(text)
	if m == nil {
		m = gradeBareDigitPattern.FindStringSubmatch(text)
	}
	if m == nil {
		return "", false
	}

	label := m[1] + "º ano"
	if strings.Contains(text, "medio") {
		label += " ensino medio"
	}
	return label, true
}

// ShiftToSystemFormat converts a canonical shift to the English token
// legacy records and API clients use.
func ShiftToSystemFormat(s Shift) (string, bool) {
	switch s {
	case ShiftMorning:
		return systemMorning, true
	case ShiftAfternoon:
		return systemAfternoon, true
	}
	return "", false
}

// ShiftFromSystemFormat converts an English system token back to the
// canonical shift. Canonical tokens are accepted unchanged.
func ShiftFromSystemFormat(v string) (Shift, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case systemMorning, string(ShiftMorning):
		return ShiftMorning, true
	case systemAfternoon, string(ShiftAfternoon):
		return ShiftAfternoon, true
	}
	return "", false
}
