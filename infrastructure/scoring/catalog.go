package scoring

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-standings/internal/domain"
)

//go:embed default_rubrics.yaml
var defaultRubricsYAML []byte

var validate = validator.New()

// catalogFile is the on-disk layout of a rubric catalog.
type catalogFile struct {
	Version int             `yaml:"version" validate:"required,eq=1"`
	Rubrics []catalogRubric `yaml:"rubrics" validate:"required,min=1,dive"`
}

type catalogRubric struct {
	Code     string             `yaml:"code" validate:"required"`
	Name     string             `yaml:"name"`
	Criteria []domain.Criterion `yaml:"criteria" validate:"required,min=1"`
}

// Catalog holds default rubrics keyed by legacy area code. Areas created
// before per-area scoring configuration existed are scored against it.
// A Catalog is read-only after loading and safe for concurrent use.
type Catalog struct {
	rubrics map[string]domain.RubricConfig
}

// LoadCatalog decodes and validates a rubric catalog. Unknown fields,
// duplicate codes and negative criterion maxima are rejected.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse rubric catalog: %w", err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("rubric catalog validation failed: %w", err)
	}

	verr := domain.NewValidationError("rubric catalog")
	c := &Catalog{rubrics: make(map[string]domain.RubricConfig, len(file.Rubrics))}
	for _, rb := range file.Rubrics {
		code := catalogKey(rb.Code)
		if _, dup := c.rubrics[code]; dup {
			verr.AddErrorf("duplicate rubric code %q", rb.Code)
			continue
		}
		for _, cr := range rb.Criteria {
			if cr.ID == "" {
				verr.AddErrorf("rubric %q has a criterion without id", rb.Code)
			}
			if cr.MaxScore < 0 {
				verr.AddErrorf("rubric %q criterion %q has negative max_score", rb.Code, cr.ID)
			}
		}
		c.rubrics[code] = domain.RubricConfig{Criteria: rb.Criteria}
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(bytes.NewReader(defaultRubricsYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded rubric catalog is invalid: %v", err))
	}
	return c
}

// Lookup returns the default rubric for a legacy area code. Codes are
// matched case-insensitively.
func (c *Catalog) Lookup(code string) (domain.ScoringConfig, bool) {
	if c == nil {
		return nil, false
	}
	rb, ok := c.rubrics[catalogKey(code)]
	if !ok {
		return nil, false
	}
	return rb, true
}

// Len returns the number of rubrics in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rubrics)
}

func catalogKey(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Lookuper resolves a default scoring configuration by area code.
type Lookuper interface {
	Lookup(code string) (domain.ScoringConfig, bool)
}

// ResolveScoring returns the area's own scoring configuration, falling back
// to the catalog entry for its code. A nil result means the area has no
// configuration and scores against a maximum of zero.
func ResolveScoring(area domain.TournamentArea, catalog Lookuper) domain.ScoringConfig {
	if area.Scoring != nil {
		return area.Scoring
	}
	if catalog == nil {
		return nil
	}
	if cfg, ok := catalog.Lookup(area.Code); ok {
		return cfg
	}
	return nil
}
