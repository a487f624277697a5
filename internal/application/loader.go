package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-standings/internal/domain"
)

// TournamentLoader parses, validates and caches tournament definitions
// written as YAML, turning them into domain.Tournament values.
// Use TournamentLoader to load tournaments from files or readers while
// benefiting from SHA256-based caching and full validation.
type TournamentLoader struct {
	// validator performs struct field validation with the custom
	// tournament tags registered.
	validator *validator.Validate
	// registry resolves aggregation tags during semantic validation.
	registry *AggregatorRegistry
	// cache stores converted tournaments indexed by SHA256 hash of the
	// normalized configuration.
	// WARNING: Cached tournaments share their nested slices with every
	// caller and MUST NOT be mutated.
	cache map[string]domain.Tournament
	// cacheMu provides thread-safe access to the cache map.
	cacheMu sync.RWMutex
	// sf prevents duplicate validation when multiple goroutines load the
	// same definition simultaneously.
	sf singleflight.Group
}

// NewTournamentLoader creates a loader with an empty cache. A nil registry
// uses the built-in aggregators. NewTournamentLoader returns an error if
// validator registration fails.
func NewTournamentLoader(registry *AggregatorRegistry) (*TournamentLoader, error) {
	if registry == nil {
		registry = NewAggregatorRegistry()
	}

	v := validator.New()
	if err := RegisterTournamentValidators(v, registry); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &TournamentLoader{
		validator: v,
		registry:  registry,
		cache:     make(map[string]domain.Tournament),
	}, nil
}

// load is the common implementation behind LoadFromFile and
// LoadFromReader. Identical definitions are validated once; later loads
// are served from the cache.
// WARNING: The returned tournament shares slices with the cached
// instance. Callers MUST NOT mutate it.
func (tl *TournamentLoader) load(ctx context.Context, data []byte) (domain.Tournament, error) {
	if err := ctx.Err(); err != nil {
		return domain.Tournament{}, err
	}

	// Parse YAML first to normalize it before hashing.
	config, err := tl.parseYAML(data)
	if err != nil {
		return domain.Tournament{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Hash the normalized config, not the raw bytes.
	hash, err := tl.calculateConfigHash(config)
	if err != nil {
		return domain.Tournament{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := tl.sf.Do(hash, func() (any, error) {
		// Check the cache inside singleflight to close the race between
		// the caller's lookup and the group execution.
		if t, ok := tl.getCachedTournament(hash); ok {
			return t, nil
		}

		if err := tl.validateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		t, err := config.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to build tournament: %w", err)
		}
		if err := ValidateRankingInput(t.Areas, t.Ranking, tl.registry); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		tl.cacheTournament(hash, t)
		return t, nil
	})
	if err != nil {
		return domain.Tournament{}, err
	}

	return v.(domain.Tournament), nil
}

// LoadFromFile loads a tournament definition from a YAML file.
// LoadFromFile returns an error if reading, parsing or validation fails.
func (tl *TournamentLoader) LoadFromFile(ctx context.Context, path string) (domain.Tournament, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return domain.Tournament{}, fmt.Errorf("failed to read file: %w", err)
	}
	return tl.load(ctx, data)
}

// LoadFromReader loads a tournament definition from r, reading it fully
// into memory. It applies the same caching and validation as LoadFromFile.
func (tl *TournamentLoader) LoadFromReader(ctx context.Context, r io.Reader) (domain.Tournament, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Tournament{}, fmt.Errorf("failed to read data: %w", err)
	}
	return tl.load(ctx, data)
}

// parseYAML decodes strictly: unknown fields are errors so configuration
// typos are never silently ignored.
func (tl *TournamentLoader) parseYAML(data []byte) (*TournamentConfig, error) {
	var config TournamentConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateConfig runs struct validation followed by the cross-field rules
// struct tags cannot express.
func (tl *TournamentLoader) validateConfig(config *TournamentConfig) error {
	if err := tl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}
	if err := validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}
	return nil
}

// validateSemantics enforces unique area IDs and team IDs and requires
// criteria and missions to carry IDs and non-negative maxima.
func validateSemantics(config *TournamentConfig) error {
	verr := domain.NewValidationError("tournament " + config.Tournament.ID)

	areaIDs := make(map[string]struct{}, len(config.Areas))
	for _, a := range config.Areas {
		id := a.ID
		if id == "" {
			id = a.Code
		}
		if _, dup := areaIDs[id]; dup {
			verr.AddErrorf("duplicate area id %q", id)
		}
		areaIDs[id] = struct{}{}

		if a.Rubric != nil {
			for i, c := range a.Rubric.Criteria {
				if c.ID == "" {
					verr.AddErrorf("area %s: criterion %d has no id", a.Code, i)
				}
				if c.MaxScore < 0 {
					verr.AddErrorf("area %s: criterion %s has negative max_score", a.Code, c.ID)
				}
			}
		}
		if a.Performance != nil {
			for i, m := range a.Performance.Missions {
				if m.ID == "" {
					verr.AddErrorf("area %s: mission %d has no id", a.Code, i)
				}
				if m.Points < 0 || m.Quantity < 0 {
					verr.AddErrorf("area %s: mission %s has negative points or quantity", a.Code, m.ID)
				}
			}
			for _, p := range a.Performance.PenaltyTypes {
				if p.Type == "" {
					verr.AddErrorf("area %s: penalty type without type tag", a.Code)
				}
			}
		}
	}

	teamIDs := make(map[string]struct{}, len(config.Teams))
	for _, t := range config.Teams {
		if _, dup := teamIDs[t.ID]; dup {
			verr.AddErrorf("duplicate team id %q", t.ID)
		}
		teamIDs[t.ID] = struct{}{}
	}

	return verr.ErrOrNil()
}

// calculateConfigHash hashes the re-encoded configuration so formatting
// differences in the source do not defeat the cache.
func (tl *TournamentLoader) calculateConfigHash(config *TournamentConfig) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (tl *TournamentLoader) getCachedTournament(hash string) (domain.Tournament, bool) {
	tl.cacheMu.RLock()
	defer tl.cacheMu.RUnlock()

	t, ok := tl.cache[hash]
	return t, ok
}

func (tl *TournamentLoader) cacheTournament(hash string, t domain.Tournament) {
	tl.cacheMu.Lock()
	defer tl.cacheMu.Unlock()

	tl.cache[hash] = t
}

// CachedCount returns the number of cached definitions.
func (tl *TournamentLoader) CachedCount() int {
	tl.cacheMu.RLock()
	defer tl.cacheMu.RUnlock()

	return len(tl.cache)
}

// ClearCache removes all cached tournaments, forcing subsequent loads to
// validate from source.
func (tl *TournamentLoader) ClearCache() {
	tl.cacheMu.Lock()
	defer tl.cacheMu.Unlock()

	tl.cache = make(map[string]domain.Tournament)
}
