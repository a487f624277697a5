package application

import (
	"github.com/ahrav/go-standings/infrastructure/normalize"
	"github.com/ahrav/go-standings/infrastructure/scoring"
)

// Options carries the collaborators a ranking computation reads. Build one
// at startup with DefaultOptions and pass it to NewEngine; none of its
// fields are mutated by the engine.
type Options struct {
	// Normalizer canonicalizes grade and shift labels for filtering and
	// display.
	Normalizer *normalize.Normalizer

	// Catalog supplies default rubrics for areas without their own
	// scoring configuration. Nil disables the fallback.
	Catalog scoring.Lookuper

	// Aggregators resolves aggregation method tags.
	Aggregators *AggregatorRegistry
}

// DefaultOptions returns the production defaults: the default normalizer,
// the embedded legacy rubric catalog and the built-in aggregators.
func DefaultOptions() Options {
	return Options{
		Normalizer:  normalize.Default(),
		Catalog:     scoring.DefaultCatalog(),
		Aggregators: NewAggregatorRegistry(),
	}
}

// withDefaults fills nil collaborators from DefaultOptions.
func (o Options) withDefaults() Options {
	if o.Normalizer == nil {
		o.Normalizer = normalize.Default()
	}
	if o.Aggregators == nil {
		o.Aggregators = NewAggregatorRegistry()
	}
	return o
}
