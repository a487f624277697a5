package application

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ahrav/go-standings/infrastructure/aggregation"
	"github.com/ahrav/go-standings/internal/domain"
)

// AggregatorRegistry maps aggregation method tags to the aggregators that
// implement them. It comes with every built-in method registered and can
// be extended at startup with additional methods.
type AggregatorRegistry struct {
	// evaluations maps evaluation aggregation tags to their aggregators.
	evaluations map[domain.AggregationMethod]domain.Aggregator
	// rounds maps rounds aggregation tags to their aggregators.
	rounds map[domain.RoundsAggregation]domain.RoundAggregator
	// mu protects concurrent access to both maps.
	mu sync.RWMutex
}

// NewAggregatorRegistry creates a registry with the built-in last, average,
// median, best and worst evaluation aggregators and the best, average and
// sum round aggregators.
func NewAggregatorRegistry() *AggregatorRegistry {
	r := &AggregatorRegistry{
		evaluations: make(map[domain.AggregationMethod]domain.Aggregator),
		rounds:      make(map[domain.RoundsAggregation]domain.RoundAggregator),
	}
	r.registerBuiltins()
	return r
}

func (r *AggregatorRegistry) registerBuiltins() {
	for _, m := range domain.AggregationMethods {
		agg, err := aggregation.ForMethod(m)
		if err != nil {
			panic(err) // every declared method has a built-in aggregator
		}
		r.evaluations[m] = agg
	}
	for _, m := range []domain.RoundsAggregation{domain.RoundsBest, domain.RoundsAverage, domain.RoundsSum} {
		agg, err := aggregation.ForRounds(m)
		if err != nil {
			panic(err)
		}
		r.rounds[m] = agg
	}
}

// Evaluation returns the aggregator for method. The empty method resolves
// to last.
func (r *AggregatorRegistry) Evaluation(method domain.AggregationMethod) (domain.Aggregator, error) {
	r.mu.RLock()
	agg, ok := r.evaluations[method.OrDefault()]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAggregation, method)
	}
	return agg, nil
}

// Rounds returns the round aggregator for method. The empty method
// resolves to best.
func (r *AggregatorRegistry) Rounds(method domain.RoundsAggregation) (domain.RoundAggregator, error) {
	r.mu.RLock()
	agg, ok := r.rounds[method.OrDefault()]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: rounds %q", domain.ErrUnknownAggregation, method)
	}
	return agg, nil
}

// Register adds or replaces the aggregator for its method tag.
func (r *AggregatorRegistry) Register(agg domain.Aggregator) error {
	if agg == nil {
		return fmt.Errorf("aggregator cannot be nil")
	}
	if agg.Method() == "" {
		return fmt.Errorf("aggregator method cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.evaluations[agg.Method()] = agg
	return nil
}

// RegisterRounds adds or replaces the round aggregator for its method tag.
func (r *AggregatorRegistry) RegisterRounds(agg domain.RoundAggregator) error {
	if agg == nil {
		return fmt.Errorf("round aggregator cannot be nil")
	}
	if agg.Method() == "" {
		return fmt.Errorf("round aggregator method cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rounds[agg.Method()] = agg
	return nil
}

// SupportedMethods returns the registered evaluation aggregation tags in
// sorted order.
func (r *AggregatorRegistry) SupportedMethods() []domain.AggregationMethod {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]domain.AggregationMethod, 0, len(r.evaluations))
	for m := range r.evaluations {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return methods
}
