package calculation

import (
	"errors"
	"sort"
)

// DefaultOrder is the pipeline position of a strategy with no explicit order.
const DefaultOrder = 50

// ErrNoStrategies is returned when a pipeline is built from an empty list.
var ErrNoStrategies = errors.New("no strategies supplied")

// Mutator applies one policy to the current year.
type Mutator interface {
	Apply(state *YearState) error
}

// MutatorFunc adapts a function to the Mutator interface.
type MutatorFunc func(state *YearState) error

// Apply calls f(state).
func (f MutatorFunc) Apply(state *YearState) error { return f(state) }

// Strategy is a policy factory. NewInstance must return a fresh mutator for
// each iteration; mutators may keep state across the years of that iteration.
type Strategy interface {
	Order() int
	Description() string
	NewInstance(iteration int) Mutator
}

// IterationLimiter is implemented by strategies backed by finite data.
type IterationLimiter interface {
	MaxIterations() int
}

// Pipeline is an ordered, immutable list of strategies.
type Pipeline struct {
	strategies []Strategy
}

// NewPipeline sorts strategies by Order, keeping the supplied order for ties.
func NewPipeline(strategies []Strategy) (*Pipeline, error) {
	if len(strategies) == 0 {
		return nil, ErrNoStrategies
	}
	sorted := make([]Strategy, len(strategies))
	copy(sorted, strategies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order() < sorted[j].Order()
	})
	return &Pipeline{strategies: sorted}, nil
}

// Len returns the number of strategies.
func (p *Pipeline) Len() int { return len(p.strategies) }

// Instances creates one fresh mutator per strategy, in pipeline order.
func (p *Pipeline) Instances(iteration int) []Mutator {
	mutators := make([]Mutator, len(p.strategies))
	for i, s := range p.strategies {
		mutators[i] = s.NewInstance(iteration)
	}
	return mutators
}

// Descriptions lists the strategies in pipeline order.
func (p *Pipeline) Descriptions() []string {
	descriptions := make([]string, len(p.strategies))
	for i, s := range p.strategies {
		descriptions[i] = s.Description()
	}
	return descriptions
}

// MaxIterations returns the lowest ceiling imposed by any strategy, or 0 when
// none imposes one.
func (p *Pipeline) MaxIterations() int {
	limit := 0
	for _, s := range p.strategies {
		l, ok := s.(IterationLimiter)
		if !ok {
			continue
		}
		if m := l.MaxIterations(); m > 0 && (limit == 0 || m < limit) {
			limit = m
		}
	}
	return limit
}
