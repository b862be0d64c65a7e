package calculation

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// SimulationConfig holds everything one run needs
type SimulationConfig struct {
	Accounts   domain.AccountSettings
	Iterations int
	Years      int
	StartAge   int
	StartYear  int
	Workers    int   // 0 uses GOMAXPROCS
	Seed       int64 // recorded on the result; sources and strategies carry their own copy
	Source     ROISource
	Strategies []Strategy
}

// Simulator runs iterations in parallel over a pool of reusable year states
type Simulator struct {
	Logger Logger
}

// NewSimulator creates a simulator with a no-op logger
func NewSimulator() *Simulator {
	return &Simulator{Logger: NopLogger{}}
}

// SetLogger sets the logger for the simulator. If nil is provided, a no-op logger is used.
func (s *Simulator) SetLogger(l Logger) {
	if l == nil {
		s.Logger = NopLogger{}
		return
	}
	s.Logger = l
}

// Run executes the simulation. Iterations that run out of money are part of
// the result; any other error aborts the run and no result is returned.
func (s *Simulator) Run(ctx context.Context, cfg SimulationConfig) (*domain.SimulationResult, error) {
	if cfg.Years <= 0 {
		return nil, fmt.Errorf("years must be positive, got %d", cfg.Years)
	}
	if cfg.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", cfg.Iterations)
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("%w: no market source", ErrMissingSequence)
	}
	pipeline, err := NewPipeline(cfg.Strategies)
	if err != nil {
		return nil, err
	}

	iterations := s.iterationCount(cfg, pipeline)
	if iterations <= 0 {
		return nil, fmt.Errorf("%w: source cannot supply a %d-year path", ErrMissingSequence, cfg.Years)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > iterations {
		workers = iterations
	}

	years := cfg.Years
	buffer := make([]domain.YearSnapshot, iterations*years)
	pool := make(chan *YearState, workers)
	for i := 0; i < workers; i++ {
		pool <- NewYearState(cfg.StartAge, cfg.StartYear)
	}

	s.Logger.Infof("running %d iterations of %d years on %d workers", iterations, years, workers)

	results := make([]domain.IterationResult, iterations)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		failed   atomic.Bool
	)
	fail := func(err error) {
		once.Do(func() { firstErr = err })
		failed.Store(true)
	}

schedule:
	for i := 0; i < iterations && !failed.Load(); i++ {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}
		var state *YearState
		select {
		case state = <-pool: // checkout
		case <-ctx.Done():
			fail(ctx.Err())
			break schedule
		}

		wg.Add(1)
		go func(index int, state *YearState) {
			defer wg.Done()
			defer func() { pool <- state }() // return

			history := buffer[index*years : index*years : (index+1)*years]
			result, err := s.runOne(cfg, pipeline, state, index, history)
			if err != nil {
				fail(err)
				return
			}
			results[index] = result
		}(i, state)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Less(&results[j])
	})

	return &domain.SimulationResult{
		Iterations:          results,
		Strategies:          pipeline.Descriptions(),
		RequestedIterations: cfg.Iterations,
		Years:               years,
		Seed:                cfg.Seed,
	}, nil
}

// iterationCount honors every collaborator's ceiling.
func (s *Simulator) iterationCount(cfg SimulationConfig, pipeline *Pipeline) int {
	iterations := cfg.Iterations
	if ceiling := cfg.Source.MaxSupportedIterations(cfg.Years); ceiling != Unlimited && ceiling < iterations {
		s.Logger.Infof("market source supports %d of %d requested iterations", ceiling, iterations)
		iterations = ceiling
	}
	if limit := pipeline.MaxIterations(); limit > 0 && limit < iterations {
		s.Logger.Infof("strategies support %d of %d requested iterations", limit, iterations)
		iterations = limit
	}
	return iterations
}

func (s *Simulator) runOne(cfg SimulationConfig, pipeline *Pipeline, state *YearState, index int, history []domain.YearSnapshot) (domain.IterationResult, error) {
	market, err := cfg.Source.SequenceFor(index, cfg.Years)
	if err != nil {
		return domain.IterationResult{}, fmt.Errorf("iteration %d: %w", index, err)
	}
	if err := state.reset(index, cfg.Accounts, history, market); err != nil {
		return domain.IterationResult{}, err
	}
	result, err := runIteration(state, pipeline.Instances(index))
	if err != nil {
		return domain.IterationResult{}, err
	}
	if !result.Success {
		s.Logger.Debugf("iteration %d failed in year %d", index, len(result.Years))
	}
	return result, nil
}
