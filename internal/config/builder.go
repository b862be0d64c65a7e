package config

import (
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/internal/strategy"
)

// NewSource creates the market source selected by the configuration.
func NewSource(market domain.MarketSettings, seed int64) (calculation.ROISource, error) {
	switch market.Source {
	case SourceHistorical:
		source, err := calculation.LoadHistoricalSource(market.DataFile, market.Mode, seed)
		if err != nil {
			return nil, err
		}
		return source, nil
	case SourceStatistical, "":
		return &calculation.StatisticalSource{
			Stock:     calculation.Distribution{Mean: market.StockMean, StdDev: market.StockStdDev},
			Bond:      calculation.Distribution{Mean: market.BondMean, StdDev: market.BondStdDev},
			Inflation: calculation.Distribution{Mean: market.InflationMean, StdDev: market.InflationStdDev},
			Seed:      seed,
		}, nil
	default:
		return nil, fmt.Errorf("unknown market source %q", market.Source)
	}
}

// BuildSimulation resolves the seed once and assembles the source and
// strategies for a validated configuration.
func BuildSimulation(config *domain.Configuration) (calculation.SimulationConfig, error) {
	seed := calculation.ResolveSeed(config.Simulation.Seed)

	source, err := NewSource(config.Market, seed)
	if err != nil {
		return calculation.SimulationConfig{}, fmt.Errorf("failed to create market source: %w", err)
	}
	strategies, err := strategy.Build(config.Strategies, Environment(config, seed))
	if err != nil {
		return calculation.SimulationConfig{}, err
	}

	return calculation.SimulationConfig{
		Accounts:   config.Accounts,
		Iterations: config.Simulation.Iterations,
		Years:      config.Simulation.Years,
		StartAge:   config.Simulation.StartAge,
		StartYear:  config.Simulation.StartYear,
		Workers:    config.Simulation.Workers,
		Seed:       seed,
		Source:     source,
		Strategies: strategies,
	}, nil
}
