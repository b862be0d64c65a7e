package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/internal/strategy"
	"github.com/rpgo/retirement-simulator/pkg/dateutil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the configuration file.
const (
	EnvIterations = "RETIRESIM_ITERATIONS"
	EnvYears      = "RETIRESIM_YEARS"
	EnvSeed       = "RETIRESIM_SEED"
	EnvWorkers    = "RETIRESIM_WORKERS"
	EnvDatabase   = "RETIRESIM_DB"
)

const (
	DefaultIterations = 1000
	DefaultYears      = 30
	MaxYears          = 100
	DefaultFormat     = "console"

	SourceHistorical  = "historical"
	SourceStatistical = "statistical"
)

// InputParser handles parsing of input configuration files
type InputParser struct {
	// EnvFiles are loaded into the process environment before overrides are
	// applied. Missing files are skipped; variables already set win.
	EnvFiles []string
	// Now supplies the default start year.
	Now func() time.Time
}

// NewInputParser creates a new input parser that reads .env from the working directory
func NewInputParser() *InputParser {
	return &InputParser{EnvFiles: []string{".env"}, Now: time.Now}
}

// LoadFromFile loads configuration from a YAML file, applies defaults and
// environment overrides, and validates the result.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config, err := ip.Parse(data)
	if err != nil {
		return nil, err
	}

	// Data files are relative to the configuration file
	if config.Market.DataFile != "" && !filepath.IsAbs(config.Market.DataFile) {
		config.Market.DataFile = filepath.Join(filepath.Dir(filename), config.Market.DataFile)
	}

	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Parse decodes YAML and applies environment overrides and defaults without validating.
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.loadEnvFiles(); err != nil {
		return nil, err
	}
	if err := ApplyEnvOverrides(&config); err != nil {
		return nil, err
	}
	ip.ApplyDefaults(&config)
	return &config, nil
}

func (ip *InputParser) loadEnvFiles() error {
	for _, path := range ip.EnvFiles {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnvOverrides replaces configuration values with any RETIRESIM_* variables set.
func ApplyEnvOverrides(config *domain.Configuration) error {
	ints := []struct {
		key    string
		target *int
	}{
		{EnvIterations, &config.Simulation.Iterations},
		{EnvYears, &config.Simulation.Years},
		{EnvWorkers, &config.Simulation.Workers},
	}
	for _, o := range ints {
		if v := os.Getenv(o.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", o.key, err)
			}
			*o.target = n
		}
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		config.Simulation.Seed = seed
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		config.Output.Database = v
	}
	return nil
}

// ApplyDefaults fills unset values. StartAge is derived from the birth date
// when only the latter is given.
func (ip *InputParser) ApplyDefaults(config *domain.Configuration) {
	sim := &config.Simulation
	if sim.Iterations == 0 {
		sim.Iterations = DefaultIterations
	}
	if sim.Years == 0 {
		sim.Years = DefaultYears
	}
	if sim.StartYear == 0 {
		now := time.Now
		if ip.Now != nil {
			now = ip.Now
		}
		sim.StartYear = now().Year()
	}
	if sim.StartAge == 0 && !sim.BirthDate.IsZero() {
		sim.StartAge = dateutil.AgeInYear(sim.BirthDate, sim.StartYear)
	}

	market := &config.Market
	if market.Source == "" {
		market.Source = SourceStatistical
		if market.DataFile != "" {
			market.Source = SourceHistorical
		}
	}
	if market.Mode == "" {
		market.Mode = calculation.ModeRolling
	}
	defaults := calculation.DefaultStatisticalSource(0)
	fill := func(v *decimal.Decimal, d decimal.Decimal) {
		if v.IsZero() {
			*v = d
		}
	}
	fill(&market.StockMean, defaults.Stock.Mean)
	fill(&market.StockStdDev, defaults.Stock.StdDev)
	fill(&market.BondMean, defaults.Bond.Mean)
	fill(&market.BondStdDev, defaults.Bond.StdDev)
	fill(&market.InflationMean, defaults.Inflation.Mean)
	fill(&market.InflationStdDev, defaults.Inflation.StdDev)

	if config.Output.Format == "" {
		config.Output.Format = DefaultFormat
	}
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := ip.validateSimulation(&config.Simulation); err != nil {
		return fmt.Errorf("simulation validation failed: %w", err)
	}
	if err := ip.validateAccounts(&config.Accounts); err != nil {
		return fmt.Errorf("accounts validation failed: %w", err)
	}
	if err := ip.validateMarket(&config.Market); err != nil {
		return fmt.Errorf("market validation failed: %w", err)
	}
	if _, err := strategy.NewTaxCalculator(config.Taxes); err != nil {
		return fmt.Errorf("taxes validation failed: %w", err)
	}

	if len(config.Strategies) == 0 {
		return fmt.Errorf("no strategies provided")
	}
	for i, s := range config.Strategies {
		if !strategy.Known(s.Type) {
			return fmt.Errorf("strategy %d validation failed: unknown type %q", i, s.Type)
		}
	}
	// Factories check the fields each type reads
	if _, err := strategy.Build(config.Strategies, Environment(config, 0)); err != nil {
		return err
	}

	return nil
}

func (ip *InputParser) validateSimulation(sim *domain.SimulationSettings) error {
	if sim.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive")
	}
	if sim.Years <= 0 || sim.Years > MaxYears {
		return fmt.Errorf("years must be between 1 and %d", MaxYears)
	}
	if sim.StartAge <= 0 || sim.StartAge > 120 {
		return fmt.Errorf("start age must be between 1 and 120 (set start_age or birth_date)")
	}
	if sim.Workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}
	if !sim.BirthDate.IsZero() && sim.BirthDate.Year() > sim.StartYear {
		return fmt.Errorf("birth date cannot be after the start year")
	}
	return nil
}

func (ip *InputParser) validateAccounts(accounts *domain.AccountSettings) error {
	for _, b := range domain.Buckets {
		account := accounts.Get(b)
		if account.Amount.LessThan(decimal.Zero) {
			return fmt.Errorf("%s balance cannot be negative", b)
		}
		if account.Allocation.LessThan(decimal.Zero) || account.Allocation.GreaterThan(decimal.NewFromFloat(1.0)) {
			return fmt.Errorf("%s allocation must be between 0 and 1", b)
		}
	}
	return nil
}

func (ip *InputParser) validateMarket(market *domain.MarketSettings) error {
	switch market.Source {
	case SourceHistorical:
		if market.DataFile == "" {
			return fmt.Errorf("data file is required for historical returns")
		}
		switch market.Mode {
		case calculation.ModeRolling, calculation.ModeWrapped, calculation.ModeBootstrap:
		default:
			return fmt.Errorf("mode must be '%s', '%s', or '%s'", calculation.ModeRolling, calculation.ModeWrapped, calculation.ModeBootstrap)
		}
	case SourceStatistical:
		minusOne := decimal.NewFromFloat(-1.0)
		if market.StockMean.LessThan(minusOne) || market.BondMean.LessThan(minusOne) {
			return fmt.Errorf("mean returns cannot be less than -100%%")
		}
		if market.StockStdDev.LessThan(decimal.Zero) || market.BondStdDev.LessThan(decimal.Zero) || market.InflationStdDev.LessThan(decimal.Zero) {
			return fmt.Errorf("standard deviations cannot be negative")
		}
		if market.InflationMean.LessThan(decimal.NewFromFloat(-0.10)) {
			return fmt.Errorf("inflation mean cannot be less than -10%% (extreme deflation)")
		}
	default:
		return fmt.Errorf("source must be '%s' or '%s'", SourceHistorical, SourceStatistical)
	}
	return nil
}

// Environment returns the run-level context strategies are built with.
func Environment(config *domain.Configuration, seed int64) strategy.Environment {
	return strategy.Environment{
		Seed:      seed,
		StartAge:  config.Simulation.StartAge,
		StartYear: config.Simulation.StartYear,
		BirthYear: config.Simulation.BirthYear(),
		Accounts:  config.Accounts,
		Taxes:     config.Taxes,
	}
}

// CreateExampleConfiguration creates an example configuration file
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	birthDate, _ := time.Parse("2006-01-02", "1960-06-15")
	rmdOrder := strategy.OrderRMD

	return &domain.Configuration{
		Simulation: domain.SimulationSettings{
			Iterations: DefaultIterations,
			Years:      DefaultYears,
			StartYear:  2025,
			BirthDate:  birthDate,
		},
		Accounts: domain.AccountSettings{
			PreTax:  domain.AccountBalance{Amount: decimal.NewFromInt(800000), Allocation: decimal.NewFromFloat(0.6)},
			PostTax: domain.AccountBalance{Amount: decimal.NewFromInt(250000), Allocation: decimal.NewFromFloat(0.7)},
			Cash:    domain.AccountBalance{Amount: decimal.NewFromInt(50000)},
		},
		Market: domain.MarketSettings{
			Source: SourceStatistical,
			Mode:   calculation.ModeRolling,
		},
		Taxes: domain.TaxSettings{
			FilingStatus: strategy.FilingJoint,
			StateRate:    decimal.NewFromFloat(0.0307),
		},
		Strategies: []domain.StrategySettings{
			{Type: "expenses", Name: "living", Amount: decimal.NewFromInt(70000), InflationAdjusted: true},
			{Type: "income", Name: "social security", Amount: decimal.NewFromInt(36000), StartAtFRA: true, InflationAdjusted: true, Taxable: true},
			{Type: "fees", Rate: decimal.NewFromFloat(0.002)},
			{Type: "four_percent_rule", Bucket: domain.PreTax.String()},
			{Type: "rmd", Order: &rmdOrder},
			{Type: "income_tax"},
			{Type: "cash_reserve", Amount: decimal.NewFromInt(50000), InflationAdjusted: true},
			{Type: "rebalance", MaxDrift: decimal.NewFromFloat(0.05)},
		},
		Output: domain.OutputSettings{Format: DefaultFormat},
	}
}
