package domain

import (
	"fmt"
	"time"

	"github.com/rpgo/retirement-simulator/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// Configuration represents the complete input for one simulation run
type Configuration struct {
	Simulation SimulationSettings `yaml:"simulation" json:"simulation"`
	Accounts   AccountSettings    `yaml:"accounts" json:"accounts"`
	Market     MarketSettings     `yaml:"market" json:"market"`
	Taxes      TaxSettings        `yaml:"taxes" json:"taxes"`
	Strategies []StrategySettings `yaml:"strategies" json:"strategies"`
	Output     OutputSettings     `yaml:"output" json:"output"`
}

// SimulationSettings controls the size and reproducibility of a run
type SimulationSettings struct {
	Iterations int   `yaml:"iterations" json:"iterations"` // Default: 1000
	Years      int   `yaml:"years" json:"years"`           // Horizon in years, Default: 30
	StartAge   int   `yaml:"start_age" json:"start_age"`   // Derived from birth_date when zero
	StartYear  int   `yaml:"start_year" json:"start_year"` // Calendar year of the first simulated year
	Seed       int64 `yaml:"seed" json:"seed"`             // 0 draws a fresh seed
	Workers    int   `yaml:"workers" json:"workers"`       // 0 uses GOMAXPROCS

	BirthDate time.Time `yaml:"birth_date" json:"birth_date"`
}

// BirthYear returns the birth year from BirthDate, or derives it from the
// start age and year.
func (s SimulationSettings) BirthYear() int {
	if !s.BirthDate.IsZero() {
		return s.BirthDate.Year()
	}
	return dateutil.BirthYearForAge(s.StartAge, s.StartYear)
}

// AccountSettings holds the opening balances of the three buckets
type AccountSettings struct {
	PreTax  AccountBalance `yaml:"pre_tax" json:"pre_tax"`
	PostTax AccountBalance `yaml:"post_tax" json:"post_tax"`
	Cash    AccountBalance `yaml:"cash" json:"cash"`
}

// Get returns the settings for bucket b.
func (a AccountSettings) Get(b Bucket) AccountBalance {
	switch b {
	case PreTax:
		return a.PreTax
	case PostTax:
		return a.PostTax
	default:
		return a.Cash
	}
}

// Total returns the combined opening balance.
func (a AccountSettings) Total() decimal.Decimal {
	return a.PreTax.Amount.Add(a.PostTax.Amount).Add(a.Cash.Amount)
}

// AccountBalance is one opening balance and its target stock allocation
type AccountBalance struct {
	Amount     decimal.Decimal `yaml:"amount" json:"amount"`
	Allocation decimal.Decimal `yaml:"allocation" json:"allocation"` // Stock fraction, ignored for cash
}

// MarketSettings selects and parameterizes the source of annual returns
type MarketSettings struct {
	Source   string `yaml:"source" json:"source"`       // "historical" or "statistical"
	DataFile string `yaml:"data_file" json:"data_file"` // CSV with year,stock,bond,inflation
	Mode     string `yaml:"mode" json:"mode"`           // rolling, wrapped, bootstrap

	// Statistical model parameters
	StockMean       decimal.Decimal `yaml:"stock_mean" json:"stock_mean"`             // Default: 0.10
	StockStdDev     decimal.Decimal `yaml:"stock_stddev" json:"stock_stddev"`         // Default: 0.17
	BondMean        decimal.Decimal `yaml:"bond_mean" json:"bond_mean"`               // Default: 0.05
	BondStdDev      decimal.Decimal `yaml:"bond_stddev" json:"bond_stddev"`           // Default: 0.06
	InflationMean   decimal.Decimal `yaml:"inflation_mean" json:"inflation_mean"`     // Default: 0.0259
	InflationStdDev decimal.Decimal `yaml:"inflation_stddev" json:"inflation_stddev"` // Default: 0.0137
}

// TaxSettings contains federal and state income tax configuration
type TaxSettings struct {
	FilingStatus      string          `yaml:"filing_status" json:"filing_status"`           // "single" or "married_filing_jointly"
	StandardDeduction decimal.Decimal `yaml:"standard_deduction" json:"standard_deduction"` // Default: 30000 (2025 MFJ)
	Brackets          []TaxBracket    `yaml:"brackets" json:"brackets"`                     // Default: 2025 MFJ brackets
	StateRate         decimal.Decimal `yaml:"state_rate" json:"state_rate"`                 // Flat state rate on ordinary income
	IndexBrackets     bool            `yaml:"index_brackets" json:"index_brackets"`         // Grow thresholds with inflation
}

// TaxBracket represents a federal tax bracket
type TaxBracket struct {
	Min  decimal.Decimal `yaml:"min" json:"min"`   // Minimum income for bracket
	Max  decimal.Decimal `yaml:"max" json:"max"`   // Maximum income for bracket (use 999999999 for top bracket)
	Rate decimal.Decimal `yaml:"rate" json:"rate"` // Tax rate for this bracket
}

// StrategySettings describes one policy in the pipeline. Fields are shared
// across policy types; each type reads only the ones it needs.
type StrategySettings struct {
	Type  string `yaml:"type" json:"type"`
	Name  string `yaml:"name" json:"name"`
	Order *int   `yaml:"order,omitempty" json:"order,omitempty"`

	Amount            decimal.Decimal `yaml:"amount" json:"amount"`
	Rate              decimal.Decimal `yaml:"rate" json:"rate"`
	Floor             decimal.Decimal `yaml:"floor" json:"floor"`
	Ceiling           decimal.Decimal `yaml:"ceiling" json:"ceiling"`
	Allocation        decimal.Decimal `yaml:"allocation" json:"allocation"`
	EndAllocation     decimal.Decimal `yaml:"end_allocation" json:"end_allocation"`
	MaxDrift          decimal.Decimal `yaml:"max_drift" json:"max_drift"`
	Years             int             `yaml:"years" json:"years"`
	StartAge          int             `yaml:"start_age" json:"start_age"`
	EndAge            int             `yaml:"end_age" json:"end_age"`
	InflationAdjusted bool            `yaml:"inflation_adjusted" json:"inflation_adjusted"`
	Taxable           bool            `yaml:"taxable" json:"taxable"`
	Bucket            string          `yaml:"bucket" json:"bucket"`
	BirthYear         int             `yaml:"birth_year" json:"birth_year"`
	StartAtFRA        bool            `yaml:"start_at_fra" json:"start_at_fra"` // Social Security full retirement age
}

// Label returns the configured name, falling back to the type.
func (s StrategySettings) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Type
}

// OutputSettings selects the report format and optional run database
type OutputSettings struct {
	Format   string `yaml:"format" json:"format"`
	Database string `yaml:"database" json:"database"` // SQLite path, empty disables recording
}

// GenerateAssumptions creates a human-readable list of the run's assumptions
func (c *Configuration) GenerateAssumptions() []string {
	pct := func(d decimal.Decimal) float64 { return d.Mul(decimal.NewFromInt(100)).InexactFloat64() }

	assumptions := []string{
		fmt.Sprintf("Horizon: %d years starting at age %d", c.Simulation.Years, c.Simulation.StartAge),
		fmt.Sprintf("Opening balances: pre-tax $%s, post-tax $%s, cash $%s",
			c.Accounts.PreTax.Amount.StringFixed(0), c.Accounts.PostTax.Amount.StringFixed(0), c.Accounts.Cash.Amount.StringFixed(0)),
	}
	switch c.Market.Source {
	case "historical":
		assumptions = append(assumptions, fmt.Sprintf("Market returns: historical record (%s mode)", c.Market.Mode))
	default:
		assumptions = append(assumptions, fmt.Sprintf("Market returns: stock %.1f%% ± %.1f%%, bond %.1f%% ± %.1f%%, inflation %.1f%% ± %.1f%%",
			pct(c.Market.StockMean), pct(c.Market.StockStdDev),
			pct(c.Market.BondMean), pct(c.Market.BondStdDev),
			pct(c.Market.InflationMean), pct(c.Market.InflationStdDev)))
	}
	if c.Taxes.IndexBrackets {
		assumptions = append(assumptions, "Tax brackets: indexed to inflation")
	} else {
		assumptions = append(assumptions, "Tax brackets: held constant (no inflation indexing)")
	}
	return assumptions
}
