package domain

import (
	"github.com/shopspring/decimal"
)

// ROI is one year of market outcomes supplied by a return source.
type ROI struct {
	Label     string          `json:"label"`
	Stock     decimal.Decimal `json:"stock"`
	Bond      decimal.Decimal `json:"bond"`
	Inflation decimal.Decimal `json:"inflation"`
}

// Accounts groups one balance snapshot per bucket.
type Accounts struct {
	PreTax  BalanceSnapshot `json:"pre_tax"`
	PostTax BalanceSnapshot `json:"post_tax"`
	Cash    BalanceSnapshot `json:"cash"`
}

// Get returns the snapshot for bucket b.
func (a Accounts) Get(b Bucket) BalanceSnapshot {
	switch b {
	case PreTax:
		return a.PreTax
	case PostTax:
		return a.PostTax
	default:
		return a.Cash
	}
}

// Total returns the combined amount across all buckets.
func (a Accounts) Total() decimal.Decimal {
	return a.PreTax.Amount.Add(a.PostTax.Amount).Add(a.Cash.Amount)
}

// BucketAmounts carries one amount per bucket (fees, withdrawals, growth).
type BucketAmounts struct {
	PreTax  decimal.Decimal `json:"pre_tax"`
	PostTax decimal.Decimal `json:"post_tax"`
	Cash    decimal.Decimal `json:"cash"`
}

// Get returns the amount for bucket b.
func (a BucketAmounts) Get(b Bucket) decimal.Decimal {
	switch b {
	case PreTax:
		return a.PreTax
	case PostTax:
		return a.PostTax
	default:
		return a.Cash
	}
}

// Set stores v for bucket b.
func (a *BucketAmounts) Set(b Bucket, v decimal.Decimal) {
	switch b {
	case PreTax:
		a.PreTax = v
	case PostTax:
		a.PostTax = v
	default:
		a.Cash = v
	}
}

// Add increases the amount for bucket b by v.
func (a *BucketAmounts) Add(b Bucket, v decimal.Decimal) {
	a.Set(b, a.Get(b).Add(v))
}

// Total sums all buckets.
func (a BucketAmounts) Total() decimal.Decimal {
	return a.PreTax.Add(a.PostTax).Add(a.Cash)
}

// DepositAmounts carries deposits; the pre-tax bucket never receives one.
type DepositAmounts struct {
	PostTax decimal.Decimal `json:"post_tax"`
	Cash    decimal.Decimal `json:"cash"`
}

// Total sums both deposit buckets.
func (d DepositAmounts) Total() decimal.Decimal {
	return d.PostTax.Add(d.Cash)
}

// YearSnapshot is the recorded outcome of one simulated year. It is written
// once by the iteration runner and never mutated afterwards.
type YearSnapshot struct {
	Year        int             `json:"year"`
	Age         int             `json:"age"`
	Label       string          `json:"label"`
	Jan         Accounts        `json:"jan"`
	Dec         Accounts        `json:"dec"`
	Fees        BucketAmounts   `json:"fees"`
	Taxes       decimal.Decimal `json:"taxes"`
	Incomes     decimal.Decimal `json:"incomes"`
	Taxable     decimal.Decimal `json:"taxable"` // Portion of Incomes subject to income tax
	Expenses    decimal.Decimal `json:"expenses"`
	Withdrawals BucketAmounts   `json:"withdrawals"`
	Deposits    DepositAmounts  `json:"deposits"`
	Growth      BucketAmounts   `json:"growth"`
	Market      ROI             `json:"market"`
	Shortfall   decimal.Decimal `json:"shortfall"`
	Success     bool            `json:"success"`
}

// EndingBalance returns the December total. A failed year never reaches
// December, so its recorded balance is the January total.
func (ys *YearSnapshot) EndingBalance() decimal.Decimal {
	if !ys.Success {
		return ys.Jan.Total()
	}
	return ys.Dec.Total()
}

// Outflows returns everything the household spent: expenses plus taxes.
func (ys *YearSnapshot) Outflows() decimal.Decimal {
	return ys.Expenses.Add(ys.Taxes)
}

// IterationResult is the outcome of one simulated life path. Years aliases
// the simulation's shared result buffer.
type IterationResult struct {
	Index   int            `json:"index"`
	Success bool           `json:"success"`
	Years   []YearSnapshot `json:"years"`
}

// SurvivedYears counts fully funded years.
func (ir *IterationResult) SurvivedYears() int {
	if len(ir.Years) == 0 {
		return 0
	}
	if ir.Years[len(ir.Years)-1].Success {
		return len(ir.Years)
	}
	return len(ir.Years) - 1
}

// EndingBalance returns the balance of the last recorded year.
func (ir *IterationResult) EndingBalance() decimal.Decimal {
	if len(ir.Years) == 0 {
		return decimal.Zero
	}
	return ir.Years[len(ir.Years)-1].EndingBalance()
}

// Less orders iterations worst first: fewer survived years, then lower ending
// balance, then index.
func (ir *IterationResult) Less(other *IterationResult) bool {
	a, b := ir.SurvivedYears(), other.SurvivedYears()
	if a != b {
		return a < b
	}
	if c := ir.EndingBalance().Cmp(other.EndingBalance()); c != 0 {
		return c < 0
	}
	return ir.Index < other.Index
}

// SimulationResult is the ordered (worst to best) set of iteration outcomes.
type SimulationResult struct {
	Iterations          []IterationResult `json:"iterations"`
	Strategies          []string          `json:"strategies"`
	RequestedIterations int               `json:"requested_iterations"`
	Years               int               `json:"years"`
	Seed                int64             `json:"seed"`
}

// SuccessRate returns the fraction of iterations that reached the horizon.
func (sr *SimulationResult) SuccessRate() decimal.Decimal {
	if len(sr.Iterations) == 0 {
		return decimal.Zero
	}
	successCount := 0
	for i := range sr.Iterations {
		if sr.Iterations[i].Success {
			successCount++
		}
	}
	return decimal.NewFromInt(int64(successCount)).Div(decimal.NewFromInt(int64(len(sr.Iterations))))
}

// PercentileRanges represents percentile ranges for simulation results
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}
