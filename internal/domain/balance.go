package domain

import (
	"fmt"

	money "github.com/rpgo/retirement-simulator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// Bucket identifies one of the three account pools tracked by the simulation.
type Bucket int

const (
	PreTax Bucket = iota
	PostTax
	Cash
)

// Buckets lists every bucket in reporting order.
var Buckets = []Bucket{PreTax, PostTax, Cash}

func (b Bucket) String() string {
	switch b {
	case PreTax:
		return "pre_tax"
	case PostTax:
		return "post_tax"
	case Cash:
		return "cash"
	default:
		return fmt.Sprintf("bucket(%d)", int(b))
	}
}

// ParseBucket resolves a configuration name to a Bucket.
func ParseBucket(name string) (Bucket, error) {
	switch name {
	case "pre_tax", "pretax", "traditional":
		return PreTax, nil
	case "post_tax", "posttax", "taxable", "brokerage":
		return PostTax, nil
	case "cash":
		return Cash, nil
	default:
		return 0, fmt.Errorf("unknown bucket %q", name)
	}
}

// GrowthRates holds the annual rates applied when a balance grows.
type GrowthRates struct {
	Stock decimal.Decimal `json:"stock"`
	Bond  decimal.Decimal `json:"bond"`
	Cash  decimal.Decimal `json:"cash"`
}

// BalanceSnapshot is the immutable view of a balance at a year boundary.
type BalanceSnapshot struct {
	Amount     decimal.Decimal `json:"amount"`
	Allocation decimal.Decimal `json:"allocation"`
	Stock      decimal.Decimal `json:"stock"`
	Bond       decimal.Decimal `json:"bond"`
}

// Balance is the contract shared by the cash and stock/bond account kinds.
type Balance interface {
	// Reset assigns the initial amount and target allocation. A negative
	// amount or an allocation outside [0,1] panics.
	Reset(amount, allocation decimal.Decimal)
	Total() decimal.Decimal
	TargetAllocation() decimal.Decimal
	CurrentAllocation() decimal.Decimal
	Drift() decimal.Decimal
	Rebalance(maxDrift decimal.Decimal) bool
	Reallocate(allocation, maxDrift decimal.Decimal) bool
	// Post deposits a positive amount or withdraws a negative one. Withdrawals
	// are capped at the available total.
	Post(amount decimal.Decimal)
	// Grow applies one year of returns and reports the realized change.
	Grow(rates GrowthRates) decimal.Decimal
	Snapshot() BalanceSnapshot
}

func mustBeValid(amount, allocation decimal.Decimal) {
	if amount.IsNegative() {
		panic(fmt.Sprintf("balance: negative initial amount %s", amount))
	}
	if allocation.IsNegative() || allocation.GreaterThan(money.One) {
		panic(fmt.Sprintf("balance: allocation %s outside [0,1]", allocation))
	}
}

// grow applies rate to amount, clamping the result at zero. It returns the new
// amount and the realized change.
func grow(amount, rate decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	next := money.Snap(amount.Add(amount.Mul(rate)))
	if next.IsNegative() {
		return decimal.Zero, amount.Neg()
	}
	return next, next.Sub(amount)
}

// CashBalance is a single-asset balance with a fixed allocation of 1.0.
type CashBalance struct {
	amount decimal.Decimal
}

// NewCashBalance creates a cash balance holding amount.
func NewCashBalance(amount decimal.Decimal) *CashBalance {
	b := &CashBalance{}
	b.Reset(amount, money.One)
	return b
}

func (b *CashBalance) Reset(amount, _ decimal.Decimal) {
	mustBeValid(amount, money.One)
	b.amount = amount
}

func (b *CashBalance) Total() decimal.Decimal             { return b.amount }
func (b *CashBalance) TargetAllocation() decimal.Decimal  { return money.One }
func (b *CashBalance) CurrentAllocation() decimal.Decimal { return money.One }
func (b *CashBalance) Drift() decimal.Decimal             { return decimal.Zero }

// Rebalance is a no-op for a single-asset balance.
func (b *CashBalance) Rebalance(decimal.Decimal) bool { return false }

// Reallocate is a no-op for a single-asset balance.
func (b *CashBalance) Reallocate(decimal.Decimal, decimal.Decimal) bool { return false }

func (b *CashBalance) Post(amount decimal.Decimal) {
	if amount.IsPositive() {
		b.amount = b.amount.Add(amount)
		return
	}
	withdrawal := money.Min(amount.Neg(), b.amount)
	b.amount = money.NonNegative(money.Snap(b.amount.Sub(withdrawal)))
}

func (b *CashBalance) Grow(rates GrowthRates) decimal.Decimal {
	var change decimal.Decimal
	b.amount, change = grow(b.amount, rates.Cash)
	return change
}

func (b *CashBalance) Snapshot() BalanceSnapshot {
	return BalanceSnapshot{
		Amount:     b.amount,
		Allocation: money.One,
	}
}

// StockBondBalance is a two-asset balance with a target stock allocation.
// Outside of the window between a Post and the next Rebalance the current
// allocation tracks the target.
type StockBondBalance struct {
	stock  decimal.Decimal
	bond   decimal.Decimal
	target decimal.Decimal
}

// NewStockBondBalance creates a balance split by allocation (stock fraction).
func NewStockBondBalance(amount, allocation decimal.Decimal) *StockBondBalance {
	b := &StockBondBalance{}
	b.Reset(amount, allocation)
	return b
}

func (b *StockBondBalance) Reset(amount, allocation decimal.Decimal) {
	mustBeValid(amount, allocation)
	b.target = allocation
	b.stock = amount.Mul(allocation)
	b.bond = amount.Sub(b.stock)
}

func (b *StockBondBalance) Total() decimal.Decimal            { return b.stock.Add(b.bond) }
func (b *StockBondBalance) TargetAllocation() decimal.Decimal { return b.target }

// Stock returns the stock sleeve.
func (b *StockBondBalance) Stock() decimal.Decimal { return b.stock }

// Bond returns the bond sleeve.
func (b *StockBondBalance) Bond() decimal.Decimal { return b.bond }

// CurrentAllocation returns stock/(stock+bond), or the target when empty.
func (b *StockBondBalance) CurrentAllocation() decimal.Decimal {
	total := b.Total()
	if total.IsZero() {
		return b.target
	}
	return b.stock.Div(total)
}

func (b *StockBondBalance) Drift() decimal.Decimal {
	return b.CurrentAllocation().Sub(b.target).Abs()
}

func (b *StockBondBalance) Rebalance(maxDrift decimal.Decimal) bool {
	if b.Drift().LessThanOrEqual(maxDrift) {
		return false
	}
	b.rebalance()
	return true
}

// Reallocate moves the target and rebalances unconditionally. It reports
// whether the drift against the new target exceeded maxDrift before trading.
func (b *StockBondBalance) Reallocate(allocation, maxDrift decimal.Decimal) bool {
	mustBeValid(decimal.Zero, allocation)
	b.target = allocation
	material := b.Drift().GreaterThan(maxDrift)
	b.rebalance()
	return material
}

func (b *StockBondBalance) rebalance() {
	total := b.Total()
	b.stock = total.Mul(b.target)
	b.bond = total.Sub(b.stock)
}

func (b *StockBondBalance) Post(amount decimal.Decimal) {
	if amount.IsPositive() {
		toStock := amount.Mul(b.target)
		b.stock = b.stock.Add(toStock)
		b.bond = b.bond.Add(amount.Sub(toStock))
		return
	}

	total := b.Total()
	withdrawal := money.Min(amount.Neg(), total)
	if !withdrawal.IsPositive() {
		return
	}

	fromStock := withdrawal.Mul(b.stock).Div(total)
	fromBond := withdrawal.Sub(fromStock)

	// Rounding can leave one sleeve a hair short; pull the rest from the other.
	if fromStock.GreaterThan(b.stock) {
		fromBond = fromBond.Add(fromStock.Sub(b.stock))
		fromStock = b.stock
	}
	if fromBond.GreaterThan(b.bond) {
		fromStock = fromStock.Add(fromBond.Sub(b.bond))
		fromBond = b.bond
	}

	b.stock = money.NonNegative(money.Snap(b.stock.Sub(fromStock)))
	b.bond = money.NonNegative(money.Snap(b.bond.Sub(fromBond)))
}

func (b *StockBondBalance) Grow(rates GrowthRates) decimal.Decimal {
	var stockChange, bondChange decimal.Decimal
	b.stock, stockChange = grow(b.stock, rates.Stock)
	b.bond, bondChange = grow(b.bond, rates.Bond)
	return stockChange.Add(bondChange)
}

func (b *StockBondBalance) Snapshot() BalanceSnapshot {
	return BalanceSnapshot{
		Amount:     b.Total(),
		Allocation: b.CurrentAllocation(),
		Stock:      b.stock,
		Bond:       b.bond,
	}
}
