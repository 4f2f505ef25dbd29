// Package analytics derives display values (balances, monthly deltas,
// category breakdowns) from a ledger snapshot. Every function is pure: the
// same snapshot and reference time always produce the same result.
package analytics

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
)

var hundred = decimal.NewFromInt(100)

// WalletBalance is the initial balance plus income minus expenses for the
// wallet. Unknown wallets have a zero balance.
func WalletBalance(s ledger.Snapshot, walletID string) decimal.Decimal {
	w, ok := s.Wallet(walletID)
	if !ok {
		return decimal.Zero
	}

	balance := w.InitialBalance

	for _, tx := range s.Transactions {
		if tx.WalletID == walletID {
			balance = balance.Add(tx.Signed())
		}
	}

	return balance
}

// WalletMonthChange is the wallet's net flow since the first day of asOf's month.
func WalletMonthChange(s ledger.Snapshot, walletID string, asOf time.Time) decimal.Decimal {
	start := monthStart(asOf)
	net := decimal.Zero

	for _, tx := range s.Transactions {
		if tx.WalletID == walletID && !tx.Date.Before(start) {
			net = net.Add(tx.Signed())
		}
	}

	return net
}

func TotalBalance(s ledger.Snapshot) decimal.Decimal {
	total := decimal.Zero

	for _, w := range s.Wallets {
		total = total.Add(WalletBalance(s, w.ID))
	}

	return total
}

// TotalMonthChange sums WalletMonthChange across all wallets.
func TotalMonthChange(s ledger.Snapshot, asOf time.Time) decimal.Decimal {
	total := decimal.Zero

	for _, w := range s.Wallets {
		total = total.Add(WalletMonthChange(s, w.ID, asOf))
	}

	return total
}

// WalletSummary pairs a wallet with its derived figures.
type WalletSummary struct {
	Wallet      ledger.Wallet
	Balance     decimal.Decimal
	MonthChange decimal.Decimal
}

func WalletSummaries(s ledger.Snapshot, asOf time.Time) []WalletSummary {
	out := make([]WalletSummary, 0, len(s.Wallets))

	for _, w := range s.Wallets {
		out = append(out, WalletSummary{
			Wallet:      w,
			Balance:     WalletBalance(s, w.ID),
			MonthChange: WalletMonthChange(s, w.ID, asOf),
		})
	}

	return out
}

// Mode says how a MonthChange value should be read.
type Mode string

const (
	// ModeAbsolute means Value is a currency amount (last month's net was zero).
	ModeAbsolute Mode = "absolute"
	// ModePercent means Value is a signed percentage relative to last month.
	ModePercent Mode = "percent"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

func directionOf(d decimal.Decimal) Direction {
	switch d.Sign() {
	case 1:
		return DirectionUp
	case -1:
		return DirectionDown
	}

	return DirectionFlat
}

// MonthChange compares this month's net flow against last month's.
type MonthChange struct {
	Mode      Mode
	Value     decimal.Decimal
	Direction Direction
	Current   decimal.Decimal
	Previous  decimal.Decimal
}

// MonthOverMonthChange compares the net flow of asOf's month with the
// preceding calendar month. When last month's net is exactly zero the result
// is the absolute current net instead of a percentage.
func MonthOverMonthChange(s ledger.Snapshot, asOf time.Time) MonthChange {
	thisMonth := monthStart(asOf)
	lastMonth := civil.DateOf(time.Date(asOf.Year(), asOf.Month()-1, 1, 0, 0, 0, 0, asOf.Location()))

	current, previous := decimal.Zero, decimal.Zero

	for _, tx := range s.Transactions {
		switch {
		case !tx.Date.Before(thisMonth):
			current = current.Add(tx.Signed())
		case !tx.Date.Before(lastMonth):
			previous = previous.Add(tx.Signed())
		}
	}

	if previous.IsZero() {
		return MonthChange{
			Mode:      ModeAbsolute,
			Value:     current,
			Direction: directionOf(current),
			Current:   current,
			Previous:  previous,
		}
	}

	pct := current.Sub(previous).Div(previous.Abs()).Mul(hundred)

	return MonthChange{
		Mode:      ModePercent,
		Value:     pct,
		Direction: directionOf(pct),
		Current:   current,
		Previous:  previous,
	}
}

// Label renders the change the way the dashboard shows it, e.g.
// "+₹30.00 from last month" or "-70.0% from last month".
func (c MonthChange) Label(f *money.Formatter) string {
	if c.Direction == DirectionFlat {
		return "No change from last month"
	}

	if c.Mode == ModeAbsolute {
		return f.FormatSigned(c.Value) + " from last month"
	}

	sign := ""
	if c.Direction == DirectionUp {
		sign = "+"
	}

	return sign + f.Percent(c.Value, 1) + " from last month"
}

// CategoryTotal is the expense sum for one category.
type CategoryTotal struct {
	Category ledger.Category
	Amount   decimal.Decimal
}

type Breakdown struct {
	// Categories holds categories with at least one expense, in canonical category order.
	Categories []CategoryTotal
	// Top is the category with the largest sum; ties go to the earlier category.
	Top    CategoryTotal
	HasTop bool
}

func CategoryBreakdown(s ledger.Snapshot) Breakdown {
	sums := make(map[ledger.Category]decimal.Decimal)

	for _, tx := range s.Transactions {
		if tx.Type != ledger.TypeExpense {
			continue
		}

		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	var b Breakdown

	for _, cat := range ledger.Categories() {
		sum, ok := sums[cat]
		if !ok {
			continue
		}

		b.Categories = append(b.Categories, CategoryTotal{Category: cat, Amount: sum})

		if sum.GreaterThan(b.Top.Amount) {
			b.Top = CategoryTotal{Category: cat, Amount: sum}
			b.HasTop = true
		}
	}

	return b
}

type Totals struct {
	Expense decimal.Decimal
	Income  decimal.Decimal
	// SavingsRate is (income - expense) / income * 100, or zero without income.
	SavingsRate decimal.Decimal
}

func AggregateTotals(s ledger.Snapshot) Totals {
	t := Totals{Expense: decimal.Zero, Income: decimal.Zero, SavingsRate: decimal.Zero}

	for _, tx := range s.Transactions {
		switch tx.Type {
		case ledger.TypeExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		case ledger.TypeIncome:
			t.Income = t.Income.Add(tx.Amount)
		}
	}

	if t.Income.IsPositive() {
		t.SavingsRate = t.Income.Sub(t.Expense).Div(t.Income).Mul(hundred)
	}

	return t
}

// Greeting returns the time-of-day salutation for name.
func Greeting(name string, at time.Time) string {
	greeting := "Good Morning"

	switch h := at.Hour(); {
	case h >= 18:
		greeting = "Good Evening"
	case h >= 12:
		greeting = "Good Afternoon"
	}

	if name == "" {
		return greeting
	}

	return greeting + ", " + name + "!"
}

func monthStart(t time.Time) civil.Date {
	return civil.Date{Year: t.Year(), Month: t.Month(), Day: 1}
}
