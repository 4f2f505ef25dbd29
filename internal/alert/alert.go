// Package alert classifies budget utilisation for the current month.
package alert

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
)

type Severity string

const (
	SeverityNearBudget Severity = "near-budget"
	SeverityOverBudget Severity = "over-budget"
)

var (
	hundred       = decimal.NewFromInt(100)
	nearThreshold = decimal.RequireFromString("0.8")
)

// Alert is raised for a budget whose month-to-date spending is above 80% of its amount.
type Alert struct {
	BudgetID   string          `json:"budgetId"`
	Category   ledger.Category `json:"category"`
	Severity   Severity        `json:"severity"`
	Spent      decimal.Decimal `json:"spent"`
	Limit      decimal.Decimal `json:"limit"`
	Percentage decimal.Decimal `json:"percentage"`
	// Overage is spent minus limit, zero unless the budget is exceeded.
	Overage decimal.Decimal `json:"overage"`
	Message string          `json:"message"`
}

// Usage is a budget's month-to-date consumption.
type Usage struct {
	Budget     ledger.Budget   `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Percentage decimal.Decimal `json:"percentage"`
	Alert      *Alert          `json:"alert,omitempty"`
}

type Evaluator struct {
	format *money.Formatter
}

func NewEvaluator(format *money.Formatter) *Evaluator {
	if format == nil {
		format = money.Default()
	}

	return &Evaluator{format: format}
}

// Evaluate uses the default currency format.
func Evaluate(s ledger.Snapshot, asOf time.Time) []Alert {
	return NewEvaluator(nil).Evaluate(s, asOf)
}

// Evaluate returns one alert per budget in near or over state, in budget order.
// Spending is always measured over asOf's calendar month, whatever the budget's period.
func (e *Evaluator) Evaluate(s ledger.Snapshot, asOf time.Time) []Alert {
	var alerts []Alert

	for _, u := range e.Usage(s, asOf) {
		if u.Alert != nil {
			alerts = append(alerts, *u.Alert)
		}
	}

	return alerts
}

// Usage reports spending for every budget, with its alert if one applies.
func (e *Evaluator) Usage(s ledger.Snapshot, asOf time.Time) []Usage {
	spent := monthlySpending(s.Transactions, asOf)
	out := make([]Usage, 0, len(s.Budgets))

	for _, b := range s.Budgets {
		u := Usage{
			Budget:     b,
			Spent:      spent[b.Category],
			Percentage: percentage(spent[b.Category], b.Amount),
		}
		u.Alert = e.classify(b, u.Spent, u.Percentage)

		out = append(out, u)
	}

	return out
}

func (e *Evaluator) classify(b ledger.Budget, spent, pct decimal.Decimal) *Alert {
	a := Alert{
		BudgetID:   b.ID,
		Category:   b.Category,
		Spent:      spent,
		Limit:      b.Amount,
		Percentage: pct,
		Overage:    decimal.Zero,
	}

	switch {
	case spent.GreaterThan(b.Amount):
		a.Severity = SeverityOverBudget
		a.Overage = spent.Sub(b.Amount)
		a.Message = fmt.Sprintf("You've exceeded your %s budget by %s!", b.Category.Name(), e.format.Format(a.Overage))
	case spent.GreaterThan(b.Amount.Mul(nearThreshold)):
		a.Severity = SeverityNearBudget
		a.Message = fmt.Sprintf("You've spent %s of your %s budget!", e.format.Percent(pct, 0), b.Category.Name())
	default:
		return nil
	}

	return &a
}

func monthlySpending(txs []ledger.Transaction, asOf time.Time) map[ledger.Category]decimal.Decimal {
	sums := make(map[ledger.Category]decimal.Decimal)

	for _, tx := range txs {
		if tx.Type != ledger.TypeExpense || tx.Date.Year != asOf.Year() || tx.Date.Month != asOf.Month() {
			continue
		}

		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	return sums
}

func percentage(spent, limit decimal.Decimal) decimal.Decimal {
	if !limit.IsPositive() {
		return decimal.Zero
	}

	return spent.Div(limit).Mul(hundred).Round(1)
}
