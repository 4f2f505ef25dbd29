package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is the recurrence a budget is configured for.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

func Periods() []Period {
	return []Period{PeriodWeekly, PeriodMonthly, PeriodYearly}
}

func (p Period) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}

	return false
}

// Budget is a spending cap for one category.
type Budget struct {
	ID        string          `json:"id"`
	Category  Category        `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Period    Period          `json:"period"`
	CreatedAt time.Time       `json:"createdAt"`
}

type BudgetInput struct {
	Category Category
	Amount   decimal.Decimal
	Period   Period
}

// BudgetPatch holds the fields to overwrite; nil fields are left untouched.
type BudgetPatch struct {
	Category *Category
	Amount   *decimal.Decimal
	Period   *Period
}

func (p BudgetPatch) apply(b *Budget) {
	if p.Category != nil {
		b.Category = *p.Category
	}

	if p.Amount != nil {
		b.Amount = *p.Amount
	}

	if p.Period != nil {
		b.Period = *p.Period
	}
}
