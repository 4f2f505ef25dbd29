package ledger

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// TimeOfDay is a local wall-clock time formatted as HH:MM.
type TimeOfDay string

const timeOfDayLayout = "15:04"

// TimeOfDayOf formats the wall-clock part of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Format(timeOfDayLayout))
}

func (t TimeOfDay) Valid() bool {
	_, err := time.Parse(timeOfDayLayout, string(t))
	return err == nil
}

// Canonical zero-pads a valid time such as "9:05" to "09:05" so that times
// order correctly as strings. Invalid values are returned trimmed but otherwise
// unchanged.
func (t TimeOfDay) Canonical() TimeOfDay {
	s := strings.TrimSpace(string(t))

	parsed, err := time.Parse(timeOfDayLayout, s)
	if err != nil {
		return TimeOfDay(s)
	}

	return TimeOfDayOf(parsed)
}

// Transaction is a single income or expense event tied to a wallet.
type Transaction struct {
	ID       string          `json:"id"`
	Type     Type            `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	WalletID string          `json:"walletId"`
	Category Category        `json:"category"`
	Date     civil.Date      `json:"date"`
	Time     TimeOfDay       `json:"time"`
	Comment  string          `json:"comment"`
}

// Signed returns the amount as a balance delta: positive for income, negative for expense.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TypeIncome {
		return t.Amount
	}

	return t.Amount.Neg()
}

// Title is the comment, or the category name when there is no comment.
func (t Transaction) Title() string {
	if t.Comment != "" {
		return t.Comment
	}

	return t.Category.Name()
}

type TransactionInput struct {
	Type     Type            `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	WalletID string          `json:"walletId"`
	Category Category        `json:"category"`
	Date     civil.Date      `json:"date"`
	Time     TimeOfDay       `json:"time"`
	Comment  string          `json:"comment"`
}

// TransactionPatch holds the fields to overwrite; nil fields are left untouched.
type TransactionPatch struct {
	Type     *Type
	Amount   *decimal.Decimal
	WalletID *string
	Category *Category
	Date     *civil.Date
	Time     *TimeOfDay
	Comment  *string
}

func (p TransactionPatch) apply(tx *Transaction) {
	if p.Type != nil {
		tx.Type = *p.Type
	}

	if p.Amount != nil {
		tx.Amount = *p.Amount
	}

	if p.WalletID != nil {
		tx.WalletID = *p.WalletID
	}

	if p.Category != nil {
		tx.Category = *p.Category
	}

	if p.Date != nil {
		tx.Date = *p.Date
	}

	if p.Time != nil {
		tx.Time = p.Time.Canonical()
	}

	if p.Comment != nil {
		tx.Comment = sanitizeText(*p.Comment)
	}
}

// TransactionFilter narrows a transaction listing. Zero values match everything.
type TransactionFilter struct {
	Query    string
	Type     Type
	Category Category
	WalletID string
	Limit    int
}

func (f TransactionFilter) matches(tx Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}

	if f.Category != "" && tx.Category != f.Category {
		return false
	}

	if f.WalletID != "" && tx.WalletID != f.WalletID {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}

	return strings.Contains(strings.ToLower(tx.Comment), q) ||
		strings.Contains(strings.ToLower(tx.Category.Name()), q) ||
		strings.Contains(tx.Amount.String(), q)
}

// Apply returns the matching transactions, newest first by date then time.
func (f TransactionFilter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))

	for _, tx := range txs {
		if f.matches(tx) {
			out = append(out, tx)
		}
	}

	slices.SortStableFunc(out, func(a, b Transaction) int {
		switch {
		case a.Date.After(b.Date):
			return -1
		case a.Date.Before(b.Date):
			return 1
		}

		return cmp.Compare(b.Time.Canonical(), a.Time.Canonical())
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}

	return out
}
