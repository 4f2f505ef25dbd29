package analytics_test

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/analytics"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
)

var asOf = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func tx(id, wallet string, typ ledger.Type, amount string, cat ledger.Category, d civil.Date) ledger.Transaction {
	return ledger.Transaction{
		ID:       id,
		Type:     typ,
		Amount:   dec(amount),
		WalletID: wallet,
		Category: cat,
		Date:     d,
		Time:     "10:00",
	}
}

func TestWalletBalance(t *testing.T) {
	snap := ledger.Snapshot{
		Wallets: []ledger.Wallet{
			{ID: "cash", Name: "Cash", Type: ledger.WalletCash, InitialBalance: dec("100")},
			{ID: "bank", Name: "Bank", Type: ledger.WalletBank, InitialBalance: dec("0")},
		},
		Transactions: []ledger.Transaction{
			tx("t1", "cash", ledger.TypeExpense, "30", ledger.CategoryFood, date(2026, 3, 10)),
			tx("t2", "bank", ledger.TypeIncome, "500", ledger.CategoryOther, date(2026, 2, 1)),
			tx("t3", "bank", ledger.TypeExpense, "120.50", ledger.CategoryBills, date(2026, 3, 2)),
		},
	}

	type testCase struct {
		name     string
		walletID string
		want     string
	}

	tests := []testCase{
		{name: "initial balance minus expense", walletID: "cash", want: "70"},
		{name: "income and expense", walletID: "bank", want: "379.5"},
		{name: "unknown wallet", walletID: "missing", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analytics.WalletBalance(snap, tt.walletID)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}

	assert.True(t, dec("449.5").Equal(analytics.TotalBalance(snap)))
}

func TestWalletMonthChange(t *testing.T) {
	snap := ledger.Snapshot{
		Wallets: []ledger.Wallet{{ID: "bank", Name: "Bank", Type: ledger.WalletBank, InitialBalance: dec("1000")}},
		Transactions: []ledger.Transaction{
			tx("t1", "bank", ledger.TypeIncome, "500", ledger.CategoryOther, date(2026, 2, 28)),
			tx("t2", "bank", ledger.TypeIncome, "200", ledger.CategoryOther, date(2026, 3, 1)),
			tx("t3", "bank", ledger.TypeExpense, "50", ledger.CategoryFood, date(2026, 3, 14)),
		},
	}

	assert.True(t, dec("150").Equal(analytics.WalletMonthChange(snap, "bank", asOf)))
	assert.True(t, dec("150").Equal(analytics.TotalMonthChange(snap, asOf)))

	summaries := analytics.WalletSummaries(snap, asOf)
	require.Len(t, summaries, 1)
	assert.Equal(t, "bank", summaries[0].Wallet.ID)
	assert.True(t, dec("1650").Equal(summaries[0].Balance))
	assert.True(t, dec("150").Equal(summaries[0].MonthChange))
}

func TestMonthOverMonthChange(t *testing.T) {
	type testCase struct {
		name          string
		transactions  []ledger.Transaction
		wantMode      analytics.Mode
		wantValue     string
		wantDirection analytics.Direction
	}

	tests := []testCase{
		{
			name: "percent against last month",
			transactions: []ledger.Transaction{
				tx("t1", "w", ledger.TypeIncome, "200", ledger.CategoryOther, date(2026, 2, 3)),
				tx("t2", "w", ledger.TypeExpense, "100", ledger.CategoryFood, date(2026, 2, 20)),
				tx("t3", "w", ledger.TypeIncome, "50", ledger.CategoryOther, date(2026, 3, 2)),
				tx("t4", "w", ledger.TypeExpense, "20", ledger.CategoryFood, date(2026, 3, 5)),
			},
			wantMode:      analytics.ModePercent,
			wantValue:     "-70",
			wantDirection: analytics.DirectionDown,
		},
		{
			name: "negative last month uses absolute denominator",
			transactions: []ledger.Transaction{
				tx("t1", "w", ledger.TypeExpense, "50", ledger.CategoryFood, date(2026, 2, 3)),
				tx("t2", "w", ledger.TypeIncome, "50", ledger.CategoryOther, date(2026, 3, 2)),
			},
			wantMode:      analytics.ModePercent,
			wantValue:     "200",
			wantDirection: analytics.DirectionUp,
		},
		{
			name: "zero last month falls back to absolute",
			transactions: []ledger.Transaction{
				tx("t1", "w", ledger.TypeIncome, "30", ledger.CategoryOther, date(2026, 3, 2)),
				tx("t2", "w", ledger.TypeExpense, "10", ledger.CategoryFood, date(2026, 1, 31)),
			},
			wantMode:      analytics.ModeAbsolute,
			wantValue:     "30",
			wantDirection: analytics.DirectionUp,
		},
		{
			name:          "no transactions",
			wantMode:      analytics.ModeAbsolute,
			wantValue:     "0",
			wantDirection: analytics.DirectionFlat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analytics.MonthOverMonthChange(ledger.Snapshot{Transactions: tt.transactions}, asOf)

			assert.Equal(t, tt.wantMode, got.Mode)
			assert.Equal(t, tt.wantDirection, got.Direction)
			assert.True(t, dec(tt.wantValue).Equal(got.Value), "got %s", got.Value)
		})
	}
}

func TestMonthOverMonthChange_JanuaryComparesDecember(t *testing.T) {
	snap := ledger.Snapshot{
		Transactions: []ledger.Transaction{
			tx("t1", "w", ledger.TypeIncome, "100", ledger.CategoryOther, date(2025, 12, 31)),
			tx("t2", "w", ledger.TypeIncome, "150", ledger.CategoryOther, date(2026, 1, 1)),
		},
	}

	got := analytics.MonthOverMonthChange(snap, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, analytics.ModePercent, got.Mode)
	assert.True(t, dec("50").Equal(got.Value), "got %s", got.Value)
	assert.True(t, dec("100").Equal(got.Previous))
}

func TestCategoryBreakdown(t *testing.T) {
	t.Run("tie goes to earlier category", func(t *testing.T) {
		snap := ledger.Snapshot{
			Transactions: []ledger.Transaction{
				tx("t1", "w", ledger.TypeExpense, "30", ledger.CategoryTransport, date(2026, 3, 1)),
				tx("t2", "w", ledger.TypeExpense, "10", ledger.CategoryFood, date(2026, 3, 1)),
				tx("t3", "w", ledger.TypeExpense, "20", ledger.CategoryFood, date(2026, 3, 2)),
				tx("t4", "w", ledger.TypeIncome, "999", ledger.CategoryOther, date(2026, 3, 2)),
			},
		}

		got := analytics.CategoryBreakdown(snap)

		require.True(t, got.HasTop)
		assert.Equal(t, ledger.CategoryFood, got.Top.Category)
		assert.True(t, dec("30").Equal(got.Top.Amount))

		require.Len(t, got.Categories, 2)
		assert.Equal(t, ledger.CategoryFood, got.Categories[0].Category)
		assert.Equal(t, ledger.CategoryTransport, got.Categories[1].Category)
	})

	t.Run("no expenses has no top category", func(t *testing.T) {
		snap := ledger.Snapshot{
			Transactions: []ledger.Transaction{
				tx("t1", "w", ledger.TypeIncome, "100", ledger.CategoryOther, date(2026, 3, 1)),
			},
		}

		got := analytics.CategoryBreakdown(snap)

		assert.False(t, got.HasTop)
		assert.Empty(t, got.Categories)
	})
}

func TestAggregateTotals(t *testing.T) {
	t.Run("savings rate", func(t *testing.T) {
		snap := ledger.Snapshot{
			Transactions: []ledger.Transaction{
				tx("t1", "w", ledger.TypeIncome, "250", ledger.CategoryOther, date(2026, 3, 1)),
				tx("t2", "w", ledger.TypeExpense, "120", ledger.CategoryFood, date(2026, 3, 1)),
			},
		}

		got := analytics.AggregateTotals(snap)

		assert.True(t, dec("250").Equal(got.Income))
		assert.True(t, dec("120").Equal(got.Expense))
		assert.True(t, dec("52").Equal(got.SavingsRate), "got %s", got.SavingsRate)
	})

	t.Run("no income", func(t *testing.T) {
		snap := ledger.Snapshot{
			Transactions: []ledger.Transaction{
				tx("t1", "w", ledger.TypeExpense, "40", ledger.CategoryFood, date(2026, 3, 1)),
			},
		}

		got := analytics.AggregateTotals(snap)

		assert.True(t, got.SavingsRate.IsZero())
	})
}

func TestGreeting(t *testing.T) {
	type testCase struct {
		name string
		hour int
		user string
		want string
	}

	tests := []testCase{
		{name: "morning", hour: 8, user: "Asha", want: "Good Morning, Asha!"},
		{name: "afternoon", hour: 12, user: "Asha", want: "Good Afternoon, Asha!"},
		{name: "evening", hour: 21, user: "Asha", want: "Good Evening, Asha!"},
		{name: "no name", hour: 7, want: "Good Morning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := time.Date(2026, 3, 15, tt.hour, 0, 0, 0, time.UTC)
			assert.Equal(t, tt.want, analytics.Greeting(tt.user, at))
		})
	}
}

func TestMonthChange_Label(t *testing.T) {
	f := money.Default()

	type testCase struct {
		name   string
		change analytics.MonthChange
		want   string
	}

	tests := []testCase{
		{
			name:   "absolute gain",
			change: analytics.MonthChange{Mode: analytics.ModeAbsolute, Value: dec("30"), Direction: analytics.DirectionUp},
			want:   "+₹30.00 from last month",
		},
		{
			name:   "absolute loss",
			change: analytics.MonthChange{Mode: analytics.ModeAbsolute, Value: dec("-1250"), Direction: analytics.DirectionDown},
			want:   "-₹1,250.00 from last month",
		},
		{
			name:   "percent drop",
			change: analytics.MonthChange{Mode: analytics.ModePercent, Value: dec("-70"), Direction: analytics.DirectionDown},
			want:   "-70.0% from last month",
		},
		{
			name:   "percent rise",
			change: analytics.MonthChange{Mode: analytics.ModePercent, Value: dec("12.345"), Direction: analytics.DirectionUp},
			want:   "+12.3% from last month",
		},
		{
			name:   "flat",
			change: analytics.MonthChange{Mode: analytics.ModePercent, Value: dec("0"), Direction: analytics.DirectionFlat},
			want:   "No change from last month",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.change.Label(f))
		})
	}
}
