package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fintrack/internal/analytics"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

var fixedNow = time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, persister ledger.Persister, initial ledger.Snapshot) *ledger.Service {
	t.Helper()

	n := 0

	return ledger.NewService(persister, initial,
		ledger.WithClock(func() time.Time { return fixedNow }),
		ledger.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func newPersister(t *testing.T) *ledger.MockPersister {
	t.Helper()

	ctrl := gomock.NewController(t)
	p := ledger.NewMockPersister(ctrl)
	p.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func today() civil.Date {
	return civil.DateOf(fixedNow)
}

func TestService_CreateWallet(t *testing.T) {
	type args struct {
		input ledger.WalletInput
	}

	type testCase struct {
		name    string
		args    args
		wantErr string
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{input: ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash, InitialBalance: dec("100")}},
		},
		{
			name:    "NegativeBalance",
			args:    args{input: ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash, InitialBalance: dec("-1")}},
			wantErr: "Initial balance cannot be negative",
		},
		{
			name:    "MissingName",
			args:    args{input: ledger.WalletInput{Name: "  ", Type: ledger.WalletBank}},
			wantErr: "Wallet name is required",
		},
		{
			name:    "UnknownType",
			args:    args{input: ledger.WalletInput{Name: "Crypto", Type: "crypto"}},
			wantErr: "Wallet type is not recognised",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, newPersister(t), ledger.Snapshot{})

			got, err := svc.CreateWallet(context.Background(), tt.args.input)

			if tt.wantErr != "" {
				var verr *ledger.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantErr, verr.Error())
				assert.Empty(t, svc.Wallets())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "id-1", got.ID)
			assert.Equal(t, []ledger.Wallet{got}, svc.Wallets())
		})
	}
}

func TestService_CreateWallet_StripsScript(t *testing.T) {
	svc := newTestService(t, newPersister(t), ledger.Snapshot{})

	w, err := svc.CreateWallet(context.Background(), ledger.WalletInput{
		Name: `Cash<script>alert("x")</script>`,
		Type: ledger.WalletCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cash", w.Name)
}

func TestService_UpdateWallet(t *testing.T) {
	svc := newTestService(t, newPersister(t), ledger.Snapshot{})
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash, InitialBalance: dec("10")})
	require.NoError(t, err)

	name := "Pocket"
	updated, err := svc.UpdateWallet(ctx, w.ID, ledger.WalletPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Pocket", updated.Name)
	assert.Equal(t, ledger.WalletCash, updated.Type)
	assert.True(t, dec("10").Equal(updated.InitialBalance))

	negative := dec("-5")
	_, err = svc.UpdateWallet(ctx, w.ID, ledger.WalletPatch{InitialBalance: &negative})

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)

	stored, err := svc.Wallet(w.ID)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(stored.InitialBalance))

	_, err = svc.UpdateWallet(ctx, "missing", ledger.WalletPatch{Name: &name})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_DeleteWallet_Cascades(t *testing.T) {
	svc := newTestService(t, newPersister(t), ledger.Snapshot{})
	ctx := context.Background()

	cash, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash})
	require.NoError(t, err)

	bank, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Bank", Type: ledger.WalletBank})
	require.NoError(t, err)

	for _, walletID := range []string{cash.ID, bank.ID, cash.ID} {
		_, err := svc.CreateTransaction(ctx, ledger.TransactionInput{
			Type:     ledger.TypeExpense,
			Amount:   dec("5"),
			WalletID: walletID,
			Category: ledger.CategoryFood,
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteWallet(ctx, cash.ID))

	snap := svc.Snapshot()
	assert.Len(t, snap.Wallets, 1)
	require.Len(t, snap.Transactions, 1)

	for _, tx := range snap.Transactions {
		assert.NotEqual(t, cash.ID, tx.WalletID)
	}

	assert.ErrorIs(t, svc.DeleteWallet(ctx, cash.ID), ledger.ErrNotFound)
}

func TestService_CreateTransaction_Validation(t *testing.T) {
	type args struct {
		input ledger.TransactionInput
	}

	type testCase struct {
		name           string
		args           args
		wantViolations []string
	}

	tomorrow := today().AddDays(1)

	tests := []testCase{
		{
			name: "AllRulesBroken",
			args: args{input: ledger.TransactionInput{
				Type:   "transfer",
				Amount: dec("0"),
				Date:   tomorrow,
				Time:   "25:99",
			}},
			wantViolations: []string{
				"Amount must be positive",
				"Wallet is required",
				"Category is required",
				"Transaction type must be income or expense",
				"Future dates not allowed",
				"Time must use the HH:MM format",
			},
		},
		{
			name: "UnknownWallet",
			args: args{input: ledger.TransactionInput{
				Type:     ledger.TypeIncome,
				Amount:   dec("1"),
				WalletID: "ghost",
				Category: ledger.CategoryOther,
			}},
			wantViolations: []string{"Selected wallet not found"},
		},
		{
			name: "UnknownCategory",
			args: args{input: ledger.TransactionInput{
				Type:     ledger.TypeIncome,
				Amount:   dec("1"),
				WalletID: "id-1",
				Category: "travel",
			}},
			wantViolations: []string{"Category is not recognised"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, newPersister(t), ledger.Snapshot{})
			_, err := svc.CreateWallet(context.Background(), ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash})
			require.NoError(t, err)

			_, err = svc.CreateTransaction(context.Background(), tt.args.input)

			var verr *ledger.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantViolations, verr.Violations)
			assert.Equal(t, tt.wantViolations[0], err.Error())
			assert.Empty(t, svc.Snapshot().Transactions)
		})
	}
}

func TestService_CreateTransaction_Defaults(t *testing.T) {
	svc := newTestService(t, newPersister(t), ledger.Snapshot{})
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash})
	require.NoError(t, err)

	tx, err := svc.CreateTransaction(ctx, ledger.TransactionInput{
		Type:     ledger.TypeIncome,
		Amount:   dec("12.5"),
		WalletID: w.ID,
		Category: ledger.CategoryOther,
	})
	require.NoError(t, err)
	assert.Equal(t, today(), tx.Date)
	assert.Equal(t, ledger.TimeOfDay("12:30"), tx.Time)
}

func TestService_UpdateTransaction_PreservesFields(t *testing.T) {
	svc := newTestService(t, newPersister(t), ledger.Snapshot{})
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash})
	require.NoError(t, err)

	original, err := svc.CreateTransaction(ctx, ledger.TransactionInput{
		Type:     ledger.TypeExpense,
		Amount:   dec("30"),
		WalletID: w.ID,
		Category: ledger.CategoryFood,
		Date:     today(),
		Time:     "09:15",
		Comment:  "Lunch",
	})
	require.NoError(t, err)

	amount := dec("45")
	updated, err := svc.UpdateTransaction(ctx, original.ID, ledger.TransactionPatch{Amount: &amount})
	require.NoError(t, err)

	want := original
	want.Amount = amount
	assert.Equal(t, want, updated)

	badWallet := "ghost"
	_, err = svc.UpdateTransaction(ctx, original.ID, ledger.TransactionPatch{WalletID: &badWallet})

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.UpdateTransaction(ctx, "missing", ledger.TransactionPatch{Amount: &amount})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_DeleteTransaction(t *testing.T) {
	svc := newTestService(t, newPersister(t), ledger.Snapshot{})
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash})
	require.NoError(t, err)

	tx, err := svc.CreateTransaction(ctx, ledger.TransactionInput{
		Type: ledger.TypeExpense, Amount: dec("1"), WalletID: w.ID, Category: ledger.CategoryBills,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(ctx, tx.ID))
	assert.Empty(t, svc.Snapshot().Transactions)
	assert.Len(t, svc.Wallets(), 1)

	assert.ErrorIs(t, svc.DeleteTransaction(ctx, tx.ID), ledger.ErrNotFound)
}

func TestService_CreateBudget_DuplicateCategory(t *testing.T) {
	type testCase struct {
		name   string
		second ledger.BudgetInput
	}

	tests := []testCase{
		{name: "SameAmountAndPeriod", second: ledger.BudgetInput{Category: ledger.CategoryFood, Amount: dec("500"), Period: ledger.PeriodMonthly}},
		{name: "DifferentAmount", second: ledger.BudgetInput{Category: ledger.CategoryFood, Amount: dec("9999"), Period: ledger.PeriodMonthly}},
		{name: "DifferentPeriod", second: ledger.BudgetInput{Category: ledger.CategoryFood, Amount: dec("1"), Period: ledger.PeriodWeekly}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, newPersister(t), ledger.Snapshot{})
			ctx := context.Background()

			_, err := svc.CreateBudget(ctx, ledger.BudgetInput{Category: ledger.CategoryFood, Amount: dec("500"), Period: ledger.PeriodMonthly})
			require.NoError(t, err)

			_, err = svc.CreateBudget(ctx, tt.second)

			var cerr *ledger.ConflictError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "Budget for this category already exists", err.Error())
			assert.Len(t, svc.Budgets(), 1)
		})
	}
}

func TestService_UpdateBudget(t *testing.T) {
	svc := newTestService(t, newPersister(t), ledger.Snapshot{})
	ctx := context.Background()

	food, err := svc.CreateBudget(ctx, ledger.BudgetInput{Category: ledger.CategoryFood, Amount: dec("500"), Period: ledger.PeriodMonthly})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, food.CreatedAt)

	bills, err := svc.CreateBudget(ctx, ledger.BudgetInput{Category: ledger.CategoryBills, Amount: dec("200"), Period: ledger.PeriodMonthly})
	require.NoError(t, err)

	// Re-saving a budget with its own category is not a conflict.
	amount := dec("600")
	updated, err := svc.UpdateBudget(ctx, food.ID, ledger.BudgetPatch{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, amount.Equal(updated.Amount))
	assert.Equal(t, food.CreatedAt, updated.CreatedAt)

	category := ledger.CategoryFood
	_, err = svc.UpdateBudget(ctx, bills.ID, ledger.BudgetPatch{Category: &category})

	var cerr *ledger.ConflictError
	require.ErrorAs(t, err, &cerr)

	zero := decimal.Zero
	_, err = svc.UpdateBudget(ctx, bills.ID, ledger.BudgetPatch{Amount: &zero})

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Budget amount must be positive", verr.Error())

	require.NoError(t, svc.DeleteBudget(ctx, bills.ID))
	assert.ErrorIs(t, svc.DeleteBudget(ctx, bills.ID), ledger.ErrNotFound)
}

func TestService_StorageFailureKeepsMutation(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := ledger.NewMockPersister(ctrl)
	p.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("quota exceeded"))

	svc := newTestService(t, p, ledger.Snapshot{})

	w, err := svc.CreateWallet(context.Background(), ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash})
	require.Error(t, err)
	assert.True(t, ledger.IsStorageError(err))
	assert.Equal(t, "Cash", w.Name)
	assert.Len(t, svc.Wallets(), 1)
}

func TestService_FlushesEveryMutation(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := ledger.NewMockPersister(ctrl)

	var saved ledger.Snapshot

	p.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap ledger.Snapshot) error {
			saved = snap
			return nil
		}).Times(3)

	svc := newTestService(t, p, ledger.Snapshot{})
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash})
	require.NoError(t, err)
	require.NoError(t, svc.SetUserName(ctx, "Asha"))
	require.NoError(t, svc.DeleteWallet(ctx, w.ID))

	assert.Empty(t, saved.Wallets)
	assert.Equal(t, "Asha", saved.UserName)

	// A failed validation does not flush.
	_, err = svc.CreateWallet(ctx, ledger.WalletInput{Type: ledger.WalletCash})
	require.Error(t, err)
}

func TestService_ClearAllAndReplace(t *testing.T) {
	svc := newTestService(t, newPersister(t), ledger.Snapshot{UserName: "Asha"})
	ctx := context.Background()

	_, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash})
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll(ctx))

	snap := svc.Snapshot()
	assert.Empty(t, snap.Wallets)
	assert.Equal(t, "Asha", snap.UserName)

	replacement := ledger.Snapshot{
		Wallets:  []ledger.Wallet{{ID: "w1", Name: "Imported", Type: ledger.WalletBank}},
		UserName: "Ravi",
	}
	require.NoError(t, svc.Replace(ctx, replacement))

	got := svc.Snapshot()
	assert.Equal(t, replacement.Wallets, got.Wallets)
	assert.Equal(t, "Ravi", got.UserName)

	// The caller's snapshot is detached from the store.
	replacement.Wallets[0].Name = "Changed"
	assert.Equal(t, "Imported", svc.Wallets()[0].Name)
}

func TestService_ListTransactions(t *testing.T) {
	svc := newTestService(t, newPersister(t), ledger.Snapshot{})
	ctx := context.Background()

	cash, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash})
	require.NoError(t, err)

	bank, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Bank", Type: ledger.WalletBank})
	require.NoError(t, err)

	inputs := []ledger.TransactionInput{
		{Type: ledger.TypeExpense, Amount: dec("30"), WalletID: cash.ID, Category: ledger.CategoryFood, Date: today().AddDays(-2), Time: "08:00", Comment: "Groceries"},
		{Type: ledger.TypeIncome, Amount: dec("1000"), WalletID: bank.ID, Category: ledger.CategoryOther, Date: today(), Time: "09:00", Comment: "Salary"},
		{Type: ledger.TypeExpense, Amount: dec("12"), WalletID: cash.ID, Category: ledger.CategoryTransport, Date: today(), Time: "18:45"},
	}

	for _, in := range inputs {
		_, err := svc.CreateTransaction(ctx, in)
		require.NoError(t, err)
	}

	all := svc.ListTransactions(ledger.TransactionFilter{})
	require.Len(t, all, 3)
	assert.Equal(t, ledger.TimeOfDay("18:45"), all[0].Time)
	assert.Equal(t, "Salary", all[1].Comment)
	assert.Equal(t, "Groceries", all[2].Comment)

	assert.Len(t, svc.ListTransactions(ledger.TransactionFilter{Type: ledger.TypeExpense}), 2)
	assert.Len(t, svc.ListTransactions(ledger.TransactionFilter{WalletID: bank.ID}), 1)
	assert.Len(t, svc.ListTransactions(ledger.TransactionFilter{Category: ledger.CategoryFood}), 1)
	assert.Len(t, svc.ListTransactions(ledger.TransactionFilter{Query: "transportation"}), 1)
	assert.Len(t, svc.ListTransactions(ledger.TransactionFilter{Query: "1000"}), 1)
	assert.Len(t, svc.ListTransactions(ledger.TransactionFilter{Limit: 2}), 2)
}

func TestService_ListTransactions_OrdersSingleDigitHours(t *testing.T) {
	svc := newTestService(t, newPersister(t), ledger.Snapshot{})
	ctx := context.Background()

	w, err := svc.CreateWallet(ctx, ledger.WalletInput{Name: "Cash", Type: ledger.WalletCash})
	require.NoError(t, err)

	day := civil.Date{Year: 2026, Month: time.March, Day: 10}

	morning, err := svc.CreateTransaction(ctx, ledger.TransactionInput{
		Type: ledger.TypeExpense, Amount: dec("5"), WalletID: w.ID, Category: ledger.CategoryFood,
		Date: day, Time: "9:05", Comment: "morning",
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.TimeOfDay("09:05"), morning.Time)

	_, err = svc.CreateTransaction(ctx, ledger.TransactionInput{
		Type: ledger.TypeExpense, Amount: dec("7"), WalletID: w.ID, Category: ledger.CategoryFood,
		Date: day, Time: "21:30", Comment: "evening",
	})
	require.NoError(t, err)

	got := svc.ListTransactions(ledger.TransactionFilter{})
	require.Len(t, got, 2)
	assert.Equal(t, "evening", got[0].Comment)
	assert.Equal(t, "morning", got[1].Comment)

	later := ledger.TimeOfDay("7:45")
	updated, err := svc.UpdateTransaction(ctx, morning.ID, ledger.TransactionPatch{Time: &later})
	require.NoError(t, err)
	assert.Equal(t, ledger.TimeOfDay("07:45"), updated.Time)
}

func TestTransactionFilter_Apply_LegacyUnpaddedTimes(t *testing.T) {
	day := civil.Date{Year: 2026, Month: time.March, Day: 10}

	got := ledger.TransactionFilter{}.Apply([]ledger.Transaction{
		{ID: "a", Date: day, Time: "9:05"},
		{ID: "b", Date: day, Time: "21:30"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
}

func TestService_AddThenDeleteRestoresBalance(t *testing.T) {
	type testCase struct {
		name   string
		txType ledger.Type
	}

	testCases := []testCase{
		{name: "income", txType: ledger.TypeIncome},
		{name: "expense", txType: ledger.TypeExpense},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, newPersister(t), ledger.Snapshot{})
			ctx := context.Background()

			w, err := svc.CreateWallet(ctx, ledger.WalletInput{
				Name: "Bank", Type: ledger.WalletBank, InitialBalance: dec("250.75"),
			})
			require.NoError(t, err)

			before := analytics.WalletBalance(svc.Snapshot(), w.ID)

			tx, err := svc.CreateTransaction(ctx, ledger.TransactionInput{
				Type: tc.txType, Amount: dec("99.99"), WalletID: w.ID, Category: ledger.CategoryOther,
			})
			require.NoError(t, err)
			assert.False(t, before.Equal(analytics.WalletBalance(svc.Snapshot(), w.ID)))

			require.NoError(t, svc.DeleteTransaction(ctx, tx.ID))

			after := analytics.WalletBalance(svc.Snapshot(), w.ID)
			assert.True(t, before.Equal(after), "balance %s, want %s", after, before)
		})
	}
}
