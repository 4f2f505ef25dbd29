package view

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
	"github.com/MrJamesThe3rd/fintrack/internal/persistence"
	"github.com/MrJamesThe3rd/fintrack/internal/persistence/memory"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	return &buf
}

func TestTransactionsModel_WithAlerts_LogsNotifierFailure(t *testing.T) {
	logs := captureLogs(t)

	snap := ledger.Snapshot{
		Wallets: []ledger.Wallet{{ID: "w1", Name: "Cash", Type: ledger.WalletCash}},
		Transactions: []ledger.Transaction{{
			ID: "t1", Type: ledger.TypeExpense, Amount: decimal.NewFromInt(150),
			WalletID: "w1", Category: ledger.CategoryFood, Date: civil.DateOf(time.Now()), Time: "12:00",
		}},
		Budgets: []ledger.Budget{{
			ID: "b1", Category: ledger.CategoryFood, Amount: decimal.NewFromInt(100), Period: ledger.PeriodMonthly,
		}},
	}

	ctrl := gomock.NewController(t)
	notifier := alert.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	format := money.Default()
	m := TransactionsModel{
		svc:     ledger.NewService(persistence.NewAdapter(memory.New()), snap),
		monitor: alert.NewMonitor(alert.NewEvaluator(format), notifier),
		format:  format,
	}

	msg := m.withAlerts(txSavedMsg{done: "Transaction added."})

	require.Len(t, msg.alerts, 1)
	assert.Equal(t, alert.SeverityOverBudget, msg.alerts[0].Severity)
	assert.NoError(t, msg.err)
	assert.Contains(t, logs.String(), "failed to notify budget alerts")
	assert.Contains(t, logs.String(), "broker down")
}
