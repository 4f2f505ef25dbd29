package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	sent []published
	err  error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})

	return nil
}

func (f *fakeChannel) Close() error { return nil }

var raisedAt = time.Date(2026, 3, 20, 8, 0, 0, 0, time.UTC)

func testAlerts() []alert.Alert {
	return []alert.Alert{
		{
			BudgetID: "b1", Category: ledger.CategoryFood, Severity: alert.SeverityOverBudget,
			Spent: decimal.RequireFromString("1001"), Limit: decimal.RequireFromString("1000"),
			Message: "You've exceeded your Food & Dining budget by ₹1.00!",
		},
		{
			BudgetID: "b2", Category: ledger.CategoryBills, Severity: alert.SeverityNearBudget,
			Spent: decimal.RequireFromString("90"), Limit: decimal.RequireFromString("100"),
			Message: "You've spent 90% of your Bills & Utilities budget!",
		},
	}
}

func TestClient_Notify(t *testing.T) {
	ch := &fakeChannel{}
	c := &Client{channel: ch, exchangeName: "fintrack.alerts", now: func() time.Time { return raisedAt }}

	require.NoError(t, c.Notify(context.Background(), testAlerts()))
	require.Len(t, ch.sent, 2)

	assert.Equal(t, "fintrack.alerts", ch.sent[0].exchange)
	assert.Equal(t, "budget.over-budget", ch.sent[0].key)
	assert.Equal(t, "budget.near-budget", ch.sent[1].key)
	assert.Equal(t, amqp091.Persistent, ch.sent[0].msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.sent[0].msg.ContentType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(ch.sent[0].msg.Body, &body))

	assert.Equal(t, "b1", body["budgetId"])
	assert.Equal(t, "1001.00", body["spent"])
	assert.Equal(t, "1000.00", body["limit"])
	assert.Equal(t, "2026-03-20T08:00:00Z", body["raisedAt"])
}

func TestClient_NotifyPublishFailure(t *testing.T) {
	boom := errors.New("channel closed")
	c := &Client{channel: &fakeChannel{err: boom}, exchangeName: "x", now: time.Now}

	err := c.Notify(context.Background(), testAlerts())

	assert.ErrorIs(t, err, boom)
}

func TestClient_ImplementsNotifier(t *testing.T) {
	var _ alert.Notifier = (*Client)(nil)
}
