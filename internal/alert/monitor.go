package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

//go:generate mockgen -source=monitor.go -destination=notifier_mock.go -package=alert
type Notifier interface {
	Notify(ctx context.Context, alerts []Alert) error
}

// Monitor re-evaluates budgets after a mutation and forwards any alerts.
type Monitor struct {
	evaluator *Evaluator
	notifier  Notifier
	now       func() time.Time
}

func NewMonitor(evaluator *Evaluator, notifier Notifier) *Monitor {
	if evaluator == nil {
		evaluator = NewEvaluator(nil)
	}

	return &Monitor{evaluator: evaluator, notifier: notifier, now: time.Now}
}

// WithClock replaces the monitor's time source.
func (m *Monitor) WithClock(now func() time.Time) *Monitor {
	m.now = now
	return m
}

// Check evaluates s and notifies when at least one alert is raised.
func (m *Monitor) Check(ctx context.Context, s ledger.Snapshot) ([]Alert, error) {
	alerts := m.evaluator.Evaluate(s, m.now())
	if len(alerts) == 0 || m.notifier == nil {
		return alerts, nil
	}

	if err := m.notifier.Notify(ctx, alerts); err != nil {
		return alerts, fmt.Errorf("notifying budget alerts: %w", err)
	}

	return alerts, nil
}

// LogNotifier writes alerts to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, alerts []Alert) error {
	for _, a := range alerts {
		level := slog.LevelWarn
		if a.Severity == SeverityOverBudget {
			level = slog.LevelError
		}

		slog.Log(ctx, level, a.Message,
			"budget_id", a.BudgetID,
			"category", a.Category,
			"spent", a.Spent.StringFixed(2),
			"limit", a.Limit.StringFixed(2),
		)
	}

	return nil
}
