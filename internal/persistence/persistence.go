// Package persistence maps the ledger's state onto a flat key-value store
// and onto the portable backup document.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

// Storage keys. Collections are stored as JSON arrays, the user name as a raw string.
const (
	KeyWallets      = "wallets"
	KeyTransactions = "transactions"
	KeyBudgets      = "budgets"
	KeyUserName     = "userName"
)

// KV is a string key-value store. SetMany must apply all entries or none.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	SetMany(ctx context.Context, entries map[string]string) error
}

// LoadReport describes keys that held unreadable data and were treated as empty.
type LoadReport struct {
	Corrupt []string
}

type Adapter struct {
	kv KV
}

func NewAdapter(kv KV) *Adapter {
	return &Adapter{kv: kv}
}

// Load reads the full state. Missing keys yield empty collections, and so do
// keys whose JSON cannot be parsed; those are listed in the report.
func (a *Adapter) Load(ctx context.Context) (ledger.Snapshot, LoadReport, error) {
	var (
		snap   ledger.Snapshot
		report LoadReport
	)

	collections := []struct {
		key    string
		target any
	}{
		{KeyWallets, &snap.Wallets},
		{KeyTransactions, &snap.Transactions},
		{KeyBudgets, &snap.Budgets},
	}

	for _, c := range collections {
		raw, ok, err := a.kv.Get(ctx, c.key)
		if err != nil {
			return ledger.Snapshot{}, LoadReport{}, fmt.Errorf("reading %s: %w", c.key, err)
		}

		if !ok {
			continue
		}

		if err := json.Unmarshal([]byte(raw), c.target); err != nil {
			slog.WarnContext(ctx, "discarding unreadable stored data", "key", c.key, "error", err)
			report.Corrupt = append(report.Corrupt, c.key)
		}
	}

	name, _, err := a.kv.Get(ctx, KeyUserName)
	if err != nil {
		return ledger.Snapshot{}, LoadReport{}, fmt.Errorf("reading %s: %w", KeyUserName, err)
	}

	snap.UserName = name

	// A failed unmarshal may leave partial data behind.
	snap = discardCorrupt(snap, report.Corrupt)

	return snap.Clone(), report, nil
}

func discardCorrupt(s ledger.Snapshot, corrupt []string) ledger.Snapshot {
	for _, key := range corrupt {
		switch key {
		case KeyWallets:
			s.Wallets = nil
		case KeyTransactions:
			s.Transactions = nil
		case KeyBudgets:
			s.Budgets = nil
		}
	}

	return s
}

// Save writes every key in a single batch.
func (a *Adapter) Save(ctx context.Context, s ledger.Snapshot) error {
	s = s.Clone()
	entries := make(map[string]string, 4)

	for key, v := range map[string]any{
		KeyWallets:      s.Wallets,
		KeyTransactions: s.Transactions,
		KeyBudgets:      s.Budgets,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}

		entries[key] = string(raw)
	}

	entries[KeyUserName] = s.UserName

	if err := a.kv.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}

	return nil
}
