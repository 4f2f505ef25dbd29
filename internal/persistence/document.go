package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MrJamesThe3rd/fintrack/internal/encoding"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

const DocumentVersion = "1.0"

var (
	errNotObject    = errors.New("expected a JSON object")
	errTrailingData = errors.New("unexpected data after the JSON document")
)

// Document is the backup file layout.
type Document struct {
	Wallets      []ledger.Wallet      `json:"wallets"`
	Transactions []ledger.Transaction `json:"transactions"`
	Budgets      []ledger.Budget      `json:"budgets"`
	UserName     string               `json:"userName"`
	ExportDate   time.Time            `json:"exportDate"`
	Version      string               `json:"version"`
}

// FormatError reports a backup that could not be parsed.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid backup file: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func ExportSnapshot(s ledger.Snapshot, at time.Time) Document {
	s = s.Clone()

	return Document{
		Wallets:      s.Wallets,
		Transactions: s.Transactions,
		Budgets:      s.Budgets,
		UserName:     s.UserName,
		ExportDate:   at.UTC(),
		Version:      DocumentVersion,
	}
}

// WriteDocument encodes doc as indented JSON.
func WriteDocument(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	return nil
}

// BackupFilename is the suggested download name, e.g. fintrack-backup-2026-03-15.json.
func BackupFilename(at time.Time) string {
	return "fintrack-backup-" + at.Format(time.DateOnly) + ".json"
}

// ImportSnapshot parses a backup document. Absent fields become empty; the
// version and export date are not checked.
func ImportSnapshot(r io.Reader) (ledger.Snapshot, error) {
	utf8, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return ledger.Snapshot{}, &FormatError{Err: err}
	}

	var doc struct {
		Wallets      []ledger.Wallet      `json:"wallets"`
		Transactions []ledger.Transaction `json:"transactions"`
		Budgets      []ledger.Budget      `json:"budgets"`
		UserName     string               `json:"userName"`
	}

	dec := json.NewDecoder(utf8)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return ledger.Snapshot{}, &FormatError{Err: err}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ledger.Snapshot{}, &FormatError{Err: errTrailingData}
	}

	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return ledger.Snapshot{}, &FormatError{Err: errNotObject}
	}

	if err := json.Unmarshal(raw, &doc); err != nil {
		return ledger.Snapshot{}, &FormatError{Err: err}
	}

	return ledger.Snapshot{
		Wallets:      doc.Wallets,
		Transactions: doc.Transactions,
		Budgets:      doc.Budgets,
		UserName:     doc.UserName,
	}.Clone(), nil
}
