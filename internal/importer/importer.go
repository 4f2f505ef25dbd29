package importer

import (
	"context"
	"io"

	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

type Bank string

const (
	BankCGD Bank = "cgd"
)

// Parser turns a bank export into unassigned transaction inputs.
type Parser interface {
	Parse(r io.Reader) ([]ledger.TransactionInput, error)
}

// Suggester proposes a category for a bank description; an empty result means no suggestion.
type Suggester interface {
	Suggest(ctx context.Context, rawDescription string) (ledger.Category, error)
}

// Recorder stores a transaction.
type Recorder interface {
	CreateTransaction(ctx context.Context, in ledger.TransactionInput) (ledger.Transaction, error)
}
