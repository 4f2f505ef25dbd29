package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/fintrack/internal/importer/cgd"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

type Service struct {
	parsers   map[Bank]Parser
	suggester Suggester
	recorder  Recorder
}

func NewService(suggester Suggester, recorder Recorder) *Service {
	return &Service{
		parsers: map[Bank]Parser{
			BankCGD: cgd.NewParser(),
		},
		suggester: suggester,
		recorder:  recorder,
	}
}

// Skipped is a statement line that was not recorded.
type Skipped struct {
	Input  ledger.TransactionInput `json:"input"`
	Reason string                  `json:"reason"`
}

type Result struct {
	Created []ledger.Transaction `json:"created"`
	Skipped []Skipped            `json:"skipped"`
}

// Preview parses the statement and assigns walletID plus a suggested category
// to every line. Lines without a learned rule fall back to "other".
func (s *Service) Preview(ctx context.Context, bank Bank, walletID string, r io.Reader) ([]ledger.TransactionInput, error) {
	parser, ok := s.parsers[bank]
	if !ok {
		return nil, fmt.Errorf("unknown bank: %s", bank)
	}

	inputs, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s statement: %w", bank, err)
	}

	for i := range inputs {
		inputs[i].WalletID = walletID
		inputs[i].Category = ledger.CategoryOther

		if s.suggester == nil {
			continue
		}

		cat, err := s.suggester.Suggest(ctx, inputs[i].Comment)
		if err != nil {
			return nil, fmt.Errorf("suggesting category: %w", err)
		}

		if cat.Valid() {
			inputs[i].Category = cat
		}
	}

	return inputs, nil
}

// Import records every previewed line. Lines the ledger rejects are reported
// as skipped. A storage failure does not stop the import; the last one is
// returned alongside the result.
func (s *Service) Import(ctx context.Context, bank Bank, walletID string, r io.Reader) (Result, error) {
	inputs, err := s.Preview(ctx, bank, walletID, r)
	if err != nil {
		return Result{}, err
	}

	var (
		res        Result
		storageErr error
	)

	for _, in := range inputs {
		tx, err := s.recorder.CreateTransaction(ctx, in)

		var verr *ledger.ValidationError

		switch {
		case err == nil:
			res.Created = append(res.Created, tx)
		case ledger.IsStorageError(err):
			res.Created = append(res.Created, tx)
			storageErr = err
		case errors.As(err, &verr):
			res.Skipped = append(res.Skipped, Skipped{Input: in, Reason: verr.Error()})
		default:
			return res, fmt.Errorf("recording statement line: %w", err)
		}
	}

	slog.InfoContext(ctx, "statement imported",
		"bank", bank,
		"wallet_id", walletID,
		"created", len(res.Created),
		"skipped", len(res.Skipped),
	)

	return res, storageErr
}
