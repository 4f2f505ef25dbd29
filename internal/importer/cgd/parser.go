package cgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/fintrack/internal/encoding"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

const dateLayout = "02-01-2006"

// Parser reads Caixa Geral de Depósitos CSV exports. The flavour (account,
// statement or card) is recognised from the header row.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns one transaction input per movement, with the bank's
// description as the comment. Wallet and category are left for the caller.
func (p *Parser) Parse(r io.Reader) ([]ledger.TransactionInput, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	l, cols, headerIdx, ok := findHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no matching CGD format found: expected columns for conta, extrato, or cartão")
	}

	return l.parseRows(cols, rows[headerIdx+1:], headerIdx+1)
}

type colIndex map[string]int

func findHeader(rows [][]string) (layout, colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for _, l := range layouts {
			if cols.hasAll(l.requiredCols()) {
				return l, cols, rowIdx, true
			}
		}
	}

	return layout{}, nil, 0, false
}

func (c colIndex) hasAll(names []string) bool {
	for _, name := range names {
		if _, ok := c[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a date or a non-zero amount (footers, page
// markers). firstRow is the 0-based file index of rows[0].
func (l layout) parseRows(cols colIndex, rows [][]string, firstRow int) ([]ledger.TransactionInput, error) {
	var out []ledger.TransactionInput

	for i, row := range rows {
		date, ok := parseDate(cell(row, cols[l.dateCol]))
		if !ok {
			continue
		}

		desc := cell(row, cols[l.descCol])
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", firstRow+i+1)
		}

		amount, typ, ok := l.amount(cols, row)
		if !ok {
			continue
		}

		out = append(out, ledger.TransactionInput{
			Type:    typ,
			Amount:  amount,
			Date:    date,
			Comment: desc,
		})
	}

	return out, nil
}

func (l layout) amount(cols colIndex, row []string) (decimal.Decimal, ledger.Type, bool) {
	if l.amounts == debitCredit {
		if d, ok := nonZero(cell(row, cols[l.debitCol])); ok {
			return d.Abs(), ledger.TypeExpense, true
		}

		if d, ok := nonZero(cell(row, cols[l.creditCol])); ok {
			return d.Abs(), ledger.TypeIncome, true
		}

		return decimal.Decimal{}, "", false
	}

	d, ok := nonZero(cell(row, cols[l.amountCol]))
	if !ok {
		return decimal.Decimal{}, "", false
	}

	if d.IsNegative() {
		return d.Neg(), ledger.TypeExpense, true
	}

	return d, ledger.TypeIncome, true
}

func nonZero(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Decimal{}, false
	}

	d, err := parseEuropeanAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Decimal{}, false
	}

	return d, true
}

func parseDate(s string) (civil.Date, bool) {
	if s == "" {
		return civil.Date{}, false
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return civil.Date{}, false
	}

	return civil.DateOf(t), true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
