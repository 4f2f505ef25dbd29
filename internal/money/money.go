// Package money renders decimal amounts as currency strings.
package money

import (
	"math"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultSymbol = "₹"
	DefaultLocale = "en"
)

// Formatter prints amounts with two fraction digits and locale-specific grouping.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter builds a Formatter. An unparseable locale falls back to English.
func NewFormatter(symbol, locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	return &Formatter{symbol: symbol, printer: message.NewPrinter(tag)}
}

// Default is the formatter used when no configuration is available.
func Default() *Formatter {
	return NewFormatter(DefaultSymbol, DefaultLocale)
}

// Format renders d as e.g. "₹1,234.50" or "-₹12.00".
func (f *Formatter) Format(d decimal.Decimal) string {
	s := f.symbol + f.digits(d.Abs())
	if d.Round(2).IsNegative() {
		return "-" + s
	}

	return s
}

// FormatSigned always carries a sign, "+" for zero and positive amounts.
func (f *Formatter) FormatSigned(d decimal.Decimal) string {
	if d.Round(2).IsNegative() {
		return f.Format(d)
	}

	return "+" + f.Format(d)
}

// Percent renders d with the given number of fraction digits, e.g. "85%".
func (f *Formatter) Percent(d decimal.Decimal, places int32) string {
	return d.StringFixed(places) + "%"
}

// digits formats a non-negative amount. The integer part and the cents are
// printed separately so amounts beyond float64 precision keep every digit.
func (f *Formatter) digits(d decimal.Decimal) string {
	d = d.Round(2)

	whole := d.Truncate(0)
	if !whole.LessThanOrEqual(maxInt64) {
		return d.StringFixed(2)
	}

	cents := d.Sub(whole).Shift(2).IntPart()

	// Printing 0.xx yields the locale's zero and decimal separator; the zero is dropped.
	frac := f.printer.Sprint(number.Decimal(float64(cents)/100, number.Scale(2)))
	_, size := utf8.DecodeRuneInString(frac)

	return f.printer.Sprint(number.Decimal(whole.IntPart())) + frac[size:]
}

var maxInt64 = decimal.NewFromInt(math.MaxInt64)
