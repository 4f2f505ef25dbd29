package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/fintrack/internal/money"
)

func TestFormatter_Format(t *testing.T) {
	type testCase struct {
		name   string
		amount string
		want   string
		signed string
	}

	tests := []testCase{
		{name: "zero", amount: "0", want: "₹0.00", signed: "+₹0.00"},
		{name: "fraction padded", amount: "1", want: "₹1.00", signed: "+₹1.00"},
		{name: "grouping", amount: "1234.5", want: "₹1,234.50", signed: "+₹1,234.50"},
		{name: "rounds to cents", amount: "19.999", want: "₹20.00", signed: "+₹20.00"},
		{name: "negative", amount: "-42.1", want: "-₹42.10", signed: "-₹42.10"},
		{name: "small cents", amount: "0.07", want: "₹0.07", signed: "+₹0.07"},
		{name: "beyond float precision", amount: "90071992547409.93", want: "₹90,071,992,547,409.93", signed: "+₹90,071,992,547,409.93"},
		{name: "large negative", amount: "-12345678901234567.89", want: "-₹12,345,678,901,234,567.89", signed: "-₹12,345,678,901,234,567.89"},
	}

	f := money.Default()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decimal.RequireFromString(tt.amount)

			assert.Equal(t, tt.want, f.Format(d))
			assert.Equal(t, tt.signed, f.FormatSigned(d))
		})
	}
}

func TestFormatter_CustomSymbol(t *testing.T) {
	f := money.NewFormatter("€", "not a locale!")

	assert.Equal(t, "€3.40", f.Format(decimal.RequireFromString("3.4")))
}

func TestFormatter_Percent(t *testing.T) {
	f := money.Default()

	assert.Equal(t, "85%", f.Percent(decimal.RequireFromString("85"), 0))
	assert.Equal(t, "66.7%", f.Percent(decimal.RequireFromString("66.666"), 1))
}
