package cgd

// amountLayout determines how a row carries its amount.
type amountLayout int

const (
	// signedColumn is one column whose sign gives the direction ("-10,00" is money out).
	signedColumn amountLayout = iota
	// debitCredit splits money out and money in over two unsigned columns.
	debitCredit
)

// layout describes the header of one CGD export flavour.
type layout struct {
	name      string
	dateCol   string
	descCol   string
	amounts   amountLayout
	amountCol string
	debitCol  string
	creditCol string
}

func (l layout) requiredCols() []string {
	cols := []string{l.dateCol, l.descCol}

	if l.amounts == debitCredit {
		return append(cols, l.debitCol, l.creditCol)
	}

	return append(cols, l.amountCol)
}

// layouts is tried in order; the card export must come first because its
// generic "Data" column would otherwise be shadowed.
var layouts = []layout{
	{
		name:      "cartão",
		dateCol:   "Data",
		descCol:   "Descrição",
		amounts:   debitCredit,
		debitCol:  "Débito",
		creditCol: "Crédito",
	},
	{
		name:      "extrato",
		dateCol:   "Data mov.",
		descCol:   "Descrição",
		amounts:   signedColumn,
		amountCol: "Movimento",
	},
	{
		name:      "conta",
		dateCol:   "Data mov.",
		descCol:   "Descrição",
		amounts:   signedColumn,
		amountCol: "Montante",
	},
}
