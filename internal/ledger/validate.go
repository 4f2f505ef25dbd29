package ledger

import (
	"cloud.google.com/go/civil"
)

func validateWallet(w Wallet) []string {
	var violations []string

	if w.Name == "" {
		violations = append(violations, "Wallet name is required")
	}

	if !w.Type.Valid() {
		violations = append(violations, "Wallet type is not recognised")
	}

	if w.InitialBalance.IsNegative() {
		violations = append(violations, "Initial balance cannot be negative")
	}

	return violations
}

// validateTransaction checks tx against the current wallets. Rules are
// reported in a fixed order so the first message is stable.
func validateTransaction(tx Transaction, wallets []Wallet, today civil.Date) []string {
	var violations []string

	if !tx.Amount.IsPositive() {
		violations = append(violations, "Amount must be positive")
	}

	if tx.WalletID == "" {
		violations = append(violations, "Wallet is required")
	} else if _, ok := (Snapshot{Wallets: wallets}).Wallet(tx.WalletID); !ok {
		violations = append(violations, "Selected wallet not found")
	}

	switch {
	case tx.Category == "":
		violations = append(violations, "Category is required")
	case !tx.Category.Valid():
		violations = append(violations, "Category is not recognised")
	}

	if !tx.Type.Valid() {
		violations = append(violations, "Transaction type must be income or expense")
	}

	switch {
	case !tx.Date.IsValid():
		violations = append(violations, "Date is required")
	case tx.Date.After(today):
		violations = append(violations, "Future dates not allowed")
	}

	if !tx.Time.Valid() {
		violations = append(violations, "Time must use the HH:MM format")
	}

	return violations
}

func validateBudget(b Budget) []string {
	var violations []string

	if !b.Amount.IsPositive() {
		violations = append(violations, "Budget amount must be positive")
	}

	switch {
	case b.Category == "":
		violations = append(violations, "Category is required")
	case !b.Category.Valid():
		violations = append(violations, "Category is not recognised")
	}

	if !b.Period.Valid() {
		violations = append(violations, "Budget period is not recognised")
	}

	return violations
}
