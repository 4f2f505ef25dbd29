package ledger

import (
	"github.com/shopspring/decimal"
)

// WalletType is the kind of account a wallet represents.
type WalletType string

const (
	WalletCash    WalletType = "cash"
	WalletBank    WalletType = "bank"
	WalletCard    WalletType = "card"
	WalletDigital WalletType = "digital"
	WalletSavings WalletType = "savings"
)

// WalletTypes returns the supported wallet types in display order.
func WalletTypes() []WalletType {
	return []WalletType{WalletCash, WalletBank, WalletCard, WalletDigital, WalletSavings}
}

func (t WalletType) Valid() bool {
	switch t {
	case WalletCash, WalletBank, WalletCard, WalletDigital, WalletSavings:
		return true
	}

	return false
}

// Icon is the Font Awesome icon name used by the web front end.
func (t WalletType) Icon() string {
	switch t {
	case WalletCash:
		return "money-bill-wave"
	case WalletBank:
		return "university"
	case WalletCard:
		return "credit-card"
	case WalletDigital:
		return "mobile-alt"
	case WalletSavings:
		return "piggy-bank"
	}

	return "wallet"
}

// Wallet is a named money-holding account.
type Wallet struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           WalletType      `json:"type"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

type WalletInput struct {
	Name           string
	Type           WalletType
	InitialBalance decimal.Decimal
}

// WalletPatch holds the fields to overwrite; nil fields are left untouched.
type WalletPatch struct {
	Name           *string
	Type           *WalletType
	InitialBalance *decimal.Decimal
}

func (p WalletPatch) apply(w *Wallet) {
	if p.Name != nil {
		w.Name = sanitizeText(*p.Name)
	}

	if p.Type != nil {
		w.Type = *p.Type
	}

	if p.InitialBalance != nil {
		w.InitialBalance = *p.InitialBalance
	}
}
