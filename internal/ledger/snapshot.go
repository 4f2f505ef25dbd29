package ledger

import "slices"

// Snapshot is a detached copy of the store's state. Mutating it does not
// affect the Service it came from.
type Snapshot struct {
	Wallets      []Wallet
	Transactions []Transaction
	Budgets      []Budget
	UserName     string
}

// Clone returns a deep copy with non-nil slices.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Wallets:      cloneSlice(s.Wallets),
		Transactions: cloneSlice(s.Transactions),
		Budgets:      cloneSlice(s.Budgets),
		UserName:     s.UserName,
	}
}

// Wallet looks up a wallet by id.
func (s Snapshot) Wallet(id string) (Wallet, bool) {
	i := slices.IndexFunc(s.Wallets, func(w Wallet) bool { return w.ID == id })
	if i < 0 {
		return Wallet{}, false
	}

	return s.Wallets[i], true
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)

	return out
}
