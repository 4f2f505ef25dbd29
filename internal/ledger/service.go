package ledger

import (
	"context"
	"slices"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=persister_mock.go -package=ledger
type Persister interface {
	Save(ctx context.Context, snap Snapshot) error
}

// Service is the domain store. It exclusively owns wallets, transactions,
// budgets and the user name, and flushes them through a Persister after
// every mutation.
type Service struct {
	mu        sync.Mutex
	state     Snapshot
	persister Persister
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithClock overrides the time source used for defaults and the future-date rule.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how new entity ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(persister Persister, initial Snapshot, opts ...Option) *Service {
	s := &Service{
		state:     initial.Clone(),
		persister: persister,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// flush must be called with mu held.
func (s *Service) flush(ctx context.Context) error {
	if err := s.persister.Save(ctx, s.state.Clone()); err != nil {
		return &StorageError{Err: err}
	}

	return nil
}

func (s *Service) today() civil.Date {
	return civil.DateOf(s.now())
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

func (s *Service) UserName() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.UserName
}

func (s *Service) SetUserName(ctx context.Context, name string) error {
	name = sanitizeText(name)
	if name == "" {
		return &ValidationError{Violations: []string{"Name is required"}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.UserName = name

	return s.flush(ctx)
}

// Wallets

func (s *Service) Wallets() []Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneSlice(s.state.Wallets)
}

func (s *Service) Wallet(id string) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.state.Wallet(id)
	if !ok {
		return Wallet{}, &NotFoundError{Kind: "wallet", ID: id}
	}

	return w, nil
}

func (s *Service) CreateWallet(ctx context.Context, in WalletInput) (Wallet, error) {
	w := Wallet{
		ID:             s.newID(),
		Name:           sanitizeText(in.Name),
		Type:           in.Type,
		InitialBalance: in.InitialBalance,
	}

	if v := validateWallet(w); len(v) > 0 {
		return Wallet{}, &ValidationError{Violations: v}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Wallets = append(s.state.Wallets, w)

	return w, s.flush(ctx)
}

func (s *Service) UpdateWallet(ctx context.Context, id string, patch WalletPatch) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.walletIndex(id)
	if i < 0 {
		return Wallet{}, &NotFoundError{Kind: "wallet", ID: id}
	}

	w := s.state.Wallets[i]
	patch.apply(&w)

	if v := validateWallet(w); len(v) > 0 {
		return Wallet{}, &ValidationError{Violations: v}
	}

	s.state.Wallets[i] = w

	return w, s.flush(ctx)
}

// DeleteWallet removes the wallet and every transaction that references it.
func (s *Service) DeleteWallet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.walletIndex(id)
	if i < 0 {
		return &NotFoundError{Kind: "wallet", ID: id}
	}

	s.state.Wallets = slices.Delete(s.state.Wallets, i, i+1)
	s.state.Transactions = slices.DeleteFunc(s.state.Transactions, func(tx Transaction) bool {
		return tx.WalletID == id
	})

	return s.flush(ctx)
}

func (s *Service) walletIndex(id string) int {
	return slices.IndexFunc(s.state.Wallets, func(w Wallet) bool { return w.ID == id })
}

// Transactions

func (s *Service) ListTransactions(filter TransactionFilter) []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filter.Apply(s.state.Transactions)
}

func (s *Service) Transaction(id string) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.transactionIndex(id)
	if i < 0 {
		return Transaction{}, &NotFoundError{Kind: "transaction", ID: id}
	}

	return s.state.Transactions[i], nil
}

// CreateTransaction records a new transaction. A zero date defaults to today
// and an empty time to the current wall-clock time.
func (s *Service) CreateTransaction(ctx context.Context, in TransactionInput) (Transaction, error) {
	now := s.now()

	tx := Transaction{
		ID:       s.newID(),
		Type:     in.Type,
		Amount:   in.Amount,
		WalletID: in.WalletID,
		Category: in.Category,
		Date:     in.Date,
		Time:     in.Time.Canonical(),
		Comment:  sanitizeText(in.Comment),
	}

	if tx.Date.IsZero() {
		tx.Date = civil.DateOf(now)
	}

	if tx.Time == "" {
		tx.Time = TimeOfDayOf(now)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v := validateTransaction(tx, s.state.Wallets, civil.DateOf(now)); len(v) > 0 {
		return Transaction{}, &ValidationError{Violations: v}
	}

	s.state.Transactions = append(s.state.Transactions, tx)

	return tx, s.flush(ctx)
}

func (s *Service) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.transactionIndex(id)
	if i < 0 {
		return Transaction{}, &NotFoundError{Kind: "transaction", ID: id}
	}

	tx := s.state.Transactions[i]
	patch.apply(&tx)

	if v := validateTransaction(tx, s.state.Wallets, s.today()); len(v) > 0 {
		return Transaction{}, &ValidationError{Violations: v}
	}

	s.state.Transactions[i] = tx

	return tx, s.flush(ctx)
}

func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.transactionIndex(id)
	if i < 0 {
		return &NotFoundError{Kind: "transaction", ID: id}
	}

	s.state.Transactions = slices.Delete(s.state.Transactions, i, i+1)

	return s.flush(ctx)
}

func (s *Service) transactionIndex(id string) int {
	return slices.IndexFunc(s.state.Transactions, func(tx Transaction) bool { return tx.ID == id })
}

// Budgets

func (s *Service) Budgets() []Budget {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneSlice(s.state.Budgets)
}

func (s *Service) Budget(id string) (Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.budgetIndex(id)
	if i < 0 {
		return Budget{}, &NotFoundError{Kind: "budget", ID: id}
	}

	return s.state.Budgets[i], nil
}

func (s *Service) CreateBudget(ctx context.Context, in BudgetInput) (Budget, error) {
	b := Budget{
		ID:        s.newID(),
		Category:  in.Category,
		Amount:    in.Amount,
		Period:    in.Period,
		CreatedAt: s.now().UTC(),
	}

	if v := validateBudget(b); len(v) > 0 {
		return Budget{}, &ValidationError{Violations: v}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryTaken(b.Category, b.ID) {
		return Budget{}, &ConflictError{Category: b.Category}
	}

	s.state.Budgets = append(s.state.Budgets, b)

	return b, s.flush(ctx)
}

func (s *Service) UpdateBudget(ctx context.Context, id string, patch BudgetPatch) (Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.budgetIndex(id)
	if i < 0 {
		return Budget{}, &NotFoundError{Kind: "budget", ID: id}
	}

	b := s.state.Budgets[i]
	patch.apply(&b)

	if v := validateBudget(b); len(v) > 0 {
		return Budget{}, &ValidationError{Violations: v}
	}

	if s.categoryTaken(b.Category, b.ID) {
		return Budget{}, &ConflictError{Category: b.Category}
	}

	s.state.Budgets[i] = b

	return b, s.flush(ctx)
}

func (s *Service) DeleteBudget(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.budgetIndex(id)
	if i < 0 {
		return &NotFoundError{Kind: "budget", ID: id}
	}

	s.state.Budgets = slices.Delete(s.state.Budgets, i, i+1)

	return s.flush(ctx)
}

func (s *Service) budgetIndex(id string) int {
	return slices.IndexFunc(s.state.Budgets, func(b Budget) bool { return b.ID == id })
}

// categoryTaken reports whether a budget other than exceptID uses category.
func (s *Service) categoryTaken(category Category, exceptID string) bool {
	return slices.ContainsFunc(s.state.Budgets, func(b Budget) bool {
		return b.Category == category && b.ID != exceptID
	})
}

// Whole-state operations

// ClearAll empties wallets, transactions and budgets. The user name is kept.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Snapshot{UserName: s.state.UserName}.Clone()

	return s.flush(ctx)
}

// Replace overwrites the whole state with snap. It does not merge.
func (s *Service) Replace(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = snap.Clone()

	return s.flush(ctx)
}
