package summary

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/analytics"
	"github.com/MrJamesThe3rd/fintrack/internal/http/respond"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
)

const recentLimit = 5

type Handler struct {
	svc       *ledger.Service
	evaluator *alert.Evaluator
	format    *money.Formatter
}

func NewHandler(svc *ledger.Service, evaluator *alert.Evaluator, format *money.Formatter) *Handler {
	return &Handler{svc: svc, evaluator: evaluator, format: format}
}

// Routes mounts /summary and /alerts on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/alerts", h.alerts)
}

type monthChangeResponse struct {
	Mode      analytics.Mode      `json:"mode"`
	Value     decimal.Decimal     `json:"value"`
	Direction analytics.Direction `json:"direction"`
	Label     string              `json:"label"`
}

type categoryResponse struct {
	Category ledger.Category `json:"category"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

type walletResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Type        ledger.WalletType `json:"type"`
	Balance     decimal.Decimal   `json:"balance"`
	MonthChange decimal.Decimal   `json:"monthChange"`
}

type summaryResponse struct {
	Greeting         string               `json:"greeting"`
	TotalBalance     decimal.Decimal      `json:"totalBalance"`
	TotalBalanceText string               `json:"totalBalanceText"`
	TotalMonthChange decimal.Decimal      `json:"totalMonthChange"`
	MonthOverMonth   monthChangeResponse  `json:"monthOverMonth"`
	TotalExpense     decimal.Decimal      `json:"totalExpense"`
	TotalIncome      decimal.Decimal      `json:"totalIncome"`
	SavingsRate      decimal.Decimal      `json:"savingsRate"`
	Categories       []categoryResponse   `json:"categories"`
	TopCategory      *categoryResponse    `json:"topCategory"`
	Wallets          []walletResponse     `json:"wallets"`
	Recent           []ledger.Transaction `json:"recent"`
}

func toCategory(c analytics.CategoryTotal) categoryResponse {
	return categoryResponse{Category: c.Category, Name: c.Category.Name(), Amount: c.Amount}
}

func (h *Handler) summary(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()
	snap := h.svc.Snapshot()

	total := analytics.TotalBalance(snap)
	mom := analytics.MonthOverMonthChange(snap, now)
	totals := analytics.AggregateTotals(snap)
	breakdown := analytics.CategoryBreakdown(snap)

	resp := summaryResponse{
		Greeting:         analytics.Greeting(snap.UserName, now),
		TotalBalance:     total,
		TotalBalanceText: h.format.Format(total),
		TotalMonthChange: analytics.TotalMonthChange(snap, now),
		MonthOverMonth: monthChangeResponse{
			Mode:      mom.Mode,
			Value:     mom.Value.Round(1),
			Direction: mom.Direction,
			Label:     mom.Label(h.format),
		},
		TotalExpense: totals.Expense,
		TotalIncome:  totals.Income,
		SavingsRate:  totals.SavingsRate.Round(1),
		Categories:   make([]categoryResponse, 0, len(breakdown.Categories)),
		Recent:       ledger.TransactionFilter{Limit: recentLimit}.Apply(snap.Transactions),
	}

	for _, c := range breakdown.Categories {
		resp.Categories = append(resp.Categories, toCategory(c))
	}

	if breakdown.HasTop {
		top := toCategory(breakdown.Top)
		resp.TopCategory = &top
	}

	for _, s := range analytics.WalletSummaries(snap, now) {
		resp.Wallets = append(resp.Wallets, walletResponse{
			ID:          s.Wallet.ID,
			Name:        s.Wallet.Name,
			Type:        s.Wallet.Type,
			Balance:     s.Balance,
			MonthChange: s.MonthChange,
		})
	}

	if resp.Wallets == nil {
		resp.Wallets = []walletResponse{}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) alerts(w http.ResponseWriter, _ *http.Request) {
	alerts := h.evaluator.Evaluate(h.svc.Snapshot(), time.Now())
	if alerts == nil {
		alerts = []alert.Alert{}
	}

	respond.JSON(w, http.StatusOK, alerts)
}
