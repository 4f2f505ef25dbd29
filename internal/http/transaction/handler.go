package transaction

import (
	"log/slog"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/http/respond"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

type Handler struct {
	svc     *ledger.Service
	monitor *alert.Monitor
}

func NewHandler(svc *ledger.Service, monitor *alert.Monitor) *Handler {
	return &Handler{svc: svc, monitor: monitor}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}", h.update)
}

type transactionResponse struct {
	ledger.Transaction
	Title        string `json:"title"`
	CategoryName string `json:"categoryName"`
	CategoryIcon string `json:"categoryIcon"`
}

func toResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		Transaction:  tx,
		Title:        tx.Title(),
		CategoryName: tx.Category.Name(),
		CategoryIcon: tx.Category.Icon(),
	}
}

type mutationResponse struct {
	Transaction *transactionResponse `json:"transaction,omitempty"`
	Alerts      []alert.Alert        `json:"alerts"`
	Warning     string               `json:"warning,omitempty"`
}

// checkBudgets re-evaluates budget alerts after a transaction mutation.
func (h *Handler) checkBudgets(r *http.Request) []alert.Alert {
	alerts, err := h.monitor.Check(r.Context(), h.svc.Snapshot())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to notify budget alerts", "error", err)
	}

	if alerts == nil {
		return []alert.Alert{}
	}

	return alerts
}

type createTransactionRequest struct {
	Type     ledger.Type      `json:"type"`
	Amount   decimal.Decimal  `json:"amount"`
	WalletID string           `json:"walletId"`
	Category ledger.Category  `json:"category"`
	Date     civil.Date       `json:"date"`
	Time     ledger.TimeOfDay `json:"time"`
	Comment  string           `json:"comment"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	tx, err := h.svc.CreateTransaction(r.Context(), ledger.TransactionInput(req))

	warning, err := respond.SplitStorage(err)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := toResponse(tx)

	respond.JSON(w, http.StatusCreated, mutationResponse{
		Transaction: &resp,
		Alerts:      h.checkBudgets(r),
		Warning:     warning,
	})
}

// list accepts q, type, category, walletId and limit query parameters.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ledger.TransactionFilter{
		Query:    q.Get("q"),
		Type:     ledger.Type(q.Get("type")),
		Category: ledger.Category(q.Get("category")),
		WalletID: q.Get("walletId"),
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			respond.Message(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}

		filter.Limit = limit
	}

	txs := h.svc.ListTransactions(filter)

	resp := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, toResponse(tx))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Transaction(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	warning, err := respond.SplitStorage(h.svc.DeleteTransaction(r.Context(), chi.URLParam(r, "id")))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, mutationResponse{Alerts: h.checkBudgets(r), Warning: warning})
}

type updateTransactionRequest struct {
	Type     *ledger.Type      `json:"type,omitempty"`
	Amount   *decimal.Decimal  `json:"amount,omitempty"`
	WalletID *string           `json:"walletId,omitempty"`
	Category *ledger.Category  `json:"category,omitempty"`
	Date     *civil.Date       `json:"date,omitempty"`
	Time     *ledger.TimeOfDay `json:"time,omitempty"`
	Comment  *string           `json:"comment,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	tx, err := h.svc.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), ledger.TransactionPatch(req))

	warning, err := respond.SplitStorage(err)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := toResponse(tx)

	respond.JSON(w, http.StatusOK, mutationResponse{
		Transaction: &resp,
		Alerts:      h.checkBudgets(r),
		Warning:     warning,
	})
}
