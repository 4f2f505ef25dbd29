package budget

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/http/respond"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

type Handler struct {
	svc       *ledger.Service
	evaluator *alert.Evaluator
}

func NewHandler(svc *ledger.Service, evaluator *alert.Evaluator) *Handler {
	return &Handler{svc: svc, evaluator: evaluator}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/usage", h.usage)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type budgetResponse struct {
	ledger.Budget
	CategoryName string `json:"categoryName"`
	Warning      string `json:"warning,omitempty"`
}

func toResponse(b ledger.Budget) budgetResponse {
	return budgetResponse{Budget: b, CategoryName: b.Category.Name()}
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	budgets := h.svc.Budgets()

	resp := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		resp = append(resp, toResponse(b))
	}

	respond.JSON(w, http.StatusOK, resp)
}

type createBudgetRequest struct {
	Category ledger.Category `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Period   ledger.Period   `json:"period"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	created, err := h.svc.CreateBudget(r.Context(), ledger.BudgetInput(req))

	warning, err := respond.SplitStorage(err)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := toResponse(created)
	resp.Warning = warning

	respond.JSON(w, http.StatusCreated, resp)
}

type updateBudgetRequest struct {
	Category *ledger.Category `json:"category,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Period   *ledger.Period   `json:"period,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateBudgetRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateBudget(r.Context(), chi.URLParam(r, "id"), ledger.BudgetPatch(req))

	warning, err := respond.SplitStorage(err)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := toResponse(updated)
	resp.Warning = warning

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	warning, err := respond.SplitStorage(h.svc.DeleteBudget(r.Context(), chi.URLParam(r, "id")))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.NoContent(w, warning)
}

func (h *Handler) usage(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.evaluator.Usage(h.svc.Snapshot(), time.Now()))
}
