package wallet

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/analytics"
	"github.com/MrJamesThe3rd/fintrack/internal/http/respond"
	"github.com/MrJamesThe3rd/fintrack/internal/importer"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

const maxStatementSize = 10 << 20

type Handler struct {
	svc       *ledger.Service
	importSvc *importer.Service
	monitor   *alert.Monitor
}

func NewHandler(svc *ledger.Service, importSvc *importer.Service, monitor *alert.Monitor) *Handler {
	return &Handler{svc: svc, importSvc: importSvc, monitor: monitor}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/statement", h.importStatement)
}

type walletResponse struct {
	ledger.Wallet
	Icon        string          `json:"icon"`
	Balance     decimal.Decimal `json:"balance"`
	MonthChange decimal.Decimal `json:"monthChange"`
	Warning     string          `json:"warning,omitempty"`
}

func (h *Handler) toResponse(w ledger.Wallet) walletResponse {
	snap := h.svc.Snapshot()

	return walletResponse{
		Wallet:      w,
		Icon:        w.Type.Icon(),
		Balance:     analytics.WalletBalance(snap, w.ID),
		MonthChange: analytics.WalletMonthChange(snap, w.ID, time.Now()),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	summaries := analytics.WalletSummaries(h.svc.Snapshot(), time.Now())

	resp := make([]walletResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, walletResponse{
			Wallet:      s.Wallet,
			Icon:        s.Wallet.Type.Icon(),
			Balance:     s.Balance,
			MonthChange: s.MonthChange,
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}

type createWalletRequest struct {
	Name           string            `json:"name"`
	Type           ledger.WalletType `json:"type"`
	InitialBalance decimal.Decimal   `json:"initialBalance"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	created, err := h.svc.CreateWallet(r.Context(), ledger.WalletInput{
		Name:           req.Name,
		Type:           req.Type,
		InitialBalance: req.InitialBalance,
	})

	warning, err := respond.SplitStorage(err)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := h.toResponse(created)
	resp.Warning = warning

	respond.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.Wallet(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.toResponse(found))
}

type updateWalletRequest struct {
	Name           *string            `json:"name,omitempty"`
	Type           *ledger.WalletType `json:"type,omitempty"`
	InitialBalance *decimal.Decimal   `json:"initialBalance,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateWalletRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateWallet(r.Context(), chi.URLParam(r, "id"), ledger.WalletPatch{
		Name:           req.Name,
		Type:           req.Type,
		InitialBalance: req.InitialBalance,
	})

	warning, err := respond.SplitStorage(err)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := h.toResponse(updated)
	resp.Warning = warning

	respond.JSON(w, http.StatusOK, resp)
}

// delete also removes the wallet's transactions.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	warning, err := respond.SplitStorage(h.svc.DeleteWallet(r.Context(), chi.URLParam(r, "id")))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.NoContent(w, warning)
}

type statementResponse struct {
	importer.Result
	Alerts  []alert.Alert `json:"alerts"`
	Warning string        `json:"warning,omitempty"`
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	target, err := h.svc.Wallet(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxStatementSize); err != nil {
		respond.Message(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	bank := importer.Bank(r.FormValue("bank"))
	if bank == "" {
		respond.Message(w, http.StatusBadRequest, "bank field is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	res, err := h.importSvc.Import(r.Context(), bank, target.ID, file)

	warning, err := respond.SplitStorage(err)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := h.monitor.Check(r.Context(), h.svc.Snapshot())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to notify budget alerts", "error", err)
	}

	if alerts == nil {
		alerts = []alert.Alert{}
	}

	respond.JSON(w, http.StatusCreated, statementResponse{Result: res, Alerts: alerts, Warning: warning})
}
