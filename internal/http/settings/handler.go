package settings

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fintrack/internal/analytics"
	"github.com/MrJamesThe3rd/fintrack/internal/http/respond"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.put)
}

type settingsResponse struct {
	UserName string `json:"userName"`
	Greeting string `json:"greeting"`
	Warning  string `json:"warning,omitempty"`
}

func (h *Handler) current() settingsResponse {
	name := h.svc.UserName()

	return settingsResponse{UserName: name, Greeting: analytics.Greeting(name, time.Now())}
}

func (h *Handler) get(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.current())
}

type updateSettingsRequest struct {
	UserName string `json:"userName"`
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	warning, err := respond.SplitStorage(h.svc.SetUserName(r.Context(), req.UserName))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := h.current()
	resp.Warning = warning

	respond.JSON(w, http.StatusOK, resp)
}
