package backup

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fintrack/internal/http/respond"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/persistence"
)

const (
	maxBackupSize      = 20 << 20
	confirmationNeeded = "Add ?confirm=true to replace all existing data"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts /backup and /data on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/backup", h.download)
	r.Post("/backup", h.restore)
	r.Delete("/data", h.clear)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	doc := persistence.ExportSnapshot(h.svc.Snapshot(), now)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": persistence.BackupFilename(now),
	}))

	if err := persistence.WriteDocument(w, doc); err != nil {
		slog.ErrorContext(r.Context(), "failed to write backup", "error", err)
	}
}

type restoreResponse struct {
	Wallets      int    `json:"wallets"`
	Transactions int    `json:"transactions"`
	Budgets      int    `json:"budgets"`
	Warning      string `json:"warning,omitempty"`
}

// restore replaces all data with an uploaded backup. The body is either the
// raw JSON document or a multipart form with a "file" field.
func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respond.Message(w, http.StatusPreconditionRequired, confirmationNeeded)
		return
	}

	body, closeBody, err := backupBody(w, r)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeBody()

	snap, err := persistence.ImportSnapshot(body)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	warning, err := respond.SplitStorage(h.svc.Replace(r.Context(), snap))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "backup restored",
		"wallets", len(snap.Wallets),
		"transactions", len(snap.Transactions),
		"budgets", len(snap.Budgets))

	respond.JSON(w, http.StatusOK, restoreResponse{
		Wallets:      len(snap.Wallets),
		Transactions: len(snap.Transactions),
		Budgets:      len(snap.Budgets),
		Warning:      warning,
	})
}

func backupBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return http.MaxBytesReader(w, r.Body, maxBackupSize), func() {}, nil
	}

	if err := r.ParseMultipartForm(maxBackupSize); err != nil {
		return nil, nil, errors.New("failed to parse form: " + err.Error())
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("file field is required")
	}

	return file, func() { file.Close() }, nil
}

// clear empties wallets, transactions and budgets. The user name survives.
func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respond.Message(w, http.StatusPreconditionRequired, "Add ?confirm=true to delete all data")
		return
	}

	warning, err := respond.SplitStorage(h.svc.ClearAll(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.NoContent(w, warning)
}
