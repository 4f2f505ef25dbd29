package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/fintrack/internal/http/auth"
	"github.com/MrJamesThe3rd/fintrack/internal/http/backup"
	"github.com/MrJamesThe3rd/fintrack/internal/http/budget"
	"github.com/MrJamesThe3rd/fintrack/internal/http/matching"
	"github.com/MrJamesThe3rd/fintrack/internal/http/settings"
	"github.com/MrJamesThe3rd/fintrack/internal/http/summary"
	"github.com/MrJamesThe3rd/fintrack/internal/http/transaction"
	"github.com/MrJamesThe3rd/fintrack/internal/http/wallet"
)

type Handlers struct {
	Wallets      *wallet.Handler
	Transactions *transaction.Handler
	Budgets      *budget.Handler
	Summary      *summary.Handler
	Settings     *settings.Handler
	Backup       *backup.Handler
	Rules        *matching.Handler
}

type Options struct {
	AllowedOrigins []string
	// Issuer guards every /api/v1 route. Nil leaves the API open.
	Issuer *auth.Issuer
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.Issuer))

		r.Route("/wallets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))
			h.Wallets.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Budgets.Routes(r)
		})

		r.Route("/settings", h.Settings.Routes)
		r.Route("/rules", h.Rules.Routes)

		r.Group(h.Summary.Routes)
		r.Group(h.Backup.Routes)
	})

	return router
}
