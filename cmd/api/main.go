package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/amqp"
	"github.com/MrJamesThe3rd/fintrack/internal/config"
	"github.com/MrJamesThe3rd/fintrack/internal/database"
	fintrackHttp "github.com/MrJamesThe3rd/fintrack/internal/http"
	"github.com/MrJamesThe3rd/fintrack/internal/http/auth"
	backupHandler "github.com/MrJamesThe3rd/fintrack/internal/http/backup"
	budgetHandler "github.com/MrJamesThe3rd/fintrack/internal/http/budget"
	matchingHandler "github.com/MrJamesThe3rd/fintrack/internal/http/matching"
	settingsHandler "github.com/MrJamesThe3rd/fintrack/internal/http/settings"
	summaryHandler "github.com/MrJamesThe3rd/fintrack/internal/http/summary"
	txHandler "github.com/MrJamesThe3rd/fintrack/internal/http/transaction"
	walletHandler "github.com/MrJamesThe3rd/fintrack/internal/http/wallet"
	"github.com/MrJamesThe3rd/fintrack/internal/importer"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/fintrack/internal/matching/store"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
	"github.com/MrJamesThe3rd/fintrack/internal/persistence"
	"github.com/MrJamesThe3rd/fintrack/internal/persistence/memory"
	kvStore "github.com/MrJamesThe3rd/fintrack/internal/persistence/store"
)

// memoryRulesDSN backs category rules when the ledger itself lives in memory.
// The shared cache keeps the database alive while any connection is open.
const memoryRulesDSN = "file:fintrack-rules?mode=memory&cache=shared"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fintrack stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, dialect, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var kv persistence.KV = kvStore.New(db, dialect)
	if cfg.Storage.Driver == "memory" {
		kv = memory.New()
	}

	adapter := persistence.NewAdapter(kv)

	snap, report, err := adapter.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	if len(report.Corrupt) > 0 {
		slog.Warn("started with corrupt keys emptied", "keys", report.Corrupt)
	}

	notifier, closeNotifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}
	defer closeNotifier()

	var (
		format    = money.NewFormatter(cfg.App.Currency, cfg.App.Locale)
		evaluator = alert.NewEvaluator(format)
		monitor   = alert.NewMonitor(evaluator, notifier)

		ledgerService   = ledger.NewService(adapter, snap)
		matchingService = matching.NewService(matchingStore.New(db, dialect))
		importService   = importer.NewService(matchingService, ledgerService)
	)

	handlers := fintrackHttp.Handlers{
		Wallets:      walletHandler.NewHandler(ledgerService, importService, monitor),
		Transactions: txHandler.NewHandler(ledgerService, monitor),
		Budgets:      budgetHandler.NewHandler(ledgerService, evaluator),
		Summary:      summaryHandler.NewHandler(ledgerService, evaluator, format),
		Settings:     settingsHandler.NewHandler(ledgerService),
		Backup:       backupHandler.NewHandler(ledgerService),
		Rules:        matchingHandler.NewHandler(matchingService),
	}

	opts := fintrackHttp.Options{AllowedOrigins: cfg.CORS.AllowedOrigins}
	if cfg.Auth.Secret != "" {
		opts.Issuer = auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	} else {
		slog.Warn("AUTH_SECRET is empty, the API is unauthenticated")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           http.TimeoutHandler(fintrackHttp.New(opts, handlers), cfg.Server.Timeout, "request timed out"),
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "name", cfg.App.Name, "addr", server.Addr, "storage", cfg.Storage.Driver)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openDatabase migrates and opens the SQL backend. The memory driver still
// gets an in-memory SQLite database for category rules.
func openDatabase(cfg *config.Config) (*sql.DB, database.Dialect, error) {
	dialect, dsn := database.SQLite, cfg.DSN()

	switch cfg.Storage.Driver {
	case "postgres":
		dialect = database.Postgres
	case "memory":
		dsn = memoryRulesDSN
	}

	db, err := database.New(dialect, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("connecting to database: %w", err)
	}

	if err := database.Migrate(dialect, dsn); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("migrating database: %w", err)
	}

	return db, dialect, nil
}

func newNotifier(cfg *config.Config) (alert.Notifier, func(), error) {
	if cfg.AMQP.URL == "" {
		return alert.LogNotifier{}, func() {}, nil
	}

	client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to broker: %w", err)
	}

	return client, func() {
		if err := client.Close(); err != nil {
			slog.Error("failed to close broker connection", "error", err)
		}
	}, nil
}
