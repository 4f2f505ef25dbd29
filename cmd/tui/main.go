package main

import (
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fintrack/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/config"
	"github.com/MrJamesThe3rd/fintrack/internal/database"
	"github.com/MrJamesThe3rd/fintrack/internal/importer"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/fintrack/internal/matching/store"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
	"github.com/MrJamesThe3rd/fintrack/internal/persistence"
	kvStore "github.com/MrJamesThe3rd/fintrack/internal/persistence/store"
)

type model struct {
	svc           *ledger.Service
	evaluator     *alert.Evaluator
	monitor       *alert.Monitor
	format        *money.Formatter
	importService *importer.Service

	currentView View
	startupNote string

	dashboardView    view.DashboardModel
	walletsView      view.WalletsModel
	transactionsView view.TransactionsModel
	budgetsView      view.BudgetsModel
	importView       view.ImportModel
	backupView       view.BackupModel
}

type View int

const (
	ViewMenu View = iota
	ViewDashboard
	ViewWallets
	ViewTransactions
	ViewBudgets
	ViewImport
	ViewBackup
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The TUI always works against SQL storage; the memory driver would lose
	// everything on exit.
	dialect := database.SQLite
	if cfg.Storage.Driver == "postgres" {
		dialect = database.Postgres
	}

	if err := database.Migrate(dialect, cfg.DSN()); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	db, err := database.New(dialect, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	adapter := persistence.NewAdapter(kvStore.New(db, dialect))

	ctx, cancel := view.DbCtx()
	defer cancel()

	snap, report, err := adapter.Load(ctx)
	if err != nil {
		slog.Error("failed to load data", "error", err)
		os.Exit(1)
	}

	var note string
	if len(report.Corrupt) > 0 {
		note = "Some saved data was unreadable and has been reset."
	}

	format := money.NewFormatter(cfg.App.Currency, cfg.App.Locale)
	evaluator := alert.NewEvaluator(format)
	monitor := alert.NewMonitor(evaluator, alert.LogNotifier{})

	svc := ledger.NewService(adapter, snap)
	matchSvc := matching.NewService(matchingStore.New(db, dialect))
	impSvc := importer.NewService(matchSvc, svc)

	return model{
		svc:           svc,
		evaluator:     evaluator,
		monitor:       monitor,
		format:        format,
		importService: impSvc,
		currentView:   ViewMenu,
		startupNote:   note,
		importView:    view.NewImportModel(svc, impSvc, monitor),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.svc, m.evaluator, m.format)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewWallets
				m.walletsView = view.NewWalletsModel(m.svc, m.format)

				return m, m.walletsView.Init()
			case "3":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.svc, m.monitor, m.format)

				return m, m.transactionsView.Init()
			case "4":
				m.currentView = ViewBudgets
				m.budgetsView = view.NewBudgetsModel(m.svc, m.evaluator, m.format)

				return m, m.budgetsView.Init()
			case "5":
				m.currentView = ViewImport
				return m, m.importView.Init()
			case "6":
				m.currentView = ViewBackup
				m.backupView = view.NewBackupModel(m.svc)

				return m, m.backupView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewWallets:
		var newModel tea.Model
		newModel, cmd = m.walletsView.Update(msg)
		m.walletsView = newModel.(view.WalletsModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewBudgets:
		var newModel tea.Model
		newModel, cmd = m.budgetsView.Update(msg)
		m.budgetsView = newModel.(view.BudgetsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewBackup:
		var newModel tea.Model
		newModel, cmd = m.backupView.Update(msg)
		m.backupView = newModel.(view.BackupModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		menu := "FinTrack\n\n" +
			"1. Dashboard\n" +
			"2. Wallets\n" +
			"3. Transactions\n" +
			"4. Budgets\n" +
			"5. Import Statement\n" +
			"6. Backup & Data\n\n" +
			"q. Quit"

		if alerts := m.evaluator.Evaluate(m.svc.Snapshot(), time.Now()); len(alerts) > 0 {
			menu += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("214")).
				Render(alerts[0].Message)
		}

		if m.startupNote != "" {
			menu = lipgloss.NewStyle().Faint(true).Render(m.startupNote) + "\n\n" + menu
		}

		return lipgloss.NewStyle().Padding(2).Render(menu)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewWallets:
		return m.walletsView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewBudgets:
		return m.budgetsView.View()
	case ViewImport:
		return m.importView.View()
	case ViewBackup:
		return m.backupView.View()
	}

	return "Unknown View"
}

const logFile = "fintrack-tui.log"

func main() {
	m := initialModel()

	// Budget alerts are logged; keep them off the terminal while the UI owns it.
	if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		defer f.Close()
		slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
