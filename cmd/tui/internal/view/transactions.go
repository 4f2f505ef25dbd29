package view

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
)

type txState int

const (
	txStateBrowse txState = iota
	txStateSearch
	txStateForm
	txStateConfirmDelete
)

type txFields struct {
	typ      ledger.Type
	amount   string
	walletID string
	category ledger.Category
	date     string
	time     string
	comment  string
	confirm  bool
}

type TransactionsModel struct {
	CommonModel
	svc     *ledger.Service
	monitor *alert.Monitor
	format  *money.Formatter

	state  txState
	table  table.Model
	search textinput.Model
	txs    []ledger.Transaction
	form   *huh.Form
	fields *txFields
	editID string

	typeFilterIdx     int
	categoryFilterIdx int

	status string
	alerts []alert.Alert
}

var typeFilters = []ledger.Type{"", ledger.TypeIncome, ledger.TypeExpense}

func NewTransactionsModel(svc *ledger.Service, monitor *alert.Monitor, format *money.Formatter) TransactionsModel {
	search := textinput.New()
	search.Placeholder = "search comments and categories"
	search.Prompt = "/ "
	search.Width = 40

	m := TransactionsModel{
		svc:     svc,
		monitor: monitor,
		format:  format,
		search:  search,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Time", Width: 6},
			{Title: "Title", Width: 30},
			{Title: "Category", Width: 20},
			{Title: "Wallet", Width: 16},
			{Title: "Amount", Width: 14},
		}),
	}
	m.refreshTable()

	return m
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateSearch:
		return "Enter: apply | Esc: clear"
	case txStateForm, txStateConfirmDelete:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | e: edit | x: delete | /: search | t: type | c: category"
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case txSavedMsg:
		m.status = outcome(msg.done, msg.err)
		m.alerts = msg.alerts
		m.state = txStateBrowse
		m.form = nil
		m.table.Focus()
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case txStateBrowse:
		return m.updateBrowse(msg)
	case txStateSearch:
		return m.updateSearch(msg)
	}

	return m.updateForm(msg)
}

func (m TransactionsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			return m.enterForm(nil)
		case "e":
			if tx, ok := m.selected(); ok {
				return m.enterForm(&tx)
			}
		case "x":
			return m.enterConfirmDelete()
		case "/":
			m.state = txStateSearch
			m.table.Blur()

			return m, m.search.Focus()
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % len(typeFilters)
			m.refreshTable()

			return m, nil
		case "c":
			m.categoryFilterIdx = (m.categoryFilterIdx + 1) % (len(ledger.Categories()) + 1)
			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.search.SetValue("")
			fallthrough
		case tea.KeyEnter:
			m.search.Blur()
			m.state = txStateBrowse
			m.table.Focus()
			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refreshTable()

	return m, cmd
}

func (m TransactionsModel) filter() ledger.TransactionFilter {
	f := ledger.TransactionFilter{
		Query: m.search.Value(),
		Type:  typeFilters[m.typeFilterIdx],
	}

	if m.categoryFilterIdx > 0 {
		f.Category = ledger.Categories()[m.categoryFilterIdx-1]
	}

	return f
}

func (m TransactionsModel) selected() (ledger.Transaction, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return ledger.Transaction{}, false
	}

	return m.txs[idx], true
}

func (m TransactionsModel) enterForm(existing *ledger.Transaction) (tea.Model, tea.Cmd) {
	wallets := m.svc.Wallets()
	if len(wallets) == 0 {
		m.status = errorStyle.Render("Add a wallet first.")
		return m, nil
	}

	now := time.Now()
	m.fields = &txFields{
		typ:      ledger.TypeExpense,
		walletID: wallets[0].ID,
		category: ledger.CategoryFood,
		date:     now.Format(time.DateOnly),
		time:     now.Format("15:04"),
	}
	m.editID = ""

	if existing != nil {
		m.editID = existing.ID
		m.fields.typ = existing.Type
		m.fields.amount = existing.Amount.String()
		m.fields.walletID = existing.WalletID
		m.fields.category = existing.Category
		m.fields.date = existing.Date.String()
		m.fields.time = string(existing.Time)
		m.fields.comment = existing.Comment
	}

	walletOpts := make([]huh.Option[string], 0, len(wallets))
	for _, w := range wallets {
		walletOpts = append(walletOpts, huh.NewOption(w.Name, w.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ledger.Type]().
				Title("Type").
				Options(huh.NewOption("Expense", ledger.TypeExpense), huh.NewOption("Income", ledger.TypeIncome)).
				Value(&m.fields.typ),
			huh.NewInput().
				Title("Amount").
				Value(&m.fields.amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Wallet").
				Options(walletOpts...).
				Value(&m.fields.walletID),
			huh.NewSelect[ledger.Category]().
				Title("Category").
				Options(categoryOptions()...).
				Value(&m.fields.category),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fields.date).
				Validate(func(s string) error {
					_, err := parseDate(s)
					return err
				}),
			huh.NewInput().
				Title("Time").
				Placeholder("HH:MM").
				Value(&m.fields.time),
			huh.NewText().
				Title("Comment").
				Value(&m.fields.comment),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = txStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func categoryOptions() []huh.Option[ledger.Category] {
	opts := make([]huh.Option[ledger.Category], 0, len(ledger.Categories()))
	for _, c := range ledger.Categories() {
		opts = append(opts, huh.NewOption(c.Name(), c))
	}

	return opts
}

func (m TransactionsModel) enterConfirmDelete() (tea.Model, tea.Cmd) {
	tx, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.editID = tx.ID
	m.fields = &txFields{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", tx.Title())).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.fields.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = txStateConfirmDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m TransactionsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == txStateConfirmDelete {
		if !m.fields.confirm {
			m.state = txStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}

		return m, m.deleteCmd(m.editID)
	}

	return m, m.saveCmd(m.editID, *m.fields)
}

type txSavedMsg struct {
	done   string
	err    error
	alerts []alert.Alert
}

func (m TransactionsModel) saveCmd(id string, f txFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		amount, err := parseAmount(f.amount)
		if err != nil {
			return txSavedMsg{err: err}
		}

		date, err := parseDate(f.date)
		if err != nil {
			return txSavedMsg{err: err}
		}

		tod := ledger.TimeOfDay(f.time)
		done := "Transaction added."

		if id == "" {
			_, err = m.svc.CreateTransaction(ctx, ledger.TransactionInput{
				Type:     f.typ,
				Amount:   amount,
				WalletID: f.walletID,
				Category: f.category,
				Date:     date,
				Time:     tod,
				Comment:  f.comment,
			})
		} else {
			done = "Transaction updated."
			_, err = m.svc.UpdateTransaction(ctx, id, ledger.TransactionPatch{
				Type:     &f.typ,
				Amount:   &amount,
				WalletID: &f.walletID,
				Category: &f.category,
				Date:     &date,
				Time:     &tod,
				Comment:  &f.comment,
			})
		}

		return m.withAlerts(txSavedMsg{done: done, err: err})
	}
}

func (m TransactionsModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return m.withAlerts(txSavedMsg{done: "Transaction deleted.", err: m.svc.DeleteTransaction(ctx, id)})
	}
}

// withAlerts re-evaluates budgets once the mutation went through.
func (m TransactionsModel) withAlerts(msg txSavedMsg) txSavedMsg {
	if msg.err != nil && !ledger.IsStorageError(msg.err) {
		return msg
	}

	ctx, cancel := DbCtx()
	defer cancel()

	alerts, err := m.monitor.Check(ctx, m.svc.Snapshot())
	if err != nil {
		slog.Error("failed to notify budget alerts", "error", err)
	}

	msg.alerts = alerts

	return msg
}

func (m *TransactionsModel) refreshTable() {
	snap := m.svc.Snapshot()
	m.txs = m.filter().Apply(snap.Transactions)

	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		wallet, _ := snap.Wallet(tx.WalletID)

		rows = append(rows, table.Row{
			tx.Date.String(),
			string(tx.Time),
			tx.Title(),
			tx.Category.Name(),
			wallet.Name,
			m.format.FormatSigned(tx.Signed()),
		})
	}

	m.table.SetRows(rows)
}

func (m TransactionsModel) View() string {
	typeLabel := "All"
	if t := typeFilters[m.typeFilterIdx]; t != "" {
		typeLabel = string(t)
	}

	categoryLabel := "All"
	if m.categoryFilterIdx > 0 {
		categoryLabel = ledger.Categories()[m.categoryFilterIdx-1].Name()
	}

	header := fmt.Sprintf("Filter: [t] Type: %s | [c] Category: %s | %d shown",
		activeStyle(typeLabel), activeStyle(categoryLabel), len(m.txs))

	parts := []string{lipgloss.NewStyle().PaddingBottom(1).Render(header)}
	if m.state == txStateSearch || m.search.Value() != "" {
		parts = append(parts, m.search.View())
	}

	parts = append(parts, renderTable(m.table))
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	}

	if m.status != "" {
		content = m.status + "\n" + renderAlerts(m.alerts) + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}
