package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fintrack/internal/analytics"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
)

type walletState int

const (
	walletStateBrowse walletState = iota
	walletStateForm
	walletStateConfirmDelete
)

type walletFields struct {
	name    string
	typ     ledger.WalletType
	balance string
	confirm bool
}

type WalletsModel struct {
	CommonModel
	svc    *ledger.Service
	format *money.Formatter

	state   walletState
	table   table.Model
	wallets []analytics.WalletSummary
	form    *huh.Form
	fields  *walletFields
	editID  string
	status  string
}

func NewWalletsModel(svc *ledger.Service, format *money.Formatter) WalletsModel {
	m := WalletsModel{
		svc:    svc,
		format: format,
		table: newTable([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Type", Width: 10},
			{Title: "Balance", Width: 16},
			{Title: "This Month", Width: 16},
		}),
	}
	m.refreshTable()

	return m
}

func (m WalletsModel) Title() string { return "Wallets" }

func (m WalletsModel) ShortHelp() string {
	if m.state != walletStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | e: edit | x: delete"
}

func (m WalletsModel) Init() tea.Cmd {
	return nil
}

func (m WalletsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case walletSavedMsg:
		m.status = outcome(msg.done, msg.err)
		m.state = walletStateBrowse
		m.form = nil
		m.table.Focus()
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == walletStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m WalletsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			return m.enterForm(nil)
		case "e":
			if w, ok := m.selected(); ok {
				return m.enterForm(&w)
			}
		case "x":
			return m.enterConfirmDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m WalletsModel) selected() (ledger.Wallet, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.wallets) {
		return ledger.Wallet{}, false
	}

	return m.wallets[idx].Wallet, true
}

func (m WalletsModel) enterForm(existing *ledger.Wallet) (tea.Model, tea.Cmd) {
	m.fields = &walletFields{typ: ledger.WalletCash, balance: "0"}
	m.editID = ""

	if existing != nil {
		m.editID = existing.ID
		m.fields.name = existing.Name
		m.fields.typ = existing.Type
		m.fields.balance = existing.InitialBalance.String()
	}

	types := make([]huh.Option[ledger.WalletType], 0, len(ledger.WalletTypes()))
	for _, t := range ledger.WalletTypes() {
		types = append(types, huh.NewOption(string(t), t))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fields.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[ledger.WalletType]().
				Title("Type").
				Options(types...).
				Value(&m.fields.typ),
			huh.NewInput().
				Title("Initial balance").
				Value(&m.fields.balance).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = walletStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m WalletsModel) enterConfirmDelete() (tea.Model, tea.Cmd) {
	w, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.editID = w.ID
	m.fields = &walletFields{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", w.Name)).
				Description("All of its transactions are deleted too.").
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.fields.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = walletStateConfirmDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m WalletsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = walletStateBrowse
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

	if m.state == walletStateConfirmDelete {
		if !m.fields.confirm {
			m.state = walletStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}

		return m, m.deleteCmd(m.editID)
	}

	return m, m.saveCmd(m.editID, *m.fields)
}

type walletSavedMsg struct {
	done string
	err  error
}

func (m WalletsModel) saveCmd(id string, f walletFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		balance, err := parseAmount(f.balance)
		if err != nil {
			return walletSavedMsg{err: err}
		}

		if id == "" {
			_, err = m.svc.CreateWallet(ctx, ledger.WalletInput{Name: f.name, Type: f.typ, InitialBalance: balance})
			return walletSavedMsg{done: "Wallet added.", err: err}
		}

		_, err = m.svc.UpdateWallet(ctx, id, ledger.WalletPatch{Name: &f.name, Type: &f.typ, InitialBalance: &balance})

		return walletSavedMsg{done: "Wallet updated.", err: err}
	}
}

func (m WalletsModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return walletSavedMsg{done: "Wallet deleted.", err: m.svc.DeleteWallet(ctx, id)}
	}
}

func (m *WalletsModel) refreshTable() {
	m.wallets = analytics.WalletSummaries(m.svc.Snapshot(), time.Now())

	rows := make([]table.Row, 0, len(m.wallets))
	for _, s := range m.wallets {
		rows = append(rows, table.Row{
			s.Wallet.Name,
			string(s.Wallet.Type),
			m.format.Format(s.Balance),
			m.format.FormatSigned(s.MonthChange),
		})
	}

	m.table.SetRows(rows)
}

func (m WalletsModel) View() string {
	total := analytics.TotalBalance(m.svc.Snapshot())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("Total: "+activeStyle(m.format.Format(total))),
		renderTable(m.table),
	)

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}
