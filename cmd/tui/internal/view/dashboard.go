package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/analytics"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
)

const recentCount = 5

type DashboardModel struct {
	CommonModel
	svc       *ledger.Service
	evaluator *alert.Evaluator
	format    *money.Formatter

	form   *huh.Form
	name   *string
	status string
}

func NewDashboardModel(svc *ledger.Service, evaluator *alert.Evaluator, format *money.Formatter) DashboardModel {
	return DashboardModel{svc: svc, evaluator: evaluator, format: format}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	if m.form != nil {
		return "Enter: save | Esc: cancel"
	}

	return "Esc: back | n: set name"
}

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if saved, ok := msg.(nameSavedMsg); ok {
		m.status = outcome("Name saved.", saved.err)
		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)

	if m.form == nil {
		if !isKey {
			return m, nil
		}

		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			return m.enterNameForm()
		}

		return m, nil
	}

	if isKey && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.form = nil

	return m, m.saveNameCmd(*m.name)
}

func (m DashboardModel) enterNameForm() (tea.Model, tea.Cmd) {
	name := m.svc.UserName()
	m.name = &name

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Your name").
				Value(m.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)

	return m, m.form.Init()
}

type nameSavedMsg struct {
	err error
}

func (m DashboardModel) saveNameCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return nameSavedMsg{err: m.svc.SetUserName(ctx, name)}
	}
}

func (m DashboardModel) View() string {
	now := time.Now()
	snap := m.svc.Snapshot()

	total := analytics.TotalBalance(snap)
	totals := analytics.AggregateTotals(snap)
	breakdown := analytics.CategoryBreakdown(snap)

	header := lipgloss.NewStyle().Bold(true).Render(analytics.Greeting(snap.UserName, now))

	balance := lipgloss.JoinVertical(lipgloss.Left,
		"Total balance",
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render(m.format.Format(total)),
		faintStyle.Render(analytics.MonthOverMonthChange(snap, now).Label(m.format)),
	)

	top := "No expenses yet"
	if breakdown.HasTop {
		top = fmt.Sprintf("%s %s", breakdown.Top.Category.Name(), m.format.Format(breakdown.Top.Amount))
	}

	stats := fmt.Sprintf(
		"Income:       %s\nExpenses:     %s\nSavings rate: %s\nTop category: %s",
		m.format.Format(totals.Income),
		m.format.Format(totals.Expense),
		m.format.Percent(totals.SavingsRate, 1),
		top,
	)

	var wallets strings.Builder

	for _, s := range analytics.WalletSummaries(snap, now) {
		fmt.Fprintf(&wallets, "%-20s %14s  %s\n",
			s.Wallet.Name, m.format.Format(s.Balance), faintStyle.Render(m.format.FormatSigned(s.MonthChange)+" this month"))
	}

	if wallets.Len() == 0 {
		wallets.WriteString(faintStyle.Render("No wallets yet"))
	}

	var recent strings.Builder

	for _, tx := range (ledger.TransactionFilter{Limit: recentCount}).Apply(snap.Transactions) {
		fmt.Fprintf(&recent, "%s  %-24s %14s\n", tx.Date, tx.Title(), m.format.FormatSigned(tx.Signed()))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(balance), panelStyle.Render(stats)),
		"",
		activeStyle("Wallets"),
		wallets.String(),
		activeStyle("Recent"),
		recent.String(),
		renderAlerts(m.evaluator.Evaluate(snap, now)),
	)

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(44).Render(m.form.View()))
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}
