package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/money"
)

type budgetState int

const (
	budgetStateBrowse budgetState = iota
	budgetStateForm
	budgetStateConfirmDelete
)

type budgetFields struct {
	category ledger.Category
	amount   string
	period   ledger.Period
	confirm  bool
}

type BudgetsModel struct {
	CommonModel
	svc       *ledger.Service
	evaluator *alert.Evaluator
	format    *money.Formatter

	state  budgetState
	usage  []alert.Usage
	cursor int
	bar    progress.Model
	form   *huh.Form
	fields *budgetFields
	editID string
	status string
}

func NewBudgetsModel(svc *ledger.Service, evaluator *alert.Evaluator, format *money.Formatter) BudgetsModel {
	m := BudgetsModel{
		svc:       svc,
		evaluator: evaluator,
		format:    format,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
	m.refresh()

	return m
}

func (m BudgetsModel) Title() string { return "Budgets" }

func (m BudgetsModel) ShortHelp() string {
	if m.state != budgetStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | ↑/↓: select | a: add | e: edit | x: delete"
}

func (m BudgetsModel) Init() tea.Cmd {
	return nil
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if saved, ok := msg.(budgetSavedMsg); ok {
		m.status = outcome(saved.done, saved.err)
		m.state = budgetStateBrowse
		m.form = nil
		m.refresh()

		return m, nil
	}

	if m.state != budgetStateBrowse {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.usage)-1 {
			m.cursor++
		}
	case "a":
		return m.enterForm(nil)
	case "e":
		if u, ok := m.selected(); ok {
			return m.enterForm(&u.Budget)
		}
	case "x":
		return m.enterConfirmDelete()
	}

	return m, nil
}

func (m BudgetsModel) selected() (alert.Usage, bool) {
	if m.cursor < 0 || m.cursor >= len(m.usage) {
		return alert.Usage{}, false
	}

	return m.usage[m.cursor], true
}

func (m BudgetsModel) enterForm(existing *ledger.Budget) (tea.Model, tea.Cmd) {
	m.fields = &budgetFields{category: ledger.CategoryFood, period: ledger.PeriodMonthly}
	m.editID = ""

	if existing != nil {
		m.editID = existing.ID
		m.fields.category = existing.Category
		m.fields.amount = existing.Amount.String()
		m.fields.period = existing.Period
	}

	periods := make([]huh.Option[ledger.Period], 0, len(ledger.Periods()))
	for _, p := range ledger.Periods() {
		periods = append(periods, huh.NewOption(string(p), p))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ledger.Category]().
				Title("Category").
				Options(categoryOptions()...).
				Value(&m.fields.category),
			huh.NewInput().
				Title("Limit").
				Value(&m.fields.amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
			huh.NewSelect[ledger.Period]().
				Title("Period").
				Options(periods...).
				Value(&m.fields.period),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = budgetStateForm

	return m, m.form.Init()
}

func (m BudgetsModel) enterConfirmDelete() (tea.Model, tea.Cmd) {
	u, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.editID = u.Budget.ID
	m.fields = &budgetFields{}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete the %s budget?", u.Budget.Category.Name())).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.fields.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = budgetStateConfirmDelete

	return m, m.form.Init()
}

func (m BudgetsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = budgetStateBrowse
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

	if m.state == budgetStateConfirmDelete {
		if !m.fields.confirm {
			m.state = budgetStateBrowse
			m.form = nil

			return m, nil
		}

		return m, m.deleteCmd(m.editID)
	}

	return m, m.saveCmd(m.editID, *m.fields)
}

type budgetSavedMsg struct {
	done string
	err  error
}

func (m BudgetsModel) saveCmd(id string, f budgetFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		amount, err := parseAmount(f.amount)
		if err != nil {
			return budgetSavedMsg{err: err}
		}

		if id == "" {
			_, err = m.svc.CreateBudget(ctx, ledger.BudgetInput{Category: f.category, Amount: amount, Period: f.period})
			return budgetSavedMsg{done: "Budget added.", err: err}
		}

		_, err = m.svc.UpdateBudget(ctx, id, ledger.BudgetPatch{Category: &f.category, Amount: &amount, Period: &f.period})

		return budgetSavedMsg{done: "Budget updated.", err: err}
	}
}

func (m BudgetsModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return budgetSavedMsg{done: "Budget deleted.", err: m.svc.DeleteBudget(ctx, id)}
	}
}

func (m *BudgetsModel) refresh() {
	m.usage = m.evaluator.Usage(m.svc.Snapshot(), time.Now())

	if m.cursor >= len(m.usage) {
		m.cursor = max(len(m.usage)-1, 0)
	}
}

func (m BudgetsModel) View() string {
	var b strings.Builder

	if len(m.usage) == 0 {
		b.WriteString(faintStyle.Render("No budgets yet. Press a to add one."))
	}

	for i, u := range m.usage {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		ratio, _ := u.Percentage.Div(hundred).Float64()

		line := fmt.Sprintf("%s%-20s %s  %s / %s  %s",
			cursor,
			u.Budget.Category.Name(),
			m.bar.ViewAs(min(ratio, 1)),
			m.format.Format(u.Spent),
			m.format.Format(u.Budget.Amount),
			faintStyle.Render(m.format.Percent(u.Percentage, 1)),
		)

		b.WriteString(line + "\n")

		if u.Alert != nil {
			b.WriteString("    " + renderAlerts([]alert.Alert{*u.Alert}))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("This month's spending against each budget"),
		b.String(),
	)

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}
