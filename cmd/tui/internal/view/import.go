package view

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
	"github.com/MrJamesThe3rd/fintrack/internal/importer"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateBankSelect importState = iota
	importStateWalletSelect
	importStateFilePick
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	svc           *ledger.Service
	importService *importer.Service
	monitor       *alert.Monitor

	state        importState
	filePicker   filepicker.Model
	selectedBank importer.Bank
	bankOptions  []importer.Bank
	bankCursor   int
	wallets      []ledger.Wallet
	walletCursor int

	result importer.Result
	alerts []alert.Alert
	status string
	err    error
}

func NewImportModel(svc *ledger.Service, impSvc *importer.Service, monitor *alert.Monitor) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		svc:           svc,
		importService: impSvc,
		monitor:       monitor,
		filePicker:    fp,
		bankOptions:   []importer.Bank{importer.BankCGD},
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateBankSelect:
			return m.updateBankSelect(msg)
		case importStateWalletSelect:
			return m.updateWalletSelect(msg)
		}

	case importResultMsg:
		m.state = importStateResult
		m.result = msg.result
		m.alerts = msg.alerts
		m.err = msg.err
		m.status = outcome(fmt.Sprintf("Imported %d transactions, skipped %d.", len(msg.result.Created), len(msg.result.Skipped)), msg.err)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateWalletSelect:
		m.state = importStateBankSelect
		return m, nil
	case importStateFilePick:
		m.state = importStateWalletSelect
		return m, nil
	case importStateResult:
		m.state = importStateBankSelect
		m.err = nil
		m.status = ""
		m.alerts = nil

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateBankSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.bankCursor > 0 {
			m.bankCursor--
		}
	case tea.KeyDown:
		if m.bankCursor < len(m.bankOptions)-1 {
			m.bankCursor++
		}
	case tea.KeyEnter:
		m.selectedBank = m.bankOptions[m.bankCursor]
		m.wallets = m.svc.Wallets()
		m.walletCursor = 0
		m.state = importStateWalletSelect
	}

	return m, nil
}

func (m ImportModel) updateWalletSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.walletCursor > 0 {
			m.walletCursor--
		}
	case tea.KeyDown:
		if m.walletCursor < len(m.wallets)-1 {
			m.walletCursor++
		}
	case tea.KeyEnter:
		if len(m.wallets) == 0 {
			return m, nil
		}

		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateBankSelect:
		return m.viewBankSelect()
	case importStateWalletSelect:
		return m.viewWalletSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select file to import (%s into %s):\n\n%s",
				m.selectedBank, m.wallets[m.walletCursor].Name, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewBankSelect() string {
	s := "Select Bank:\n\n"

	for i, bank := range m.bankOptions {
		cursor := " "
		if i == m.bankCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, string(bank))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewWalletSelect() string {
	if len(m.wallets) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No wallets yet. Add one before importing.\n\n(Esc to go back)")
	}

	s := "Import into wallet:\n\n"

	for i, w := range m.wallets {
		cursor := " "
		if i == m.walletCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, w.Name)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	var b strings.Builder

	b.WriteString(m.status + "\n\n")

	for _, s := range m.result.Skipped {
		fmt.Fprintf(&b, "%s  %s  %s\n", s.Input.Date, s.Input.Comment, faintStyle.Render(s.Reason))
	}

	b.WriteString(renderAlerts(m.alerts))
	b.WriteString("\n(Esc to go back)")

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

// Messages

type importResultMsg struct {
	result importer.Result
	alerts []alert.Alert
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	bank := m.selectedBank
	walletID := m.wallets[m.walletCursor].ID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := m.importService.Import(ctx, bank, walletID, f)
		if err != nil && !ledger.IsStorageError(err) {
			return importResultMsg{err: err}
		}

		alerts, notifyErr := m.monitor.Check(ctx, m.svc.Snapshot())
		if notifyErr != nil {
			slog.Error("failed to notify budget alerts", "error", notifyErr)
		}

		return importResultMsg{result: res, alerts: alerts, err: err}
	}
}
