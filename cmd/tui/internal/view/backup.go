package view

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/persistence"
)

type backupState int

const (
	backupStateAction backupState = iota
	backupStateExportPath
	backupStateRestorePick
	backupStateConfirm
	backupStateWorking
	backupStateResult
)

type backupAction string

const (
	actionExport  backupAction = "export"
	actionRestore backupAction = "restore"
	actionClear   backupAction = "clear"
)

type backupFields struct {
	action  backupAction
	path    string
	confirm bool
}

type BackupModel struct {
	CommonModel
	svc *ledger.Service

	state      backupState
	form       *huh.Form
	fields     *backupFields
	filePicker filepicker.Model
	restore    ledger.Snapshot
	spinner    spinner.Model
	status     string
}

func NewBackupModel(svc *ledger.Service) BackupModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".json"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := BackupModel{svc: svc, filePicker: fp, spinner: s}
	m.form = m.buildActionForm()

	return m
}

func (m BackupModel) Title() string { return "Backup & Data" }

func (m BackupModel) ShortHelp() string {
	if m.state == backupStateResult {
		return "Esc: back to menu"
	}

	return "Esc: back | Enter: confirm"
}

func (m BackupModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *BackupModel) buildActionForm() *huh.Form {
	m.fields = &backupFields{action: actionExport}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[backupAction]().
				Title("What do you want to do?").
				Options(
					huh.NewOption("Export a backup", actionExport),
					huh.NewOption("Restore from a backup", actionRestore),
					huh.NewOption("Clear all data", actionClear),
				).
				Value(&m.fields.action),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m BackupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.state != backupStateWorking {
		return m, Back
	}

	if res, ok := msg.(backupResultMsg); ok {
		m.state = backupStateResult
		m.status = outcome(res.done, res.err)

		return m, nil
	}

	switch m.state {
	case backupStateRestorePick:
		return m.updateRestorePick(msg)
	case backupStateWorking:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case backupStateResult:
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m.next()
}

// next advances once the current form completes.
func (m BackupModel) next() (tea.Model, tea.Cmd) {
	switch m.state {
	case backupStateAction:
		switch m.fields.action {
		case actionExport:
			m.fields.path = persistence.BackupFilename(time.Now())
			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Save backup as").
						Value(&m.fields.path),
				),
			).WithWidth(50).WithShowHelp(false)
			m.state = backupStateExportPath

			return m, m.form.Init()
		case actionRestore:
			m.state = backupStateRestorePick
			return m, m.filePicker.Init()
		case actionClear:
			return m.confirm("Delete all wallets, transactions and budgets?")
		}

	case backupStateExportPath:
		m.state = backupStateWorking
		return m, tea.Batch(m.spinner.Tick, m.exportCmd(m.fields.path))

	case backupStateConfirm:
		if !m.fields.confirm {
			return m, Back
		}

		m.state = backupStateWorking

		if m.fields.action == actionClear {
			return m, tea.Batch(m.spinner.Tick, m.clearCmd())
		}

		return m, tea.Batch(m.spinner.Tick, m.restoreCmd(m.restore))
	}

	return m, nil
}

func (m BackupModel) confirm(title string) (tea.Model, tea.Cmd) {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description("This replaces everything currently stored.").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fields.confirm),
		),
	).WithWidth(50).WithShowHelp(false)
	m.state = backupStateConfirm

	return m, m.form.Init()
}

func (m BackupModel) updateRestorePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	didSelect, path := m.filePicker.DidSelectFile(msg)
	if !didSelect {
		return m, cmd
	}

	snap, err := readBackup(path)
	if err != nil {
		m.state = backupStateResult
		m.status = errorStyle.Render("Error: " + err.Error())

		return m, nil
	}

	m.restore = snap

	return m.confirm(fmt.Sprintf("Restore %d wallets, %d transactions and %d budgets from %s?",
		len(snap.Wallets), len(snap.Transactions), len(snap.Budgets), filepath.Base(path)))
}

func readBackup(path string) (ledger.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	defer f.Close()

	return persistence.ImportSnapshot(f)
}

type backupResultMsg struct {
	done string
	err  error
}

func (m BackupModel) exportCmd(path string) tea.Cmd {
	doc := persistence.ExportSnapshot(m.svc.Snapshot(), time.Now())

	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return backupResultMsg{err: err}
		}

		if err := persistence.WriteDocument(f, doc); err != nil {
			f.Close()
			return backupResultMsg{err: err}
		}

		return backupResultMsg{done: "Backup written to " + path + ".", err: f.Close()}
	}
}

func (m BackupModel) restoreCmd(snap ledger.Snapshot) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return backupResultMsg{done: "Backup restored.", err: m.svc.Replace(ctx, snap)}
	}
}

func (m BackupModel) clearCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return backupResultMsg{done: "All data cleared.", err: m.svc.ClearAll(ctx)}
	}
}

func (m BackupModel) View() string {
	switch m.state {
	case backupStateRestorePick:
		return lipgloss.NewStyle().Padding(1).Render("Select a backup file:\n\n" + m.filePicker.View())
	case backupStateWorking:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Working...")
	case backupStateResult:
		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n(Esc to go back)")
	}

	return lipgloss.NewStyle().Padding(1).Render(m.form.View())
}
