package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"planrecon/internal/adapters/editor"
	"planrecon/internal/adapters/tui/views"
	"planrecon/internal/domain"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewHelp
)

// App is the main TUI application model
type App struct {
	editor *editor.Opener

	state   ViewState
	browser *views.BrowserModel
	help    *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application. reconcile runs on start and on every
// reload; isClosed classifies tracker statuses for highlighting.
func NewApp(reconcile views.ReconcileFunc, isClosed func(domain.Status) bool, ed *editor.Opener) *App {
	return &App{
		editor:  ed,
		state:   ViewBrowser,
		browser: views.NewBrowserModel(reconcile, isClosed),
		help:    views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, nil

	case views.OpenReportMsg:
		a.state = ViewBrowser
		return a, a.openEditor(msg.Path)

	case editorFinishedMsg:
		// Errors surface in the browser's message line
		if msg.err != nil {
			_, cmd := a.browser.Update(views.ErrMsg(msg.err))
			return a, cmd
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type editorFinishedMsg struct{ err error }

func (a *App) openEditor(path string) tea.Cmd {
	if a.editor == nil {
		return nil
	}

	cmd, err := a.editor.Command(path)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}
