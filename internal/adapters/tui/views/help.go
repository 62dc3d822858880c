package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"planrecon/internal/adapters/tui/styles"
	"planrecon/internal/domain"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view. Content scrolls when the
// terminal is shorter than the help text.
type HelpModel struct {
	viewport viewport.Model
	width    int
	height   int
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	m := &HelpModel{viewport: viewport.New(0, 0)}
	m.viewport.SetContent(helpContent())
	return m
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			m.viewport.GotoTop()
			return m, func() tea.Msg {
				return SwitchToBrowserMsg{}
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the help view
func (m *HelpModel) View() string {
	if m.height == 0 {
		return styles.App.Render(helpContent())
	}
	return styles.App.Render(m.viewport.View())
}

func helpContent() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("planrecon help"))
	b.WriteString("\n\n")

	b.WriteString(styles.SectionLabel.Render("Navigation"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k / ↑ / ↓", "Move up/down"))
	b.WriteString(helpLine("h / ←", "Collapse / go to parent"))
	b.WriteString(helpLine("l / →", "Expand"))
	b.WriteString(helpLine("Enter", "Toggle"))
	b.WriteString(helpLine("E / C", "Expand / collapse everything"))
	b.WriteString(helpLine("Tab / Shift+Tab", "Switch between divergences, plan and tracker"))
	b.WriteString("\n")

	b.WriteString(styles.SectionLabel.Render("Actions"))
	b.WriteString("\n")
	b.WriteString(helpLine("y", "Copy the selected issue key"))
	b.WriteString(helpLine("o", "Open the written report in $EDITOR"))
	b.WriteString(helpLine("r", "Reconcile again"))
	b.WriteString(helpLine("q / Ctrl+C", "Quit"))
	b.WriteString("\n")

	b.WriteString(styles.SectionLabel.Render("Markers"))
	b.WriteString("\n")
	for _, c := range []domain.Category{
		domain.OnlyInPlan, domain.OnlyInTracker, domain.ClosedButIncomplete, domain.CompleteButOpen,
	} {
		b.WriteString("  ")
		b.WriteString(styles.CategoryStyle(c).Render(padRight(c.Prefix(), 22)))
		b.WriteString(styles.HelpDesc.Render(markerHelp[c]))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return b.String()
}

var markerHelp = map[domain.Category]string{
	domain.OnlyInPlan:          "planned task with no matching issue",
	domain.OnlyInTracker:       "issue missing from the plan",
	domain.ClosedButIncomplete: "issue closed, plan below 100%",
	domain.CompleteButOpen:     "plan at 100%, issue still open",
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// SetSize updates the view dimensions
func (m *HelpModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-4, 1)
	m.viewport.Height = max(height-2, 1)
}
