package styles

import (
	"github.com/charmbracelet/lipgloss"

	"planrecon/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	Info      = lipgloss.Color("#60A5FA") // Blue
	Accent    = lipgloss.Color("#EC4899") // Pink
	White     = lipgloss.Color("#FFFFFF")

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Tabs
	TabActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true).
			Padding(0, 1)

	TabInactive = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	// Tree node styles
	NodeDefault = lipgloss.NewStyle()

	NodeDone = lipgloss.NewStyle().
			Foreground(Secondary)

	NodeSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	Milestone = lipgloss.NewStyle().
			Foreground(Warning).
			SetString("◆ ")

	// Divergence styles
	OnlyInPlan          = lipgloss.NewStyle().Foreground(Warning)
	OnlyInTracker       = lipgloss.NewStyle().Foreground(Info)
	ClosedButIncomplete = lipgloss.NewStyle().Foreground(Error).Bold(true)
	CompleteButOpen     = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	Evidence            = lipgloss.NewStyle().Foreground(Muted)

	// Tree indicators
	TreeBranch    = lipgloss.NewStyle().Foreground(Muted)
	TreeExpanded  = "▼ "
	TreeCollapsed = "▶ "
	TreeLeaf      = "  "

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	SectionLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// CategoryStyle returns the style of a divergence marker
func CategoryStyle(c domain.Category) lipgloss.Style {
	switch c {
	case domain.OnlyInPlan:
		return OnlyInPlan
	case domain.OnlyInTracker:
		return OnlyInTracker
	case domain.ClosedButIncomplete:
		return ClosedButIncomplete
	case domain.CompleteButOpen:
		return CompleteButOpen
	default:
		return NodeDefault
	}
}
