package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"planrecon/internal/adapters/tui/styles"
	"planrecon/internal/domain"
)

// RenderKeyHelp formats a key binding as help text (key + description)
func RenderKeyHelp(b key.Binding) string {
	help := b.Help()
	return fmt.Sprintf("%s %s",
		styles.HelpKey.Render(help.Key),
		styles.HelpDesc.Render(help.Desc),
	)
}

// RenderHelpLine renders multiple key bindings as a help line separated by bullets
func RenderHelpLine(bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, RenderKeyHelp(b))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderMessage renders a message with appropriate styling based on isError
func RenderMessage(message string, isError bool) string {
	if message == "" {
		return ""
	}
	if isError {
		return styles.ErrorMsg.Render(message)
	}
	return styles.Success.Render(message)
}

// RenderCounts summarizes a diff as colored per-category counts
func RenderCounts(counts domain.DiffCounts) string {
	if counts.Total() == 0 {
		return styles.Success.Render("plan and tracker agree")
	}

	cats := []domain.Category{
		domain.OnlyInPlan,
		domain.OnlyInTracker,
		domain.ClosedButIncomplete,
		domain.CompleteButOpen,
	}
	var parts []string
	for _, c := range cats {
		if counts[c] == 0 {
			continue
		}
		parts = append(parts, styles.CategoryStyle(c).Render(fmt.Sprintf("%s %d", c.Prefix(), counts[c])))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderTabs renders the tab bar with active highlighted
func RenderTabs(names []string, active int) string {
	parts := make([]string, len(names))
	for i, name := range names {
		if i == active {
			parts[i] = styles.TabActive.Render(name)
		} else {
			parts[i] = styles.TabInactive.Render(name)
		}
	}
	return strings.Join(parts, " ")
}
