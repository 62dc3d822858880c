package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"planrecon/internal/adapters/tui/styles"
	"planrecon/internal/application/commands"
	"planrecon/internal/domain"
)

// Tab identifies one of the browsable trees
type Tab int

const (
	TabDiff Tab = iota
	TabPlan
	TabTracker
	tabCount
)

var tabNames = []string{"Divergences", "Plan", "Tracker"}

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Enter       key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Copy        key.Binding
	Reload      key.Binding
	Open        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tree"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous tree"),
	),
	ExpandAll: key.NewBinding(
		key.WithKeys("E"),
		key.WithHelp("E", "expand all"),
	),
	CollapseAll: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "collapse all"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy key"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reconcile again"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open report"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ReconcileFunc runs one reconciliation for the browser
type ReconcileFunc func(ctx context.Context) (*commands.ReconcileResult, error)

var copyToClipboard = clipboard.WriteAll

// chrome is the number of lines taken by header and footer
const chrome = 9

// BrowserModel is the model for the tree browser view
type BrowserModel struct {
	reconcile ReconcileFunc
	isClosed  func(domain.Status) bool

	result  *commands.ReconcileResult
	trees   [tabCount]*TreeItem
	tab     Tab
	flat    []*TreeItem
	cursor  int
	offset  int
	loading bool

	width      int
	height     int
	message    string
	messageErr bool
}

// NewBrowserModel creates a new browser model. isClosed classifies tracker
// statuses for highlighting.
func NewBrowserModel(reconcile ReconcileFunc, isClosed func(domain.Status) bool) *BrowserModel {
	return &BrowserModel{
		reconcile: reconcile,
		isClosed:  isClosed,
	}
}

// Init starts the first reconciliation
func (m *BrowserModel) Init() tea.Cmd {
	return m.Reload()
}

// ReconciledMsg carries a finished reconciliation
type ReconciledMsg struct {
	Result *commands.ReconcileResult
}

type errMsg struct {
	err error
}

// ErrMsg wraps an error for display in the message line
func ErrMsg(err error) tea.Msg {
	return errMsg{err}
}

// OpenReportMsg asks the app to open a written report
type OpenReportMsg struct {
	Path string
}

// SwitchToHelpMsg switches to the help view
type SwitchToHelpMsg struct{}

// SwitchToBrowserMsg switches back to the browser
type SwitchToBrowserMsg struct{}

// Reload runs the reconciliation again
func (m *BrowserModel) Reload() tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		res, err := m.reconcile(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return ReconciledMsg{res}
	}
}

// SetResult replaces the displayed trees
func (m *BrowserModel) SetResult(res *commands.ReconcileResult) {
	m.loading = false
	m.result = res
	m.trees[TabDiff] = NewDiffItem(res.Diff)
	m.trees[TabPlan] = NewTreeItem(res.Plan, func(n *domain.Node) bool {
		return n.Status.Kind == domain.StatusPercent && n.Status.Percent >= 100
	})
	m.trees[TabTracker] = NewTreeItem(res.Tracker, func(n *domain.Node) bool {
		return m.isClosed != nil && m.isClosed(n.Status)
	})
	m.cursor = 0
	m.offset = 0
	m.refreshFlat()
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case ReconciledMsg:
		m.SetResult(msg.Result)
		return m, nil

	case errMsg:
		m.loading = false
		m.setMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		m.message = ""

		switch {
		case key.Matches(msg, BrowserKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, BrowserKeys.Help):
			return m, func() tea.Msg { return SwitchToHelpMsg{} }

		case key.Matches(msg, BrowserKeys.Reload):
			if m.loading {
				return m, nil
			}
			return m, m.Reload()
		}

		if m.result == nil {
			return m, nil
		}

		switch {
		case key.Matches(msg, BrowserKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, BrowserKeys.Down):
			if m.cursor < len(m.flat)-1 {
				m.cursor++
			}

		case key.Matches(msg, BrowserKeys.Left):
			if node := m.SelectedNode(); node != nil {
				if node.IsExpanded && node.HasChildren() {
					node.Collapse()
					m.refreshFlat()
				} else {
					m.moveTo(node.Parent)
				}
			}

		case key.Matches(msg, BrowserKeys.Right):
			if node := m.SelectedNode(); node != nil && node.HasChildren() && !node.IsExpanded {
				node.Expand()
				m.refreshFlat()
			}

		case key.Matches(msg, BrowserKeys.Enter):
			if node := m.SelectedNode(); node != nil && node.HasChildren() {
				node.Toggle()
				m.refreshFlat()
			}

		case key.Matches(msg, BrowserKeys.NextTab):
			m.switchTab((m.tab + 1) % tabCount)

		case key.Matches(msg, BrowserKeys.PrevTab):
			m.switchTab((m.tab + tabCount - 1) % tabCount)

		case key.Matches(msg, BrowserKeys.ExpandAll):
			m.trees[m.tab].SetExpandedAll(true)
			m.refreshFlat()

		case key.Matches(msg, BrowserKeys.CollapseAll):
			root := m.trees[m.tab]
			root.SetExpandedAll(false)
			root.Expand()
			m.refreshFlat()

		case key.Matches(msg, BrowserKeys.Copy):
			node := m.SelectedNode()
			if node == nil || node.Key == "" || node.Key == domain.UnlinkedKey {
				m.setMessage("no key to copy", true)
				return m, nil
			}
			if err := copyToClipboard(node.Key); err != nil {
				m.setMessage(fmt.Sprintf("copy failed: %v", err), true)
				return m, nil
			}
			m.setMessage(fmt.Sprintf("Copied %s", node.Key), false)

		case key.Matches(msg, BrowserKeys.Open):
			path := m.result.Run.ReportPath
			if path == "" {
				m.setMessage("no report was written for this run", true)
				return m, nil
			}
			return m, func() tea.Msg { return OpenReportMsg{Path: path} }
		}
		m.scrollToCursor()
	}

	return m, nil
}

func (m *BrowserModel) setMessage(msg string, isErr bool) {
	m.message = msg
	m.messageErr = isErr
}

func (m *BrowserModel) switchTab(t Tab) {
	m.tab = t
	m.cursor = 0
	m.offset = 0
	m.refreshFlat()
}

func (m *BrowserModel) moveTo(target *TreeItem) {
	for i, n := range m.flat {
		if n == target {
			m.cursor = i
			return
		}
	}
}

// ActiveTab returns the tree currently shown
func (m *BrowserModel) ActiveTab() Tab {
	return m.tab
}

// SelectedNode returns the row under the cursor
func (m *BrowserModel) SelectedNode() *TreeItem {
	if m.cursor >= 0 && m.cursor < len(m.flat) {
		return m.flat[m.cursor]
	}
	return nil
}

// VisibleRows returns the rows of the active tree
func (m *BrowserModel) VisibleRows() []*TreeItem {
	return m.flat
}

func (m *BrowserModel) refreshFlat() {
	root := m.trees[m.tab]
	if root == nil {
		m.flat = nil
		return
	}
	m.flat = root.Flatten()
	// The divergence root is synthetic
	if m.tab == TabDiff && len(m.flat) > 0 {
		m.flat = m.flat[1:]
	}
	if m.cursor >= len(m.flat) {
		m.cursor = len(m.flat) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollToCursor()
}

func (m *BrowserModel) pageSize() int {
	if m.height <= chrome {
		return len(m.flat)
	}
	return m.height - chrome
}

func (m *BrowserModel) scrollToCursor() {
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if page > 0 && m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
}

// View renders the browser
func (m *BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("planrecon"))
	if m.result != nil {
		run := m.result.Run
		b.WriteString("  ")
		b.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s • run %s", run.RootKey, shortID(run.ID))))
	}
	b.WriteString("\n")

	switch {
	case m.result == nil && m.loading:
		b.WriteString("\nReconciling...\n")
	case m.result == nil:
		b.WriteString("\n")
	default:
		b.WriteString(RenderCounts(m.result.Run.Counts))
		b.WriteString("\n\n")
		b.WriteString(RenderTabs(tabNames, int(m.tab)))
		b.WriteString("\n\n")

		if len(m.flat) == 0 {
			b.WriteString(styles.MutedText.Render("  nothing to show"))
			b.WriteString("\n")
		}
		end := min(m.offset+m.pageSize(), len(m.flat))
		for i := m.offset; i < end; i++ {
			b.WriteString(m.renderNode(m.flat[i], i == m.cursor))
			b.WriteString("\n")
		}
	}

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(RenderMessage(m.message, m.messageErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderHelpLine(
		BrowserKeys.NextTab, BrowserKeys.Enter, BrowserKeys.Copy,
		BrowserKeys.Open, BrowserKeys.Reload, BrowserKeys.Help, BrowserKeys.Quit,
	))

	return styles.App.Render(b.String())
}

func (m *BrowserModel) renderNode(node *TreeItem, selected bool) string {
	depth := node.Depth()
	if m.tab == TabDiff {
		depth--
	}
	indent := strings.Repeat("  ", depth)

	var prefix string
	switch {
	case !node.HasChildren():
		prefix = styles.TreeLeaf
	case node.IsExpanded:
		prefix = styles.TreeExpanded
	default:
		prefix = styles.TreeCollapsed
	}

	text := node.Label
	if node.Milestone {
		text = styles.Milestone.String() + text
	}

	var style lipgloss.Style
	switch {
	case selected:
		style = styles.NodeSelected
	case node.IsDiff:
		style = styles.CategoryStyle(node.Category)
	case m.tab == TabDiff:
		style = styles.Evidence
	case node.Done:
		style = styles.NodeDone
	default:
		style = styles.NodeDefault
	}

	return fmt.Sprintf("%s%s%s", indent, styles.TreeBranch.Render(prefix), style.Render(text))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// SetSize updates the view dimensions
func (m *BrowserModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.scrollToCursor()
}
