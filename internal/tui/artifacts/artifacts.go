// Package artifacts renders the generated mapping scripts, schemas and the
// server side description of the statement, one tab each.
package artifacts

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/sqlmapper/internal/database"
	"github.com/joacominatel/sqlmapper/internal/sqlmap"
	"github.com/joacominatel/sqlmapper/internal/tui/theme"
)

// Tab identifies one artifact view.
type Tab int

const (
	TabInputMapping Tab = iota
	TabInputSchema
	TabResultMapping
	TabResultSchema
	TabColumns
	TabAttributes
	TabDescribe
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabInputMapping:
		return "inputMapping.js"
	case TabInputSchema:
		return "inputSchema.json"
	case TabResultMapping:
		return "resultMapping.js"
	case TabResultSchema:
		return "resultSchema.json"
	case TabColumns:
		return "SQL columns"
	case TabAttributes:
		return "Attributes"
	case TabDescribe:
		return "Describe"
	default:
		return "unknown"
	}
}

// copyClipboard is replaced in tests.
var copyClipboard = clipboard.WriteAll

// Model is the artifacts pane.
type Model struct {
	analysis *sqlmap.Analysis

	describe    *database.Description
	describeErr error
	describing  bool

	active  Tab
	scrollY int
	width   int
	height  int
	focused bool
}

// New creates an empty artifacts pane.
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetAnalysis shows a new analysis. The describe tab is reset because it
// belonged to the previous text.
func (m *Model) SetAnalysis(a sqlmap.Analysis) {
	m.analysis = &a
	m.describe = nil
	m.describeErr = nil
	m.scrollY = 0
}

// Analysis returns the analysis on display, if any.
func (m Model) Analysis() (sqlmap.Analysis, bool) {
	if m.analysis == nil {
		return sqlmap.Analysis{}, false
	}
	return *m.analysis, true
}

// Reset clears every tab.
func (m *Model) Reset() {
	m.analysis = nil
	m.describe = nil
	m.describeErr = nil
	m.describing = false
	m.scrollY = 0
}

// SetDescribing marks a describe round trip in flight and switches to its tab.
func (m *Model) SetDescribing(b bool) {
	m.describing = b
	if b {
		m.SetActive(TabDescribe)
	}
}

// SetDescription shows the server description of the statement.
func (m *Model) SetDescription(d *database.Description) {
	m.describing = false
	m.describe = d
	m.describeErr = nil
}

// SetDescribeError shows a describe failure.
func (m *Model) SetDescribeError(err error) {
	m.describing = false
	m.describe = nil
	m.describeErr = err
}

// Active returns the selected tab.
func (m Model) Active() Tab {
	return m.active
}

// SetActive selects a tab.
func (m *Model) SetActive(t Tab) {
	if t < 0 || t >= tabCount {
		return
	}
	m.active = t
	m.scrollY = 0
}

// Content returns the plain text of the selected tab.
func (m Model) Content() string {
	if m.active == TabDescribe {
		return m.describeText()
	}
	if m.analysis == nil {
		return ""
	}

	a := m.analysis.Artifacts
	switch m.active {
	case TabInputMapping:
		return a.InputMapping
	case TabInputSchema:
		return a.InputSchema
	case TabResultMapping:
		return a.ResultMapping
	case TabResultSchema:
		return a.ResultSchema
	case TabColumns:
		return a.ColumnNames
	case TabAttributes:
		return a.Attributes
	}
	return ""
}

func (m Model) describeText() string {
	if m.describe == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- %s\n", strings.ReplaceAll(m.describe.Statement, "\n", " "))

	fieldRows := make([][]string, len(m.describe.Fields))
	for i, f := range m.describe.Fields {
		fieldRows[i] = []string{f.Name, f.DataType}
	}
	b.WriteString("\nResult columns\n")
	b.WriteString(renderTable([]string{"Column", "Type"}, fieldRows))

	if len(m.describe.Params) > 0 {
		paramRows := make([][]string, len(m.describe.Params))
		for i, p := range m.describe.Params {
			paramRows[i] = []string{fmt.Sprintf("$%d", p.Position), p.Name, p.DataType}
		}
		b.WriteString("\n\nParameters\n")
		b.WriteString(renderTable([]string{"Pos", "Name", "Type"}, paramRows))
	}
	return b.String()
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the artifacts pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	lines := m.lineCount()
	switch key.String() {
	case "left", "h":
		m.SetActive((m.active + tabCount - 1) % tabCount)
	case "right", "l":
		m.SetActive((m.active + 1) % tabCount)
	case "up", "k":
		if m.scrollY > 0 {
			m.scrollY--
		}
	case "down", "j":
		if m.scrollY < lines-1 {
			m.scrollY++
		}
	case "pgup":
		m.scrollY = max(0, m.scrollY-m.height/2)
	case "pgdown":
		m.scrollY = max(0, min(lines-1, m.scrollY+m.height/2))
	case "g", "home":
		m.scrollY = 0
	case "c":
		return m, m.copyCmd()
	case "w":
		if m.analysis == nil {
			return m, notify("Nothing to export")
		}
		return m, func() tea.Msg { return ExportRequestMsg{} }
	}

	return m, nil
}

func (m Model) copyCmd() tea.Cmd {
	content := m.Content()
	if content == "" {
		return notify("Nothing to copy")
	}
	name := m.active.String()
	return func() tea.Msg {
		if err := copyClipboard(content); err != nil {
			return StatusNotifyMsg{Message: "Copy failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: "Copied " + name}
	}
}

func notify(text string) tea.Cmd {
	return func() tea.Msg { return StatusNotifyMsg{Message: text} }
}

func (m Model) lineCount() int {
	c := m.Content()
	if c == "" {
		return 0
	}
	return strings.Count(c, "\n") + 1
}

// View renders the pane.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	content := m.Content()
	switch {
	case m.active == TabDescribe && m.describing:
		return b.String() + theme.StyleMuted.Render("  Preparing statement...")
	case m.active == TabDescribe && m.describeErr != nil:
		return b.String() + theme.StyleError.Render("  Error: "+m.describeErr.Error())
	case m.active == TabDescribe && content == "":
		return b.String() + theme.StyleMuted.Render("  Ctrl+D in the editor describes the statement on the connected database")
	case m.analysis == nil && m.active != TabDescribe:
		return b.String() + theme.StyleMuted.Render("  Type a SELECT statement to generate the mapping artifacts")
	case content == "":
		return b.String() + theme.StyleMuted.Render("  (empty)")
	}

	visible := m.height - 2
	if visible < 1 {
		visible = 1
	}

	lines := strings.Split(content, "\n")
	end := min(len(lines), m.scrollY+visible)
	for i := m.scrollY; i < end; i++ {
		b.WriteString("  ")
		b.WriteString(m.clip(lines[i]))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		if t == m.active {
			tabs = append(tabs, theme.StyleActiveTab.Render(t.String()))
		} else {
			tabs = append(tabs, theme.StyleTab.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) clip(line string) string {
	limit := m.width - 4
	if limit < 1 || lipgloss.Width(line) <= limit {
		return line
	}
	runes := []rune(line)
	for len(runes) > 0 && lipgloss.Width(string(runes)) >= limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// renderTable lays out rows in aligned columns separated by " │ ".
func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		return strings.TrimRight(strings.Join(parts, " │ "), " ")
	}

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}

	out := []string{line(header), strings.Join(sep, "─┼─")}
	for _, row := range rows {
		out = append(out, line(row))
	}
	return strings.Join(out, "\n")
}
