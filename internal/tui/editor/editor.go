package editor

import (
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/sqlmapper/internal/tui/theme"
)

// DefaultDebounce is the idle time before edited text is analyzed.
const DefaultDebounce = 500 * time.Millisecond

// AnalyzeMsg asks the app to analyze the editor content. SQL is blank when the
// editor was emptied.
type AnalyzeMsg struct {
	SQL string
}

// DescribeMsg asks the app to prepare the editor content on the connected server.
type DescribeMsg struct {
	SQL string
}

// DebounceMsg fires after an edit. Only the tick of the latest edit triggers analysis.
type DebounceMsg struct {
	seq int
}

// SQL keywords uppercased by Ctrl+L and by the autoformat on word boundaries.
var sqlKeywords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"join": true, "inner": true, "outer": true, "left": true, "right": true,
	"full": true, "cross": true, "on": true, "using": true, "lateral": true,
	"not": true, "in": true, "is": true, "null": true, "like": true, "ilike": true,
	"order": true, "by": true, "group": true, "having": true,
	"limit": true, "offset": true, "fetch": true, "first": true, "rows": true, "only": true,
	"as": true, "distinct": true, "with": true, "recursive": true,
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"coalesce": true, "cast": true, "nullif": true,
	"between": true, "exists": true, "any": true, "case": true, "when": true,
	"then": true, "else": true, "end": true, "union": true, "intersect": true,
	"except": true, "all": true, "asc": true, "desc": true, "nulls": true, "last": true,
	"true": true, "false": true,
}

// Model is the SQL editor component.
type Model struct {
	textarea textarea.Model
	width    int
	height   int
	focused  bool

	debounce time.Duration
	seq      int

	tableNames  []string
	completing  bool
	completions []string
	compIndex   int
}

// New creates a new editor model. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration) Model {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ta := textarea.New()
	ta.Placeholder = "Paste a SELECT statement with @param or :param markers..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "│ "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ta.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.ColorMuted)
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorBorder)

	return Model{
		textarea: ta,
		debounce: debounce,
	}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(w - 2)
	m.textarea.SetHeight(h - 2)
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
	if f {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
}

// Focused returns whether the editor has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Value returns the current editor content.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetQuery replaces the editor content. Pending debounce ticks are discarded.
func (m *Model) SetQuery(query string) {
	m.textarea.SetValue(query)
	m.seq++
}

// SetTableNames sets the available table names for completion.
func (m *Model) SetTableNames(names []string) {
	m.tableNames = names
}

// CompletionActive reports whether Tab is cycling completion candidates.
func (m Model) CompletionActive() bool {
	return m.completing
}

// Clear empties the editor.
func (m *Model) Clear() {
	m.textarea.Reset()
	m.cancelCompletion()
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the editor. Debounce ticks are handled even when
// the editor is not focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(DebounceMsg); ok {
		if tick.seq != m.seq {
			return m, nil
		}
		sql := m.textarea.Value()
		return m, func() tea.Msg { return AnalyzeMsg{SQL: sql} }
	}

	if !m.focused {
		return m, nil
	}

	before := m.textarea.Value()

	if msg, ok := msg.(tea.KeyMsg); ok {
		key := msg.String()

		switch key {
		case "ctrl+e", "f5":
			m.cancelCompletion()
			m.seq++
			sql := m.textarea.Value()
			return m, func() tea.Msg { return AnalyzeMsg{SQL: sql} }

		case "ctrl+d":
			sql := strings.TrimSpace(m.textarea.Value())
			if sql == "" {
				return m, nil
			}
			m.cancelCompletion()
			return m, func() tea.Msg { return DescribeMsg{SQL: sql} }

		case "ctrl+k":
			m.Clear()
			return m, m.changed(before)

		case "ctrl+l":
			m.formatKeywords()
			return m, m.changed(before)

		case "tab":
			if m.tryCompletion() {
				return m, m.changed(before)
			}

		case "esc":
			if m.completing {
				m.cancelCompletion()
				return m, nil
			}
		}

		if m.completing && key != "tab" && key != "esc" {
			m.cancelCompletion()
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, tea.Batch(cmd, m.changed(before))
}

// changed schedules a debounce tick when the content differs from before.
func (m *Model) changed(before string) tea.Cmd {
	if m.textarea.Value() == before {
		return nil
	}
	m.seq++
	seq := m.seq
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return DebounceMsg{seq: seq}
	})
}

// formatKeywords uppercases SQL keywords outside string literals. Parameter
// names after @ or : keep their case.
func (m *Model) formatKeywords() {
	val := m.textarea.Value()
	if val == "" {
		return
	}

	var (
		out      strings.Builder
		word     strings.Builder
		quote    rune
		inString bool
		isParam  bool
	)

	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		if !isParam && sqlKeywords[strings.ToLower(w)] {
			w = strings.ToUpper(w)
		}
		out.WriteString(w)
		word.Reset()
	}

	var prev rune
	for _, ch := range val {
		switch {
		case inString:
			out.WriteRune(ch)
			if ch == quote {
				inString = false
			}
		case ch == '\'' || ch == '"':
			flush()
			inString = true
			quote = ch
			out.WriteRune(ch)
		case unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_':
			if word.Len() == 0 {
				isParam = prev == '@' || prev == ':'
			}
			word.WriteRune(ch)
		default:
			flush()
			out.WriteRune(ch)
		}
		prev = ch
	}
	flush()

	m.textarea.SetValue(out.String())
}

// CanComplete reports whether Tab would complete a table name.
func (m Model) CanComplete() bool {
	return len(m.candidates()) > 0
}

// candidates returns the table names matching the trailing word after FROM or JOIN.
func (m Model) candidates() []string {
	val := m.textarea.Value()
	if len(m.tableNames) == 0 || val == "" {
		return nil
	}

	partial := extractLastWord(val)
	if partial == "" {
		return nil
	}

	upper := strings.ToUpper(val)
	if !strings.Contains(upper, "FROM") && !strings.Contains(upper, "JOIN") {
		return nil
	}

	lower := strings.ToLower(partial)
	var matches []string
	for _, name := range m.tableNames {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 1 && matches[0] == partial {
		return nil
	}
	return matches
}

// tryCompletion applies the first candidate. Repeated Tab presses cycle through
// the candidates.
func (m *Model) tryCompletion() bool {
	if m.completing && len(m.completions) > 0 {
		m.compIndex = (m.compIndex + 1) % len(m.completions)
		m.applyCompletion()
		return true
	}

	matches := m.candidates()
	if len(matches) == 0 {
		return false
	}

	m.completions = matches
	m.compIndex = 0
	m.applyCompletion()
	m.completing = len(matches) > 1
	if !m.completing {
		m.completions = nil
	}
	return true
}

func (m *Model) applyCompletion() {
	if len(m.completions) == 0 {
		return
	}
	val := m.textarea.Value()
	base := strings.TrimSuffix(val, extractLastWord(val))
	m.textarea.SetValue(base + m.completions[m.compIndex])
}

func (m *Model) cancelCompletion() {
	m.completing = false
	m.completions = nil
	m.compIndex = 0
}

// extractLastWord returns the trailing identifier of s, dots included.
func extractLastWord(s string) string {
	s = strings.TrimRight(s, " \t\n\r")
	i := len(s) - 1
	for i >= 0 && isIdentChar(s[i]) {
		i--
	}
	return s[i+1:]
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_' || c == '.'
}

// View renders the editor.
func (m Model) View() string {
	title := theme.StyleTitle.Render("SQL")

	var hint string
	if m.completing && len(m.completions) > 1 {
		names := make([]string, len(m.completions))
		for i, c := range m.completions {
			if i == m.compIndex {
				names[i] = theme.StyleSelected.Render(c)
			} else {
				names[i] = theme.StyleMuted.Render(c)
			}
		}
		hint = "\n" + lipgloss.NewStyle().Padding(0, 1).Render(
			theme.StyleMuted.Render("Tab: ")+strings.Join(names, " │ "),
		)
	}

	return title + "\n" + m.textarea.View() + hint
}
