package statusbar

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/sqlmapper/internal/sqlmap"
	"github.com/joacominatel/sqlmapper/internal/tui/theme"
)

// Model is the status bar component.
type Model struct {
	width      int
	connected  bool
	connName   string
	activePane string
	dialect    sqlmap.Dialect
	message    string
}

// New creates a new status bar model.
func New() Model {
	return Model{
		activePane: "editor",
		dialect:    sqlmap.DefaultDialect,
	}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetConnected updates the connection status display.
func (m *Model) SetConnected(connected bool, name string) {
	m.connected = connected
	m.connName = name
}

// SetActivePane updates the displayed active pane name.
func (m *Model) SetActivePane(pane string) {
	m.activePane = pane
}

// SetDialect updates the dialect badge. An empty dialect shows the default.
func (m *Model) SetDialect(d sqlmap.Dialect) {
	if d == "" {
		d = sqlmap.DefaultDialect
	}
	m.dialect = d
}

// Dialect returns the dialect shown in the badge.
func (m Model) Dialect() sqlmap.Dialect {
	return m.dialect
}

// SetMessage sets a temporary status message.
func (m *Model) SetMessage(msg string) {
	m.message = msg
}

// Message returns the current status message.
func (m Model) Message() string {
	return m.message
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages (status bar has no interactive behavior).
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	style := theme.StyleStatusBar.Width(m.width)

	var connIndicator string
	if m.connected {
		connIndicator = lipgloss.NewStyle().
			Foreground(theme.ColorSuccess).
			Render("●") + " " + m.connName
	} else {
		connIndicator = lipgloss.NewStyle().
			Foreground(theme.ColorMuted).
			Render("○") + " offline"
	}

	left := theme.DialectBadge(m.dialect.DisplayName(), m.dialect == sqlmap.MySQL) + " " + connIndicator

	right := "Ctrl+E: Analyze │ Tab: Switch pane │ ?: Help │ Ctrl+C: Quit"
	if m.message != "" {
		right = m.message
	}

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding < 1 {
		padding = 1
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
