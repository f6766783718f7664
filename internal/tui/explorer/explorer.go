package explorer

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/sqlmapper/internal/app"
	"github.com/joacominatel/sqlmapper/internal/database"
	"github.com/joacominatel/sqlmapper/internal/tui/theme"
)

// NodeKind identifies the type of a tree node.
type NodeKind int

const (
	NodeDatabase NodeKind = iota
	NodeSchema
	NodeTable
	NodeColumn
)

// TreeNode represents a single node in the schema tree.
type TreeNode struct {
	Kind     NodeKind
	Name     string
	Children []*TreeNode
	Expanded bool
	Loaded   bool // children fetched

	Schema   string // parent schema (tables and columns)
	Table    string // parent table (columns)
	DataType string
}

type flatItem struct {
	node  *TreeNode
	depth int
}

// RequestColumnsMsg is sent when a table is expanded before its columns are known.
type RequestColumnsMsg struct {
	Schema string
	Table  string
}

// DraftQueryMsg carries a SELECT statement drafted from a table.
type DraftQueryMsg struct {
	Query string
}

// Model is the schema explorer component.
type Model struct {
	tree    *TreeNode
	items   []flatItem
	cursor  int
	width   int
	height  int
	focused bool
	loading bool
}

// New creates a new explorer model.
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

// Focused returns whether the explorer has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetTree populates the explorer from a schema tree.
func (m *Model) SetTree(schema *app.SchemaTree) {
	root := &TreeNode{
		Kind:     NodeDatabase,
		Name:     schema.Database,
		Expanded: true,
		Loaded:   true,
	}

	for _, s := range schema.Schemas {
		schemaNode := &TreeNode{Kind: NodeSchema, Name: s.Name, Loaded: true}
		for _, t := range s.Tables {
			schemaNode.Children = append(schemaNode.Children, &TreeNode{
				Kind:   NodeTable,
				Name:   t,
				Schema: s.Name,
			})
		}
		root.Children = append(root.Children, schemaNode)
	}

	m.tree = root
	m.cursor = 0
	m.flatten()
	m.loading = false
}

// Clear drops the tree, e.g. after a disconnect.
func (m *Model) Clear() {
	m.tree = nil
	m.items = nil
	m.cursor = 0
	m.loading = false
}

// SetColumns adds column nodes to a table node.
func (m *Model) SetColumns(schema, table string, columns []database.Column) {
	node := m.findTable(schema, table)
	if node == nil {
		return
	}
	node.Children = nil
	for _, col := range columns {
		node.Children = append(node.Children, &TreeNode{
			Kind:     NodeColumn,
			Name:     col.Name,
			Schema:   schema,
			Table:    table,
			DataType: col.DataType,
		})
	}
	node.Loaded = true
	m.flatten()
}

func (m *Model) findTable(schema, table string) *TreeNode {
	if m.tree == nil {
		return nil
	}
	for _, s := range m.tree.Children {
		if s.Name != schema {
			continue
		}
		for _, t := range s.Children {
			if t.Name == table {
				return t
			}
		}
	}
	return nil
}

// SelectedTable returns the schema and table of the selected table or column node.
func (m Model) SelectedTable() (schema, table string, ok bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return "", "", false
	}
	node := m.items[m.cursor].node
	switch node.Kind {
	case NodeTable:
		return node.Schema, node.Name, true
	case NodeColumn:
		return node.Schema, node.Table, true
	}
	return "", "", false
}

// DraftSelect builds a SELECT over the given columns, or every column when none are known.
func DraftSelect(schema, table string, columns []string) string {
	list := "*"
	if len(columns) > 0 {
		list = strings.Join(columns, ",\n    ")
	}
	return "SELECT\n    " + list + "\nFROM " + schema + "." + table
}

func (m *Model) flatten() {
	m.items = nil
	if m.tree != nil {
		m.flattenNode(m.tree, 0)
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
}

func (m *Model) flattenNode(node *TreeNode, depth int) {
	m.items = append(m.items, flatItem{node: node, depth: depth})
	if node.Expanded {
		for _, child := range node.Children {
			m.flattenNode(child, depth+1)
		}
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the explorer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter", "right", "l":
			return m, m.toggleExpand()
		case "left", "h":
			m.collapse()
		case "s":
			return m, m.draft()
		}
	}

	return m, nil
}

func (m *Model) toggleExpand() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	node := m.items[m.cursor].node
	if node.Kind == NodeColumn {
		return nil
	}

	node.Expanded = !node.Expanded
	m.flatten()

	if node.Expanded && node.Kind == NodeTable && !node.Loaded {
		req := RequestColumnsMsg{Schema: node.Schema, Table: node.Name}
		return func() tea.Msg { return req }
	}
	return nil
}

func (m *Model) collapse() {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return
	}
	if node := m.items[m.cursor].node; node.Expanded {
		node.Expanded = false
		m.flatten()
	}
}

func (m *Model) draft() tea.Cmd {
	schema, table, ok := m.SelectedTable()
	if !ok {
		return nil
	}

	var cols []string
	if node := m.findTable(schema, table); node != nil && node.Loaded {
		for _, c := range node.Children {
			cols = append(cols, c.Name)
		}
	}

	query := DraftSelect(schema, table, cols)
	return func() tea.Msg { return DraftQueryMsg{Query: query} }
}

// View renders the explorer.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Schema")

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}
	if m.tree == nil {
		return title + "\n" + theme.StyleMuted.Render("  Offline\n  Ctrl+O: connect")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	visible := max(1, m.height-2)
	offset := 0
	if m.cursor >= visible {
		offset = m.cursor - visible + 1
	}

	end := min(len(m.items), offset+visible)
	for i := offset; i < end; i++ {
		b.WriteString(m.renderNode(m.items[i], i == m.cursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderNode(item flatItem, selected bool) string {
	node := item.node

	icon := "  "
	if node.Kind != NodeColumn {
		icon = "▶ "
		if node.Expanded {
			icon = "▼ "
		}
	}

	name := node.Name
	if node.Kind == NodeColumn && node.DataType != "" {
		name += " " + theme.StyleMuted.Render(node.DataType)
	}

	line := strings.Repeat("  ", item.depth) + icon + name
	if m.width > 4 && lipgloss.Width(line) > m.width-2 {
		runes := []rune(strings.Repeat("  ", item.depth) + icon + node.Name)
		if len(runes) > m.width-4 {
			runes = runes[:m.width-4]
		}
		line = string(runes) + ".."
	}

	if selected {
		return theme.StyleSelected.Render(line)
	}
	return line
}
