package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/sqlmapper/internal/app"
	"github.com/joacominatel/sqlmapper/internal/config"
	"github.com/joacominatel/sqlmapper/internal/database"
	"github.com/joacominatel/sqlmapper/internal/sqlmap"
	"github.com/joacominatel/sqlmapper/internal/tui/artifacts"
	"github.com/joacominatel/sqlmapper/internal/tui/editor"
	"github.com/joacominatel/sqlmapper/internal/tui/explorer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

type memDriver struct {
	connectErr error
}

func (d *memDriver) Connect(context.Context, string) error { return d.connectErr }
func (d *memDriver) Close() error                          { return nil }
func (d *memDriver) Ping(context.Context) error            { return nil }
func (d *memDriver) DatabaseName() string                  { return "shop" }

func (d *memDriver) ListSchemas(context.Context) ([]string, error) {
	return []string{"public"}, nil
}

func (d *memDriver) ListTables(context.Context, string) ([]string, error) {
	return []string{"orders"}, nil
}

func (d *memDriver) GetColumns(context.Context, string, string) ([]database.Column, error) {
	return []database.Column{{Name: "id", DataType: "bigint"}}, nil
}

func (d *memDriver) DescribeQuery(_ context.Context, q string) (*database.Description, error) {
	return &database.Description{Statement: q}, nil
}

func newModel(t *testing.T, cfg *config.Config, dsn string) (Model, *app.Service) {
	t.Helper()
	svc := app.NewService(&memDriver{}, nil, nil)
	m := NewModel(svc, cfg, dsn, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), svc
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestStartsOfflineWithoutConnections(t *testing.T) {
	m, _ := newModel(t, &config.Config{}, "")
	assert.Equal(t, ModeMain, m.mode)
	assert.Equal(t, PaneEditor, m.activePane)
	assert.Contains(t, m.View(), "offline")
}

func TestStartMode(t *testing.T) {
	cfg := &config.Config{Connections: []config.Connection{{Name: "local", Host: "localhost", Port: 5432, Database: "shop"}}}

	m, _ := newModel(t, cfg, "")
	assert.Equal(t, ModeSelectConnection, m.mode)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeMain, m.mode)

	m, _ = newModel(t, cfg, "postgres://localhost/shop")
	assert.Equal(t, ModeConnect, m.mode)
}

func TestDeleteSavedConnection(t *testing.T) {
	keyring.MockInit()
	t.Setenv("HOME", t.TempDir())

	cfg := &config.Config{Connections: []config.Connection{
		{Name: "local", Host: "localhost", Port: 5432, Database: "shop"},
		{Name: "staging", Host: "staging", Port: 5432, Database: "shop"},
	}}
	m, _ := newModel(t, cfg, "")
	require.Equal(t, ModeSelectConnection, m.mode)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	require.Len(t, cfg.Connections, 1)
	assert.Equal(t, "local", cfg.Connections[0].Name)
	assert.Equal(t, "Removed connection staging", m.statusbar.Message())
	assert.Equal(t, 1, m.connCursor)
	assert.NotContains(t, m.View(), "staging")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.Nil(t, cmd)
}

func TestConnectEscGoesOffline(t *testing.T) {
	m, _ := newModel(t, &config.Config{}, "")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Equal(t, ModeConnect, m.mode)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeMain, m.mode)
}

func TestAnalyzeUpdatesArtifactsAndBadge(t *testing.T) {
	m, _ := newModel(t, &config.Config{}, "")

	m, _ = update(t, m, editor.AnalyzeMsg{SQL: "SELECT a.ID FROM a WHERE a.id = :id"})
	assert.Equal(t, sqlmap.MySQL, m.statusbar.Dialect())
	a, ok := m.artifacts.Analysis()
	require.True(t, ok)
	assert.Equal(t, "ID", a.Artifacts.ColumnNames)

	m, _ = update(t, m, editor.AnalyzeMsg{SQL: "   "})
	assert.Equal(t, sqlmap.Postgres, m.statusbar.Dialect())
	_, ok = m.artifacts.Analysis()
	assert.False(t, ok)
}

func TestDescribeNeedsConnection(t *testing.T) {
	m, svc := newModel(t, &config.Config{}, "")

	m, cmd := update(t, m, editor.DescribeMsg{SQL: "SELECT 1"})
	assert.Nil(t, cmd)
	assert.Contains(t, m.statusbar.Message(), "Ctrl+O")

	require.NoError(t, svc.Connect(context.Background(), "postgres://localhost/shop"))
	m, cmd = update(t, m, editor.DescribeMsg{SQL: "SELECT id FROM orders WHERE id = @id"})
	require.NotNil(t, cmd)

	msg := cmd()
	require.IsType(t, describedMsg{}, msg)
	m, _ = update(t, m, msg)
	assert.Equal(t, artifacts.TabDescribe, m.artifacts.Active())
	assert.Contains(t, m.artifacts.Content(), "WHERE id = $1")
}

func TestConnectedLoadsSchema(t *testing.T) {
	m, svc := newModel(t, &config.Config{}, "")
	require.NoError(t, svc.Connect(context.Background(), "postgres://localhost/shop"))

	m, cmd := update(t, m, connectedMsg{dsn: "postgres://localhost/shop"})
	require.NotNil(t, cmd)
	assert.Equal(t, ModeMain, m.mode)

	tree, err := svc.LoadSchemaTree(context.Background())
	require.NoError(t, err)
	m, _ = update(t, m, schemaLoadedMsg{tree: tree})
	assert.Contains(t, m.explorer.View(), "shop")
}

func TestConnectFailureStaysOnScreen(t *testing.T) {
	m, _ := newModel(t, &config.Config{}, "postgres://nowhere/db")
	m, _ = update(t, m, connectedMsg{err: errors.New("refused")})
	assert.Equal(t, ModeConnect, m.mode)
	assert.Contains(t, m.View(), "refused")
}

func TestDraftQueryFillsEditor(t *testing.T) {
	m, _ := newModel(t, &config.Config{}, "")
	m.setFocus(PaneExplorer)

	m, _ = update(t, m, explorer.DraftQueryMsg{Query: "SELECT\n    id\nFROM public.orders"})
	assert.Equal(t, PaneEditor, m.activePane)
	assert.Equal(t, "SELECT\n    id\nFROM public.orders", m.editor.Value())
	a, ok := m.artifacts.Analysis()
	require.True(t, ok)
	assert.Equal(t, "ID", a.Artifacts.ColumnNames)
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	m, _ := newModel(t, &config.Config{Preferences: config.Preferences{ExportDir: dir}}, "")

	m, cmd := update(t, m, artifacts.ExportRequestMsg{})
	assert.Nil(t, cmd)

	m, _ = update(t, m, editor.AnalyzeMsg{SQL: "SELECT a FROM t"})
	m, cmd = update(t, m, artifacts.ExportRequestMsg{})
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Contains(t, m.statusbar.Message(), "Wrote 6 files")
	_, err := os.Stat(filepath.Join(dir, "resultMapping.js"))
	assert.NoError(t, err)
}

func TestPaneCycling(t *testing.T) {
	m, _ := newModel(t, &config.Config{}, "")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, PaneArtifacts, m.activePane)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, PaneExplorer, m.activePane)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, PaneArtifacts, m.activePane)
}
