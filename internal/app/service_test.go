package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joacominatel/sqlmapper/internal/config"
	"github.com/joacominatel/sqlmapper/internal/database"
	"github.com/joacominatel/sqlmapper/internal/sqlmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDriver struct {
	connectErr  error
	describeErr error
	lastQuery   string
	schemas     map[string][]string
	closed      bool
}

func (f *fakeDriver) Connect(context.Context, string) error { return f.connectErr }
func (f *fakeDriver) Close() error                          { f.closed = true; return nil }
func (f *fakeDriver) Ping(context.Context) error            { return nil }
func (f *fakeDriver) DatabaseName() string                  { return "app" }

func (f *fakeDriver) ListSchemas(context.Context) ([]string, error) {
	var names []string
	for _, s := range []string{"public", "audit"} {
		if _, ok := f.schemas[s]; ok {
			names = append(names, s)
		}
	}
	return names, nil
}

func (f *fakeDriver) ListTables(_ context.Context, schema string) ([]string, error) {
	return f.schemas[schema], nil
}

func (f *fakeDriver) GetColumns(context.Context, string, string) ([]database.Column, error) {
	return []database.Column{{Name: "id", DataType: "integer"}}, nil
}

func (f *fakeDriver) DescribeQuery(_ context.Context, query string) (*database.Description, error) {
	f.lastQuery = query
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &database.Description{
		Statement: query,
		Fields:    []database.Field{{Name: "id", DataType: "int4"}},
		Params: []database.Param{
			{Position: 1, DataType: "int4"},
			{Position: 2, DataType: "text"},
		},
	}, nil
}

func TestServiceAnalyze(t *testing.T) {
	svc := NewService(&fakeDriver{}, nil, zap.NewNop())

	a := svc.Analyze("SELECT u.ID, u.BODY FROM users u WHERE u.id = @id")
	assert.Equal(t, sqlmap.Postgres, a.Dialect)
	assert.Equal(t, "ID\nBODY", a.Artifacts.ColumnNames)

	forced := svc.AnalyzeAs("SELECT a FROM t WHERE a = @a", sqlmap.MySQL)
	assert.Equal(t, sqlmap.MySQL, forced.Dialect)
	assert.Empty(t, forced.Result.Parameters)
}

func TestNewServiceFromConfig(t *testing.T) {
	cfg := &config.Config{Mapping: config.Mapping{
		FallbackDialect: "mysql",
		JSONColumns:     []string{"DOC"},
	}}
	svc, err := NewServiceFromConfig(cfg, &fakeDriver{}, nil)
	require.NoError(t, err)

	a := svc.Analyze("SELECT t.DOC FROM t")
	assert.Equal(t, sqlmap.MySQL, a.Dialect)
	assert.Contains(t, a.Artifacts.ResultMapping, "JSON.parse(input.DOC)")

	cfg.Mapping.FallbackDialect = "sqlite"
	_, err = NewServiceFromConfig(cfg, &fakeDriver{}, nil)
	var cfgErr *ErrConfig
	assert.ErrorAs(t, err, &cfgErr)
}

func TestServiceExport(t *testing.T) {
	svc := NewService(&fakeDriver{}, nil, nil)
	dir := filepath.Join(t.TempDir(), "out")

	a := svc.Analyze("SELECT ID, NAME FROM t WHERE id = @id")
	paths, err := svc.Export(dir, a)
	require.NoError(t, err)
	require.Len(t, paths, 6)

	data, err := os.ReadFile(filepath.Join(dir, "resultSchema.json"))
	require.NoError(t, err)
	assert.Equal(t, a.Artifacts.ResultSchema, string(data))

	data, err = os.ReadFile(filepath.Join(dir, "attributes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "id\nname", string(data))
}

func TestServiceExportFailure(t *testing.T) {
	svc := NewService(&fakeDriver{}, nil, nil)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := svc.Export(filepath.Join(file, "sub"), svc.Analyze(""))
	var exportErr *ErrExport
	assert.ErrorAs(t, err, &exportErr)
}

func TestServiceDescribe(t *testing.T) {
	ctx := context.Background()
	driver := &fakeDriver{}
	svc := NewService(driver, nil, nil)

	_, err := svc.Describe(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, svc.Connect(ctx, "postgres://localhost/app"))
	assert.True(t, svc.Connected())

	desc, err := svc.Describe(ctx, "SELECT id FROM t WHERE id = @id AND name = @name")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t WHERE id = $1 AND name = $2", driver.lastQuery)
	assert.Equal(t, "id", desc.Params[0].Name)
	assert.Equal(t, "name", desc.Params[1].Name)

	driver.describeErr = errors.New("syntax error")
	_, err = svc.Describe(ctx, "SELEC")
	var describeErr *ErrDescribe
	require.ErrorAs(t, err, &describeErr)
	assert.Equal(t, "SELEC", describeErr.Query)

	require.NoError(t, svc.Disconnect())
	assert.False(t, svc.Connected())
	assert.True(t, driver.closed)
}

func TestServiceConnectError(t *testing.T) {
	svc := NewService(&fakeDriver{connectErr: errors.New("refused")}, nil, nil)
	err := svc.Connect(context.Background(), "postgres://nowhere/db")

	var connErr *ErrConnection
	require.ErrorAs(t, err, &connErr)
	assert.EqualError(t, connErr.Cause, "refused")
	assert.False(t, svc.Connected())
}

func TestServiceSchemaTree(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeDriver{schemas: map[string][]string{
		"public": {"orders", "users"},
		"audit":  {"events"},
	}}, nil, nil)

	_, err := svc.LoadSchemaTree(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, svc.Connect(ctx, "postgres://localhost/app"))
	tree, err := svc.LoadSchemaTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "app", tree.Database)
	require.Len(t, tree.Schemas, 2)
	assert.Equal(t, []string{"orders", "users", "audit.events"}, svc.AllTableNames(tree))
}

func TestServiceMapJSON(t *testing.T) {
	svc := NewService(&fakeDriver{}, nil, nil)
	r, doc := svc.MapJSON(`{"properties": {"to_replace_attribute": {}}}`, "a\nb")
	assert.Equal(t, []string{"a", "b"}, r.Attributes)
	assert.Contains(t, doc, "\"aiTitle\": \"b\"")
}
