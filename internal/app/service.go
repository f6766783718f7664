package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/joacominatel/sqlmapper/internal/config"
	"github.com/joacominatel/sqlmapper/internal/database"
	"github.com/joacominatel/sqlmapper/internal/jsonmap"
	"github.com/joacominatel/sqlmapper/internal/logging"
	"github.com/joacominatel/sqlmapper/internal/sqlmap"
	"go.uber.org/zap"
)

// SchemaTree represents the loaded schema hierarchy for the explorer.
type SchemaTree struct {
	Database string
	Schemas  []SchemaNode
}

// SchemaNode holds a schema name and its tables.
type SchemaNode struct {
	Name   string
	Tables []string
}

// File is one downloadable artifact.
type File struct {
	Name    string
	Content string
}

// Files lists the artifacts of an analysis under their download names.
func Files(a sqlmap.Analysis) []File {
	return []File{
		{Name: "inputMapping.js", Content: a.Artifacts.InputMapping},
		{Name: "inputSchema.json", Content: a.Artifacts.InputSchema},
		{Name: "resultMapping.js", Content: a.Artifacts.ResultMapping},
		{Name: "resultSchema.json", Content: a.Artifacts.ResultSchema},
		{Name: "columns.txt", Content: a.Artifacts.ColumnNames},
		{Name: "attributes.txt", Content: a.Artifacts.Attributes},
	}
}

// Service coordinates application-level operations between the front ends,
// the analyzer and the optional database.
type Service struct {
	driver   database.Driver
	analyzer *sqlmap.Analyzer
	logger   *zap.Logger

	mu        sync.RWMutex
	connected bool
}

// NewService creates a new application service.
func NewService(driver database.Driver, analyzer *sqlmap.Analyzer, logger *zap.Logger) *Service {
	if analyzer == nil {
		analyzer = sqlmap.NewAnalyzer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{driver: driver, analyzer: analyzer, logger: logger}
}

// NewServiceFromConfig builds the analyzer from the mapping section of cfg.
func NewServiceFromConfig(cfg *config.Config, driver database.Driver, logger *zap.Logger) (*Service, error) {
	opts, err := cfg.Mapping.AnalyzerOptions()
	if err != nil {
		return nil, &ErrConfig{Cause: err}
	}
	return NewService(driver, sqlmap.NewAnalyzer(opts...), logger), nil
}

// Analyze runs the SQL analyzer. It never fails.
func (s *Service) Analyze(sql string) sqlmap.Analysis {
	return s.AnalyzeAs(sql, "")
}

// AnalyzeAs runs the SQL analyzer with a forced dialect; "" detects it.
func (s *Service) AnalyzeAs(sql string, d sqlmap.Dialect) sqlmap.Analysis {
	a := s.analyzer.AnalyzeAs(sql, d)
	s.logger.Debug("analyzed statement",
		zap.String("dialect", string(a.Dialect)),
		zap.Int("parameters", len(a.Result.Parameters)),
		zap.Int("columns", len(a.Result.Columns)),
		zap.String("sql", logging.TruncateQuery(sql)),
	)
	return a
}

// Dialect reports the dialect the analyzer would pick for sql.
func (s *Service) Dialect(sql string) sqlmap.Dialect {
	return s.analyzer.Dialect(sql)
}

// MapJSON expands a JSON schema template and returns the result with its
// pretty printed document.
func (s *Service) MapJSON(template, attributes string) (jsonmap.Result, string) {
	r := jsonmap.Map(template, attributes)
	return r, jsonmap.DataSchema(r)
}

// Export writes every artifact of a into dir and returns the written paths.
func (s *Service) Export(dir string, a sqlmap.Analysis) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &ErrExport{Path: dir, Cause: err}
	}

	files := Files(a)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return paths, &ErrExport{Path: path, Cause: err}
		}
		paths = append(paths, path)
	}

	s.logger.Info("exported artifacts", zap.String("dir", dir), zap.Int("files", len(paths)))
	return paths, nil
}

// Connect establishes a database connection.
func (s *Service) Connect(ctx context.Context, dsn string) error {
	if err := s.driver.Connect(ctx, dsn); err != nil {
		s.logger.Warn("connect failed", zap.Error(err))
		return &ErrConnection{Cause: err}
	}

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()

	s.logger.Info("connected", zap.String("database", s.driver.DatabaseName()))
	return nil
}

// Disconnect closes the database connection.
func (s *Service) Disconnect() error {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	return s.driver.Close()
}

// Connected reports whether a database is available for describe and the explorer.
func (s *Service) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Describe prepares sql on the connected server after rewriting its named markers
// into positional ones, and reports result and parameter types.
func (s *Service) Describe(ctx context.Context, sql string) (*database.Description, error) {
	if !s.Connected() {
		return nil, ErrNotConnected
	}

	stmt, names := sqlmap.Positional(sql, s.analyzer.Dialect(sql))
	desc, err := s.driver.DescribeQuery(ctx, stmt)
	if err != nil {
		return nil, &ErrDescribe{Query: sql, Cause: err}
	}

	for i := range desc.Params {
		if i < len(names) {
			desc.Params[i].Name = names[i]
		}
	}
	return desc, nil
}

// LoadSchemaTree fetches schemas and their tables for the connected database.
func (s *Service) LoadSchemaTree(ctx context.Context) (*SchemaTree, error) {
	if !s.Connected() {
		return nil, ErrNotConnected
	}

	schemas, err := s.driver.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}

	tree := &SchemaTree{
		Database: s.driver.DatabaseName(),
	}

	for _, schema := range schemas {
		tables, err := s.driver.ListTables(ctx, schema)
		if err != nil {
			return nil, err
		}
		tree.Schemas = append(tree.Schemas, SchemaNode{
			Name:   schema,
			Tables: tables,
		})
	}

	return tree, nil
}

// AllTableNames flattens a schema tree into completion candidates.
// Tables outside the public schema are qualified.
func (s *Service) AllTableNames(tree *SchemaTree) []string {
	if tree == nil {
		return nil
	}
	var names []string
	for _, schema := range tree.Schemas {
		for _, table := range schema.Tables {
			if schema.Name == "public" {
				names = append(names, table)
			} else {
				names = append(names, schema.Name+"."+table)
			}
		}
	}
	return names
}

// LoadColumns fetches column metadata for a specific table.
func (s *Service) LoadColumns(ctx context.Context, schema, table string) ([]database.Column, error) {
	return s.driver.GetColumns(ctx, schema, table)
}

// DatabaseName returns the current database name.
func (s *Service) DatabaseName() string {
	return s.driver.DatabaseName()
}
