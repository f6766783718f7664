package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joacominatel/sqlmapper/internal/database"
)

var errNotConnected = errors.New("not connected")

// Driver implements the database.Driver interface for PostgreSQL.
type Driver struct {
	mu     sync.RWMutex
	pool   *pgxpool.Pool
	dbName string
}

// New creates a new PostgreSQL driver.
func New() *Driver {
	return &Driver{}
}

// Connect establishes a connection pool to PostgreSQL.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 5
	cfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool != nil {
		d.pool.Close()
	}
	d.pool = pool
	d.dbName = cfg.ConnConfig.Database
	return nil
}

func (d *Driver) current() (*pgxpool.Pool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.pool == nil {
		return nil, errNotConnected
	}
	return d.pool, nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
	return nil
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	pool, err := d.current()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// ListSchemas returns all user-created schemas.
func (d *Driver) ListSchemas(ctx context.Context) ([]string, error) {
	pool, err := d.current()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, queryListSchemas)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema: %w", err)
		}
		schemas = append(schemas, name)
	}
	return schemas, rows.Err()
}

// ListTables returns all table names in a schema.
func (d *Driver) ListTables(ctx context.Context, schema string) ([]string, error) {
	pool, err := d.current()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, queryListTables, schema)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// GetColumns returns column metadata for a table.
func (d *Driver) GetColumns(ctx context.Context, schema, table string) ([]database.Column, error) {
	pool, err := d.current()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, queryGetColumns, schema, table)
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}
	defer rows.Close()

	var columns []database.Column
	for rows.Next() {
		var (
			col    database.Column
			attnum int16
		)
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsNullable, &col.Default, &attnum, &col.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.OrdinalPos = int(attnum)
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// DescribeQuery prepares query as an unnamed statement and reads back the
// result fields and parameter types. The statement is never executed.
func (d *Driver) DescribeQuery(ctx context.Context, query string) (*database.Description, error) {
	pool, err := d.current()
	if err != nil {
		return nil, err
	}
	start := time.Now()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	sd, err := conn.Conn().PgConn().Prepare(ctx, "", query, nil)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	types := conn.Conn().TypeMap()
	typeName := func(oid uint32) string {
		if t, ok := types.TypeForOID(oid); ok {
			return t.Name
		}
		return fmt.Sprintf("oid:%d", oid)
	}

	desc := &database.Description{
		Statement: query,
		Fields:    make([]database.Field, len(sd.Fields)),
		Params:    make([]database.Param, len(sd.ParamOIDs)),
	}
	for i, f := range sd.Fields {
		desc.Fields[i] = database.Field{Name: f.Name, DataType: typeName(f.DataTypeOID)}
	}
	for i, oid := range sd.ParamOIDs {
		desc.Params[i] = database.Param{Position: i + 1, DataType: typeName(oid)}
	}
	desc.Duration = time.Since(start)

	return desc, nil
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dbName
}
