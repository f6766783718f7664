package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/joacominatel/sqlmapper/internal/sqlmap"
)

// Config represents the application configuration.
type Config struct {
	Connections []Connection `mapstructure:"connections" yaml:"connections"`
	Preferences Preferences  `mapstructure:"preferences" yaml:"preferences"`
	Mapping     Mapping      `mapstructure:"mapping" yaml:"mapping"`
	Server      Server       `mapstructure:"server" yaml:"server"`
	Log         Log          `mapstructure:"log" yaml:"log"`
}

// Connection is a saved PostgreSQL profile used for live describe.
// The password lives in the OS keyring, never in the config file.
type Connection struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"-" yaml:"-"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// Preferences holds user preferences.
type Preferences struct {
	Theme             string `mapstructure:"theme" yaml:"theme"`
	DefaultConnection string `mapstructure:"default_connection" yaml:"default_connection"`
	// DebounceMS is the idle time before the editor content is analyzed again.
	DebounceMS int    `mapstructure:"debounce_ms" yaml:"debounce_ms"`
	ExportDir  string `mapstructure:"export_dir" yaml:"export_dir"`
}

// Mapping configures the SQL analyzer.
type Mapping struct {
	FallbackDialect  string   `mapstructure:"fallback_dialect" yaml:"fallback_dialect"`
	JSONColumns      []string `mapstructure:"json_columns" yaml:"json_columns"`
	IntegerColumns   []string `mapstructure:"integer_columns" yaml:"integer_columns"`
	ObjectAttributes []string `mapstructure:"object_attributes" yaml:"object_attributes"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	DSN  string `mapstructure:"dsn" yaml:"dsn"`
}

// Log configures the application logger.
type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Rules converts the mapping lists into analyzer rules.
func (m Mapping) Rules() sqlmap.Rules {
	return sqlmap.Rules{
		JSONColumns:      m.JSONColumns,
		IntegerColumns:   m.IntegerColumns,
		ObjectAttributes: m.ObjectAttributes,
	}
}

// AnalyzerOptions builds the analyzer options described by the mapping section.
func (m Mapping) AnalyzerOptions() ([]sqlmap.Option, error) {
	d, err := sqlmap.ParseDialect(m.FallbackDialect)
	if err != nil {
		return nil, fmt.Errorf("mapping.fallback_dialect: %w", err)
	}
	return []sqlmap.Option{
		sqlmap.WithFallbackDialect(d),
		sqlmap.WithRules(m.Rules()),
	}, nil
}

// Validate checks values viper cannot type-check on its own.
func (cfg *Config) Validate() error {
	if _, err := sqlmap.ParseDialect(cfg.Mapping.FallbackDialect); err != nil {
		return fmt.Errorf("mapping.fallback_dialect: %w", err)
	}
	if cfg.Preferences.DebounceMS <= 0 {
		return fmt.Errorf("preferences.debounce_ms must be positive, got %d", cfg.Preferences.DebounceMS)
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	return nil
}

// DSN builds a PostgreSQL connection string from the connection profile.
func (c Connection) DSN() string {
	u := url.URL{
		Scheme: "postgresql",
		Host:   c.Host,
		Path:   "/" + c.Database,
	}
	if c.Port > 0 {
		u.Host += ":" + strconv.Itoa(c.Port)
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.SSLMode)
	}
	return u.String()
}

// DisplayString returns a human-readable summary of the connection.
func (c Connection) DisplayString() string {
	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return s
}

// ParseDSN parses a PostgreSQL connection string into a Connection.
func ParseDSN(dsn string) (Connection, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Connection{}, fmt.Errorf("invalid DSN: unsupported scheme %q", u.Scheme)
	}

	conn := Connection{
		Driver:   "postgres",
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, _ = strconv.Atoi(portStr)
	}
	if conn.Port == 0 {
		conn.Port = 5432
	}

	conn.Name = fmt.Sprintf("postgres-%s-%d-%s", conn.Host, conn.Port, conn.Database)

	return conn, nil
}

// HasConnection checks if a connection with the given name already exists.
func (cfg *Config) HasConnection(name string) bool {
	for _, c := range cfg.Connections {
		if c.Name == name {
			return true
		}
	}
	return false
}

// RemoveConnection drops the named connection and reports whether it existed.
// A default_connection preference naming it is cleared.
func (cfg *Config) RemoveConnection(name string) bool {
	for i, c := range cfg.Connections {
		if c.Name != name {
			continue
		}
		cfg.Connections = append(cfg.Connections[:i:i], cfg.Connections[i+1:]...)
		if cfg.Preferences.DefaultConnection == name {
			cfg.Preferences.DefaultConnection = ""
		}
		return true
	}
	return false
}

// AddConnection appends a connection if it doesn't already exist.
func (cfg *Config) AddConnection(conn Connection) {
	if !cfg.HasConnection(conn.Name) {
		cfg.Connections = append(cfg.Connections, conn)
	}
}
