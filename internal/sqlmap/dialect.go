package sqlmap

import (
	"fmt"
	"regexp"
	"strings"
)

// Dialect is the named-parameter convention of a statement.
type Dialect string

const (
	// Postgres marks parameters as @name.
	Postgres Dialect = "postgres"
	// MySQL marks parameters as :name.
	MySQL Dialect = "mysql"
)

// DefaultDialect is chosen when a statement carries both marker styles or neither.
// It is a heuristic, not a validated rule; use DetectDialectOr to pick another one.
const DefaultDialect = Postgres

var (
	postgresMarker = regexp.MustCompile(`@(\w+)`)
	mysqlMarker    = regexp.MustCompile(`:(\w+)`)
)

// DetectDialect classifies sql by the parameter markers it contains.
func DetectDialect(sql string) Dialect {
	return DetectDialectOr(sql, DefaultDialect)
}

// DetectDialectOr is DetectDialect with an explicit tie-break dialect.
func DetectDialectOr(sql string, fallback Dialect) Dialect {
	hasPostgres := postgresMarker.MatchString(sql)
	hasMySQL := mysqlMarker.MatchString(sql)

	switch {
	case hasPostgres && !hasMySQL:
		return Postgres
	case hasMySQL && !hasPostgres:
		return MySQL
	default:
		return fallback
	}
}

// ParseDialect maps user input such as "postgres", "pg" or "MySQL" to a Dialect.
// An empty string yields "" so callers can fall back to detection.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	default:
		return "", fmt.Errorf("unknown dialect %q", s)
	}
}

// DisplayName is the label shown next to a statement.
func (d Dialect) DisplayName() string {
	if d == MySQL {
		return "MySQL"
	}
	return "PostgreSQL"
}

func (d Dialect) marker() *regexp.Regexp {
	if d == MySQL {
		return mysqlMarker
	}
	return postgresMarker
}
