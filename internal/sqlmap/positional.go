package sqlmap

import (
	"strconv"
	"strings"
)

// Positional rewrites the named markers of dialect d into PostgreSQL style $n
// placeholders. Repeated names share a number, numbered in order of first
// appearance, and the returned names are indexed by n-1. A colon marker directly
// after another colon is a type cast and is left alone.
func Positional(sql string, d Dialect) (string, []string) {
	matches := d.marker().FindAllStringSubmatchIndex(sql, -1)
	if len(matches) == 0 {
		return sql, nil
	}

	var (
		b     strings.Builder
		names []string
		index = map[string]int{}
		last  int
	)
	b.Grow(len(sql))

	for _, m := range matches {
		start, end := m[0], m[1]
		if start > 0 && sql[start-1] == sql[start] {
			continue
		}
		name := sql[m[2]:m[3]]
		n, ok := index[name]
		if !ok {
			names = append(names, name)
			n = len(names)
			index[name] = n
		}
		b.WriteString(sql[last:start])
		b.WriteString("$" + strconv.Itoa(n))
		last = end
	}
	b.WriteString(sql[last:])

	return b.String(), names
}
