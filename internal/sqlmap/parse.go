package sqlmap

import (
	"regexp"
	"strings"
	"unicode"
)

// space and nonSpace are the whitespace classes of ECMAScript, which also
// cover vertical tab, no-break space and the Unicode space separators.
const (
	space    = `[\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]`
	nonSpace = `[^\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]`
)

var (
	selectList     = regexp.MustCompile(`(?i)SELECT` + space + `+([\s\S]+?)` + space + `+FROM`)
	columnAlias    = regexp.MustCompile(`(?i)(?:\w+(?:\.\w+)?` + space + `+)?AS` + space + `+(` + nonSpace + `+)$`)
	trailingAsPart = regexp.MustCompile(`(?i)` + space + `+AS` + space + `+` + nonSpace + `+$`)
)

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) || r == '\uFEFF' || r == '\u2028' || r == '\u2029'
}

// ListSplitter breaks the text of a SELECT list into column expressions.
type ListSplitter interface {
	Split(list string) []string
}

// CommaSplitter splits on every comma. Commas inside function calls, subqueries
// or string literals are split too; generated artifacts depend on that behavior.
type CommaSplitter struct{}

// Split implements ListSplitter.
func (CommaSplitter) Split(list string) []string {
	return strings.Split(list, ",")
}

// Parse extracts parameters and columns from sql. An empty dialect is detected
// from the text with DefaultDialect as the tie-break.
func Parse(sql string, d Dialect) ParseResult {
	if d == "" {
		d = DetectDialect(sql)
	}
	return ParseResult{
		Parameters: ExtractParameters(sql, d),
		Columns:    ExtractColumns(sql),
	}
}

// ExtractParameters returns the distinct named parameters of sql in order of
// first appearance. Markers inside literals or comments are matched as well.
func ExtractParameters(sql string, d Dialect) []ParsedParameter {
	matches := d.marker().FindAllStringSubmatch(sql, -1)
	if len(matches) == 0 {
		return []ParsedParameter{}
	}

	seen := make(map[string]struct{}, len(matches))
	params := make([]ParsedParameter, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		params = append(params, ParsedParameter{
			Name:          name,
			CamelCaseName: ToCamelCase(name),
		})
	}
	return params
}

// ExtractColumns returns the output columns of the first SELECT ... FROM region
// using the reference comma splitter.
func ExtractColumns(sql string) []ParsedColumn {
	return ExtractColumnsWith(sql, CommaSplitter{})
}

// ExtractColumnsWith is ExtractColumns with a custom splitter for the SELECT list.
// Columns are neither deduplicated nor reordered.
func ExtractColumnsWith(sql string, splitter ListSplitter) []ParsedColumn {
	m := selectList.FindStringSubmatch(sql)
	if m == nil {
		return []ParsedColumn{}
	}

	fragments := splitter.Split(m[1])
	columns := make([]ParsedColumn, 0, len(fragments))
	for _, fragment := range fragments {
		col := parseColumn(strings.TrimFunc(fragment, isSpace))
		if col.Name == "" {
			continue
		}
		columns = append(columns, col)
	}
	return columns
}

func parseColumn(expr string) ParsedColumn {
	if m := columnAlias.FindStringSubmatch(expr); m != nil {
		alias := m[1]
		return ParsedColumn{
			Name:          strings.ToUpper(alias),
			CamelCaseName: ToCamelCase(alias),
		}
	}

	bare := trailingAsPart.ReplaceAllString(expr, "")
	if i := strings.LastIndex(bare, "."); i >= 0 {
		bare = bare[i+1:]
	}
	name := strings.ToUpper(bare)
	return ParsedColumn{
		Name:          name,
		CamelCaseName: ToCamelCase(name),
	}
}
