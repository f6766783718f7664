// Package sqlmap derives mapping scripts and JSON schemas from a SQL SELECT statement.
//
// Everything in this package is a pure function of its input text. Nothing is cached
// between calls, so every exported function and type is safe for concurrent use.
package sqlmap

// ParsedParameter is a named bind parameter found in the SQL text.
type ParsedParameter struct {
	// Name is the identifier exactly as written after the marker.
	Name          string `json:"name"`
	CamelCaseName string `json:"camelCaseName"`
}

// ParsedColumn is one output column of the SELECT list.
type ParsedColumn struct {
	// Name is the upper-cased alias or bare column name.
	Name          string `json:"name"`
	CamelCaseName string `json:"camelCaseName"`
}

// ParseResult is the structured outcome of one Parse call.
type ParseResult struct {
	Parameters []ParsedParameter `json:"parameters"`
	Columns    []ParsedColumn    `json:"columns"`
}

// Artifacts holds the rendered text outputs for a ParseResult.
type Artifacts struct {
	InputMapping  string `json:"inputMapping"`
	InputSchema   string `json:"inputSchema"`
	ResultMapping string `json:"resultMapping"`
	ResultSchema  string `json:"resultSchema"`
	// ColumnNames is every column name joined by newline.
	ColumnNames string `json:"columnNames"`
	// Attributes is every camelCase column name joined by newline.
	Attributes string `json:"attributes"`
}

// Analysis bundles what a caller needs to show for one SQL statement.
type Analysis struct {
	Dialect   Dialect     `json:"dialect"`
	Result    ParseResult `json:"result"`
	Artifacts Artifacts   `json:"artifacts"`
}
