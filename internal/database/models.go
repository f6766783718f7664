package database

import "time"

// Column represents a table column with its metadata.
type Column struct {
	Name       string
	DataType   string
	IsNullable bool
	IsPrimary  bool
	Default    string
	OrdinalPos int
}

// Field is one result column reported by the server for a prepared statement.
type Field struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}

// Param is one bind parameter of a prepared statement.
type Param struct {
	// Name is the named marker the placeholder was rewritten from.
	Name     string `json:"name"`
	Position int    `json:"position"`
	DataType string `json:"dataType"`
}

// Description holds what the server knows about a statement before running it.
type Description struct {
	// Statement is the text sent to the server, with positional placeholders.
	Statement string        `json:"statement"`
	Fields    []Field       `json:"fields"`
	Params    []Param       `json:"params"`
	Duration  time.Duration `json:"duration"`
}
