package sqlmap

import (
	"fmt"
	"strings"
)

const schemaDraft = "http://json-schema.org/draft-04/schema#"

// Rules lists the column names that get special treatment in generated artifacts.
type Rules struct {
	// JSONColumns are parsed from JSON text in the result mapping.
	// Matched against the upper-cased column name.
	JSONColumns []string `json:"jsonColumns"`
	// IntegerColumns are typed integer in the result schema.
	// Matched exactly against the column name.
	IntegerColumns []string `json:"integerColumns"`
	// ObjectAttributes are typed as an open object in the result schema.
	// Matched against the lower-cased camelCase name.
	ObjectAttributes []string `json:"objectAttributes"`
}

// DefaultRules returns the reference lookup tables.
func DefaultRules() Rules {
	return Rules{
		JSONColumns:      []string{"BODY", "COMMON_BODY", "SNAPSHOT_BODY"},
		IntegerColumns:   []string{"SEQ_NUMBER", "AMENDMENT_NUMBER"},
		ObjectAttributes: []string{"body", "commonbody", "snapshotbody"},
	}
}

// Generator renders mapping scripts and schemas. Build one with NewGenerator;
// the zero value treats no column specially.
type Generator struct {
	jsonColumns      map[string]struct{}
	integerColumns   map[string]struct{}
	objectAttributes map[string]struct{}
}

// NewGenerator returns a Generator for the given rules.
func NewGenerator(rules Rules) *Generator {
	return &Generator{
		jsonColumns:      lookup(rules.JSONColumns, strings.ToUpper),
		integerColumns:   lookup(rules.IntegerColumns, nil),
		objectAttributes: lookup(rules.ObjectAttributes, strings.ToLower),
	}
}

func lookup(names []string, normalize func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if normalize != nil {
			n = normalize(n)
		}
		set[n] = struct{}{}
	}
	return set
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

// Render produces all artifacts for r.
func (g *Generator) Render(r ParseResult) Artifacts {
	names := make([]string, len(r.Columns))
	attrs := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
		attrs[i] = c.CamelCaseName
	}

	return Artifacts{
		InputMapping:  g.InputMapping(r),
		InputSchema:   g.InputSchema(r),
		ResultMapping: g.ResultMapping(r),
		ResultSchema:  g.ResultSchema(r),
		ColumnNames:   strings.Join(names, "\n"),
		Attributes:    strings.Join(attrs, "\n"),
	}
}

// InputMapping renders a CommonJS module that copies every parameter from the
// request criteria into the query parameters object.
func (g *Generator) InputMapping(r ParseResult) string {
	params := make([]string, len(r.Parameters))
	for i, p := range r.Parameters {
		params[i] = fmt.Sprintf("%s: criteria.%s", p.Name, p.Name)
	}

	var b strings.Builder
	b.WriteString("'use strict';\n\n")
	b.WriteString("module.exports = function (input) {\n")
	b.WriteString("    const criteria = input?.data?.criteria;\n\n")
	b.WriteString("    const output = {\n")
	b.WriteString("        parameters: {\n")
	b.WriteString("            " + strings.Join(params, ",\n      ") + ",\n")
	b.WriteString("        },\n")
	b.WriteString("    };\n\n")
	b.WriteString("    return output;\n")
	b.WriteString("};")
	return b.String()
}

// InputSchema renders a draft-04 schema requiring every parameter as a string
// inside a closed criteria object.
func (g *Generator) InputSchema(r ParseResult) string {
	var props strings.Builder
	required := make([]string, len(r.Parameters))
	for i, p := range r.Parameters {
		if i > 0 {
			props.WriteString(",")
		}
		fmt.Fprintf(&props, "\n                \"%s\": {\n                    \"type\": \"string\"\n                }", p.Name)
		required[i] = "\"" + p.Name + "\""
	}

	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString("    \"$schema\": \"" + schemaDraft + "\",\n")
	b.WriteString("    \"type\": \"object\",\n")
	b.WriteString("    \"additionalProperties\": false,\n")
	b.WriteString("    \"properties\": {\n")
	b.WriteString("        \"criteria\": {\n")
	b.WriteString("            \"type\": \"object\",\n")
	b.WriteString("            \"additionalProperties\": false,\n")
	b.WriteString("            \"properties\": {" + props.String() + "\n")
	b.WriteString("            },\n")
	b.WriteString("            \"required\": [" + strings.Join(required, ", ") + "]\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}")
	return b.String()
}

// ResultMapping renders a CommonJS module that renames every column to its
// camelCase attribute. JSON columns are decoded with JSON.parse.
func (g *Generator) ResultMapping(r ParseResult) string {
	var mappings strings.Builder
	for _, c := range r.Columns {
		value := "input." + c.Name
		if has(g.jsonColumns, strings.ToUpper(c.Name)) {
			value = "JSON.parse(input." + c.Name + ")"
		}
		fmt.Fprintf(&mappings, "\n    output.%s = %s;", c.CamelCaseName, value)
	}

	var b strings.Builder
	b.WriteString("'use strict';\n\n")
	b.WriteString("module.exports = function resultMapping(input) {\n")
	b.WriteString("    const output = {};\n")
	b.WriteString(mappings.String())
	b.WriteString("\n\n    return output;\n")
	b.WriteString("};")
	return b.String()
}

// ResultSchema renders a draft-04 schema with one property per column.
func (g *Generator) ResultSchema(r ParseResult) string {
	var props strings.Builder
	for i, c := range r.Columns {
		if i > 0 {
			props.WriteString(",")
		}
		fmt.Fprintf(&props, "\n        \"%s\": {\n", c.CamelCaseName)
		switch {
		case has(g.integerColumns, c.Name):
			props.WriteString("            \"type\": \"integer\"\n")
		case has(g.objectAttributes, strings.ToLower(c.CamelCaseName)):
			props.WriteString("            \"type\": \"object\",\n")
			props.WriteString("            \"additionalProperties\": true\n")
		default:
			props.WriteString("            \"type\": \"string\"\n")
		}
		props.WriteString("        }")
	}

	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString("    \"$schema\": \"" + schemaDraft + "\",\n")
	b.WriteString("    \"type\": \"object\",\n")
	b.WriteString("    \"additionalProperties\": false,\n")
	b.WriteString("    \"properties\": {" + props.String() + "\n")
	b.WriteString("    }\n")
	b.WriteString("}")
	return b.String()
}
