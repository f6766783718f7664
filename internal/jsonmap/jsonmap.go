// Package jsonmap expands a JSON schema template with one string property per attribute.
package jsonmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Marker opens the placeholder object that gets replaced by the attributes.
const Marker = `"to_replace_attribute": {`

// Template is a named starting point for the mapper.
type Template struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Result is the outcome of one Map call.
type Result struct {
	Template   string   `json:"template"`
	Attributes []string `json:"attributes"`
	Generated  string   `json:"generated"`
}

// Templates returns the built-in templates.
func Templates() []Template {
	return []Template{
		{
			Name: "User input",
			Value: `"to_replace_attribute": {
    "type": "string",
    "aiTitle": "to_replace_attribute"
}`,
		},
		{
			Name: "dataSchema.json",
			Value: `{
    "$schema": "http://json-schema.org/draft-04/schema#",
    "title": "NewDataSchemaTitle",
    "type": "object",
    "additionalProperties": false,
    "properties": {
        "to_replace_attribute": {
            "type": "string",
            "aiTitle": "to_replace_attribute"
        }
    }
}`,
		},
	}
}

// TemplateByName looks up a built-in template.
func TemplateByName(name string) (Template, bool) {
	for _, t := range Templates() {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Template{}, false
}

// HasMarker reports whether template contains the placeholder object.
func HasMarker(template string) bool {
	return strings.Contains(template, Marker)
}

// ParseAttributes splits newline separated attribute names, dropping blank lines.
func ParseAttributes(text string) []string {
	attrs := []string{}
	for _, line := range strings.Split(text, "\n") {
		if a := strings.TrimSpace(line); a != "" {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// Map replaces the placeholder object in template with the given attributes.
func Map(template, attributes string) Result {
	attrs := ParseAttributes(attributes)
	return Result{
		Template:   template,
		Attributes: attrs,
		Generated:  Replace(template, attrs),
	}
}

// Replace substitutes the first placeholder object. A blank template or one without
// the marker is returned unchanged; an unbalanced object is replaced up to the end.
func Replace(template string, attrs []string) string {
	if strings.TrimSpace(template) == "" {
		return template
	}

	start := strings.Index(template, Marker)
	if start < 0 {
		return template
	}

	depth := 1
	end := start + len(Marker) - 1
	for depth > 0 && end < len(template) {
		end++
		if end >= len(template) {
			break
		}
		switch template[end] {
		case '{':
			depth++
		case '}':
			depth--
		}
	}

	props := make([]string, len(attrs))
	for i, a := range attrs {
		props[i] = fmt.Sprintf("    \"%s\": {\n        \"type\": \"string\",\n        \"aiTitle\": \"%s\"\n    }", a, a)
	}

	after := ""
	if end+1 < len(template) {
		after = template[end+1:]
	}
	return template[:start] + strings.Join(props, ",\n") + after
}

// DataSchema pretty prints the generated document with a four space indent.
// Only whitespace changes: key order, duplicate keys and number spelling such
// as 1.0 are kept as written. Text that is not valid JSON, such as a bare
// property fragment, is returned as is.
func DataSchema(r Result) string {
	raw := []byte(r.Generated)
	if !json.Valid(raw) {
		return r.Generated
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "    "); err != nil {
		return r.Generated
	}
	return buf.String()
}
