package jsonmap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttributes(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, ParseAttributes("a\n  b c  \n\n\td\n"))
	assert.Empty(t, ParseAttributes(""))
	assert.Empty(t, ParseAttributes("\n \n"))
}

func TestMapUserInputTemplate(t *testing.T) {
	tpl, ok := TemplateByName("user input")
	require.True(t, ok)

	r := Map(tpl.Value, "id\n")
	want := "    \"id\": {\n        \"type\": \"string\",\n        \"aiTitle\": \"id\"\n    }"
	assert.Equal(t, want, r.Generated)
	assert.Equal(t, []string{"id"}, r.Attributes)
	assert.Equal(t, tpl.Value, r.Template)

	// a bare property list is not a JSON document
	assert.Equal(t, r.Generated, DataSchema(r))
}

func TestMapDataSchemaTemplate(t *testing.T) {
	tpl, ok := TemplateByName("dataSchema.json")
	require.True(t, ok)
	require.True(t, HasMarker(tpl.Value))

	r := Map(tpl.Value, "first_name\nlastName\n\n")
	out := DataSchema(r)

	var doc struct {
		Title      string                       `json:"title"`
		Properties map[string]map[string]string `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "NewDataSchemaTitle", doc.Title)
	require.Len(t, doc.Properties, 2)
	assert.Equal(t, "string", doc.Properties["first_name"]["type"])
	assert.Equal(t, "lastName", doc.Properties["lastName"]["aiTitle"])

	assert.Less(t, strings.Index(out, "first_name"), strings.Index(out, "lastName"))
	assert.True(t, strings.HasPrefix(out, "{\n    \"$schema\""))
	assert.Contains(t, out, "\n        \"first_name\": {\n            \"type\": \"string\",")
}

func TestReplacePassthrough(t *testing.T) {
	assert.Equal(t, "", Replace("", []string{"a"}))
	assert.Equal(t, "   ", Replace("   ", []string{"a"}))
	assert.Equal(t, `{"x": 1}`, Replace(`{"x": 1}`, []string{"a"}))
}

func TestReplaceUnbalancedTemplate(t *testing.T) {
	got := Replace(`{"to_replace_attribute": {"type": "string"`, []string{"a"})
	assert.Equal(t, "{    \"a\": {\n        \"type\": \"string\",\n        \"aiTitle\": \"a\"\n    }", got)
}

func TestReplaceWithoutAttributes(t *testing.T) {
	got := Replace(`{"p": {"to_replace_attribute": {"type": "string"}}}`, nil)
	assert.Equal(t, `{"p": {}}`, got)
}

func TestDataSchemaFallsBackOnInvalidJSON(t *testing.T) {
	r := Result{Generated: `{"a": }`}
	assert.Equal(t, `{"a": }`, DataSchema(r))
}

func TestDataSchemaKeepsTextAsWritten(t *testing.T) {
	r := Result{Generated: `{"a":1.0,"b":"é","a":2}`}
	assert.Equal(t, "{\n    \"a\": 1.0,\n    \"b\": \"é\",\n    \"a\": 2\n}", DataSchema(r))
}
