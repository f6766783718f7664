package sqlmap

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schemaDoc struct {
	Schema               string                    `json:"$schema"`
	Type                 string                    `json:"type"`
	AdditionalProperties bool                      `json:"additionalProperties"`
	Properties           map[string]map[string]any `json:"properties"`
}

func TestInputMapping(t *testing.T) {
	g := NewGenerator(DefaultRules())
	got := g.InputMapping(ParseResult{Parameters: []ParsedParameter{
		{Name: "id", CamelCaseName: "id"},
		{Name: "name", CamelCaseName: "name"},
	}})

	want := `'use strict';

module.exports = function (input) {
    const criteria = input?.data?.criteria;

    const output = {
        parameters: {
            id: criteria.id,
      name: criteria.name,
        },
    };

    return output;
};`
	assert.Equal(t, want, got)
}

func TestInputSchemaIsValidJSON(t *testing.T) {
	g := NewGenerator(DefaultRules())
	out := g.InputSchema(ParseResult{Parameters: []ParsedParameter{
		{Name: "id", CamelCaseName: "id"},
		{Name: "user_name", CamelCaseName: "userName"},
	}})

	var doc struct {
		schemaDoc
		Properties struct {
			Criteria struct {
				Type                 string                    `json:"type"`
				AdditionalProperties bool                      `json:"additionalProperties"`
				Properties           map[string]map[string]any `json:"properties"`
				Required             []string                  `json:"required"`
			} `json:"criteria"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, schemaDraft, doc.Schema)
	assert.False(t, doc.AdditionalProperties)
	criteria := doc.Properties.Criteria
	assert.Equal(t, "object", criteria.Type)
	assert.False(t, criteria.AdditionalProperties)
	assert.Equal(t, []string{"id", "user_name"}, criteria.Required)
	require.Len(t, criteria.Properties, 2)
	assert.Equal(t, "string", criteria.Properties["user_name"]["type"])
}

func TestInputSchemaWithoutParameters(t *testing.T) {
	out := NewGenerator(DefaultRules()).InputSchema(ParseResult{})
	assert.Contains(t, out, `"required": []`)

	var doc map[string]any
	assert.NoError(t, json.Unmarshal([]byte(out), &doc))
}

func TestResultMapping(t *testing.T) {
	g := NewGenerator(DefaultRules())

	t.Run("plain column", func(t *testing.T) {
		got := g.ResultMapping(ParseResult{Columns: []ParsedColumn{{Name: "NAME", CamelCaseName: "name"}}})
		want := `'use strict';

module.exports = function resultMapping(input) {
    const output = {};

    output.name = input.NAME;

    return output;
};`
		assert.Equal(t, want, got)
		assert.NotContains(t, got, "JSON.parse")
	})

	t.Run("json columns are parsed", func(t *testing.T) {
		got := g.ResultMapping(ParseResult{Columns: []ParsedColumn{
			{Name: "BODY", CamelCaseName: "body"},
			{Name: "COMMON_BODY", CamelCaseName: "commonBody"},
			{Name: "snapshot_body", CamelCaseName: "snapshotBody"},
		}})
		assert.Contains(t, got, "output.body = JSON.parse(input.BODY);")
		assert.Contains(t, got, "output.commonBody = JSON.parse(input.COMMON_BODY);")
		assert.Contains(t, got, "output.snapshotBody = JSON.parse(input.snapshot_body);")
	})
}

func TestResultSchemaTypes(t *testing.T) {
	g := NewGenerator(DefaultRules())
	out := g.ResultSchema(ParseResult{Columns: []ParsedColumn{
		{Name: "SEQ_NUMBER", CamelCaseName: "seqNumber"},
		{Name: "AMENDMENT_NUMBER", CamelCaseName: "amendmentNumber"},
		{Name: "SNAPSHOT_BODY", CamelCaseName: "snapshotBody"},
		{Name: "BODY", CamelCaseName: "body"},
		{Name: "seq_number", CamelCaseName: "seqNumber2"},
		{Name: "NAME", CamelCaseName: "name"},
	}})

	var doc schemaDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "object", doc.Type)
	assert.False(t, doc.AdditionalProperties)

	assert.Equal(t, "integer", doc.Properties["seqNumber"]["type"])
	assert.Equal(t, "integer", doc.Properties["amendmentNumber"]["type"])
	assert.Equal(t, "object", doc.Properties["snapshotBody"]["type"])
	assert.Equal(t, true, doc.Properties["snapshotBody"]["additionalProperties"])
	assert.Equal(t, "object", doc.Properties["body"]["type"])
	// integer typing is an exact match on the name
	assert.Equal(t, "string", doc.Properties["seqNumber2"]["type"])
	assert.Equal(t, "string", doc.Properties["name"]["type"])
}

func TestResultSchemaRoundTrip(t *testing.T) {
	out := NewGenerator(DefaultRules()).ResultSchema(ParseResult{Columns: []ParsedColumn{
		{Name: "USER_NAME", CamelCaseName: "userName"},
	}})

	var doc schemaDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Properties, 1)
	assert.Equal(t, "string", doc.Properties["userName"]["type"])
}

func TestGeneratorCustomRules(t *testing.T) {
	g := NewGenerator(Rules{
		JSONColumns:      []string{"payload"},
		IntegerColumns:   []string{"VERSION"},
		ObjectAttributes: []string{"Payload"},
	})
	r := ParseResult{Columns: []ParsedColumn{
		{Name: "PAYLOAD", CamelCaseName: "payload"},
		{Name: "VERSION", CamelCaseName: "version"},
		{Name: "BODY", CamelCaseName: "body"},
	}}

	mapping := g.ResultMapping(r)
	assert.Contains(t, mapping, "JSON.parse(input.PAYLOAD)")
	assert.NotContains(t, mapping, "JSON.parse(input.BODY)")

	var doc schemaDoc
	require.NoError(t, json.Unmarshal([]byte(g.ResultSchema(r)), &doc))
	assert.Equal(t, "object", doc.Properties["payload"]["type"])
	assert.Equal(t, "integer", doc.Properties["version"]["type"])
	assert.Equal(t, "string", doc.Properties["body"]["type"])
}

func TestZeroGeneratorHasNoSpecialColumns(t *testing.T) {
	var g Generator
	assert.NotContains(t, g.ResultMapping(ParseResult{Columns: []ParsedColumn{{Name: "BODY", CamelCaseName: "body"}}}), "JSON.parse")
}

func TestAnalyzer(t *testing.T) {
	sql := "SELECT t.ID, t.FIRST_NAME AS firstName, t.BODY FROM people t WHERE t.id = @id"
	a := NewAnalyzer()

	got := a.Analyze(sql)
	assert.Equal(t, Postgres, got.Dialect)
	assert.Equal(t, "ID\nFIRSTNAME\nBODY", got.Artifacts.ColumnNames)
	assert.Equal(t, "id\nfirstName\nbody", got.Artifacts.Attributes)
	assert.Contains(t, got.Artifacts.InputMapping, "id: criteria.id")
	assert.Contains(t, got.Artifacts.ResultMapping, "output.body = JSON.parse(input.BODY);")
	assert.Contains(t, got.Artifacts.ResultSchema, `"firstName"`)
}

func TestAnalyzerEmptyInput(t *testing.T) {
	got := NewAnalyzer().Analyze("")
	assert.Equal(t, Postgres, got.Dialect)
	assert.Empty(t, got.Result.Parameters)
	assert.Empty(t, got.Result.Columns)
	assert.Empty(t, got.Artifacts.ColumnNames)

	var doc map[string]any
	assert.NoError(t, json.Unmarshal([]byte(got.Artifacts.ResultSchema), &doc))
}

func TestAnalyzerOptions(t *testing.T) {
	a := NewAnalyzer(
		WithFallbackDialect(MySQL),
		WithSplitter(parenSplitter{}),
		WithRules(Rules{}),
	)

	got := a.Analyze("SELECT COALESCE(x, y) AS body FROM t")
	assert.Equal(t, MySQL, got.Dialect)
	require.Len(t, got.Result.Columns, 1)
	assert.NotContains(t, got.Artifacts.ResultMapping, "JSON.parse")

	forced := a.AnalyzeAs("SELECT a FROM t WHERE a = :a", Postgres)
	assert.Equal(t, Postgres, forced.Dialect)
	assert.Empty(t, forced.Result.Parameters)
}

func TestAnalyzerConcurrentUse(t *testing.T) {
	a := NewAnalyzer()
	sql := "SELECT a.X_ID AS xId, a.BODY FROM a WHERE a.k = @key"
	want := a.Analyze(sql)

	var wg sync.WaitGroup
	results := make([]Analysis, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.Analyze(sql)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
