package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addParams struct {
	A    int     `json:"a" description:"left operand"`
	B    int     `json:"b"`
	Note *string `json:"note"`
	Tag  string  `json:"tag,omitempty"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(addParams{})

	assert.Equal(t, "object", schema["type"])
	assert.ElementsMatch(t, []string{"a", "b"}, schema["required"])

	props := schema["properties"].(map[string]any)
	assert.Len(t, props, 4)
	assert.Equal(t, "integer", props["a"].(map[string]any)["type"])
	assert.Equal(t, "left operand", props["a"].(map[string]any)["description"])
	assert.Equal(t, "string", props["note"].(map[string]any)["type"])
}

func TestCreateSchema_NonStruct(t *testing.T) {
	assert.Equal(t, "string", CreateSchema("")["type"])
	assert.Equal(t, "array", CreateSchema([]string{})["type"])
	assert.Equal(t, map[string]any{}, CreateSchema(json.RawMessage(nil)))
}

func TestValidateJSON(t *testing.T) {
	schema := CreateSchema(addParams{})

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"a":1,"b":2}`, false},
		{"extra fields allowed", `{"a":1,"b":2,"c":3}`, false},
		{"missing required", `{"a":1}`, true},
		{"wrong type", `{"a":"x","b":2}`, true},
		{"not an object", `"hi"`, true},
		{"null", `null`, true},
		{"null required field", `{"a":null,"b":2}`, true},
		{"null optional field", `{"a":1,"b":2,"note":null}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(json.RawMessage(tt.payload), schema)
			if tt.wantErr {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type baseParams struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Lang string `json:"lang,omitempty"`
}

type MetaParams struct {
	Trace string `json:"trace"`
}

type embeddedParams struct {
	baseParams
	*MetaParams
	X    int     `json:"x"`
	Name string  `json:"label"`
	Code *string `json:"code"`
}

func TestCreateSchema_EmbeddedStruct(t *testing.T) {
	schema := CreateSchema(embeddedParams{})

	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "name")
	assert.Contains(t, props, "lang")
	assert.Contains(t, props, "trace")
	assert.Contains(t, props, "label")
	assert.NotContains(t, props, "baseParams")
	assert.NotContains(t, props, "MetaParams")
	assert.ElementsMatch(t, []string{"x", "label", "name"}, schema["required"])

	assert.NoError(t, ValidateJSON(json.RawMessage(`{"name":"n","x":1,"label":"l"}`), schema))
	assert.Error(t, ValidateJSON(json.RawMessage(`{"x":1,"label":"l"}`), schema))
}

func TestValidateParameters_RequiredFromParsedSchema(t *testing.T) {
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"type":"object","required":["query"]}`), &schema))

	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)

	out, err = RenderTemplate(`Summarize {{.topic | upper}} in {{default "english" .lang}} & more`, map[string]any{"topic": "go"})
	require.NoError(t, err)
	assert.Equal(t, "Summarize GO in english & more", out)

	_, err = RenderTemplate("{{.unclosed", nil)
	assert.Error(t, err)
}

func TestWriteReadJSONFile(t *testing.T) {
	path := t.TempDir() + "/nested/db.json"

	var missing map[string]int
	found, err := ReadJSONFile(path, &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, WriteJSONFile(path, map[string]int{"a": 1}))

	var got map[string]int
	found, err = ReadJSONFile(path, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"a": 1}, got)
}
