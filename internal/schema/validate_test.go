package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	return data
}

func testSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"name", "count"},
		Properties: map[string]Field{
			"name":  {Type: "string"},
			"count": {Type: "integer", Minimum: Float(0), Maximum: Float(10)},
			"kind":  {Type: "string", Enum: []string{"meal", "activity"}},
			"tags": {
				Type:     "array",
				MinItems: Int(1),
				Items:    &Field{Type: "string"},
			},
			"window": {
				Type:     "object",
				Required: []string{"start"},
				Properties: map[string]Field{
					"start": {Type: "integer"},
				},
			},
		},
	}
}

func TestValidateOK(t *testing.T) {
	data := decode(t, `{
		"name": "lunch",
		"count": 2,
		"kind": "meal",
		"tags": ["food"],
		"window": {"start": 780}
	}`)
	assert.Empty(t, Validate(testSchema(), data))
}

func TestValidateMissingRequired(t *testing.T) {
	errs := Validate(testSchema(), decode(t, `{"name": "x"}`))
	require.Len(t, errs, 1)
	assert.Equal(t, "count", errs[0].Field)
}

func TestValidateTypeMismatch(t *testing.T) {
	errs := Validate(testSchema(), decode(t, `{"name": 42, "count": 1}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "expected type string")
}

func TestValidateIntegerRejectsDecimal(t *testing.T) {
	errs := Validate(testSchema(), decode(t, `{"name": "x", "count": 2.5}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "integer")
}

func TestValidateNumericBounds(t *testing.T) {
	errs := Validate(testSchema(), decode(t, `{"name": "x", "count": 11}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "at most")

	errs = Validate(testSchema(), decode(t, `{"name": "x", "count": -1}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "at least")
}

func TestValidateEnum(t *testing.T) {
	errs := Validate(testSchema(), decode(t, `{"name": "x", "count": 1, "kind": "party"}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "one of")
}

func TestValidateArray(t *testing.T) {
	errs := Validate(testSchema(), decode(t, `{"name": "x", "count": 1, "tags": []}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "at least 1 items")

	errs = Validate(testSchema(), decode(t, `{"name": "x", "count": 1, "tags": ["a", 7]}`))
	require.Len(t, errs, 1)
	assert.Equal(t, "tags[1]", errs[0].Field)
}

func TestValidateNestedObject(t *testing.T) {
	errs := Validate(testSchema(), decode(t, `{"name": "x", "count": 1, "window": {}}`))
	require.Len(t, errs, 1)
	assert.Equal(t, "window.start", errs[0].Field)
}

func TestValidateAdditionalProperties(t *testing.T) {
	s := testSchema()
	data := decode(t, `{"name": "x", "count": 1, "extra": true}`)
	assert.Empty(t, Validate(s, data), "additional properties allowed by default")

	no := false
	s.AdditionalProperties = &no
	errs := Validate(s, data)
	require.Len(t, errs, 1)
	assert.Equal(t, "extra", errs[0].Field)
}

func TestJoin(t *testing.T) {
	assert.NoError(t, Join(nil))

	err := Join([]ValidationError{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: bad")
	assert.Contains(t, err.Error(), "b: worse")
}
