package schema

// JSONSchema describes the expected shape of a generative payload. The
// validator supports the subset of JSON Schema the planners need: typed
// objects and arrays, required fields, enums, and numeric bounds.
type JSONSchema struct {
	Type                 string           `json:"type"`
	Properties           map[string]Field `json:"properties,omitempty"`
	Required             []string         `json:"required,omitempty"`
	AdditionalProperties *bool            `json:"additionalProperties,omitempty"`
}

// Field describes one property of an object schema.
type Field struct {
	Type       string           `json:"type"`
	Properties map[string]Field `json:"properties,omitempty"`
	Required   []string         `json:"required,omitempty"`
	Items      *Field           `json:"items,omitempty"`
	Enum       []string         `json:"enum,omitempty"`
	Minimum    *float64         `json:"minimum,omitempty"`
	Maximum    *float64         `json:"maximum,omitempty"`
	MinItems   *int             `json:"minItems,omitempty"`
	MaxItems   *int             `json:"maxItems,omitempty"`
}

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// Float returns a *float64 for building schemas inline.
func Float(f float64) *float64 { return floatPtr(f) }

// Int returns a *int for building schemas inline.
func Int(i int) *int { return intPtr(i) }

// Bool returns a *bool for building schemas inline.
func Bool(b bool) *bool { return boolPtr(b) }
