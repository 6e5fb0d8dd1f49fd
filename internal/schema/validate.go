package schema

import (
	"fmt"
	"strings"
)

// ValidationError is one mismatch between a payload and its schema.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (value: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Join collapses a list of validation errors into a single error value,
// or nil when the list is empty.
func Join(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}

// Validate checks decoded JSON data against an object schema and returns
// every mismatch found.
func Validate(s JSONSchema, data map[string]any) []ValidationError {
	var errs []ValidationError

	if s.Type != "object" {
		return append(errs, ValidationError{
			Message: fmt.Sprintf("root type must be object, got %s", s.Type),
		})
	}

	for _, field := range s.Required {
		if _, ok := data[field]; !ok {
			errs = append(errs, ValidationError{Field: field, Message: "required field is missing"})
		}
	}

	for name, value := range data {
		fs, ok := s.Properties[name]
		if !ok {
			if s.AdditionalProperties != nil && !*s.AdditionalProperties {
				errs = append(errs, ValidationError{
					Field:   name,
					Message: "additional property not allowed",
					Value:   value,
				})
			}
			continue
		}
		errs = append(errs, validateField(name, fs, value)...)
	}
	return errs
}

func validateField(path string, fs Field, value any) []ValidationError {
	var errs []ValidationError

	actual := jsonTypeOf(value)
	if !typeCompatible(fs.Type, actual, value) {
		return append(errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("expected type %s, got %s", fs.Type, actual),
			Value:   value,
		})
	}

	switch fs.Type {
	case "number", "integer":
		errs = append(errs, validateNumber(path, fs, value)...)
	case "array":
		errs = append(errs, validateArray(path, fs, value)...)
	case "object":
		errs = append(errs, validateObject(path, fs, value)...)
	}

	if len(fs.Enum) > 0 {
		errs = append(errs, validateEnum(path, fs, value)...)
	}
	return errs
}

func validateNumber(path string, fs Field, value any) []ValidationError {
	var errs []ValidationError
	num, ok := toFloat(value)
	if !ok {
		return errs
	}
	if fs.Type == "integer" && num != float64(int64(num)) {
		errs = append(errs, ValidationError{
			Field:   path,
			Message: "expected integer, got decimal number",
			Value:   value,
		})
	}
	if fs.Minimum != nil && num < *fs.Minimum {
		errs = append(errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("value must be at least %v", *fs.Minimum),
			Value:   value,
		})
	}
	if fs.Maximum != nil && num > *fs.Maximum {
		errs = append(errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("value must be at most %v", *fs.Maximum),
			Value:   value,
		})
	}
	return errs
}

func validateArray(path string, fs Field, value any) []ValidationError {
	var errs []ValidationError
	arr, ok := value.([]any)
	if !ok {
		return errs
	}
	if fs.MinItems != nil && len(arr) < *fs.MinItems {
		errs = append(errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("array must have at least %d items", *fs.MinItems),
		})
	}
	if fs.MaxItems != nil && len(arr) > *fs.MaxItems {
		errs = append(errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("array must have at most %d items", *fs.MaxItems),
		})
	}
	if fs.Items != nil {
		for i, item := range arr {
			errs = append(errs, validateField(fmt.Sprintf("%s[%d]", path, i), *fs.Items, item)...)
		}
	}
	return errs
}

func validateObject(path string, fs Field, value any) []ValidationError {
	var errs []ValidationError
	obj, ok := value.(map[string]any)
	if !ok {
		return errs
	}
	for _, required := range fs.Required {
		if _, ok := obj[required]; !ok {
			errs = append(errs, ValidationError{
				Field:   path + "." + required,
				Message: "required field is missing",
			})
		}
	}
	for name, v := range obj {
		ps, ok := fs.Properties[name]
		if !ok {
			continue
		}
		errs = append(errs, validateField(path+"."+name, ps, v)...)
	}
	return errs
}

func validateEnum(path string, fs Field, value any) []ValidationError {
	str := fmt.Sprintf("%v", value)
	for _, e := range fs.Enum {
		if str == e {
			return nil
		}
	}
	return []ValidationError{{
		Field:   path,
		Message: fmt.Sprintf("value must be one of: %s", strings.Join(fs.Enum, ", ")),
		Value:   value,
	}}
}

func typeCompatible(expected, actual string, value any) bool {
	if expected == actual {
		return true
	}
	if expected == "integer" && actual == "number" {
		if f, ok := toFloat(value); ok {
			return f == float64(int64(f))
		}
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	}
	return 0, false
}

func jsonTypeOf(value any) string {
	if value == nil {
		return "null"
	}
	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
