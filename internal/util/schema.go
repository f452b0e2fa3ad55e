package util

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ValidationError describes a payload that does not satisfy an input schema.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// CreateSchema derives a JSON schema from a Go value's type. Struct fields
// without omitempty that are not pointers are listed as required. Non struct
// types map to their scalar schema.
func CreateSchema(v any) map[string]any {
	t := reflect.TypeOf(v)
	if t == nil {
		return map[string]any{}
	}
	return schemaFor(t, 0)
}

// SchemaForType is CreateSchema for a reflect.Type.
func SchemaForType(t reflect.Type) map[string]any {
	if t == nil {
		return map[string]any{}
	}
	return schemaFor(t, 0)
}

const maxSchemaDepth = 8

func schemaFor(t reflect.Type, depth int) map[string]any {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == reflect.TypeOf(json.RawMessage(nil)) || t.Kind() == reflect.Interface {
		return map[string]any{}
	}

	switch t.Kind() {
	case reflect.Struct:
		if depth >= maxSchemaDepth {
			return map[string]any{"type": "object"}
		}
		return structSchema(t, depth)
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": "string"}
		}
		return map[string]any{"type": "array", "items": schemaFor(t.Elem(), depth+1)}
	case reflect.Map:
		return map[string]any{"type": "object"}
	default:
		return map[string]any{"type": getJSONType(t)}
	}
}

func structSchema(t reflect.Type, depth int) map[string]any {
	properties := make(map[string]any)
	required := make([]string, 0)

	var embedded []reflect.StructField

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		if isPromoted(field, jsonTag) {
			embedded = append(embedded, field)
			continue
		}
		if !field.IsExported() {
			continue
		}

		fieldName := field.Name
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
		}

		fieldSchema := schemaFor(field.Type, depth+1)
		if description := field.Tag.Get("description"); description != "" {
			fieldSchema["description"] = description
		}
		properties[fieldName] = fieldSchema

		if !hasOmitEmpty(jsonTag) && !isPointer(field.Type) {
			required = append(required, fieldName)
		}
	}

	// Promoted fields lose against fields declared on t itself.
	declared := make(map[string]bool, len(properties))
	for name := range properties {
		declared[name] = true
	}
	for _, field := range embedded {
		inner := schemaFor(field.Type, depth+1)
		innerProps, _ := inner["properties"].(map[string]any)
		for name, prop := range innerProps {
			if _, exists := properties[name]; !exists {
				properties[name] = prop
			}
		}
		if isPointer(field.Type) {
			continue // a nil embedded pointer makes its fields optional
		}
		for _, name := range requiredFields(inner) {
			if !declared[name] && !slices.Contains(required, name) {
				required = append(required, name)
			}
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// isPromoted reports whether encoding/json flattens field into its parent:
// an embedded struct (or pointer to struct) without a JSON name.
func isPromoted(field reflect.StructField, jsonTag string) bool {
	if !field.Anonymous || strings.Split(jsonTag, ",")[0] != "" {
		return false
	}
	t := derefType(field.Type)
	if t.Kind() != reflect.Struct {
		return false
	}
	return field.IsExported() || field.Type.Kind() != reflect.Ptr
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// ValidateParameters checks required fields and top level property types of
// an object payload against a schema built by CreateSchema or parsed from JSON.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	for _, fieldName := range requiredFields(schema) {
		if _, exists := params[fieldName]; !exists {
			return &ValidationError{
				Field:   fieldName,
				Message: "required field is missing",
			}
		}
		if params[fieldName] == nil {
			return &ValidationError{
				Field:   fieldName,
				Message: "required field is null",
			}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for fieldName, value := range params {
		propSchema, exists := properties[fieldName]
		if !exists {
			continue // extra fields are allowed
		}

		propMap, ok := propSchema.(map[string]any)
		if !ok {
			continue
		}

		expectedType, _ := propMap["type"].(string)
		if !isValidType(value, expectedType) {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", expectedType, value),
			}
		}
	}

	return nil
}

// ValidateJSON validates a raw JSON payload against schema. Only object
// schemas with required fields are enforced; everything else passes.
func ValidateJSON(raw json.RawMessage, schema map[string]any) error {
	if schema == nil || schema["type"] != "object" {
		return nil
	}

	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return &ValidationError{Message: "payload is not an object"}
	}
	if params == nil {
		return &ValidationError{Message: "payload is null"}
	}
	return ValidateParameters(params, schema)
}

func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func getJSONType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return getJSONType(t.Elem())
	default:
		return "string"
	}
}

func hasOmitEmpty(tag string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			return true
		}
	}
	return false
}

func isPointer(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr
}

func isValidType(value any, expectedType string) bool {
	if value == nil {
		return true
	}

	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64: // encoding/json decodes every number as float64
			return v == float64(int64(v))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
