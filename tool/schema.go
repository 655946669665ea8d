package tool

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
)

// SchemaOf derives an object InputSchema from a struct value or pointer.
// Property names follow the json tag, descriptions come from the description
// tag, and fields that are neither pointers nor omitempty are required.
// Non-struct input yields an empty object schema.
func SchemaOf(v any) map[string]any {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return structSchema(t)
}

func structSchema(t reflect.Type) map[string]any {
	props := map[string]any{}
	var required []string

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}

		prop := typeSchema(f.Type)
		if desc := f.Tag.Get("description"); desc != "" {
			prop["description"] = desc
		}
		props[name] = prop

		if f.Type.Kind() != reflect.Pointer && !hasOption(opts, "omitempty") {
			required = append(required, name)
		}
	}

	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func typeSchema(t reflect.Type) map[string]any {
	switch t.Kind() {
	case reflect.Pointer:
		return typeSchema(t.Elem())
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": typeSchema(t.Elem())}
	case reflect.Struct:
		return structSchema(t)
	default:
		return map[string]any{"type": "object"}
	}
}

func hasOption(opts, want string) bool {
	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == want {
			return true
		}
	}
	return false
}

// resolveSchema compiles an InputSchema. A nil schema accepts anything.
func resolveSchema(schema map[string]any) (*jsonschema.Resolved, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal input schema")
	}
	var js jsonschema.Schema
	if schema != nil {
		if err := json.Unmarshal(data, &js); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal input schema")
		}
	}
	resolved, err := js.Resolve(nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve input schema")
	}
	return resolved, nil
}

// validateArguments checks args against resolved. Arguments are normalized
// through JSON first, so Go ints and decoded float64s validate alike.
func validateArguments(toolName string, resolved *jsonschema.Resolved, args map[string]any) *ToolError {
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return &ToolError{Tool: toolName, Message: "arguments are not serializable: " + err.Error(), Code: CodeValidation}
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return &ToolError{Tool: toolName, Message: "arguments are not serializable: " + err.Error(), Code: CodeValidation}
	}
	if err := resolved.Validate(instance); err != nil {
		return &ToolError{
			Tool:    toolName,
			Message: "parameter validation failed: " + err.Error(),
			Code:    CodeValidation,
			Details: err.Error(),
		}
	}
	return nil
}

// Validate checks args against the spec's InputSchema and reports violations
// as a *ToolError with CodeValidation.
func (s Spec) Validate(args map[string]any) error {
	resolved, err := resolveSchema(s.InputSchema)
	if err != nil {
		return &ToolError{Tool: s.Name, Message: err.Error(), Code: CodeValidation}
	}
	if tErr := validateArguments(s.Name, resolved, args); tErr != nil {
		return tErr
	}
	return nil
}
