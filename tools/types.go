// Package tools holds the tool registry: a process-wide, read-only-after-
// construction catalog of named callables that the ReAct loop, BaseAgent,
// and the benchmark harness all invoke by name.
package tools

import "context"

// InputField describes one accepted argument of a tool.
type InputField struct {
	Name        string
	Type        string // "string", "int", "float", "bool"
	Description string
	Default     interface{}
}

// InputSchema is the ordered set of fields a tool accepts.
type InputSchema []InputField

// Info is the metadata shown to the LLM when a tool is bound.
type Info struct {
	Name        string
	Description string
	Schema      InputSchema
}

// Call is a standardized tool invocation request, as emitted by a bound LLM.
type Call struct {
	ID   string
	Name string
	Args map[string]interface{}
}

// Func is the callable body of a tool. It is synchronous and self-contained:
// it owns its own I/O and error handling, and signals a domain-level failure
// by returning a string beginning with the "오류" marker rather than a Go
// error. A non-nil error here represents an unexpected exception (e.g. a
// driver-level failure) and, like a panic the registry recovers, is always
// converted to an "오류"-prefixed string before reaching a caller.
type Func func(ctx context.Context, args map[string]interface{}) (string, error)

// Tool is a named unit of callable work. Constructed at process start,
// immutable thereafter.
type Tool struct {
	Name        string
	Description string
	Schema      InputSchema
	Call        Func
}

// GetInfo returns the tool's metadata.
func (t Tool) GetInfo() Info {
	return Info{Name: t.Name, Description: t.Description, Schema: t.Schema}
}

// ToJSONSchema renders the schema as a JSON Schema object description,
// suitable for an LLM adapter's ToolDefinition.Parameters. A field with no
// Default is treated as required.
func (s InputSchema) ToJSONSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(s))
	required := make([]string, 0, len(s))
	for _, f := range s {
		prop := map[string]interface{}{
			"type":        jsonSchemaType(f.Type),
			"description": f.Description,
		}
		if f.Default != nil {
			prop["default"] = f.Default
		} else {
			required = append(required, f.Name)
		}
		properties[f.Name] = prop
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func jsonSchemaType(fieldType string) string {
	switch fieldType {
	case "int", "float":
		return "number"
	case "bool":
		return "boolean"
	default:
		return "string"
	}
}
