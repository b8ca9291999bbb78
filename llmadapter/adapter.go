package llmadapter

import "context"

// Adapter is the uniform interface every backend (OpenAI-compatible HTTP
// endpoint, stub, etc.) implements.
type Adapter interface {
	// Complete sends messages to the model and returns its response.
	Complete(ctx context.Context, messages []Message) (Response, error)

	// BindTools returns a view of this adapter that advertises tools to the
	// model on every Complete call.
	BindTools(tools []ToolDefinition) BoundAdapter
}

// BoundAdapter is an Adapter narrowed to a fixed tool set.
type BoundAdapter interface {
	Complete(ctx context.Context, messages []Message) (Response, error)
}
