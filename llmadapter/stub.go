package llmadapter

import "context"

// Stub is a deterministic, scriptable Adapter for tests. Responses is
// consumed in order, one per Complete call; ScriptFunc, if set, is consulted
// instead and can inspect the message list (e.g. to special-case the
// supervisor's routing prompt vs. a specialist's prompt).
type Stub struct {
	Responses  []Response
	ScriptFunc func(messages []Message) (Response, error)
	calls      int
}

// NewStub builds a Stub that returns responses in order.
func NewStub(responses ...Response) *Stub {
	return &Stub{Responses: responses}
}

// Complete implements Adapter.
func (s *Stub) Complete(ctx context.Context, messages []Message) (Response, error) {
	s.calls++
	if s.ScriptFunc != nil {
		return s.ScriptFunc(messages)
	}
	if s.calls > len(s.Responses) {
		return Response{}, nil
	}
	return s.Responses[s.calls-1], nil
}

// BindTools implements Adapter; the stub ignores the tool list and answers
// from the same script regardless of what is bound.
func (s *Stub) BindTools(tools []ToolDefinition) BoundAdapter {
	return s
}

// CallCount returns how many times Complete has been invoked.
func (s *Stub) CallCount() int {
	return s.calls
}
