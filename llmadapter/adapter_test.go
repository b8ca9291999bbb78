package llmadapter

import (
	"context"
	"testing"
)

func TestStubReturnsScriptedResponsesInOrder(t *testing.T) {
	stub := NewStub(
		Response{Content: "first"},
		Response{ToolCalls: []ToolCall{{Name: "search_alm_contracts"}}},
	)
	bound := stub.BindTools([]ToolDefinition{{Name: "search_alm_contracts"}})

	r1, err := bound.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil || r1.Content != "first" {
		t.Fatalf("got %+v, %v", r1, err)
	}

	r2, err := bound.Complete(context.Background(), []Message{{Role: RoleUser, Content: "again"}})
	if err != nil || !r2.HasToolCalls() || r2.ToolCalls[0].Name != "search_alm_contracts" {
		t.Fatalf("got %+v, %v", r2, err)
	}

	if stub.CallCount() != 2 {
		t.Fatalf("CallCount() = %d, want 2", stub.CallCount())
	}
}

func TestStubExhaustedReturnsEmptyResponse(t *testing.T) {
	stub := NewStub(Response{Content: "only"})
	_, _ = stub.Complete(context.Background(), nil)

	r, err := stub.Complete(context.Background(), nil)
	if err != nil || r.Content != "" || r.HasToolCalls() {
		t.Fatalf("got %+v, %v, want empty terminal response", r, err)
	}
}
