package reactloop

import (
	"context"
	"strings"
	"testing"

	"github.com/kadirpekel/alm-orchestrator/llmadapter"
	"github.com/kadirpekel/alm-orchestrator/tools"
)

func newSearchRegistry(t *testing.T, result string, err error) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	if rErr := r.RegisterTool(tools.Tool{
		Name: "search_alm_contracts",
		Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return result, err
		},
	}); rErr != nil {
		t.Fatalf("RegisterTool: %v", rErr)
	}
	return r
}

// S1 — pure search, single tool call, then a plain-text final answer.
func TestLoopScenarioS1PureSearch(t *testing.T) {
	registry := newSearchRegistry(t, "검색 결과: 3건\n...", nil)
	stub := llmadapter.NewStub(
		llmadapter.Response{ToolCalls: []llmadapter.ToolCall{
			{Name: "search_alm_contracts", Arguments: map[string]interface{}{"filters_json": `{"CURRENCY_CD":"USD"}`}},
		}},
		llmadapter.Response{Content: "USD 계약 3건이 있습니다."},
	)

	loop := New(stub.BindTools(nil), registry)
	got := loop.Run(context.Background(), "USD 통화 계약을 찾아줘", nil)

	if got != "USD 계약 3건이 있습니다." {
		t.Fatalf("Run() = %q", got)
	}
}

func TestLoopTerminatesAtMaxIterations(t *testing.T) {
	registry := newSearchRegistry(t, "ok", nil)
	stub := &llmadapter.Stub{
		ScriptFunc: func(messages []llmadapter.Message) (llmadapter.Response, error) {
			return llmadapter.Response{ToolCalls: []llmadapter.ToolCall{{Name: "search_alm_contracts"}}}, nil
		},
	}

	loop := New(stub.BindTools(nil), registry)
	loop.MaxIterations = 2
	got := loop.Run(context.Background(), "계속 반복해줘", nil)

	if got != "최대 반복 횟수에 도달했습니다." {
		t.Fatalf("Run() = %q, want max-iteration message", got)
	}
}

// S5 — a tool error surfaces as an observation the model can react to; the
// loop never raises.
func TestLoopSurfacesToolErrorWithoutRaising(t *testing.T) {
	registry := newSearchRegistry(t, "", nil)
	_ = registry // replaced below with an explicit error-returning tool
	registry = tools.NewRegistry()
	_ = registry.RegisterTool(tools.Tool{
		Name: "search_alm_contracts",
		Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return tools.ErrorMarker + ": DB unavailable", nil
		},
	})

	stub := llmadapter.NewStub(
		llmadapter.Response{ToolCalls: []llmadapter.ToolCall{{Name: "search_alm_contracts"}}},
		llmadapter.Response{Content: "죄송합니다. 현재 DB 연결 문제로 조회할 수 없습니다."},
	)

	loop := New(stub.BindTools(nil), registry)
	got := loop.Run(context.Background(), "USD 계약 찾아줘", nil)

	if !strings.Contains(got, "죄송합니다") {
		t.Fatalf("Run() = %q, want apology referencing the tool failure", got)
	}
}

func TestLoopOnlyHonorsFirstToolCallPerIteration(t *testing.T) {
	registry := tools.NewRegistry()
	var invoked []string
	_ = registry.RegisterTool(tools.Tool{
		Name: "a",
		Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
			invoked = append(invoked, "a")
			return "a-result", nil
		},
	})
	_ = registry.RegisterTool(tools.Tool{
		Name: "b",
		Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
			invoked = append(invoked, "b")
			return "b-result", nil
		},
	})

	stub := llmadapter.NewStub(
		llmadapter.Response{ToolCalls: []llmadapter.ToolCall{{Name: "a"}, {Name: "b"}}},
		llmadapter.Response{Content: "done"},
	)

	loop := New(stub.BindTools(nil), registry)
	loop.Run(context.Background(), "do both", nil)

	if len(invoked) != 1 || invoked[0] != "a" {
		t.Fatalf("invoked = %v, want only [a]", invoked)
	}
}
