package specialist

import (
	"context"
	"testing"

	"github.com/kadirpekel/alm-orchestrator/llmadapter"
	"github.com/kadirpekel/alm-orchestrator/tools"
)

func registryWithAllTools(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	names := []string{
		"search_alm_contracts", "get_exchange_rate", "get_interest_rate",
		"analyze_liquidity_gap", "get_aggregate_stats", "compare_scenarios", "analyze_trends",
		"analyze_new_position_growth", "analyze_expired_position_decrease",
		"generate_comprehensive_report", "export_report",
	}
	for _, n := range names {
		name := n
		if err := r.RegisterTool(tools.Tool{
			Name: name,
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return name + "-ok", nil
			},
		}); err != nil {
			t.Fatalf("RegisterTool(%s): %v", name, err)
		}
	}
	return r
}

// Invariant #3: every specialist's available tool set equals its declared
// required set exactly.
func TestToolFilteringMatchesDeclaredSet(t *testing.T) {
	reg := registryWithAllTools(t)
	stub := llmadapter.NewStub()

	cases := []struct {
		name     string
		build    func(llmadapter.Adapter, *tools.Registry) (*BaseAgent, error)
		expected []string
	}{
		{"search", NewSearchAgent, []string{"search_alm_contracts"}},
		{"market", NewMarketAgent, []string{"get_exchange_rate", "get_interest_rate"}},
		{"analysis", NewAnalysisAgent, []string{"analyze_liquidity_gap", "get_aggregate_stats", "compare_scenarios", "analyze_trends"}},
		{"position", NewPositionAgent, []string{"analyze_new_position_growth", "analyze_expired_position_decrease"}},
		{"report", NewReportAgent, []string{"generate_comprehensive_report"}},
		{"export", NewExportAgent, []string{"export_report"}},
	}

	for _, c := range cases {
		agent, err := c.build(stub, reg)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		got := agent.AvailableTools()
		if len(got) != len(c.expected) {
			t.Fatalf("%s: AvailableTools() = %v, want %v", c.name, got, c.expected)
		}
		for i := range got {
			if got[i] != c.expected[i] {
				t.Fatalf("%s: AvailableTools() = %v, want %v", c.name, got, c.expected)
			}
		}
	}
}

func TestNewBaseAgentFailsFastOnMissingTool(t *testing.T) {
	reg := tools.NewRegistry()
	stub := llmadapter.NewStub()

	if _, err := NewSearchAgent(stub, reg); err == nil {
		t.Fatalf("expected error when search_alm_contracts is not registered")
	}
}

// S5 — a tool error surfaces as an observation the specialist can react to;
// Run never raises and still reports success once the model produces a
// final apology.
func TestBaseAgentRunSurfacesToolErrorWithoutRaising(t *testing.T) {
	reg := tools.NewRegistry()
	_ = reg.RegisterTool(tools.Tool{
		Name: "search_alm_contracts",
		Call: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return tools.ErrorMarker + ": DB unavailable", nil
		},
	})

	stub := llmadapter.NewStub(
		llmadapter.Response{ToolCalls: []llmadapter.ToolCall{{Name: "search_alm_contracts"}}},
		llmadapter.Response{Content: "죄송합니다. DB 연결 문제가 발생했습니다."},
	)

	agent, err := NewSearchAgent(stub, reg)
	if err != nil {
		t.Fatalf("NewSearchAgent: %v", err)
	}

	result := agent.Run(context.Background(), "USD 계약 찾아줘", nil)
	if !result.Success || result.Result == "" {
		t.Fatalf("Run() = %+v, want success with an apology", result)
	}
}

func TestBaseAgentRunReturnsFailureOnLLMError(t *testing.T) {
	reg := tools.NewRegistry()
	_ = reg.RegisterTool(tools.Tool{
		Name: "search_alm_contracts",
		Call: func(ctx context.Context, args map[string]interface{}) (string, error) { return "ok", nil },
	})

	stub := &llmadapter.Stub{ScriptFunc: func(messages []llmadapter.Message) (llmadapter.Response, error) {
		return llmadapter.Response{}, errTest
	}}

	agent, err := NewSearchAgent(stub, reg)
	if err != nil {
		t.Fatalf("NewSearchAgent: %v", err)
	}

	result := agent.Run(context.Background(), "아무거나", nil)
	if result.Success || result.Error == "" {
		t.Fatalf("Run() = %+v, want success=false with an error message", result)
	}
}

func TestBaseAgentRunHitsIterationCeiling(t *testing.T) {
	reg := registryWithAllTools(t)
	stub := &llmadapter.Stub{ScriptFunc: func(messages []llmadapter.Message) (llmadapter.Response, error) {
		return llmadapter.Response{ToolCalls: []llmadapter.ToolCall{{Name: "search_alm_contracts"}}}, nil
	}}

	agent, err := NewSearchAgent(stub, reg)
	if err != nil {
		t.Fatalf("NewSearchAgent: %v", err)
	}
	agent.MaxIterations = 2

	result := agent.Run(context.Background(), "계속해줘", nil)
	if result.Success {
		t.Fatalf("Run() = %+v, want success=false at iteration ceiling", result)
	}
}

type testError string

func (e testError) Error() string { return string(e) }

var errTest = testError("stub failure")
