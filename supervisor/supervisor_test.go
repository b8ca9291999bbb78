package supervisor

import (
	"context"
	"testing"

	"github.com/kadirpekel/alm-orchestrator/llmadapter"
	"github.com/kadirpekel/alm-orchestrator/specialist"
	"github.com/kadirpekel/alm-orchestrator/tools"
)

func newAgentsWithStub(t *testing.T, stub llmadapter.Adapter) map[string]*specialist.BaseAgent {
	t.Helper()
	reg := tools.NewRegistry()
	for _, name := range []string{
		"search_alm_contracts", "get_exchange_rate", "get_interest_rate",
		"analyze_liquidity_gap", "get_aggregate_stats", "compare_scenarios", "analyze_trends",
		"analyze_new_position_growth", "analyze_expired_position_decrease",
		"generate_comprehensive_report", "export_report",
	} {
		n := name
		if err := reg.RegisterTool(tools.Tool{
			Name: n,
			Call: func(ctx context.Context, args map[string]interface{}) (string, error) { return n + "-ok", nil },
		}); err != nil {
			t.Fatalf("RegisterTool(%s): %v", n, err)
		}
	}
	agents, err := specialist.NewAll(stub, reg)
	if err != nil {
		t.Fatalf("NewAll: %v", err)
	}
	return agents
}

// Invariant #4: the router never raises on adversarial LLM output and always
// degrades to a safe default.
func TestRouteDegradesOnUnparsableJSON(t *testing.T) {
	stub := llmadapter.NewStub(llmadapter.Response{Content: "이건 JSON이 아닙니다"})
	s, err := New(stub, newAgentsWithStub(t, stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision := s.Route(context.Background(), "아무 질문", nil)
	if len(decision.Agents) != 1 || decision.Agents[0] != specialist.NameSearch {
		t.Fatalf("Route() = %+v, want fallback to search_agent", decision)
	}
	if decision.Reasoning == "" {
		t.Fatalf("Route() reasoning should explain the fallback")
	}
}

func TestRouteDegradesOnUnknownAgentName(t *testing.T) {
	stub := llmadapter.NewStub(llmadapter.Response{Content: `{"agents": ["not_a_real_agent"], "parallel": false, "reasoning": "x"}`})
	s, err := New(stub, newAgentsWithStub(t, stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision := s.Route(context.Background(), "질문", nil)
	if len(decision.Agents) != 1 || decision.Agents[0] != specialist.NameSearch {
		t.Fatalf("Route() = %+v, want fallback to search_agent", decision)
	}
}

// S2 — multi-agent routing: a question spanning market data and analysis
// routes to both specialists in the order the model named them.
func TestRouteParsesFencedMultiAgentDecision(t *testing.T) {
	stub := llmadapter.NewStub(llmadapter.Response{Content: "```json\n{\"agents\": [\"market_agent\", \"analysis_agent\"], \"parallel\": false, \"reasoning\": \"환율과 유동성 분석이 모두 필요\"}\n```"})
	s, err := New(stub, newAgentsWithStub(t, stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision := s.Route(context.Background(), "환율과 유동성 갭을 같이 분석해줘", nil)
	want := []string{specialist.NameMarket, specialist.NameAnalysis}
	if len(decision.Agents) != len(want) || decision.Agents[0] != want[0] || decision.Agents[1] != want[1] {
		t.Fatalf("Route() = %+v, want %v", decision.Agents, want)
	}
}

// S3 — export-after-report ordering: a plan naming export_agent without a
// preceding report_agent gets one inserted automatically.
func TestRouteEnforcesReportBeforeExport(t *testing.T) {
	stub := llmadapter.NewStub(llmadapter.Response{Content: `{"agents": ["search_agent", "export_agent"], "parallel": false, "reasoning": "x"}`})
	s, err := New(stub, newAgentsWithStub(t, stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decision := s.Route(context.Background(), "보고서를 엑셀로 내보내줘", nil)
	want := []string{specialist.NameSearch, specialist.NameReport, specialist.NameExport}
	if len(decision.Agents) != len(want) {
		t.Fatalf("Route() = %v, want %v", decision.Agents, want)
	}
	for i, name := range want {
		if decision.Agents[i] != name {
			t.Fatalf("Route() = %v, want %v", decision.Agents, want)
		}
	}
}

func TestCombineResultsAllFailed(t *testing.T) {
	stub := llmadapter.NewStub()
	s, err := New(stub, newAgentsWithStub(t, stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results := map[string]specialist.AgentResult{
		specialist.NameSearch: {Success: false, Error: "DB unavailable"},
	}
	got := s.CombineResults(context.Background(), "질문", results)
	if got == "" {
		t.Fatalf("CombineResults() returned empty string for all-failed results")
	}
}

func TestCombineResultsSingleSuccessReturnsVerbatim(t *testing.T) {
	stub := llmadapter.NewStub()
	s, err := New(stub, newAgentsWithStub(t, stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results := map[string]specialist.AgentResult{
		specialist.NameSearch: {Success: true, Result: "USD 계약 3건"},
	}
	got := s.CombineResults(context.Background(), "질문", results)
	if got != "USD 계약 3건" {
		t.Fatalf("CombineResults() = %q, want verbatim single result", got)
	}
}

func TestCombineResultsMultipleSuccessSynthesizesViaLLM(t *testing.T) {
	stub := llmadapter.NewStub(llmadapter.Response{Content: "종합 결과입니다."})
	s, err := New(stub, newAgentsWithStub(t, stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results := map[string]specialist.AgentResult{
		specialist.NameSearch: {Success: true, Result: "검색 결과"},
		specialist.NameMarket: {Success: true, Result: "환율 결과"},
	}
	got := s.CombineResults(context.Background(), "질문", results)
	if got != "종합 결과입니다." {
		t.Fatalf("CombineResults() = %q, want the LLM synthesis", got)
	}
}

func TestNewFailsFastWhenAgentMissing(t *testing.T) {
	stub := llmadapter.NewStub()
	agents := newAgentsWithStub(t, stub)
	delete(agents, specialist.NameExport)

	if _, err := New(stub, agents); err == nil {
		t.Fatalf("expected error when export_agent is missing")
	}
}
