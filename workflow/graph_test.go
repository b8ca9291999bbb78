package workflow

import (
	"context"
	"testing"

	"github.com/kadirpekel/alm-orchestrator/llmadapter"
	"github.com/kadirpekel/alm-orchestrator/specialist"
	"github.com/kadirpekel/alm-orchestrator/supervisor"
	"github.com/kadirpekel/alm-orchestrator/tools"
)

func newGraphAgents(t *testing.T) map[string]*specialist.BaseAgent {
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
	agents, err := specialist.NewAll(llmadapter.NewStub(), reg)
	if err != nil {
		t.Fatalf("NewAll: %v", err)
	}
	return agents
}

// Invariant #1: the graph always terminates, even when the supervisor keeps
// routing forever.
func TestGraphTerminatesAtIterationCeiling(t *testing.T) {
	routeForever := &llmadapter.Stub{ScriptFunc: func(messages []llmadapter.Message) (llmadapter.Response, error) {
		return llmadapter.Response{Content: `{"agents": ["search_agent"], "parallel": false, "reasoning": "계속 검색"}`}, nil
	}}

	agents := newGraphAgents(t)
	agents[specialist.NameSearch].LLM = llmadapter.NewStub(llmadapter.Response{Content: "USD 계약 3건이 있습니다."})
	sup, err := supervisor.New(routeForever, agents)
	if err != nil {
		t.Fatalf("supervisor.New: %v", err)
	}

	g := New(sup)
	g.MaxIterations = 2 // S4 — max-iteration guard

	state := g.Run(context.Background(), "계속 라우팅 해줘")

	if state.Iteration > state.MaxIterations {
		t.Fatalf("Iteration = %d, want <= MaxIterations (%d)", state.Iteration, state.MaxIterations)
	}
	if state.FinalResponse == "" {
		t.Fatalf("expected a final response once the combiner runs")
	}
}

// Invariant #5: state only grows — Messages/Errors are append-only across
// the whole run, never truncated or overwritten.
func TestGraphStateIsMonotonic(t *testing.T) {
	stub := llmadapter.NewStub(
		llmadapter.Response{Content: `{"agents": ["search_agent"], "parallel": false, "reasoning": "검색 필요"}`},
	)
	sup, err := supervisor.New(stub, newGraphAgents(t))
	if err != nil {
		t.Fatalf("supervisor.New: %v", err)
	}

	g := New(sup)
	state := g.Run(context.Background(), "USD 계약 찾아줘")

	if len(state.Messages) < 3 {
		t.Fatalf("Messages = %v, want at least supervisor+agent+combiner entries", state.Messages)
	}
	// Every supervisor visit, agent run, and the combiner append an entry;
	// nothing in the driver ever removes or replaces one.
	seenSupervisor, seenAgent, seenCombiner := false, false, false
	for _, m := range state.Messages {
		switch {
		case len(m) > 0 && m[0] == '[' && hasPrefix(m, "[Supervisor]"):
			seenSupervisor = true
		case hasPrefix(m, "[search_agent]"):
			seenAgent = true
		case hasPrefix(m, "[Combiner]"):
			seenCombiner = true
		}
	}
	if !seenSupervisor || !seenAgent || !seenCombiner {
		t.Fatalf("Messages = %v, missing an expected node entry", state.Messages)
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func containsSubstring(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// Invariant #6: the export-after-report ordering invariant holds visible at
// the state-machine level too — the report agent's result lands in
// AgentResults (and Scratch) before the export agent ever runs.
func TestGraphRunsReportBeforeExport(t *testing.T) {
	// The supervisor is re-invoked after every agent, so it must keep asking
	// for export_agent until report_agent has actually run and shown up in
	// the accumulated results it is given as context.
	stub := &llmadapter.Stub{ScriptFunc: func(messages []llmadapter.Message) (llmadapter.Response, error) {
		for _, m := range messages {
			if containsSubstring(m.Content, "report_agent") {
				return llmadapter.Response{Content: `{"agents": ["export_agent"], "parallel": false, "reasoning": "보고서 작성 완료, 이제 내보내기"}`}, nil
			}
		}
		return llmadapter.Response{Content: `{"agents": ["export_agent"], "parallel": false, "reasoning": "내보내기 요청"}`}, nil
	}}
	sup, err := supervisor.New(stub, newGraphAgents(t))
	if err != nil {
		t.Fatalf("supervisor.New: %v", err)
	}

	g := New(sup)
	state := g.Run(context.Background(), "보고서를 엑셀로 내보내줘")

	reportResult, hasReport := state.AgentResults[specialist.NameReport]
	_, hasExport := state.AgentResults[specialist.NameExport]
	if !hasReport || !hasExport {
		t.Fatalf("AgentResults = %+v, want both report_agent and export_agent", state.AgentResults)
	}
	if reportResult.Success {
		if _, ok := state.Scratch["last_report"]; !ok {
			t.Fatalf("Scratch = %+v, want last_report populated by the report node", state.Scratch)
		}
	}
}
