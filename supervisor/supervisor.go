// Package supervisor implements the central router that picks which
// specialist agents handle a request, runs them in sequence, and combines
// their results into a single response.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kadirpekel/alm-orchestrator/llmadapter"
	"github.com/kadirpekel/alm-orchestrator/prompts"
	"github.com/kadirpekel/alm-orchestrator/specialist"
)

// RoutingDecision is the supervisor's answer to "who should handle this".
type RoutingDecision struct {
	Agents    []string `json:"agents"`
	Parallel  bool     `json:"parallel"`
	Reasoning string   `json:"reasoning"`
}

// Supervisor owns the full set of specialists and an LLM used for routing
// and result combination.
type Supervisor struct {
	LLM    llmadapter.Adapter
	Agents map[string]*specialist.BaseAgent
}

// New builds a Supervisor over agents, failing fast if any of the six
// required specialist names is missing — mirroring the constructor-time
// validation every other component in this system performs.
func New(llm llmadapter.Adapter, agents map[string]*specialist.BaseAgent) (*Supervisor, error) {
	for _, name := range specialist.AllNames {
		if _, ok := agents[name]; !ok {
			return nil, fmt.Errorf("supervisor: required agent %q is not present", name)
		}
	}
	return &Supervisor{LLM: llm, Agents: agents}, nil
}

var validAgentSet = func() map[string]bool {
	m := make(map[string]bool, len(specialist.AllNames))
	for _, n := range specialist.AllNames {
		m[n] = true
	}
	return m
}()

// Route asks the LLM which agent(s) should handle userInput, given the
// results accumulated so far (nil on the first call). It never raises: a
// malformed or unparsable response degrades to a safe single-agent default
// instead of propagating an error.
func (s *Supervisor) Route(ctx context.Context, userInput string, priorResults map[string]specialist.AgentResult) RoutingDecision {
	prompt := prompts.SupervisorPrompt
	if len(priorResults) > 0 {
		prompt += "\n\n지금까지의 실행 결과:\n" + formatPriorResults(priorResults)
	}

	messages := []llmadapter.Message{
		{Role: llmadapter.RoleSystem, Content: prompt},
		{Role: llmadapter.RoleUser, Content: userInput},
	}

	resp, err := s.LLM.Complete(ctx, messages)
	if err != nil {
		return RoutingDecision{
			Agents:    []string{specialist.NameSearch},
			Parallel:  false,
			Reasoning: fmt.Sprintf("라우팅 오류로 기본 에이전트 사용: %v", err),
		}
	}

	decision, err := parseRoutingDecision(resp.Content)
	if err != nil {
		return RoutingDecision{
			Agents:    []string{specialist.NameSearch},
			Parallel:  false,
			Reasoning: fmt.Sprintf("JSON 파싱 오류로 기본 에이전트 사용: %v", err),
		}
	}

	if _, reported := priorResults[specialist.NameReport]; reported {
		return decision
	}
	return enforceReportBeforeExport(decision)
}

// parseRoutingDecision extracts a RoutingDecision from the model's raw
// content: a ```json fenced block first, then any fenced block, then the
// bare content itself. Every named agent must be one of the six known
// specialists or parsing fails.
func parseRoutingDecision(content string) (RoutingDecision, error) {
	candidate := extractJSONBlock(content)

	var raw struct {
		Agents    []string `json:"agents"`
		Parallel  bool     `json:"parallel"`
		Reasoning string   `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return RoutingDecision{}, fmt.Errorf("invalid routing JSON: %w", err)
	}
	if raw.Agents == nil {
		return RoutingDecision{}, fmt.Errorf("routing JSON missing required 'agents' key")
	}
	for _, name := range raw.Agents {
		if !validAgentSet[name] {
			return RoutingDecision{}, fmt.Errorf("routing JSON names unknown agent %q", name)
		}
	}

	return RoutingDecision{Agents: raw.Agents, Parallel: raw.Parallel, Reasoning: raw.Reasoning}, nil
}

func extractJSONBlock(content string) string {
	if block, ok := fencedBlock(content, "```json"); ok {
		return block
	}
	if block, ok := fencedBlock(content, "```"); ok {
		return block
	}
	return strings.TrimSpace(content)
}

func fencedBlock(content, fence string) (string, bool) {
	start := strings.Index(content, fence)
	if start == -1 {
		return "", false
	}
	rest := content[start+len(fence):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// enforceReportBeforeExport rewrites decision so that export_agent never
// appears without a preceding report_agent, inserting one immediately
// before it when missing. Route skips this once a report_agent result is
// already among the prior results.
func enforceReportBeforeExport(decision RoutingDecision) RoutingDecision {
	exportIdx := -1
	hasReport := false
	for i, name := range decision.Agents {
		if name == specialist.NameExport {
			exportIdx = i
		}
		if name == specialist.NameReport {
			hasReport = true
		}
	}
	if exportIdx == -1 || hasReport {
		return decision
	}

	agents := make([]string, 0, len(decision.Agents)+1)
	agents = append(agents, decision.Agents[:exportIdx]...)
	agents = append(agents, specialist.NameReport)
	agents = append(agents, decision.Agents[exportIdx:]...)
	decision.Agents = agents
	return decision
}

// ExecuteAgents runs decision.Agents sequentially, threading the growing
// results map as context into each subsequent agent. A panicking agent is
// captured into a failed AgentResult rather than propagated.
func (s *Supervisor) ExecuteAgents(ctx context.Context, userInput string, decision RoutingDecision) map[string]specialist.AgentResult {
	results := make(map[string]specialist.AgentResult, len(decision.Agents))

	for _, name := range decision.Agents {
		agent, ok := s.Agents[name]
		if !ok {
			results[name] = specialist.AgentResult{Success: false, Error: fmt.Sprintf("알 수 없는 에이전트: %s", name)}
			continue
		}
		results[name] = runAgentSafely(ctx, agent, userInput, results)
	}

	return results
}

func runAgentSafely(ctx context.Context, agent *specialist.BaseAgent, userInput string, priorResults map[string]specialist.AgentResult) (result specialist.AgentResult) {
	defer func() {
		if p := recover(); p != nil {
			result = specialist.AgentResult{Success: false, Error: fmt.Sprintf("%v", p)}
		}
	}()
	return agent.Run(ctx, userInput, priorResults)
}

// CombineResults synthesizes a single response from results: an aggregated
// error if everything failed, the sole successful result verbatim if
// exactly one agent succeeded, or an LLM-synthesized combination of every
// agent's labeled result, failures included (falling back to plain
// concatenation of those labeled results if the LLM call fails).
func (s *Supervisor) CombineResults(ctx context.Context, userInput string, results map[string]specialist.AgentResult) string {
	names := sortedKeys(results)

	var succeeded []string
	for _, name := range names {
		if results[name].Success {
			succeeded = append(succeeded, name)
		}
	}

	if len(succeeded) == 0 {
		var errs []string
		for _, name := range names {
			errs = append(errs, fmt.Sprintf("%s: %s", name, results[name].Error))
		}
		return "죄송합니다. 요청을 처리하는 중 오류가 발생했습니다.\n" + strings.Join(errs, "\n")
	}

	if len(succeeded) == 1 {
		return results[succeeded[0]].Result
	}

	resultsText := formatPriorResults(results)
	messages := []llmadapter.Message{
		{Role: llmadapter.RoleSystem, Content: prompts.ResultCombinationPrompt},
		{Role: llmadapter.RoleUser, Content: fmt.Sprintf("사용자 질문: %s\n\n각 에이전트 실행 결과:\n%s", userInput, resultsText)},
	}

	resp, err := s.LLM.Complete(ctx, messages)
	if err != nil {
		return resultsText
	}
	return resp.Content
}

// Run chains Route, ExecuteAgents, and CombineResults into a single-shot
// request/response cycle.
func (s *Supervisor) Run(ctx context.Context, userInput string) string {
	decision := s.Route(ctx, userInput, nil)
	results := s.ExecuteAgents(ctx, userInput, decision)
	return s.CombineResults(ctx, userInput, results)
}

func formatPriorResults(results map[string]specialist.AgentResult) string {
	names := sortedKeys(results)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		r := results[name]
		if r.Success {
			lines = append(lines, fmt.Sprintf("[%s]\n%s", name, r.Result))
		} else {
			lines = append(lines, fmt.Sprintf("[%s]\n오류: %s", name, r.Error))
		}
	}
	return strings.Join(lines, "\n\n")
}

func sortedKeys(results map[string]specialist.AgentResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
