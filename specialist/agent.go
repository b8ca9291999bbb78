// Package specialist implements BaseAgent, the shared ReAct micro-loop used
// by every domain-specialist agent, and the six concrete roles built on it.
package specialist

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kadirpekel/alm-orchestrator/llmadapter"
	"github.com/kadirpekel/alm-orchestrator/tools"
)

// DefaultMaxIterations bounds a specialist's micro-loop. Lower than the
// single-agent loop's ceiling since a specialist only ever reaches for a
// handful of its own tools.
const DefaultMaxIterations = 5

// AgentResult is the outcome of one specialist invocation.
type AgentResult struct {
	Success bool
	Result  string
	Error   string
}

// BaseAgent is the shared micro-loop: system prompt + task (+ optional
// context) go in, an AgentResult comes out. Tool access is restricted to
// RequiredTools, checked at construction time.
type BaseAgent struct {
	Name          string
	SystemPrompt  string
	RequiredTools []string
	LLM           llmadapter.Adapter
	Tools         *tools.Registry
	MaxIterations int
}

// NewBaseAgent constructs an agent named name, restricted to requiredTools.
// It fails fast — a programmer error, not a runtime one — if any required
// tool is missing from registry.
func NewBaseAgent(name, systemPrompt string, requiredTools []string, llm llmadapter.Adapter, reg *tools.Registry) (*BaseAgent, error) {
	for _, toolName := range requiredTools {
		if _, ok := reg.Get(toolName); !ok {
			return nil, fmt.Errorf("specialist: %s: required tool %q is not registered", name, toolName)
		}
	}
	return &BaseAgent{
		Name:          name,
		SystemPrompt:  systemPrompt,
		RequiredTools: requiredTools,
		LLM:           llm,
		Tools:         reg,
		MaxIterations: DefaultMaxIterations,
	}, nil
}

// AvailableTools returns the agent's declared tool subset.
func (a *BaseAgent) AvailableTools() []string {
	out := make([]string, len(a.RequiredTools))
	copy(out, a.RequiredTools)
	return out
}

func (a *BaseAgent) allows(toolName string) bool {
	for _, name := range a.RequiredTools {
		if name == toolName {
			return true
		}
	}
	return false
}

func (a *BaseAgent) boundAdapter() llmadapter.BoundAdapter {
	defs := make([]llmadapter.ToolDefinition, 0, len(a.RequiredTools))
	for _, name := range a.RequiredTools {
		if t, ok := a.Tools.Get(name); ok {
			defs = append(defs, llmadapter.ToolDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Schema.ToJSONSchema(),
			})
		}
	}
	return a.LLM.BindTools(defs)
}

// Run executes task, optionally annotated with priorResults as context, and
// returns an AgentResult. It never raises: any failure — LLM error or
// internal panic — is captured into AgentResult{Success: false}.
func (a *BaseAgent) Run(ctx context.Context, task string, priorResults map[string]AgentResult) (result AgentResult) {
	defer func() {
		if p := recover(); p != nil {
			result = AgentResult{Success: false, Error: fmt.Sprintf("%v", p)}
		}
	}()

	messages := []llmadapter.Message{
		{Role: llmadapter.RoleSystem, Content: a.SystemPrompt},
		{Role: llmadapter.RoleUser, Content: task},
	}
	if len(priorResults) > 0 {
		messages = append(messages, llmadapter.Message{
			Role:    llmadapter.RoleUser,
			Content: "\n\n컨텍스트 정보:\n" + formatContext(priorResults),
		})
	}

	bound := a.boundAdapter()
	maxIterations := a.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	for iteration := 0; iteration < maxIterations; iteration++ {
		resp, err := bound.Complete(ctx, messages)
		if err != nil {
			return AgentResult{Success: false, Error: err.Error()}
		}

		if !resp.HasToolCalls() {
			return AgentResult{Success: true, Result: resp.Content}
		}

		call := resp.ToolCalls[0]
		var observation string
		if a.allows(call.Name) {
			observation = a.Tools.Invoke(ctx, call.Name, call.Arguments)
		} else {
			observation = fmt.Sprintf("%s: '%s' 도구를 찾을 수 없습니다.", tools.ErrorMarker, call.Name)
		}

		messages = append(messages, llmadapter.Message{
			Role:      llmadapter.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		messages = append(messages, llmadapter.Message{
			Role:    llmadapter.RoleUser,
			Content: fmt.Sprintf("도구 실행 결과:\n%s\n\n위 결과를 바탕으로 다음 단계를 결정하세요.", observation),
		})
	}

	return AgentResult{Success: false, Error: fmt.Sprintf("최대 반복 횟수(%d)에 도달했습니다.", maxIterations)}
}

func formatContext(priorResults map[string]AgentResult) string {
	names := make([]string, 0, len(priorResults))
	for name := range priorResults {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		r := priorResults[name]
		if r.Success {
			lines = append(lines, fmt.Sprintf("- %s: %s", name, r.Result))
		} else {
			lines = append(lines, fmt.Sprintf("- %s: 오류 - %s", name, r.Error))
		}
	}
	return strings.Join(lines, "\n")
}
