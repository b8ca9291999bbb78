// Package reactloop implements the single-agent reason-act-observe loop:
// one LLM bound to the full tool set, iterating until it produces a final
// answer or exhausts its iteration budget.
package reactloop

import (
	"context"
	"fmt"
	"strings"

	"github.com/kadirpekel/alm-orchestrator/llmadapter"
	"github.com/kadirpekel/alm-orchestrator/prompts"
	"github.com/kadirpekel/alm-orchestrator/tools"
)

// DefaultMaxIterations bounds the loop absent an explicit override.
const DefaultMaxIterations = 10

// ToolLogEntry records one tool invocation for the verbose trace summary.
type ToolLogEntry struct {
	Iteration int
	Tool      string
	Success   bool
}

// Loop is the single-agent ReAct driver.
type Loop struct {
	LLM           llmadapter.BoundAdapter
	Tools         *tools.Registry
	SystemPrompt  string
	MaxIterations int
	Verbose       bool
}

// New builds a Loop bound to llm and registry, using the default system
// prompt and iteration ceiling.
func New(llm llmadapter.BoundAdapter, registry *tools.Registry) *Loop {
	return &Loop{
		LLM:           llm,
		Tools:         registry,
		SystemPrompt:  prompts.SystemPrompt,
		MaxIterations: DefaultMaxIterations,
	}
}

// Run executes the loop for userInput, optionally seeded with prior
// chatHistory, and returns the final answer string. It never raises: an LLM
// failure ends the loop and is returned as an "오류"-prefixed answer string
// rather than a Go error, matching the tool-invocation error convention.
func (l *Loop) Run(ctx context.Context, userInput string, chatHistory []llmadapter.Message) string {
	maxIterations := l.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	messages := make([]llmadapter.Message, 0, len(chatHistory)+2)
	messages = append(messages, llmadapter.Message{Role: llmadapter.RoleSystem, Content: l.SystemPrompt})
	messages = append(messages, chatHistory...)
	messages = append(messages, llmadapter.Message{
		Role:    llmadapter.RoleUser,
		Content: userInput + prompts.StepGuidanceSuffix,
	})

	var toolLog []ToolLogEntry

	for iteration := 1; iteration <= maxIterations; iteration++ {
		resp, err := l.LLM.Complete(ctx, messages)
		if err != nil {
			return fmt.Sprintf("%s: LLM 호출 중 에러: %v", tools.ErrorMarker, err)
		}

		if !resp.HasToolCalls() {
			return l.formatResponse(resp.Content, toolLog)
		}

		call := resp.ToolCalls[0]
		observation := l.Tools.Invoke(ctx, call.Name, call.Arguments)
		success := !strings.HasPrefix(observation, tools.ErrorMarker)
		toolLog = append(toolLog, ToolLogEntry{Iteration: iteration, Tool: call.Name, Success: success})

		messages = append(messages, llmadapter.Message{
			Role:      llmadapter.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		messages = append(messages, llmadapter.Message{
			Role: llmadapter.RoleUser,
			Content: fmt.Sprintf(
				"[도구 실행 결과 - Iteration %d]\n도구: %s\n결과:\n%s\n\n위 결과를 바탕으로 다음 단계를 결정하세요.",
				iteration, call.Name, observation,
			),
		})
	}

	return "최대 반복 횟수에 도달했습니다."
}

func (l *Loop) formatResponse(content string, toolLog []ToolLogEntry) string {
	if !l.Verbose || len(toolLog) == 0 {
		return content
	}

	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\n")
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n📋 실행 요약\n")
	b.WriteString(strings.Repeat("=", 60))
	b.WriteString("\n")
	fmt.Fprintf(&b, "총 %d개 도구 실행\n", len(toolLog))
	for _, e := range toolLog {
		status := "✓"
		if !e.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "  %s [%d] %s\n", status, e.Iteration, e.Tool)
	}
	return b.String()
}
