package llmadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/kadirpekel/alm-orchestrator/internal/httpclient"
)

// OpenAIConfig configures an OpenAI-compatible chat-completions endpoint.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OpenAIAdapter is a small, hand-rolled HTTP client for an OpenAI-compatible
// /chat/completions endpoint. No SDK dependency: a single struct request is
// marshaled, posted, and the first choice is decoded back into a Response.
type OpenAIAdapter struct {
	config     OpenAIConfig
	httpClient *http.Client
	logger     hclog.Logger
}

// NewOpenAIAdapter constructs an adapter against cfg.
func NewOpenAIAdapter(cfg OpenAIConfig, logger hclog.Logger) *OpenAIAdapter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIAdapter{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("llmadapter.openai"),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	Tools       []chatTool    `json:"tools,omitempty"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type chatTool struct {
	Type     string           `json:"type"`
	Function chatToolFunction `json:"function"`
}

type chatToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type chatToolCall struct {
	ID       string               `json:"id"`
	Type     string               `json:"type"`
	Function chatToolCallFunction `json:"function"`
}

type chatToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements Adapter.
func (a *OpenAIAdapter) Complete(ctx context.Context, messages []Message) (Response, error) {
	return a.complete(ctx, messages, nil)
}

// BindTools implements Adapter.
func (a *OpenAIAdapter) BindTools(tools []ToolDefinition) BoundAdapter {
	return &boundOpenAI{adapter: a, tools: tools}
}

func (a *OpenAIAdapter) complete(ctx context.Context, messages []Message, tools []ToolDefinition) (Response, error) {
	req := chatRequest{
		Model:       a.config.Model,
		Temperature: a.config.Temperature,
		Messages:    toChatMessages(messages),
		Tools:       toChatTools(tools),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("llmadapter: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("llmadapter: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	a.logger.Debug("completion request", "messages", len(messages), "tools", len(tools))

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("llmadapter: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("llmadapter: read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		info := httpclient.ParseOpenAIRateLimitHeaders(resp.Header)
		return Response{}, &httpclient.RetryableError{
			StatusCode: resp.StatusCode,
			Message:    "rate limited",
			RetryAfter: info.RetryAfter,
		}
	}
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Response{}, fmt.Errorf("llmadapter: decode response: %w", err)
	}
	if parsed.Error != nil {
		return Response{}, fmt.Errorf("llmadapter: upstream error: %s", parsed.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return Response{}, fmt.Errorf("llmadapter: http %d: %s", resp.StatusCode, string(raw))
	}
	if len(parsed.Choices) == 0 {
		return Response{}, fmt.Errorf("llmadapter: no choices in response")
	}

	choice := parsed.Choices[0].Message
	return Response{
		Content:    choice.Content,
		ToolCalls:  fromChatToolCalls(choice.ToolCalls),
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}

type boundOpenAI struct {
	adapter *OpenAIAdapter
	tools   []ToolDefinition
}

func (b *boundOpenAI) Complete(ctx context.Context, messages []Message) (Response, error) {
	return b.adapter.complete(ctx, messages, b.tools)
}

func toChatMessages(messages []Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, chatMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCalls:  toChatToolCalls(m.ToolCalls),
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		})
	}
	return out
}

func toChatToolCalls(calls []ToolCall) []chatToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]chatToolCall, 0, len(calls))
	for _, c := range calls {
		args, _ := json.Marshal(c.Arguments)
		out = append(out, chatToolCall{
			ID:   c.ID,
			Type: "function",
			Function: chatToolCallFunction{
				Name:      c.Name,
				Arguments: string(args),
			},
		})
	}
	return out
}

func fromChatToolCalls(calls []chatToolCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]ToolCall, 0, len(calls))
	for _, c := range calls {
		var args map[string]interface{}
		_ = json.Unmarshal([]byte(c.Function.Arguments), &args)
		out = append(out, ToolCall{ID: c.ID, Name: c.Function.Name, Arguments: args})
	}
	return out
}

func toChatTools(defs []ToolDefinition) []chatTool {
	if len(defs) == 0 {
		return nil
	}
	out := make([]chatTool, 0, len(defs))
	for _, d := range defs {
		out = append(out, chatTool{
			Type: "function",
			Function: chatToolFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return out
}
