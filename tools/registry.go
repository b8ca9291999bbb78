package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/kadirpekel/alm-orchestrator/registry"
)

// ErrorMarker prefixes every string a tool (or the registry on its behalf)
// returns to signal a domain-level failure rather than success.
const ErrorMarker = "오류"

// RegistryError is a structured error for registry-level failures
// (as opposed to tool-level failures, which never surface as Go errors).
type RegistryError struct {
	Component string
	Action    string
	Message   string
	Err       error
}

func (e *RegistryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Component, e.Action, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Component, e.Action, e.Message)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// InvocationRecorder receives the name of every tool invoked through the
// registry, in invocation order. Used by the benchmark harness to build a
// per-question tool trace without changing the Invoke contract.
type InvocationRecorder func(toolName string)

// Registry holds named tools and invokes them by name.
type Registry struct {
	base     *registry.BaseRegistry[Tool]
	recorder InvocationRecorder
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{base: registry.NewBaseRegistry[Tool]()}
}

// OnInvoke installs a hook called with the name of every tool as it is
// invoked. Passing nil disables the hook.
func (r *Registry) OnInvoke(fn InvocationRecorder) {
	r.recorder = fn
}

// RegisterTool adds a tool. Returns an error on duplicate or empty names.
func (r *Registry) RegisterTool(t Tool) error {
	if err := r.base.Register(t.Name, t); err != nil {
		return &RegistryError{Component: "ToolRegistry", Action: "RegisterTool", Message: t.Name, Err: err}
	}
	return nil
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	return r.base.Get(name)
}

// List returns every registered tool's Info, sorted by name.
func (r *Registry) List() []Info {
	tools := r.base.List()
	infos := make([]Info, 0, len(tools))
	for _, t := range tools {
		infos = append(infos, t.GetInfo())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return r.base.Count()
}

// Invoke runs the named tool with args and returns its observation string.
// It is total: every input produces a string, and it never raises. Unknown
// names and tool panics are converted to "오류"-prefixed strings exactly as
// a failing tool call would be.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) string {
	if r.recorder != nil {
		r.recorder(name)
	}

	t, ok := r.base.Get(name)
	if !ok {
		return fmt.Sprintf("%s: '%s' 도구를 찾을 수 없습니다.", ErrorMarker, name)
	}

	return r.invokeSafely(ctx, t, args)
}

func (r *Registry) invokeSafely(ctx context.Context, t Tool, args map[string]interface{}) (result string) {
	defer func() {
		if p := recover(); p != nil {
			result = fmt.Sprintf("%s: %s 실행 중 에러: %v", ErrorMarker, t.Name, p)
		}
	}()

	out, err := t.Call(ctx, args)
	if err != nil {
		return fmt.Sprintf("%s: %s 실행 중 에러: %v", ErrorMarker, t.Name, err)
	}
	return out
}
