package workflow

import (
	"context"
	"fmt"

	"github.com/kadirpekel/alm-orchestrator/specialist"
	"github.com/kadirpekel/alm-orchestrator/supervisor"
)

// DefaultMaxIterations bounds how many times the supervisor node may route
// before the driver forces termination.
const DefaultMaxIterations = 10

// Graph is the state-machine driver: a supervisor node, one node per
// specialist, and a combiner node, wired by the same conditional-edge rule
// every specialist agent node shares (route back to the supervisor; the
// supervisor routes to a specialist or to the combiner).
type Graph struct {
	Supervisor    *supervisor.Supervisor
	MaxIterations int
}

// New builds a Graph over sup.
func New(sup *supervisor.Supervisor) *Graph {
	return &Graph{Supervisor: sup, MaxIterations: DefaultMaxIterations}
}

// Run drives userInput through the graph to completion: supervisor routes,
// specialists execute and route back, the supervisor re-routes using the
// accumulated results, and the combiner produces the final response once
// the supervisor signals finish or the iteration ceiling is hit.
func (g *Graph) Run(ctx context.Context, userInput string) *State {
	state := NewState(userInput, g.MaxIterations)

	current := specialist.NameSupervisor
	for {
		switch {
		case current == specialist.NameSupervisor:
			state.apply(g.supervisorNode(ctx, state))
		case current == specialist.NameCombiner:
			state.apply(g.combinerNode(ctx, state))
			return state
		case isSpecialistName(current):
			state.apply(g.agentNode(ctx, current, state))
		default:
			// Defensive: an unrecognized node name can only come from a
			// corrupted NextAgent; route straight to the combiner so Run
			// always terminates.
			state.apply(delta{nextAgent: specialist.NameCombiner})
		}
		current = router(state)
	}
}

func isSpecialistName(name string) bool {
	for _, n := range specialist.AllNames {
		if n == name {
			return true
		}
	}
	return false
}

// router is the conditional-edge function: finish (or an empty next agent)
// always lands on the combiner, everything else is followed literally.
func router(state *State) string {
	if state.NextAgent == specialist.NameFinish || state.NextAgent == "" {
		return specialist.NameCombiner
	}
	return state.NextAgent
}

func (g *Graph) supervisorNode(ctx context.Context, state *State) delta {
	if state.Iteration+1 >= state.MaxIterations {
		return delta{
			nextAgent:     specialist.NameFinish,
			errors:        []string{"최대 반복 횟수에 도달하여 라우팅을 중단합니다."},
			incrementIter: true,
		}
	}

	decision := g.Supervisor.Route(ctx, state.UserInput, state.AgentResults)

	next := specialist.NameFinish
	if len(decision.Agents) > 0 {
		next = decision.Agents[0]
	}

	return delta{
		nextAgent:     next,
		messages:      []string{fmt.Sprintf("[Supervisor] %s", decision.Reasoning)},
		incrementIter: true,
	}
}

func (g *Graph) agentNode(ctx context.Context, name string, state *State) delta {
	agent, ok := g.Supervisor.Agents[name]
	if !ok {
		return delta{
			nextAgent:    specialist.NameSupervisor,
			agentResults: map[string]specialist.AgentResult{name: {Success: false, Error: fmt.Sprintf("알 수 없는 에이전트: %s", name)}},
			errors:       []string{fmt.Sprintf("알 수 없는 에이전트: %s", name)},
		}
	}

	task := state.UserInput
	if name == specialist.NameExport {
		if report, ok := state.Scratch["last_report"]; ok {
			task += "\n\n내보낼 리포트:\n" + report
		}
	}
	result := agent.Run(ctx, task, state.AgentResults)

	d := delta{
		nextAgent:    specialist.NameSupervisor,
		agentResults: map[string]specialist.AgentResult{name: result},
		messages:     []string{fmt.Sprintf("[%s] 실행 완료", name)},
	}
	if name == specialist.NameReport && result.Success {
		d.scratch = map[string]string{"last_report": result.Result}
	}
	return d
}

func (g *Graph) combinerNode(ctx context.Context, state *State) delta {
	combined := g.Supervisor.CombineResults(ctx, state.UserInput, state.AgentResults)
	return delta{
		nextAgent:     specialist.NameFinish,
		messages:      []string{"[Combiner] 결과 통합 완료"},
		finalResponse: combined,
	}
}
