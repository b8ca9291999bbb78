// Package workflow implements the state-machine driver that routes a
// request through the supervisor and specialist agents as an explicit graph
// of nodes and conditional edges, rather than the supervisor's own
// single-shot sequential loop.
package workflow

import (
	"github.com/google/uuid"

	"github.com/kadirpekel/alm-orchestrator/specialist"
)

// State is the append-only record threaded through every node. Node
// functions never mutate it directly — they return a delta that the driver
// folds in, keeping nodes pure and independently testable.
type State struct {
	RunID         string
	UserInput     string
	CurrentAgent  string
	NextAgent     string
	AgentResults  map[string]specialist.AgentResult
	Messages      []string
	Errors        []string
	Iteration     int
	MaxIterations int
	FinalResponse string

	// Scratch is a per-run workspace for values a node needs to hand to a
	// later node without a dedicated state field. The report node writes
	// the generated report under the "last_report" key; the export node
	// reads it from there instead of reaching into global state.
	Scratch map[string]string
}

// NewState builds the initial state for one user turn.
func NewState(userInput string, maxIterations int) *State {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &State{
		RunID:         uuid.NewString(),
		UserInput:     userInput,
		NextAgent:     specialist.NameSupervisor,
		AgentResults:  make(map[string]specialist.AgentResult),
		MaxIterations: maxIterations,
		Scratch:       make(map[string]string),
	}
}

// delta is what a node function returns: the pieces of state it wants
// applied, leaving everything else untouched.
type delta struct {
	nextAgent     string
	agentResults  map[string]specialist.AgentResult
	messages      []string
	errors        []string
	incrementIter bool
	finalResponse string
	scratch       map[string]string
}

func (s *State) apply(d delta) {
	if d.nextAgent != "" {
		s.NextAgent = d.nextAgent
	}
	for name, result := range d.agentResults {
		s.AgentResults[name] = result
	}
	s.Messages = append(s.Messages, d.messages...)
	s.Errors = append(s.Errors, d.errors...)
	if d.incrementIter {
		s.Iteration++
	}
	if d.finalResponse != "" {
		s.FinalResponse = d.finalResponse
	}
	for k, v := range d.scratch {
		s.Scratch[k] = v
	}
}
