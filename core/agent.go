package core

import "context"

// Agent is the capability every handler registered in a swarm implements.
//
// Execute receives the routed Action and the Executor it was dispatched
// from. Agents compose workflows by issuing further actions through that
// Executor while still inside Execute.
//
// Implementations must:
//   - Be safe for concurrent invocation
//   - Report failures as Error outputs instead of panicking
//   - Pass ctx on to any blocking I/O they perform
//
// An agent does not know the id it was registered under; the registry stamps
// it on the returned Output.
type Agent interface {
	Execute(ctx context.Context, action Action, swarm Executor) Output
}

// Executor routes actions to registered agents. The registry implements it
// and hands itself to every agent it invokes, which makes nested dispatch
// re-entrant by construction.
type Executor interface {
	// Execute wraps payload in an Action addressed to actionID and routes it.
	Execute(ctx context.Context, actionID string, payload any) Output

	// ExecuteAction routes an already built Action.
	ExecuteAction(ctx context.Context, action Action) Output
}

// OperationKind tells how a dispatch table invokes an operation.
type OperationKind string

const (
	// OperationAction handlers receive only the decoded payload.
	OperationAction OperationKind = "action"
	// OperationWorkflow handlers additionally receive the Executor.
	OperationWorkflow OperationKind = "workflow"
	// OperationRaw handlers receive the undecoded Action and the Executor.
	OperationRaw OperationKind = "raw"
)

// OperationInfo describes a single routable operation.
type OperationInfo struct {
	Name        string         `json:"name"`
	Kind        OperationKind  `json:"kind"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

// AgentInfo describes a registered agent for listings.
type AgentInfo struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Operations  []OperationInfo `json:"operations,omitempty"`
}

// Describer is implemented by agents that can publish their operations.
// It is optional; agents without it are listed with their Go type only.
type Describer interface {
	Describe() AgentInfo
}
