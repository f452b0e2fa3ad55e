package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hupe1980/agentswarm/core"
	"github.com/stretchr/testify/mock"
)

// EchoAgent returns the action payload unchanged as a Success output.
type EchoAgent struct{}

// Execute implements core.Agent.
func (EchoAgent) Execute(_ context.Context, action core.Action, _ core.Executor) core.Output {
	return core.Success(action.Payload())
}

// FailAgent always answers with an Error output carrying Message.
type FailAgent struct {
	Message string
}

// Execute implements core.Agent.
func (a FailAgent) Execute(context.Context, core.Action, core.Executor) core.Output {
	return core.Failure(a.Message)
}

// PanicAgent panics on every call.
type PanicAgent struct{}

// Execute implements core.Agent.
func (PanicAgent) Execute(context.Context, core.Action, core.Executor) core.Output {
	panic("agent exploded")
}

// StaticAgent answers every action with Out.
type StaticAgent struct {
	Out core.Output
}

// Execute implements core.Agent.
func (a StaticAgent) Execute(context.Context, core.Action, core.Executor) core.Output {
	return a.Out
}

// RecordingAgent captures every action it receives and delegates the
// response to Next (EchoAgent when nil).
type RecordingAgent struct {
	Next core.Agent

	mu      sync.Mutex
	actions []core.Action
}

// Execute implements core.Agent.
func (a *RecordingAgent) Execute(ctx context.Context, action core.Action, ex core.Executor) core.Output {
	a.mu.Lock()
	a.actions = append(a.actions, action)
	a.mu.Unlock()

	next := a.Next
	if next == nil {
		next = EchoAgent{}
	}
	return next.Execute(ctx, action, ex)
}

// Actions returns a copy of the recorded actions in arrival order.
func (a *RecordingAgent) Actions() []core.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]core.Action, len(a.actions))
	copy(out, a.actions)
	return out
}

// MockAgent is a testify mock of core.Agent.
type MockAgent struct {
	mock.Mock
}

// Execute implements core.Agent.
func (m *MockAgent) Execute(ctx context.Context, action core.Action, ex core.Executor) core.Output {
	args := m.Called(ctx, action, ex)
	return args.Get(0).(core.Output)
}

// MockExecutor is a testify mock of core.Executor.
type MockExecutor struct {
	mock.Mock
}

// Execute implements core.Executor.
func (m *MockExecutor) Execute(ctx context.Context, actionID string, payload any) core.Output {
	args := m.Called(ctx, actionID, payload)
	return args.Get(0).(core.Output)
}

// ExecuteAction implements core.Executor.
func (m *MockExecutor) ExecuteAction(ctx context.Context, action core.Action) core.Output {
	args := m.Called(ctx, action)
	return args.Get(0).(core.Output)
}

// JSON marshals v and panics on failure. It keeps table tests terse.
func JSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
