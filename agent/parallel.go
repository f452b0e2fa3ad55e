package agent

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hupe1980/agentswarm/core"
)

// MsgTimeout is returned by Parallel when its steps exceed the timeout.
const MsgTimeout = "Timeout"

// Parallel runs a fixed list of action ids concurrently, each with the
// payload of the incoming action.
//
// The success payload is an object mapping every step id to its payload.
// When any step fails, the failure of the first failing step in declaration
// order is returned as "<step>: <message>". A zero timeout waits for all
// steps; otherwise Failure("Timeout") is returned once it elapses.
type Parallel struct {
	BaseAgent
	steps   []string
	timeout time.Duration
}

// NewParallel creates a parallel workflow over steps.
func NewParallel(timeout time.Duration, steps ...string) *Parallel {
	cp := make([]string, len(steps))
	copy(cp, steps)
	return &Parallel{
		BaseAgent: NewBaseAgent("Parallel"),
		steps:     cp,
		timeout:   timeout,
	}
}

// Execute implements core.Agent.
func (p *Parallel) Execute(ctx context.Context, action core.Action, ex core.Executor) core.Output {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	payload := action.Payload()
	results := make([]core.Output, len(p.steps))

	var wg sync.WaitGroup
	for i, step := range p.steps {
		wg.Add(1)
		go func(i int, step string) {
			defer wg.Done()
			results[i] = ex.Execute(ctx, step, payload)
		}(i, step)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.Logger().Warn("Parallel steps did not finish", "steps", len(p.steps), "error", ctx.Err())
		if p.timeout > 0 {
			return core.Failure(MsgTimeout)
		}
		return core.Failure(MsgCancelled)
	}

	merged := make(map[string]json.RawMessage, len(p.steps))
	for i, step := range p.steps {
		out := results[i]
		if !out.IsSuccess() {
			return core.Failuref("%s: %s", step, out.ErrorMessage())
		}
		merged[step] = out.Payload()
	}

	return core.Success(merged)
}

// Describe implements core.Describer.
func (p *Parallel) Describe() core.AgentInfo {
	return p.info("parallel", []core.OperationInfo{{Name: core.DefaultOperation, Kind: core.OperationWorkflow}})
}
