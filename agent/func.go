package agent

import (
	"context"

	"github.com/hupe1980/agentswarm/core"
)

// Func adapts an ordinary function to core.Agent.
type Func func(ctx context.Context, action core.Action, ex core.Executor) core.Output

// Execute implements core.Agent.
func (f Func) Execute(ctx context.Context, action core.Action, ex core.Executor) core.Output {
	return f(ctx, action, ex)
}
