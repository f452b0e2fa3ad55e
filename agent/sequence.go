package agent

import (
	"context"

	"github.com/hupe1980/agentswarm/core"
)

// MsgCancelled is returned by composite agents whose context ended before
// all steps ran.
const MsgCancelled = "Cancelled"

// Sequence runs a fixed list of action ids one after another, feeding the
// payload of each successful output into the next step. The first payload
// is the payload of the incoming action.
//
// Key features:
//   - Ordered execution with payload propagation
//   - Early termination on the first Error output, which is returned as is
//   - Works with any operation name; the routed operation is ignored
//
// Sequence is ideal for pipelines such as search followed by summary.
type Sequence struct {
	BaseAgent
	steps []string
}

// NewSequence creates a sequential workflow over steps.
func NewSequence(steps ...string) *Sequence {
	cp := make([]string, len(steps))
	copy(cp, steps)
	return &Sequence{
		BaseAgent: NewBaseAgent("Sequence"),
		steps:     cp,
	}
}

// Steps returns a copy of the configured action ids.
func (s *Sequence) Steps() []string {
	cp := make([]string, len(s.steps))
	copy(cp, s.steps)
	return cp
}

// Execute implements core.Agent.
func (s *Sequence) Execute(ctx context.Context, action core.Action, ex core.Executor) core.Output {
	payload := action.Payload()

	for i, step := range s.steps {
		if ctx.Err() != nil {
			s.Logger().Warn("Sequence cancelled", "step", step, "index", i, "error", ctx.Err())
			return core.Failure(MsgCancelled)
		}

		out := ex.Execute(ctx, step, payload)
		if !out.IsSuccess() {
			s.Logger().Debug("Sequence stopped", "step", step, "index", i, "error", out.ErrorMessage())
			return out
		}
		payload = out.Payload()
	}

	return core.Success(payload)
}

// Describe implements core.Describer.
func (s *Sequence) Describe() core.AgentInfo {
	return s.info("sequence", []core.OperationInfo{{Name: core.DefaultOperation, Kind: core.OperationWorkflow}})
}
