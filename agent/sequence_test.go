package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/testutil"
	"github.com/hupe1980/agentswarm/swarm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func incrementer() core.Agent {
	return Func(func(_ context.Context, action core.Action, _ core.Executor) core.Output {
		n, err := core.DecodePayload[int](action)
		if err != nil {
			return core.Failure(core.MsgInvalidPayload)
		}
		return core.Success(n + 1)
	})
}

func sleeper(d time.Duration) core.Agent {
	return Func(func(ctx context.Context, action core.Action, _ core.Executor) core.Output {
		select {
		case <-time.After(d):
			return core.Success(action.Payload())
		case <-ctx.Done():
			return core.Failure("cancelled")
		}
	})
}

func TestSequence_PipesPayloads(t *testing.T) {
	sw := swarm.New()
	sw.Register("Inc", incrementer())
	sw.Register("Pipeline", NewSequence("Inc.run", "Inc.run", "Inc.run"))

	out := sw.Execute(context.Background(), "Pipeline.run", 1)

	require.True(t, out.IsSuccess(), out.ErrorMessage())
	assert.Equal(t, "Pipeline", out.AgentID())
	n, err := core.DecodeOutput[int](out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestSequence_StopsAtFirstError(t *testing.T) {
	rec := &testutil.RecordingAgent{}
	sw := swarm.New()
	sw.Register("Inc", incrementer())
	sw.Register("Fail", testutil.FailAgent{Message: "step failed"})
	sw.Register("Rec", rec)
	sw.Register("Pipeline", NewSequence("Inc.run", "Fail.run", "Rec.run"))

	out := sw.Execute(context.Background(), "Pipeline.run", 1)

	assert.Equal(t, "Pipeline", out.AgentID())
	assert.Equal(t, "step failed", out.ErrorMessage())
	assert.Empty(t, rec.Actions())
}

func TestSequence_Empty(t *testing.T) {
	sw := swarm.New()
	sw.Register("Noop", NewSequence())

	out := sw.Execute(context.Background(), "Noop", "same")

	s, err := core.DecodeOutput[string](out)
	require.NoError(t, err)
	assert.Equal(t, "same", s)
}

func TestSequence_Cancelled(t *testing.T) {
	sw := swarm.New()
	sw.Register("Inc", incrementer())
	sw.Register("Pipeline", NewSequence("Inc.run"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := sw.Execute(ctx, "Pipeline.run", 1)
	assert.Equal(t, MsgCancelled, out.ErrorMessage())
}

func TestParallel_MergesResults(t *testing.T) {
	sw := swarm.New()
	sw.Register("Inc", incrementer())
	sw.Register("Echo", testutil.EchoAgent{})
	sw.Register("Fan", NewParallel(time.Second, "Inc.run", "Echo.run"))

	out := sw.Execute(context.Background(), "Fan.run", 41)

	require.True(t, out.IsSuccess(), out.ErrorMessage())
	merged, err := core.DecodeOutput[map[string]json.RawMessage](out)
	require.NoError(t, err)
	assert.JSONEq(t, "42", string(merged["Inc.run"]))
	assert.JSONEq(t, "41", string(merged["Echo.run"]))
}

func TestParallel_FirstFailureInDeclarationOrder(t *testing.T) {
	sw := swarm.New()
	sw.Register("Echo", testutil.EchoAgent{})
	sw.Register("FailA", testutil.FailAgent{Message: "a broke"})
	sw.Register("FailB", testutil.FailAgent{Message: "b broke"})
	sw.Register("Fan", NewParallel(0, "Echo.run", "FailB.run", "FailA.run"))

	out := sw.Execute(context.Background(), "Fan.run", nil)

	assert.Equal(t, "FailB.run: b broke", out.ErrorMessage())
}

func TestParallel_Timeout(t *testing.T) {
	sw := swarm.New()
	sw.Register("Slow", sleeper(time.Second))
	sw.Register("Fan", NewParallel(20*time.Millisecond, "Slow.run"))

	out := sw.Execute(context.Background(), "Fan.run", nil)

	assert.Equal(t, MsgTimeout, out.ErrorMessage())
}

func TestComposite_Describe(t *testing.T) {
	seq := NewSequence("a.b")
	seq.SetDescription("pipeline")

	info := seq.Describe()
	assert.Equal(t, "sequence", info.Type)
	assert.Equal(t, "pipeline", info.Description)
	assert.Equal(t, []string{"a.b"}, seq.Steps())
	assert.Equal(t, "parallel", NewParallel(0).Describe().Type)
}
