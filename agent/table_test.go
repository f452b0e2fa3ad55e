package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/testutil"
	"github.com/hupe1980/agentswarm/swarm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calcParams struct {
	A int `json:"a"`
	B int `json:"b"`
}

type calc struct {
	calls int
}

func (c *calc) add(_ context.Context, p calcParams) (int, error) {
	c.calls++
	return p.A + p.B, nil
}

type scaleParams struct {
	calcParams
	Factor int `json:"factor"`
}

func (c *calc) scale(_ context.Context, p scaleParams) (int, error) {
	c.calls++
	return (p.A + p.B) * p.Factor, nil
}

func (c *calc) div(_ context.Context, p calcParams) (int, error) {
	if p.B == 0 {
		return 0, errors.New("Division by zero")
	}
	return p.A / p.B, nil
}

// double asks the swarm to add the operand to itself.
func (c *calc) double(ctx context.Context, n int, ex core.Executor) (int, error) {
	out := ex.Execute(ctx, "Calc.add", calcParams{A: n, B: n})
	if err := out.Err(); err != nil {
		return 0, err
	}
	return core.DecodeOutput[int](out)
}

func (c *calc) raw(_ context.Context, action core.Action, _ core.Executor) core.Output {
	return core.Success(action.ID())
}

var calcTable = func() *Table[*calc] {
	t := NewTable[*calc]()
	HandleAction(t, "add", (*calc).add)
	HandleAction(t, "div", (*calc).div)
	HandleAction(t, "scale", (*calc).scale)
	HandleWorkflow(t, "double", (*calc).double)
	HandleRaw(t, "raw.echo", (*calc).raw)
	return t
}()

func (c *calc) Execute(ctx context.Context, action core.Action, ex core.Executor) core.Output {
	return calcTable.Dispatch(ctx, c, action, ex)
}

func newCalcSwarm() (*swarm.Swarm, *calc) {
	c := &calc{}
	sw := swarm.New()
	sw.Register("Calc", c)
	return sw, c
}

func TestTable_DispatchAction(t *testing.T) {
	sw, _ := newCalcSwarm()

	out := sw.Execute(context.Background(), "Calc.add", calcParams{A: 2, B: 3})

	require.True(t, out.IsSuccess(), out.ErrorMessage())
	assert.Equal(t, "Calc", out.AgentID())
	n, err := core.DecodeOutput[int](out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestTable_UnknownOperation(t *testing.T) {
	sw, _ := newCalcSwarm()

	out := sw.Execute(context.Background(), "Calc.mul", calcParams{A: 2, B: 3})

	assert.Equal(t, "Calc", out.AgentID())
	assert.Equal(t, core.MsgUnknownAction, out.ErrorMessage())

	out = sw.Execute(context.Background(), "Calc", calcParams{})
	assert.Equal(t, core.MsgUnknownAction, out.ErrorMessage(), "no separator routes to the default operation")
}

func TestTable_PayloadErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload any
	}{
		{"wrong field type", map[string]any{"a": "x", "b": 2}},
		{"missing field", map[string]any{"a": 1}},
		{"null field", map[string]any{"a": nil, "b": 2}},
		{"null", nil},
		{"not an object", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw, c := newCalcSwarm()

			out := sw.Execute(context.Background(), "Calc.add", tt.payload)

			assert.Equal(t, "Calc", out.AgentID())
			assert.Equal(t, core.MsgUnableToGetPayload, out.ErrorMessage())
			assert.Zero(t, c.calls, "handler must not run")
		})
	}
}

func TestTable_EmbeddedStructInput(t *testing.T) {
	sw, c := newCalcSwarm()

	out := sw.Execute(context.Background(), "Calc.scale", map[string]any{"a": 1, "b": 2, "factor": 3})

	require.True(t, out.IsSuccess(), out.ErrorMessage())
	n, err := core.DecodeOutput[int](out)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, 1, c.calls)

	out = sw.Execute(context.Background(), "Calc.scale", map[string]any{"a": 1, "factor": 3})
	assert.Equal(t, core.MsgUnableToGetPayload, out.ErrorMessage(), "promoted fields stay required")
}

func TestTable_HandlerErrorVerbatim(t *testing.T) {
	sw, _ := newCalcSwarm()

	out := sw.Execute(context.Background(), "Calc.div", calcParams{A: 1, B: 0})

	assert.Equal(t, core.StatusError, out.Status())
	assert.Equal(t, "Division by zero", out.ErrorMessage())
}

func TestTable_Workflow(t *testing.T) {
	sw, c := newCalcSwarm()

	out := sw.Execute(context.Background(), "Calc.double", 21)

	require.True(t, out.IsSuccess(), out.ErrorMessage())
	n, err := core.DecodeOutput[int](out)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
	assert.Equal(t, 1, c.calls)
}

func TestTable_WorkflowPropagatesNestedErrorMessage(t *testing.T) {
	c := &calc{}
	ex := &testutil.MockExecutor{}
	ex.On("Execute", context.Background(), "Calc.add", calcParams{A: 1, B: 1}).
		Return(core.Failure("Agent Not Found")).Once()

	out := calcTable.Dispatch(context.Background(), c, core.NewAction("Calc.double", 1), ex)

	assert.Equal(t, "Agent Not Found", out.ErrorMessage())
	ex.AssertExpectations(t)
}

func TestTable_RawOperationWithDottedName(t *testing.T) {
	sw, _ := newCalcSwarm()

	out := sw.Execute(context.Background(), "Calc.raw.echo", nil)

	require.True(t, out.IsSuccess())
	id, err := core.DecodeOutput[string](out)
	require.NoError(t, err)
	assert.Equal(t, "Calc.raw.echo", id)
}

func TestTable_Operations(t *testing.T) {
	ops := calcTable.Operations()

	require.Len(t, ops, 5)
	assert.Equal(t, "add", ops[0].Name)
	assert.Equal(t, core.OperationAction, ops[0].Kind)
	assert.ElementsMatch(t, []string{"a", "b"}, ops[0].InputSchema["required"])
	assert.Equal(t, "double", ops[2].Name)
	assert.Equal(t, core.OperationWorkflow, ops[2].Kind)
	assert.Equal(t, core.OperationRaw, ops[3].Kind)
	assert.Equal(t, "scale", ops[4].Name)
	assert.True(t, calcTable.Has("div"))
	assert.False(t, calcTable.Has("mul"))
}

func TestTable_RegistrationPanics(t *testing.T) {
	tbl := NewTable[*calc]()
	HandleAction(tbl, "add", (*calc).add)

	assert.Panics(t, func() { HandleAction(tbl, "add", (*calc).add) })
	assert.Panics(t, func() { HandleAction(tbl, "", (*calc).add) })
}

func TestTable_SharedAcrossInstances(t *testing.T) {
	sw := swarm.New()
	first, second := &calc{}, &calc{}
	sw.Register("C1", first)
	sw.Register("C2", second)

	sw.Execute(context.Background(), "C1.add", calcParams{A: 1, B: 1})
	sw.Execute(context.Background(), "C2.add", calcParams{A: 1, B: 1})
	sw.Execute(context.Background(), "C2.add", calcParams{A: 1, B: 1})

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 2, second.calls)
}

func TestTable_Bind(t *testing.T) {
	type greeter struct{ greeting string }
	tbl := NewTable[greeter]()
	HandleAction(tbl, "greet", func(g greeter, _ context.Context, name string) (string, error) {
		return g.greeting + ", " + name, nil
	})

	sw := swarm.New()
	sw.Register("Hello", tbl.Bind(greeter{greeting: "Hello"}))

	out := sw.Execute(context.Background(), "Hello.greet", "Ada")
	s, err := core.DecodeOutput[string](out)
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada", s)

	infos := sw.Describe()
	require.Len(t, infos, 1)
	assert.Equal(t, "greet", infos[0].Operations[0].Name)
}

func TestFunc(t *testing.T) {
	sw := swarm.New()
	sw.Register("Upper", Func(func(_ context.Context, action core.Action, _ core.Executor) core.Output {
		return core.Success(action.Operation())
	}))

	out := sw.Execute(context.Background(), "Upper.shout", nil)
	s, err := core.DecodeOutput[string](out)
	require.NoError(t, err)
	assert.Equal(t, "shout", s)
	assert.Equal(t, "Upper", out.AgentID())
}
