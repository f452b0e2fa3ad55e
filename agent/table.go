package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/util"
)

// Table is the dispatch table of an agent type A. It maps operation names to
// handlers that decode the payload, invoke a method-like function on the
// receiver and wrap the result in an Output.
//
// A Table is populated once, typically in a package-level variable
// initializer, and is read-only afterwards. All instances of A share it.
//
// Example:
//
//	var calcTable = func() *agent.Table[*Calc] {
//	    t := agent.NewTable[*Calc]()
//	    agent.HandleAction(t, "add", (*Calc).Add)
//	    return t
//	}()
//
//	func (c *Calc) Execute(ctx context.Context, a core.Action, ex core.Executor) core.Output {
//	    return calcTable.Dispatch(ctx, c, a, ex)
//	}
type Table[A any] struct {
	handlers map[string]handler[A]
}

type handler[A any] struct {
	info core.OperationInfo
	call func(recv A, ctx context.Context, action core.Action, ex core.Executor) core.Output
}

// NewTable returns an empty dispatch table.
func NewTable[A any]() *Table[A] {
	return &Table[A]{handlers: make(map[string]handler[A])}
}

// HandleAction registers an operation whose handler needs only the decoded
// payload.
func HandleAction[A, In, Out any](t *Table[A], name string, fn func(A, context.Context, In) (Out, error)) {
	dec := newDecoder[In]()
	t.add(name, core.OperationAction, dec.schema, func(recv A, ctx context.Context, action core.Action, _ core.Executor) core.Output {
		in, err := dec.decode(action)
		if err != nil {
			return core.Failure(core.MsgUnableToGetPayload)
		}
		out, err := fn(recv, ctx, in)
		if err != nil {
			return failure(err)
		}
		return core.Success(out)
	})
}

// HandleWorkflow registers an operation whose handler also receives the
// Executor so it can dispatch further actions.
func HandleWorkflow[A, In, Out any](t *Table[A], name string, fn func(A, context.Context, In, core.Executor) (Out, error)) {
	dec := newDecoder[In]()
	t.add(name, core.OperationWorkflow, dec.schema, func(recv A, ctx context.Context, action core.Action, ex core.Executor) core.Output {
		in, err := dec.decode(action)
		if err != nil {
			return core.Failure(core.MsgUnableToGetPayload)
		}
		out, err := fn(recv, ctx, in, ex)
		if err != nil {
			return failure(err)
		}
		return core.Success(out)
	})
}

// HandleRaw registers an operation that works on the undecoded Action and
// builds its own Output.
func HandleRaw[A any](t *Table[A], name string, fn func(A, context.Context, core.Action, core.Executor) core.Output) {
	t.add(name, core.OperationRaw, nil, fn)
}

func (t *Table[A]) add(name string, kind core.OperationKind, schema map[string]any, call func(A, context.Context, core.Action, core.Executor) core.Output) {
	if name == "" {
		panic("agent: empty operation name")
	}
	if call == nil {
		panic("agent: nil handler for operation " + name)
	}
	if _, exists := t.handlers[name]; exists {
		panic("agent: duplicate operation " + name)
	}
	t.handlers[name] = handler[A]{
		info: core.OperationInfo{Name: name, Kind: kind, InputSchema: schema},
		call: call,
	}
}

// Dispatch routes action to the handler registered for its operation.
//
//   - Unknown operation: Failure("Unknown action")
//   - Payload not decodable into the handler input: Failure("Unable to get payload")
//   - Handler error: Failure(err.Error())
//   - Otherwise: Success(result)
func (t *Table[A]) Dispatch(ctx context.Context, recv A, action core.Action, ex core.Executor) core.Output {
	h, ok := t.handlers[action.Operation()]
	if !ok {
		return core.Failure(core.MsgUnknownAction)
	}
	return h.call(recv, ctx, action, ex)
}

// Has reports whether an operation is registered.
func (t *Table[A]) Has(name string) bool {
	_, ok := t.handlers[name]
	return ok
}

// Operations lists the registered operations sorted by name.
func (t *Table[A]) Operations() []core.OperationInfo {
	ops := make([]core.OperationInfo, 0, len(t.handlers))
	for _, h := range t.handlers {
		ops = append(ops, h.info)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// Bind returns a core.Agent that dispatches to recv through t.
func (t *Table[A]) Bind(recv A) core.Agent {
	return boundAgent[A]{table: t, recv: recv}
}

type boundAgent[A any] struct {
	table *Table[A]
	recv  A
}

func (b boundAgent[A]) Execute(ctx context.Context, action core.Action, ex core.Executor) core.Output {
	return b.table.Dispatch(ctx, b.recv, action, ex)
}

func (b boundAgent[A]) Describe() core.AgentInfo {
	return core.AgentInfo{Type: fmt.Sprintf("%T", b.recv), Operations: b.table.Operations()}
}

// decoder turns an action payload into In. Struct inputs are checked for
// their required fields first, so a payload missing a non-optional field is
// rejected instead of silently zero-filled.
type decoder[In any] struct {
	schema   map[string]any
	required bool
}

func newDecoder[In any]() decoder[In] {
	typ := reflect.TypeFor[In]()
	if typ == reflect.TypeFor[json.RawMessage]() || typ.Kind() == reflect.Interface {
		return decoder[In]{}
	}
	schema := util.SchemaForType(typ)
	_, hasRequired := schema["required"]
	return decoder[In]{
		schema:   schema,
		required: typ.Kind() == reflect.Struct && hasRequired,
	}
}

func (d decoder[In]) decode(action core.Action) (In, error) {
	var in In
	if d.required {
		if err := util.ValidateJSON(action.Payload(), d.schema); err != nil {
			return in, &core.PayloadDecodeError{Target: fmt.Sprintf("%T", in), Cause: err}
		}
	}
	if err := action.Decode(&in); err != nil {
		return in, err
	}
	return in, nil
}

func failure(err error) core.Output {
	var agentErr *core.AgentError
	if errors.As(err, &agentErr) {
		return core.Failure(agentErr.Message)
	}
	return core.Failure(err.Error())
}
