package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdka2a "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// MetadataAction is the message metadata key naming the action of a text
// message.
const MetadataAction = "action"

// ErrNoAction is returned when a message does not name an action.
var ErrNoAction = errors.New("message carries no action")

// Options configures the executor.
type Options struct {
	Logger logging.Logger
}

// Executor runs A2A requests as swarm actions.
type Executor struct {
	exec   core.Executor
	logger logging.Logger
}

var _ a2asrv.AgentExecutor = (*Executor)(nil)

// NewExecutor creates an A2A executor over exec.
func NewExecutor(exec core.Executor, optFns ...func(o *Options)) *Executor {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	opts.Logger = logging.ForComponent(opts.Logger, "a2a")

	return &Executor{exec: exec, logger: opts.Logger}
}

// Execute implements a2asrv.AgentExecutor.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	action, err := ActionFromMessage(reqCtx.Message)
	if err != nil {
		return e.writeFinal(ctx, reqCtx, queue, core.Failure(core.MsgInvalidPayload))
	}

	if reqCtx.StoredTask == nil {
		event := sdka2a.NewStatusUpdateEvent(reqCtx, sdka2a.TaskStateSubmitted, nil)
		if err := queue.Write(ctx, event); err != nil {
			return fmt.Errorf("failed to write state submitted: %w", err)
		}
	}

	event := sdka2a.NewStatusUpdateEvent(reqCtx, sdka2a.TaskStateWorking, nil)
	if err := queue.Write(ctx, event); err != nil {
		return fmt.Errorf("failed to write state working: %w", err)
	}

	e.logger.Debug("A2A action", "action_id", action.ID(), "task_id", string(reqCtx.TaskID))

	return e.writeFinal(ctx, reqCtx, queue, e.exec.ExecuteAction(ctx, action))
}

// Cancel implements a2asrv.AgentExecutor. Actions run to completion, so
// cancelling only closes the task.
func (e *Executor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	event := sdka2a.NewStatusUpdateEvent(reqCtx, sdka2a.TaskStateCanceled, nil)
	event.Final = true
	if err := queue.Write(ctx, event); err != nil {
		return fmt.Errorf("failed to write state canceled: %w", err)
	}

	return nil
}

func (e *Executor) writeFinal(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue, out core.Output) error {
	msg, err := OutputMessage(out)
	if err != nil {
		return err
	}
	msg.TaskID = reqCtx.TaskID
	msg.ContextID = reqCtx.ContextID

	state := sdka2a.TaskStateCompleted
	if !out.IsSuccess() {
		state = sdka2a.TaskStateFailed
	}

	event := sdka2a.NewStatusUpdateEvent(reqCtx, state, msg)
	event.Final = true
	if err := queue.Write(ctx, event); err != nil {
		return fmt.Errorf("failed to write state %s: %w", state, err)
	}

	return nil
}

// ActionFromMessage extracts the action carried by msg.
func ActionFromMessage(msg *sdka2a.Message) (core.Action, error) {
	if msg == nil {
		return core.Action{}, ErrNoAction
	}

	var texts []string
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case *sdka2a.DataPart:
			if _, ok := p.Data["id"]; !ok {
				continue
			}
			raw, err := json.Marshal(p.Data)
			if err != nil {
				return core.Action{}, err
			}
			var action core.Action
			if err := json.Unmarshal(raw, &action); err != nil {
				return core.Action{}, err
			}
			return action, nil
		case *sdka2a.TextPart:
			texts = append(texts, p.Text)
		}
	}

	id, _ := msg.Metadata[MetadataAction].(string)
	if id == "" || len(texts) == 0 {
		return core.Action{}, ErrNoAction
	}

	return core.NewAction(id, strings.Join(texts, "\n")), nil
}

// ActionMessage wraps action in a user message with a single data part.
func ActionMessage(action core.Action) (*sdka2a.Message, error) {
	data, err := toMap(action)
	if err != nil {
		return nil, err
	}

	return sdka2a.NewMessage(sdka2a.MessageRoleUser, &sdka2a.DataPart{Data: data}), nil
}

// OutputMessage wraps out in an agent message with a single data part.
func OutputMessage(out core.Output) (*sdka2a.Message, error) {
	data, err := toMap(out)
	if err != nil {
		return nil, err
	}

	return sdka2a.NewMessage(sdka2a.MessageRoleAgent, &sdka2a.DataPart{Data: data}), nil
}

// OutputFromMessage decodes the Output carried by msg.
func OutputFromMessage(msg *sdka2a.Message) (core.Output, bool) {
	if msg == nil {
		return core.Output{}, false
	}

	for _, part := range msg.Parts {
		p, ok := part.(*sdka2a.DataPart)
		if !ok {
			continue
		}
		if _, ok := p.Data["status"]; !ok {
			continue
		}
		raw, err := json.Marshal(p.Data)
		if err != nil {
			continue
		}
		var out core.Output
		if err := json.Unmarshal(raw, &out); err != nil {
			continue
		}
		return out, true
	}

	return core.Output{}, false
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
