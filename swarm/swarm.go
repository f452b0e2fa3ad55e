// Package swarm implements the registry that routes Actions to Agents.
//
// A Swarm maps agent ids to Agent instances. Executing an action splits its
// id into agent and operation, looks the agent up and invokes it, handing the
// Swarm itself to the agent so that workflows can dispatch further actions
// while the outer one is still running.
//
// Routing never fails with a Go error: every outcome, including a missing
// agent, is reported as a core.Output.
package swarm

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// MsgAgentPanic is the Error output message returned when an agent panics.
const MsgAgentPanic = "Agent panic"

// Options configures a Swarm using the functional options pattern.
//
// Example:
//
//	sw := swarm.New(func(o *swarm.Options) {
//	    o.Logger = logger
//	})
type Options struct {
	// Logger receives the action log records. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Swarm is the agent registry and router.
//
// Concurrency model:
//   - Register takes the write lock
//   - ExecuteAction takes the read lock only for the lookup and releases it
//     before invoking the agent, so agents may re-enter the Swarm (and even
//     register further agents) without deadlocking
//
// Swarm implements core.Executor.
type Swarm struct {
	logger logging.Logger

	agents map[string]core.Agent // Registered agents by id
	mu     sync.RWMutex          // Protects agents map
}

var _ core.Executor = (*Swarm)(nil)

// New creates an empty Swarm.
func New(optFns ...func(o *Options)) *Swarm {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	opts.Logger = logging.ForComponent(opts.Logger, "swarm")

	return &Swarm{
		logger: opts.Logger,
		agents: make(map[string]core.Agent),
	}
}

// Register stores agent under id. An existing registration under the same id
// is replaced. An empty id or a nil agent is ignored.
func (s *Swarm) Register(id string, agent core.Agent) {
	if id == "" || agent == nil {
		s.logger.Warn("Ignoring invalid agent registration", "agent_id", id, "nil_agent", agent == nil)
		return
	}

	s.mu.Lock()
	_, replaced := s.agents[id]
	s.agents[id] = agent
	s.mu.Unlock()

	s.logger.Debug("Agent registered", "agent_id", id, "agent_type", fmt.Sprintf("%T", agent), "replaced", replaced)
}

// Agent returns the agent registered under id.
func (s *Swarm) Agent(id string) (core.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[id]
	return a, ok
}

// IDs returns the registered agent ids in sorted order.
func (s *Swarm) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.agents))
	for id := range s.agents {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Describe lists every registered agent. Agents implementing core.Describer
// contribute their operations.
func (s *Swarm) Describe() []core.AgentInfo {
	ids := s.IDs()
	infos := make([]core.AgentInfo, 0, len(ids))
	for _, id := range ids {
		a, ok := s.Agent(id)
		if !ok {
			continue
		}
		info := core.AgentInfo{Type: agentType(a)}
		if d, ok := a.(core.Describer); ok {
			info = d.Describe()
			if info.Type == "" {
				info.Type = agentType(a)
			}
		}
		info.ID = id
		infos = append(infos, info)
	}
	return infos
}

// Execute builds an Action from actionID and payload and routes it. The
// request and the resulting output are logged with a shared trace id.
func (s *Swarm) Execute(ctx context.Context, actionID string, payload any) core.Output {
	traceID := uuid.NewString()
	start := time.Now()

	sl, structured := s.logger.(*logging.SwarmLogger)
	if structured {
		sl = sl.WithTrace(traceID)
		sl.Info("Executing action", "action_id", actionID)
	} else {
		s.logger.Info("Executing action", "trace_id", traceID, "action_id", actionID)
	}

	out := s.ExecuteAction(ctx, core.NewAction(actionID, payload))

	if structured {
		sl.LogAction(actionID, out.AgentID(), time.Since(start), out.IsSuccess(), out.ErrorMessage())
		return out
	}

	if out.IsSuccess() {
		s.logger.Info("Action completed", "trace_id", traceID, "action_id", actionID,
			"agent_id", out.AgentID(), "duration", time.Since(start))
	} else {
		s.logger.Warn("Action failed", "trace_id", traceID, "action_id", actionID,
			"agent_id", out.AgentID(), "error", out.ErrorMessage(), "duration", time.Since(start))
	}

	return out
}

// ExecuteAction routes an already built Action.
//
// Steps:
//  1. The agent id is taken from the action id
//  2. The agent is looked up under the read lock
//  3. A miss yields Failure("Agent Not Found") with an empty agent id
//  4. A hit invokes the agent with s as its Executor; the returned output is
//     stamped with the agent id as the final step
//
// A panicking agent is recovered and reported as Failure("Agent panic").
func (s *Swarm) ExecuteAction(ctx context.Context, action core.Action) core.Output {
	agentID := action.Agent()

	a, ok := s.Agent(agentID)
	if !ok {
		s.logger.Debug("Agent not found", "action_id", action.ID(), "agent_id", agentID)
		return core.Failure(core.MsgAgentNotFound)
	}

	return s.invoke(ctx, agentID, a, action).WithAgentID(agentID)
}

func (s *Swarm) invoke(ctx context.Context, agentID string, a core.Agent, action core.Action) (out core.Output) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			if sl, ok := s.logger.(*logging.SwarmLogger); ok {
				sl.ErrorWithStack(err, "Agent panic", "agent_id", agentID, "action_id", action.ID())
			} else {
				s.logger.Error("Agent panic", "agent_id", agentID, "action_id", action.ID(), "error", err)
			}
			out = core.Failure(MsgAgentPanic)
		}
	}()

	return a.Execute(ctx, action, s)
}

// Lookup returns the agent registered under id as concrete type T.
//
// It fails with core.ErrAgentNotFound when nothing is registered under id and
// with core.ErrAgentTypeMismatch when the registered agent is not a T.
func Lookup[T any](s *Swarm, id string) (T, error) {
	var zero T

	a, ok := s.Agent(id)
	if !ok {
		return zero, fmt.Errorf("%w: %s", core.ErrAgentNotFound, id)
	}

	typed, ok := a.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, not %s", core.ErrAgentTypeMismatch, id, a, reflect.TypeFor[T]())
	}

	return typed, nil
}

func agentType(a core.Agent) string {
	return fmt.Sprintf("%T", a)
}
