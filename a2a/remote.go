package a2a

import (
	"context"
	"fmt"

	sdka2a "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2aclient"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// MsgRemoteError is returned when the remote endpoint cannot be reached or
// answers without an Output.
const MsgRemoteError = "Remote agent error"

// RemoteAgent forwards actions to an agent swarm behind an A2A endpoint.
// The forwarded action id is the incoming one, so the remote side needs an
// agent registered under the same id.
type RemoteAgent struct {
	url    string
	client *a2aclient.Client
	logger logging.Logger
}

// NewRemoteAgent connects to the A2A JSON-RPC endpoint at url.
func NewRemoteAgent(ctx context.Context, url string, optFns ...func(o *Options)) (*RemoteAgent, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	opts.Logger = logging.ForComponent(opts.Logger, "a2a")

	client, err := a2aclient.NewFromEndpoints(ctx, []sdka2a.AgentInterface{
		{URL: url, Transport: sdka2a.TransportProtocolJSONRPC},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &RemoteAgent{url: url, client: client, logger: opts.Logger}, nil
}

// URL returns the remote endpoint.
func (a *RemoteAgent) URL() string { return a.url }

// Execute implements core.Agent.
func (a *RemoteAgent) Execute(ctx context.Context, action core.Action, _ core.Executor) core.Output {
	msg, err := ActionMessage(action)
	if err != nil {
		return core.Failure(core.MsgUnableToGetPayload)
	}

	result, err := a.client.SendMessage(ctx, &sdka2a.MessageSendParams{Message: msg})
	if err != nil {
		a.logger.Error("Remote agent execution failed", "url", a.url, "action_id", action.ID(), "error", err)
		return core.Failure(MsgRemoteError)
	}

	var reply *sdka2a.Message
	switch r := result.(type) {
	case *sdka2a.Message:
		reply = r
	case *sdka2a.Task:
		reply = r.Status.Message
	}

	out, ok := OutputFromMessage(reply)
	if !ok {
		a.logger.Warn("Remote agent returned no output", "url", a.url, "action_id", action.ID())
		return core.Failure(MsgRemoteError)
	}

	return out
}
