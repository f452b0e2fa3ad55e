// Package agentswarm assembles a swarm host from configuration. Most
// applications:
//  1. Load a config.Config (config.Load)
//  2. Build the swarm with Build, which registers every configured agent
//  3. Serve it with NewServer or execute actions directly on the swarm
package agentswarm

import (
	"context"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentswarm/a2a"
	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/auth"
	"github.com/hupe1980/agentswarm/config"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
	"github.com/hupe1980/agentswarm/model/anthropic"
	"github.com/hupe1980/agentswarm/model/openai"
	"github.com/hupe1980/agentswarm/swarm"
	"github.com/hupe1980/agentswarm/web"
)

// Options configures Build.
type Options struct {
	// Logger is shared by the swarm and every agent. Defaults to NoOpLogger.
	Logger logging.Logger
	// ModelFactory creates the model behind an LLM agent. Defaults to
	// NewModel.
	ModelFactory func(cfg agent.ModelAgentConfig) (model.Model, error)
}

// Build creates a swarm holding every agent named in cfg.
func Build(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*swarm.Swarm, error) {
	opts := Options{
		Logger:       logging.NoOpLogger{},
		ModelFactory: NewModel,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sw := swarm.New(func(o *swarm.Options) { o.Logger = opts.Logger })

	if cfg.Auth.Enabled {
		sw.Register(cfg.Auth.ID, auth.New(cfg.Auth.AgentConfig(), func(o *auth.Options) {
			o.Logger = opts.Logger
		}))
	}

	for _, def := range cfg.LLMAgents {
		m, err := opts.ModelFactory(def)
		if err != nil {
			return nil, fmt.Errorf("llm agent %q: %w", def.ID, err)
		}
		sw.Register(def.ID, agent.NewModelAgent(m, def.Operations, func(o *agent.ModelAgentOptions) {
			o.Description = "LLM agent " + def.ID + " (" + def.Model + ")"
			o.Logger = opts.Logger
		}))
	}

	for _, def := range cfg.SearchAgents {
		sw.Register(def.ID, agent.NewSearchAgentFromConfig(def, opts.Logger))
	}

	for _, def := range cfg.RemoteAgents {
		remote, err := a2a.NewRemoteAgent(ctx, def.URL, func(o *a2a.Options) { o.Logger = opts.Logger })
		if err != nil {
			return nil, fmt.Errorf("remote agent %q: %w", def.ID, err)
		}
		sw.Register(def.ID, remote)
	}

	for _, def := range cfg.Workflows {
		switch def.Kind {
		case "sequence":
			seq := agent.NewSequence(def.Steps...)
			seq.SetLogger(opts.Logger)
			sw.Register(def.ID, seq)
		case "parallel":
			par := agent.NewParallel(def.Timeout, def.Steps...)
			par.SetLogger(opts.Logger)
			sw.Register(def.ID, par)
		}
	}

	opts.Logger.Info("Swarm built", "agents", sw.IDs())

	return sw, nil
}

// NewModel creates the chat model for an LLM agent definition. Endpoints
// may be given as full request URLs; the request path is stripped.
func NewModel(cfg agent.ModelAgentConfig) (model.Model, error) {
	switch cfg.Provider {
	case "", "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/chat/completions")
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			o.APIKey = cfg.APIKey
			o.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/v1/messages")
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// NewServer creates the HTTP host for sw from cfg.Server.
func NewServer(sw *swarm.Swarm, cfg *config.Config, logger logging.Logger) *web.Server {
	return web.New(sw, func(o *web.Options) {
		o.Address = cfg.Server.Address
		o.UIDir = cfg.Server.UIDir
		o.ResourcesDir = cfg.Server.ResourcesDir
		o.ReadTimeout = cfg.Server.ReadTimeout
		o.WriteTimeout = cfg.Server.WriteTimeout
		o.MaxBodySize = cfg.Server.MaxBodySize
		o.AuthAgentID = cfg.Auth.ID
		o.Logger = logger

		if cfg.Server.EnableA2A {
			o.A2A = a2a.NewHandler(sw, func(o *a2a.Options) { o.Logger = logger })
			o.AgentCard = a2a.AgentCard("agentswarm", publicURL(cfg.Server.Address)+"/a2a", sw.Describe())
		}
	})
}

func publicURL(address string) string {
	if strings.HasPrefix(address, ":") {
		address = "localhost" + address
	}
	return "http://" + address
}
