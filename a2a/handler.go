package a2a

import (
	"net/http"
	"strings"

	sdka2a "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"

	"github.com/hupe1980/agentswarm/core"
)

// NewHandler returns the A2A JSON-RPC handler serving exec.
func NewHandler(exec core.Executor, optFns ...func(o *Options)) http.Handler {
	return a2asrv.NewJSONRPCHandler(a2asrv.NewHandler(NewExecutor(exec, optFns...)))
}

// AgentCard describes a swarm as a single A2A agent whose skills are the
// operations of the registered agents. url is the JSON-RPC endpoint.
func AgentCard(name, url string, infos []core.AgentInfo) *sdka2a.AgentCard {
	var skills []sdka2a.AgentSkill
	for _, info := range infos {
		for _, op := range info.Operations {
			id := info.ID + "." + op.Name
			skills = append(skills, sdka2a.AgentSkill{
				ID:          id,
				Name:        id,
				Description: strings.TrimSpace(info.Description),
				Tags:        []string{info.Type, string(op.Kind)},
				InputModes:  []string{"application/json"},
				OutputModes: []string{"application/json"},
			})
		}
	}

	return &sdka2a.AgentCard{
		Name:               name,
		Description:        "Agent swarm dispatching actions by id",
		URL:                url,
		Version:            "1.0.0",
		ProtocolVersion:    "1.0",
		PreferredTransport: sdka2a.TransportProtocolJSONRPC,
		Capabilities: sdka2a.AgentCapabilities{
			StateTransitionHistory: true,
		},
		Skills:             skills,
		DefaultInputModes:  []string{"application/json", "text/plain"},
		DefaultOutputModes: []string{"application/json"},
	}
}
