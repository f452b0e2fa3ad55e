package agentswarm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentswarm/a2a"
	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/auth"
	"github.com/hupe1980/agentswarm/config"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/testutil"
	"github.com/hupe1980/agentswarm/model"
	"github.com/hupe1980/agentswarm/swarm"
)

func mockFactory(models map[string]*model.MockModel) func(agent.ModelAgentConfig) (model.Model, error) {
	return func(def agent.ModelAgentConfig) (model.Model, error) {
		return models[def.ID], nil
	}
}

func TestBuild_RegistersConfiguredAgents(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Enabled = true
	cfg.Auth.ServerSecret = "s3cret"
	cfg.LLMAgents = []agent.ModelAgentConfig{{
		ID:    "Summarizer",
		Model: "mock",
		Operations: map[string]agent.ModelOperation{
			"summarize": {Role: "editor", Goal: "summarize", OutputRules: "short"},
		},
	}}
	cfg.SearchAgents = []agent.SearchAgentConfig{{ID: "Web", Endpoint: "http://localhost:1"}}
	cfg.Workflows = []config.WorkflowConfig{
		{ID: "Pipeline", Kind: "sequence", Steps: []string{"Summarizer.summarize"}},
		{ID: "Fanout", Kind: "parallel", Steps: []string{"Summarizer.summarize"}, Timeout: time.Second},
	}

	mm := model.NewMockModel("mock")
	mm.AddResponse("a long text", "short summary")

	sw, err := Build(context.Background(), &cfg, func(o *Options) {
		o.ModelFactory = mockFactory(map[string]*model.MockModel{"Summarizer": mm})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Auth", "Fanout", "Pipeline", "Summarizer", "Web"}, sw.IDs())

	_, err = swarm.Lookup[*auth.Agent](sw, "Auth")
	assert.NoError(t, err)

	out := sw.Execute(context.Background(), "Pipeline", "a long text")
	require.True(t, out.IsSuccess(), out.ErrorMessage())
	assert.JSONEq(t, `"short summary"`, string(out.Payload()))
	assert.Equal(t, "Pipeline", out.AgentID())
}

func TestBuild_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Enabled = true

	_, err := Build(context.Background(), &cfg)
	assert.ErrorContains(t, err, "invalid config")
}

func TestBuild_RemoteAgent(t *testing.T) {
	backend := swarm.New()
	backend.Register("Echo", testutil.EchoAgent{})
	srv := httptest.NewServer(a2a.NewHandler(backend))
	defer srv.Close()

	cfg := config.Default()
	cfg.RemoteAgents = []config.RemoteAgentConfig{{ID: "Echo", URL: srv.URL}}

	sw, err := Build(context.Background(), &cfg)
	require.NoError(t, err)

	out := sw.Execute(context.Background(), "Echo", "ping")
	require.True(t, out.IsSuccess(), out.ErrorMessage())
	assert.JSONEq(t, `"ping"`, string(out.Payload()))
}

func TestNewModel(t *testing.T) {
	m, err := NewModel(agent.ModelAgentConfig{Model: "gpt-4o-mini", APIKey: "k", Endpoint: "http://localhost/v1/chat/completions"})
	require.NoError(t, err)
	assert.Equal(t, "openai", m.Info().Provider)
	assert.Equal(t, "gpt-4o-mini", m.Info().Name)

	m, err = NewModel(agent.ModelAgentConfig{Provider: "anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", m.Info().Provider)

	_, err = NewModel(agent.ModelAgentConfig{Provider: "gemini"})
	assert.ErrorContains(t, err, `unknown provider "gemini"`)
}

func TestNewServer(t *testing.T) {
	cfg := config.Default()
	cfg.Server.EnableA2A = true

	sw := swarm.New()
	sw.Register("Echo", testutil.EchoAgent{})

	srv := httptest.NewServer(NewServer(sw, &cfg, nil).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/action", "application/json", strings.NewReader(`{"id":"Echo","payload":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	card, err := http.Get(srv.URL + "/.well-known/agent.json")
	require.NoError(t, err)
	defer card.Body.Close()
	assert.Equal(t, http.StatusOK, card.StatusCode)
}

var _ core.Agent = (*a2a.RemoteAgent)(nil)
