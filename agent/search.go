package agent

import (
	"context"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/util"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/searx"
)

// MsgSearchError is returned when any search request fails.
const MsgSearchError = "Search Error"

// SearchQuery is the payload accepted by SearchAgent.
type SearchQuery struct {
	Terms string  `json:"terms" description:"search terms"`
	Lang  *string `json:"lang" description:"optional result language"`
}

var searchQuerySchema = util.CreateSchema(SearchQuery{})

// SearchAgentConfig defines a SearchAgent as data.
type SearchAgentConfig struct {
	ID       string   `json:"id" koanf:"id"`
	Endpoint string   `json:"endpoint" koanf:"endpoint"`
	Sites    []string `json:"sites,omitempty" koanf:"sites"`
	Engines  []string `json:"engines,omitempty" koanf:"engines"`
}

// Searcher is the search backend used by SearchAgent. *searx.Client
// implements it.
type Searcher interface {
	Search(ctx context.Context, q searx.Query) (*searx.Response, error)
}

// SearchAgent runs web searches. Every operation name performs the same
// search. With configured sites, one query per site is issued and the
// results are concatenated in site order.
type SearchAgent struct {
	BaseAgent
	searcher Searcher
	sites    []string
	engines  []string
}

// SearchAgentOptions configures a SearchAgent.
type SearchAgentOptions struct {
	Sites   []string
	Engines []string
	Logger  logging.Logger
}

// NewSearchAgent creates a SearchAgent over s.
func NewSearchAgent(s Searcher, optFns ...func(o *SearchAgentOptions)) *SearchAgent {
	opts := SearchAgentOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &SearchAgent{
		BaseAgent: NewBaseAgent("Search"),
		searcher:  s,
		sites:     append([]string(nil), opts.Sites...),
		engines:   append([]string(nil), opts.Engines...),
	}
	a.SetDescription("Web search through SearxNG")
	a.SetLogger(opts.Logger)
	return a
}

// NewSearchAgentFromConfig builds a SearchAgent with a searx client for the
// configured endpoint.
func NewSearchAgentFromConfig(cfg SearchAgentConfig, logger logging.Logger) *SearchAgent {
	return NewSearchAgent(searx.New(cfg.Endpoint), func(o *SearchAgentOptions) {
		o.Sites = cfg.Sites
		o.Engines = cfg.Engines
		o.Logger = logger
	})
}

// Execute implements core.Agent.
func (a *SearchAgent) Execute(ctx context.Context, action core.Action, _ core.Executor) core.Output {
	if err := util.ValidateJSON(action.Payload(), searchQuerySchema); err != nil {
		return core.Failure(core.MsgInvalidPayload)
	}
	query, err := core.DecodePayload[SearchQuery](action)
	if err != nil {
		return core.Failure(core.MsgInvalidPayload)
	}

	base := searx.Query{Terms: query.Terms, Engines: a.engines}
	if query.Lang != nil {
		base.Lang = *query.Lang
	}

	if len(a.sites) == 0 {
		resp, err := a.searcher.Search(ctx, base)
		if err != nil {
			a.Logger().Warn("Search failed", "terms", query.Terms, "error", err)
			return core.Failure(MsgSearchError)
		}
		return core.Success(resp)
	}

	merged := searx.Response{Success: true, Results: []searx.Result{}}
	for _, site := range a.sites {
		q := base
		q.Site = site
		resp, err := a.searcher.Search(ctx, q)
		if err != nil {
			a.Logger().Warn("Search failed", "terms", query.Terms, "site", site, "error", err)
			return core.Failure(MsgSearchError)
		}
		merged.Results = append(merged.Results, resp.Results...)
	}

	return core.Success(merged)
}

// Describe implements core.Describer.
func (a *SearchAgent) Describe() core.AgentInfo {
	return a.info("search", []core.OperationInfo{{
		Name:        "search",
		Kind:        core.OperationAction,
		InputSchema: searchQuerySchema,
	}})
}
