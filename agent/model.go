package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/util"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
)

// Error messages produced by ModelAgent.
const (
	MsgUnableToGetSummary   = "Unable to get summary"
	MsgUnableToReadResponse = "Unable to read response"
)

// ModelOperation is a data-defined LLM operation. The non-empty text fields
// become system messages in the order Role, Goal, OutputRules.
type ModelOperation struct {
	Role        string `json:"role" koanf:"role"`
	Goal        string `json:"goal" koanf:"goal"`
	OutputRules string `json:"output_rules" koanf:"output_rules"`

	// OutputFormat requests a structured JSON answer. It is either a JSON
	// schema or an object {name, description, strict, schema}.
	OutputFormat map[string]any `json:"output_format,omitempty" koanf:"output_format"`

	// Template, when set, lets the operation accept an object payload which
	// is rendered through this text/template into the user prompt.
	Template string `json:"template,omitempty" koanf:"template"`
}

// ModelAgentConfig defines a ModelAgent as data.
type ModelAgentConfig struct {
	ID         string                    `json:"id" koanf:"id"`
	Provider   string                    `json:"provider,omitempty" koanf:"provider"` // openai (default) or anthropic
	Endpoint   string                    `json:"endpoint,omitempty" koanf:"endpoint"`
	Model      string                    `json:"model" koanf:"model"`
	APIKey     string                    `json:"api_key,omitempty" koanf:"api_key"`
	Operations map[string]ModelOperation `json:"operations" koanf:"operations"`
}

// ModelAgent answers every configured operation with one chat completion.
//
// The action payload is the user prompt: a JSON string, or an object when
// the operation defines a Template. With an OutputFormat the model reply
// must be JSON and is returned as a JSON value; otherwise the reply text is
// returned as a string.
type ModelAgent struct {
	BaseAgent
	model      model.Model
	operations map[string]ModelOperation
}

// ModelAgentOptions configures a ModelAgent.
type ModelAgentOptions struct {
	Description string
	Logger      logging.Logger
}

// NewModelAgent creates a ModelAgent over m.
func NewModelAgent(m model.Model, operations map[string]ModelOperation, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Description: "LLM agent",
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	ops := make(map[string]ModelOperation, len(operations))
	for name, op := range operations {
		ops[name] = op
	}

	a := &ModelAgent{
		BaseAgent:  NewBaseAgent("Model"),
		model:      m,
		operations: ops,
	}
	a.SetDescription(opts.Description)
	a.SetLogger(opts.Logger)
	return a
}

// Execute implements core.Agent.
func (a *ModelAgent) Execute(ctx context.Context, action core.Action, _ core.Executor) core.Output {
	op, ok := a.operations[action.Operation()]
	if !ok {
		return core.Failure(core.MsgUnknownAction)
	}

	prompt, err := op.prompt(action)
	if err != nil {
		a.Logger().Debug("Invalid model payload", "action_id", action.ID(), "error", err)
		return core.Failure(core.MsgInvalidPayload)
	}

	return a.run(ctx, op, prompt)
}

func (a *ModelAgent) run(ctx context.Context, op ModelOperation, prompt string) core.Output {
	req := model.Request{Messages: op.messages(prompt)}
	if op.OutputFormat != nil {
		req.ResponseFormat = responseFormat(op.OutputFormat)
	}

	info := a.model.Info()
	start := time.Now()
	resp, err := model.Collect(ctx, a.model, req)
	a.logCall(info.Name, resp, time.Since(start), err)
	if err != nil {
		return core.Failure(MsgUnableToGetSummary)
	}

	if req.ResponseFormat == nil {
		return core.Success(resp.Text)
	}

	var value any
	if err := json.Unmarshal([]byte(resp.Text), &value); err != nil {
		a.Logger().Warn("Model reply is not valid JSON", "model", info.Name, "error", err)
		return core.Failure(MsgUnableToReadResponse)
	}
	return core.Success(value)
}

func (a *ModelAgent) logCall(name string, resp *model.Response, dur time.Duration, err error) {
	tokens := 0
	if resp != nil && resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	if sl, ok := a.Logger().(*logging.SwarmLogger); ok {
		sl.LogLLMCall(name, tokens, dur, err == nil, err)
		return
	}
	if err != nil {
		a.Logger().Error("LLM call failed", "model", name, "duration", dur, "error", err)
		return
	}
	a.Logger().Debug("LLM call completed", "model", name, "duration", dur, "token_count", tokens)
}

// Operations returns the configured operation names, sorted.
func (a *ModelAgent) Operations() []string {
	names := make([]string, 0, len(a.operations))
	for name := range a.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe implements core.Describer.
func (a *ModelAgent) Describe() core.AgentInfo {
	names := a.Operations()
	ops := make([]core.OperationInfo, 0, len(names))
	for _, name := range names {
		schema := map[string]any{"type": "string"}
		if a.operations[name].Template != "" {
			schema = map[string]any{"type": "object"}
		}
		ops = append(ops, core.OperationInfo{Name: name, Kind: core.OperationAction, InputSchema: schema})
	}
	return a.info("model", ops)
}

func (op ModelOperation) messages(prompt string) []model.Message {
	msgs := make([]model.Message, 0, 4)
	for _, text := range []string{op.Role, op.Goal, op.OutputRules} {
		if text != "" {
			msgs = append(msgs, model.SystemMessage(text))
		}
	}
	return append(msgs, model.UserMessage(prompt))
}

func (op ModelOperation) prompt(action core.Action) (string, error) {
	if string(action.Payload()) == "null" {
		return "", fmt.Errorf("payload is null")
	}

	var prompt string
	if err := action.Decode(&prompt); err == nil {
		return prompt, nil
	}

	if op.Template == "" {
		return "", fmt.Errorf("payload is not a string")
	}

	var state map[string]any
	if err := action.Decode(&state); err != nil || state == nil {
		return "", fmt.Errorf("payload is neither a string nor an object")
	}
	return util.RenderTemplate(op.Template, state)
}

func responseFormat(format map[string]any) *model.ResponseFormat {
	schema, ok := format["schema"].(map[string]any)
	if !ok {
		return &model.ResponseFormat{Name: "response", Schema: format}
	}

	rf := &model.ResponseFormat{Schema: schema}
	rf.Name, _ = format["name"].(string)
	rf.Description, _ = format["description"].(string)
	rf.Strict, _ = format["strict"].(bool)
	return rf
}
