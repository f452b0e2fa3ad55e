package agent

import (
	"fmt"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// BaseAgent carries the description and logger shared by the agents of
// this package. Embed it and implement Execute.
type BaseAgent struct {
	description string
	logger      logging.Logger
}

// NewBaseAgent returns a BaseAgent with a default description and a
// NoOpLogger.
func NewBaseAgent(kind string) BaseAgent {
	return BaseAgent{
		description: fmt.Sprintf("%s agent", kind),
		logger:      logging.NoOpLogger{},
	}
}

// Description returns the human readable purpose of the agent.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription overrides the description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// Logger returns the agent logger.
func (b *BaseAgent) Logger() logging.Logger {
	if b.logger == nil {
		return logging.NoOpLogger{}
	}
	return b.logger
}

// SetLogger replaces the agent logger. A nil logger restores NoOpLogger.
func (b *BaseAgent) SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	b.logger = l
}

func (b *BaseAgent) info(typ string, ops []core.OperationInfo) core.AgentInfo {
	return core.AgentInfo{Type: typ, Description: b.description, Operations: ops}
}
