package core

import (
	"errors"
	"fmt"
)

// Messages carried by Error outputs produced by the orchestration layer.
// They are part of the wire contract and must not change.
const (
	MsgAgentNotFound      = "Agent Not Found"
	MsgUnknownAction      = "Unknown action"
	MsgUnableToGetPayload = "Unable to get payload"
	MsgInvalidPayload     = "Invalid payload"
	MsgUnableToEncode     = "Unable to encode payload"
)

var (
	// ErrAgentNotFound is returned when no agent is registered under an id.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrAgentTypeMismatch is returned when an agent is registered under an
	// id but is not of the requested concrete type.
	ErrAgentTypeMismatch = errors.New("agent type mismatch")

	// ErrUnknownOperation is returned when an operation is absent from an
	// agent's dispatch table.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrPayloadDecode is the base error for every payload decoding failure.
	ErrPayloadDecode = errors.New("payload decode failed")

	// ErrErrorOutput is returned when decoding the payload of an Error output
	// into anything other than a string.
	ErrErrorOutput = errors.New("output has error status")
)

// PayloadDecodeError reports that a payload could not be decoded into the
// requested Go type. It is always recoverable.
type PayloadDecodeError struct {
	Target string // Go type that was requested
	Cause  error  // Underlying JSON or status error
}

func (e *PayloadDecodeError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("payload decode failed: %v", e.Cause)
	}
	return fmt.Sprintf("payload decode into %s failed: %v", e.Target, e.Cause)
}

// Unwrap exposes both ErrPayloadDecode and the underlying cause to errors.Is.
func (e *PayloadDecodeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrPayloadDecode}
	}
	return []error{ErrPayloadDecode, e.Cause}
}

// AgentError is the Go error view of an Error output.
type AgentError struct {
	AgentID string `json:"agent_id"`
	Message string `json:"message"`
}

func (e *AgentError) Error() string {
	if e.AgentID == "" {
		return e.Message
	}
	return fmt.Sprintf("agent %s: %s", e.AgentID, e.Message)
}

func newPayloadDecodeError(v any, cause error) *PayloadDecodeError {
	target := ""
	if v != nil {
		target = fmt.Sprintf("%T", v)
	}
	return &PayloadDecodeError{Target: target, Cause: cause}
}
