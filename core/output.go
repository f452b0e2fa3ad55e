package core

import (
	"encoding/json"
	"fmt"
)

// Status is the closed set of output states.
type Status string

const (
	// StatusSuccess marks an output whose payload is the typed result.
	StatusSuccess Status = "SUCCESS"
	// StatusError marks an output whose payload is a message string.
	StatusError Status = "ERROR"
)

// UnmarshalJSON rejects anything outside the two known states.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Status(raw) {
	case StatusSuccess, StatusError:
		*s = Status(raw)
		return nil
	default:
		return fmt.Errorf("invalid output status %q", raw)
	}
}

// Output is a routed response envelope. It is an immutable value; the only
// field that changes after construction is the agent id, and only through
// WithAgentID which returns a copy.
type Output struct {
	agentID string
	status  Status
	payload json.RawMessage
}

// Success builds a Success output. A payload that cannot be encoded yields
// an Error output instead.
func Success(payload any) Output {
	raw, err := encodePayload(payload)
	if err != nil {
		return Failure(MsgUnableToEncode)
	}
	return Output{status: StatusSuccess, payload: raw}
}

// Failure builds an Error output carrying message.
func Failure(message string) Output {
	raw, _ := json.Marshal(message)
	return Output{status: StatusError, payload: raw}
}

// Failuref builds an Error output from a format string.
func Failuref(format string, args ...any) Output {
	return Failure(fmt.Sprintf(format, args...))
}

// WithAgentID returns a copy of o stamped with the responding agent's id.
func (o Output) WithAgentID(id string) Output {
	o.agentID = id
	return o
}

// AgentID returns the id of the agent that produced the output. It is empty
// when the target agent was not found.
func (o Output) AgentID() string { return o.agentID }

// Status returns the output status. The zero Output reports StatusError.
func (o Output) Status() Status {
	if o.status == "" {
		return StatusError
	}
	return o.status
}

// IsSuccess reports whether the output carries a typed result.
func (o Output) IsSuccess() bool { return o.status == StatusSuccess }

// Payload returns a copy of the raw JSON payload.
func (o Output) Payload() json.RawMessage { return cloneRaw(o.payload) }

// ErrorMessage returns the message of an Error output or "" on success.
func (o Output) ErrorMessage() string {
	if o.IsSuccess() {
		return ""
	}
	var msg string
	if err := json.Unmarshal(o.rawPayload(), &msg); err != nil {
		return string(o.rawPayload())
	}
	return msg
}

// Err returns nil for Success outputs and an *AgentError otherwise.
func (o Output) Err() error {
	if o.IsSuccess() {
		return nil
	}
	return &AgentError{AgentID: o.agentID, Message: o.ErrorMessage()}
}

// Decode unmarshals the payload into v. Decoding an Error output into
// anything but a *string fails with ErrErrorOutput.
func (o Output) Decode(v any) error {
	if !o.IsSuccess() {
		if _, ok := v.(*string); !ok {
			return newPayloadDecodeError(v, fmt.Errorf("%w: %s", ErrErrorOutput, o.ErrorMessage()))
		}
	}
	if err := json.Unmarshal(o.rawPayload(), v); err != nil {
		return newPayloadDecodeError(v, err)
	}
	return nil
}

// DecodeOutput is the generic form of Output.Decode.
func DecodeOutput[T any](o Output) (T, error) {
	var v T
	err := o.Decode(&v)
	return v, err
}

// MarshalJSON encodes {"agent_id": ..., "status": ..., "payload": ...}.
func (o Output) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AgentID string          `json:"agent_id"`
		Status  Status          `json:"status"`
		Payload json.RawMessage `json:"payload"`
	}{AgentID: o.agentID, Status: o.Status(), Payload: o.rawPayload()})
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON.
func (o *Output) UnmarshalJSON(data []byte) error {
	var wire struct {
		AgentID string          `json:"agent_id"`
		Status  Status          `json:"status"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Status == "" {
		return fmt.Errorf("output status is required")
	}
	*o = Output{agentID: wire.AgentID, status: wire.Status, payload: cloneRaw(wire.Payload)}
	return nil
}

// String renders the wire form, mainly for logs.
func (o Output) String() string {
	b, err := o.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("{status:%s}", o.Status())
	}
	return string(b)
}

func (o Output) rawPayload() json.RawMessage {
	if len(o.payload) == 0 {
		return nullPayload
	}
	return o.payload
}
