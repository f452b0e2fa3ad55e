package core

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DefaultOperation is the operation name used when an action id carries no
// separator.
const DefaultOperation = "default"

var nullPayload = json.RawMessage("null")

// Action is a routed request envelope. Its id has the shape
// "<agent>.<operation>"; only the first dot separates the two, so operation
// names may themselves contain dots. Action is an immutable value.
type Action struct {
	id        string
	payload   json.RawMessage
	encodeErr error
}

// NewAction builds an Action from any JSON-serializable payload. It never
// fails: when payload cannot be encoded the Action records the error and
// every later decode reports it.
func NewAction(id string, payload any) Action {
	raw, err := encodePayload(payload)
	if err != nil {
		return Action{id: id, payload: nullPayload, encodeErr: err}
	}
	return Action{id: id, payload: raw}
}

// ID returns the full compound id.
func (a Action) ID() string { return a.id }

// Agent returns the agent part of the id.
func (a Action) Agent() string {
	if agent, _, ok := strings.Cut(a.id, "."); ok {
		return agent
	}
	return a.id
}

// Operation returns the operation part of the id or DefaultOperation.
func (a Action) Operation() string {
	if _, op, ok := strings.Cut(a.id, "."); ok {
		return op
	}
	return DefaultOperation
}

// Payload returns a copy of the raw JSON payload.
func (a Action) Payload() json.RawMessage {
	return cloneRaw(a.payload)
}

// Decode unmarshals the payload into v. Any failure is a *PayloadDecodeError.
func (a Action) Decode(v any) error {
	if a.encodeErr != nil {
		return newPayloadDecodeError(v, a.encodeErr)
	}
	if err := json.Unmarshal(a.rawPayload(), v); err != nil {
		return newPayloadDecodeError(v, err)
	}
	return nil
}

// DecodePayload is the generic form of Action.Decode.
func DecodePayload[T any](a Action) (T, error) {
	var v T
	err := a.Decode(&v)
	return v, err
}

// MarshalJSON encodes the wire shape {"id": ..., "payload": ...}.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID      string          `json:"id"`
		Payload json.RawMessage `json:"payload"`
	}{ID: a.id, Payload: a.rawPayload()})
}

// UnmarshalJSON decodes the wire shape. A missing payload becomes null.
func (a *Action) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID      string          `json:"id"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*a = Action{id: wire.ID, payload: cloneRaw(wire.Payload)}
	return nil
}

// String returns the action id.
func (a Action) String() string { return a.id }

func (a Action) rawPayload() json.RawMessage {
	if len(a.payload) == 0 {
		return nullPayload
	}
	return a.payload
}

func encodePayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nullPayload, nil
	case json.RawMessage:
		if len(p) == 0 {
			return nullPayload, nil
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return json.Marshal(payload)
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return cloneRaw(nullPayload)
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return cp
}
