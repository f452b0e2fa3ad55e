package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAction_Split(t *testing.T) {
	tests := []struct {
		id    string
		agent string
		op    string
	}{
		{"Echo.ping", "Echo", "ping"},
		{"a.b.c", "a", "b.c"},
		{"Echo", "Echo", DefaultOperation},
		{"Echo.", "Echo", ""},
		{".ping", "", "ping"},
		{"", "", DefaultOperation},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			a := NewAction(tt.id, nil)
			assert.Equal(t, tt.id, a.ID())
			assert.Equal(t, tt.agent, a.Agent())
			assert.Equal(t, tt.op, a.Operation())
		})
	}
}

func TestAction_SplitRoundTrip(t *testing.T) {
	for _, id := range []string{"x.y", "x.y.z", "Summary.summarize", "auth.login"} {
		a := NewAction(id, nil)
		assert.Equal(t, id, a.Agent()+"."+a.Operation())
	}
}

func TestAction_Decode(t *testing.T) {
	type addParams struct {
		A int `json:"a"`
		B int `json:"b"`
	}

	a := NewAction("Calc.add", addParams{A: 2, B: 3})

	got, err := DecodePayload[addParams](a)
	require.NoError(t, err)
	assert.Equal(t, addParams{A: 2, B: 3}, got)

	_, err = DecodePayload[string](a)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPayloadDecode)

	var de *PayloadDecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "*string", de.Target)
}

func TestAction_EncodeFailureSurfacesOnDecode(t *testing.T) {
	a := NewAction("Calc.add", math.Inf(1))

	assert.Equal(t, "Calc.add", a.ID())
	assert.JSONEq(t, "null", string(a.Payload()))

	var v float64
	err := a.Decode(&v)
	assert.ErrorIs(t, err, ErrPayloadDecode)
}

func TestAction_RawPayload(t *testing.T) {
	a := NewAction("Echo.ping", json.RawMessage(`{ "x" : 1 }`))
	assert.Equal(t, `{"x":1}`, string(a.Payload()))

	p := a.Payload()
	p[0] = '['
	assert.Equal(t, `{"x":1}`, string(a.Payload()), "payload must not be mutable through the copy")
}

func TestAction_JSON(t *testing.T) {
	a := NewAction("Echo.ping", "hi")

	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"Echo.ping","payload":"hi"}`, string(b))

	var decoded Action
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "Echo", decoded.Agent())
	assert.Equal(t, "ping", decoded.Operation())

	s, err := DecodePayload[string](decoded)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
}

func TestAction_UnmarshalMissingPayload(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"id":"Echo.ping"}`), &a))
	assert.JSONEq(t, "null", string(a.Payload()))
}
