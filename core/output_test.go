package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutput_Success(t *testing.T) {
	out := Success(map[string]int{"n": 5})

	assert.True(t, out.IsSuccess())
	assert.Equal(t, StatusSuccess, out.Status())
	assert.Empty(t, out.AgentID())
	assert.Empty(t, out.ErrorMessage())
	assert.NoError(t, out.Err())

	got, err := DecodeOutput[map[string]int](out)
	require.NoError(t, err)
	assert.Equal(t, 5, got["n"])
}

func TestOutput_Failure(t *testing.T) {
	out := Failure(MsgAgentNotFound)

	assert.False(t, out.IsSuccess())
	assert.Equal(t, StatusError, out.Status())
	assert.Equal(t, MsgAgentNotFound, out.ErrorMessage())

	msg, err := DecodeOutput[string](out)
	require.NoError(t, err)
	assert.Equal(t, MsgAgentNotFound, msg)

	var agentErr *AgentError
	require.ErrorAs(t, out.WithAgentID("Calc").Err(), &agentErr)
	assert.Equal(t, "Calc", agentErr.AgentID)
	assert.Equal(t, MsgAgentNotFound, agentErr.Message)
}

func TestOutput_DecodeErrorAsStruct(t *testing.T) {
	out := Failuref("%s: %s", "summary", "Unable to get summary")

	_, err := DecodeOutput[struct{ Text string }](out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrErrorOutput)
	assert.ErrorIs(t, err, ErrPayloadDecode)
}

func TestOutput_SuccessEncodeFailure(t *testing.T) {
	out := Success(math.NaN())

	assert.False(t, out.IsSuccess())
	assert.Equal(t, MsgUnableToEncode, out.ErrorMessage())
}

func TestOutput_WithAgentID(t *testing.T) {
	base := Success("hi")
	stamped := base.WithAgentID("Echo")

	assert.Equal(t, "Echo", stamped.AgentID())
	assert.Empty(t, base.AgentID(), "WithAgentID must return a copy")
	assert.Equal(t, "Other", stamped.WithAgentID("Other").AgentID())
}

func TestOutput_JSON(t *testing.T) {
	out := Success("hi").WithAgentID("Echo")

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"agent_id":"Echo","status":"SUCCESS","payload":"hi"}`, string(b))

	var decoded Output
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "Echo", decoded.AgentID())
	assert.True(t, decoded.IsSuccess())

	notFound, err := json.Marshal(Failure(MsgAgentNotFound))
	require.NoError(t, err)
	assert.JSONEq(t, `{"agent_id":"","status":"ERROR","payload":"Agent Not Found"}`, string(notFound))
}

func TestOutput_UnmarshalRejectsUnknownStatus(t *testing.T) {
	var out Output
	err := json.Unmarshal([]byte(`{"agent_id":"x","status":"PENDING","payload":null}`), &out)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"agent_id":"x","payload":null}`), &out)
	assert.Error(t, err)
}

func TestOutput_ZeroValue(t *testing.T) {
	var out Output
	assert.Equal(t, StatusError, out.Status())
	assert.False(t, out.IsSuccess())
	assert.JSONEq(t, "null", string(out.Payload()))
}
