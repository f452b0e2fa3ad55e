package a2a

import (
	"context"
	"net/http/httptest"
	"testing"

	sdka2a "github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/testutil"
	"github.com/hupe1980/agentswarm/swarm"
)

func TestActionFromMessage(t *testing.T) {
	t.Run("data part", func(t *testing.T) {
		msg, err := ActionMessage(core.NewAction("Echo.say", map[string]any{"x": 1}))
		require.NoError(t, err)

		action, err := ActionFromMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, "Echo.say", action.ID())
		assert.JSONEq(t, `{"x":1}`, string(action.Payload()))
	})

	t.Run("text parts with metadata", func(t *testing.T) {
		msg := sdka2a.NewMessage(sdka2a.MessageRoleUser,
			&sdka2a.TextPart{Text: "hello"},
			&sdka2a.TextPart{Text: "world"},
		)
		msg.Metadata = map[string]any{MetadataAction: "Echo"}

		action, err := ActionFromMessage(msg)
		require.NoError(t, err)
		assert.Equal(t, "Echo", action.ID())
		assert.JSONEq(t, `"hello\nworld"`, string(action.Payload()))
	})

	t.Run("no action", func(t *testing.T) {
		_, err := ActionFromMessage(sdka2a.NewMessage(sdka2a.MessageRoleUser, &sdka2a.TextPart{Text: "hi"}))
		assert.ErrorIs(t, err, ErrNoAction)

		_, err = ActionFromMessage(nil)
		assert.ErrorIs(t, err, ErrNoAction)
	})
}

func TestOutputMessage(t *testing.T) {
	msg, err := OutputMessage(core.Failure("boom").WithAgentID("Fail"))
	require.NoError(t, err)
	assert.Equal(t, sdka2a.MessageRoleAgent, msg.Role)

	out, ok := OutputFromMessage(msg)
	require.True(t, ok)
	assert.False(t, out.IsSuccess())
	assert.Equal(t, "boom", out.ErrorMessage())
	assert.Equal(t, "Fail", out.AgentID())

	_, ok = OutputFromMessage(sdka2a.NewMessage(sdka2a.MessageRoleAgent, &sdka2a.TextPart{Text: "x"}))
	assert.False(t, ok)
}

func TestAgentCard(t *testing.T) {
	card := AgentCard("swarm", "http://localhost/a2a", []core.AgentInfo{{
		ID:   "Calc",
		Type: "table",
		Operations: []core.OperationInfo{
			{Name: "add", Kind: core.OperationAction},
			{Name: "sub", Kind: core.OperationAction},
		},
	}})

	require.Len(t, card.Skills, 2)
	assert.Equal(t, "Calc.add", card.Skills[0].ID)
	assert.Equal(t, "http://localhost/a2a", card.URL)
}

func TestRemoteAgent_RoundTrip(t *testing.T) {
	backend := swarm.New()
	backend.Register("Echo", testutil.EchoAgent{})
	backend.Register("Fail", testutil.FailAgent{Message: "nope"})

	srv := httptest.NewServer(NewHandler(backend))
	defer srv.Close()

	ctx := context.Background()
	remote, err := NewRemoteAgent(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, remote.URL())

	front := swarm.New()
	front.Register("Echo", remote)
	front.Register("Fail", remote)

	out := front.Execute(ctx, "Echo.default", map[string]any{"msg": "hi"})
	require.True(t, out.IsSuccess(), out.ErrorMessage())
	assert.JSONEq(t, `{"msg":"hi"}`, string(out.Payload()))
	assert.Equal(t, "Echo", out.AgentID())

	out = front.Execute(ctx, "Fail", nil)
	assert.False(t, out.IsSuccess())
	assert.Equal(t, "nope", out.ErrorMessage())

	out = front.Execute(ctx, "Ghost", nil)
	assert.Equal(t, core.MsgAgentNotFound, out.ErrorMessage())
}

func TestRemoteAgent_Unreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	remote, err := NewRemoteAgent(context.Background(), url)
	require.NoError(t, err)

	out := remote.Execute(context.Background(), core.NewAction("Echo", "x"), nil)
	assert.Equal(t, MsgRemoteError, out.ErrorMessage())
}
