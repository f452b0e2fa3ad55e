package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_Collect(t *testing.T) {
	m := NewMockModel("mock")
	m.AddResponse("hello", "hi there")

	resp, err := Collect(context.Background(), m, Request{Messages: []Message{
		SystemMessage("be nice"),
		UserMessage("hello"),
	}})

	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Len(t, m.Requests(), 1)
}

func TestMockModel_StreamingCollectsFinal(t *testing.T) {
	m := NewMockModel("mock")

	respCh, errCh := m.Generate(context.Background(), Request{Messages: []Message{UserMessage("ping")}, Stream: true})

	var partials []string
	var final string
	for r := range respCh {
		if r.Partial {
			partials = append(partials, r.Text)
		} else {
			final = r.Text
		}
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "Mock response to: ping", final)
	assert.Equal(t, []string{"Mock ", "response ", "to: ", "ping"}, partials)
}

func TestMockModel_Error(t *testing.T) {
	m := NewMockModel("mock")
	m.FailWith(errors.New("backend down"))

	_, err := Collect(context.Background(), m, Request{Messages: []Message{UserMessage("x")}})
	assert.EqualError(t, err, "backend down")
}

func TestMockModel_NoUserMessage(t *testing.T) {
	m := NewMockModel("mock")

	_, err := Collect(context.Background(), m, Request{Messages: []Message{SystemMessage("only system")}})
	assert.Error(t, err)
}
