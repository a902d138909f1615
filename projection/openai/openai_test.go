package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rewindmesh/core"
)

func TestMessages_ToolRoundTrip(t *testing.T) {
	call := &core.Entry{
		Role:      core.RoleAssistant,
		Timestamp: 2,
		Parts: []core.Part{
			core.TextPart{Text: "checking"},
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "call-1", Name: "weather", Arguments: `{"city":"Berlin"}`}},
		},
	}
	result := &core.Entry{
		Role:      core.RoleUser,
		Timestamp: 3,
		Parts: []core.Part{
			core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "call-1", Response: "sunny"}},
			core.TextPart{Text: "thanks"},
		},
	}

	msgs := Messages([]*core.Entry{
		core.NewEntry(core.RoleUser, 1, "weather?"),
		call,
		result,
		core.NewEntry(core.RoleAssistant, 4, "It is sunny."),
	})
	require.Len(t, msgs, 5)

	require.NotNil(t, msgs[0].OfUser)

	require.NotNil(t, msgs[1].OfAssistant)
	require.Len(t, msgs[1].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call-1", msgs[1].OfAssistant.ToolCalls[0].ID)
	assert.Equal(t, "weather", msgs[1].OfAssistant.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"city":"Berlin"}`, msgs[1].OfAssistant.ToolCalls[0].Function.Arguments)
	assert.Equal(t, "checking", msgs[1].OfAssistant.Content.OfString.Value)

	require.NotNil(t, msgs[2].OfTool, "tool result precedes the user text")
	assert.Equal(t, "call-1", msgs[2].OfTool.ToolCallID)
	require.NotNil(t, msgs[3].OfUser)

	require.NotNil(t, msgs[4].OfAssistant)
	assert.Empty(t, msgs[4].OfAssistant.ToolCalls)
}

func TestMessages_SkipsHiddenAndEmpty(t *testing.T) {
	hidden := core.NewEntry(core.RoleUser, 1, "old")
	hidden.TruncationParent = "t1"

	msgs := Messages([]*core.Entry{
		hidden,
		core.NewTruncationMarkerEntry(2, "t1", "[truncated]"),
		core.NewEntry(core.RoleAssistant, 3, ""),
	})
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].OfUser)
}

func TestResponseText(t *testing.T) {
	assert.Equal(t, "ok", responseText(core.FunctionResponse{Response: "ok"}))
	assert.Equal(t, "error: boom", responseText(core.FunctionResponse{Response: "ok", Error: "boom"}))
}
