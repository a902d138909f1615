package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rewindmesh/core"
)

func TestMessages_MapsPartsAndRoles(t *testing.T) {
	call := &core.Entry{
		Role:      core.RoleAssistant,
		Timestamp: 2,
		Parts: []core.Part{
			core.TextPart{Text: "reading"},
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "tu1", Name: "read_file", Arguments: `{"path":"a.go"}`}},
		},
	}
	result := &core.Entry{
		Role:      core.RoleUser,
		Timestamp: 3,
		Parts: []core.Part{
			core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "tu1", Response: "package a"}},
		},
	}
	failed := &core.Entry{
		Role:      core.RoleUser,
		Timestamp: 4,
		Parts: []core.Part{
			core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "tu2", Error: "boom"}},
		},
	}

	msgs := Messages([]*core.Entry{
		core.NewEntry(core.RoleUser, 1, "hello"),
		call,
		result,
		failed,
	})
	require.Len(t, msgs, 4)

	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	require.NotNil(t, msgs[0].Content[0].OfText)
	assert.Equal(t, "hello", msgs[0].Content[0].OfText.Text)

	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].Content, 2)
	require.NotNil(t, msgs[1].Content[1].OfToolUse)
	assert.Equal(t, "tu1", msgs[1].Content[1].OfToolUse.ID)
	assert.Equal(t, "read_file", msgs[1].Content[1].OfToolUse.Name)
	assert.Equal(t, map[string]any{"path": "a.go"}, msgs[1].Content[1].OfToolUse.Input)

	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	require.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, "tu1", msgs[2].Content[0].OfToolResult.ToolUseID)

	require.NotNil(t, msgs[3].Content[0].OfToolResult)
	assert.Equal(t, "tu2", msgs[3].Content[0].OfToolResult.ToolUseID)
	assert.True(t, msgs[3].Content[0].OfToolResult.IsError.Value)
}

func TestMessages_HidesCondensedEntries(t *testing.T) {
	hidden := core.NewEntry(core.RoleUser, 1, "old question")
	hidden.CondenseParent = "c1"
	orphan := core.NewEntry(core.RoleAssistant, 2, "old answer")
	orphan.CondenseParent = "gone"

	msgs := Messages([]*core.Entry{
		hidden,
		orphan,
		core.NewSummaryEntry(3, "c1", "summary"),
		core.NewEntry(core.RoleUser, 4, ""),
	})
	require.Len(t, msgs, 2, "condensed and empty entries are skipped")
	assert.Equal(t, "old answer", msgs[0].Content[0].OfText.Text)
	assert.Equal(t, "summary", msgs[1].Content[0].OfText.Text)
}
