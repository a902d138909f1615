// Package anthropic projects a transcript onto Anthropic Messages API
// parameters.
package anthropic

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/rewindmesh/condense"
	"github.com/hupe1980/rewindmesh/core"
)

// Messages converts the model-visible part of entries into Anthropic message
// params. Entries hidden by a live summary or truncation marker are skipped,
// as are entries without any renderable content.
//
// Tool results stay in the user turn that carries them, matching the
// Messages API where tool_result blocks are user content.
func Messages(entries []*core.Entry) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	for _, e := range condense.EffectiveHistory(entries) {
		content := buildContent(e.Parts)
		if len(content) == 0 {
			continue
		}
		switch e.Role {
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(content...))
		default:
			messages = append(messages, anthropic.NewUserMessage(content...))
		}
	}

	return messages
}

// buildContent converts parts to content blocks in order.
func buildContent(parts []core.Part) []anthropic.ContentBlockParamUnion {
	var content []anthropic.ContentBlockParamUnion

	for _, p := range parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				content = append(content, anthropic.NewTextBlock(part.Text))
			}
		case core.FunctionCallPart:
			// Parse the arguments JSON for the tool call
			var input any
			if part.FunctionCall.Arguments != "" {
				if err := json.Unmarshal([]byte(part.FunctionCall.Arguments), &input); err != nil {
					input = part.FunctionCall.Arguments // fallback to string
				}
			}
			content = append(content, anthropic.NewToolUseBlock(
				part.FunctionCall.ID,
				input,
				part.FunctionCall.Name,
			))
		case core.FunctionResponsePart:
			fr := part.FunctionResponse
			if fr.Error != "" {
				content = append(content, anthropic.NewToolResultBlock(fr.ID, fr.Error, true))
				continue
			}
			content = append(content, anthropic.NewToolResultBlock(fr.ID, fr.Response, false))
		}
	}

	return content
}
