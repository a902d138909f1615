// Package openai projects a transcript onto OpenAI chat completion messages.
package openai

import (
	"strings"

	"github.com/openai/openai-go"

	"github.com/hupe1980/rewindmesh/condense"
	"github.com/hupe1980/rewindmesh/core"
)

// Messages converts the model-visible part of entries into chat messages.
// Entries hidden by a live summary or truncation marker are skipped.
//
// Tool results carried by a user entry become tool messages placed before
// that entry's text, so they directly follow the assistant tool calls they
// answer.
func Messages(entries []*core.Entry) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, e := range condense.EffectiveHistory(entries) {
		text := collectText(e.Parts)
		switch e.Role {
		case core.RoleAssistant:
			toolCalls := extractToolCalls(e.Parts)
			if len(toolCalls) == 0 {
				if text != "" {
					messages = append(messages, openai.AssistantMessage(text))
				}
				continue
			}
			msg := &openai.ChatCompletionAssistantMessageParam{
				Role:      "assistant",
				ToolCalls: toolCalls,
			}
			if text != "" {
				msg.Content.OfString = openai.String(text)
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: msg})
		default:
			for _, p := range e.Parts {
				if fr, ok := p.(core.FunctionResponsePart); ok {
					messages = append(messages, openai.ToolMessage(responseText(fr.FunctionResponse), fr.FunctionResponse.ID))
				}
			}
			if text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}
	return messages
}

func collectText(parts []core.Part) string {
	var b strings.Builder
	for _, p := range parts {
		if tp, ok := p.(core.TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

func responseText(fr core.FunctionResponse) string {
	if fr.Error != "" {
		return "error: " + fr.Error
	}
	return fr.Response
}

// extractToolCalls returns the OpenAI formatted tool calls among parts.
func extractToolCalls(parts []core.Part) []openai.ChatCompletionMessageToolCallParam {
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	for _, p := range parts {
		if fc, ok := p.(core.FunctionCallPart); ok {
			toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
				ID:   fc.FunctionCall.ID,
				Type: "function",
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      fc.FunctionCall.Name,
					Arguments: fc.FunctionCall.Arguments,
				},
			})
		}
	}
	return toolCalls
}
