package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEntry is returned when a persisted transcript entry cannot be
// represented, e.g. one flagged both summary and truncation marker.
var ErrInvalidEntry = errors.New("invalid transcript entry")

type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type entryWire struct {
	Role               Role            `json:"role"`
	Content            []contentBlock  `json:"content"`
	Ts                 int64           `json:"ts,omitempty"`
	IsSummary          bool            `json:"isSummary,omitempty"`
	CondenseID         string          `json:"condenseId,omitempty"`
	IsTruncationMarker bool            `json:"isTruncationMarker,omitempty"`
	TruncationID       string          `json:"truncationId,omitempty"`
	CondenseParent     string          `json:"condenseParent,omitempty"`
	TruncationParent   string          `json:"truncationParent,omitempty"`
	ReasoningDetails   json.RawMessage `json:"reasoning_details,omitempty"`
}

// MarshalJSON encodes the entry in the persisted API history format.
func (e Entry) MarshalJSON() ([]byte, error) {
	w := entryWire{
		Role:             e.Role,
		Content:          make([]contentBlock, 0, len(e.Parts)),
		Ts:               e.Timestamp,
		CondenseParent:   e.CondenseParent,
		TruncationParent: e.TruncationParent,
		ReasoningDetails: e.ReasoningDetails,
	}
	switch d := e.Derived.(type) {
	case Summary:
		w.IsSummary, w.CondenseID = true, d.CondenseID
	case TruncationMarker:
		w.IsTruncationMarker, w.TruncationID = true, d.TruncationID
	}
	for _, p := range e.Parts {
		switch part := p.(type) {
		case TextPart:
			w.Content = append(w.Content, contentBlock{Type: "text", Text: part.Text})
		case FunctionCallPart:
			var input json.RawMessage
			if args := part.FunctionCall.Arguments; args != "" {
				if json.Valid([]byte(args)) {
					input = json.RawMessage(args)
				} else {
					input, _ = json.Marshal(args)
				}
			}
			w.Content = append(w.Content, contentBlock{
				Type:  "tool_use",
				ID:    part.FunctionCall.ID,
				Name:  part.FunctionCall.Name,
				Input: input,
			})
		case FunctionResponsePart:
			fr := part.FunctionResponse
			b := contentBlock{Type: "tool_result", ToolUseID: fr.ID, Content: fr.Response}
			if fr.Error != "" {
				b.Content, b.IsError = fr.Error, true
			}
			w.Content = append(w.Content, b)
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the persisted API history format.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var w entryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.IsSummary && w.IsTruncationMarker {
		return fmt.Errorf("%w: entry at ts %d is both summary and truncation marker", ErrInvalidEntry, w.Ts)
	}
	*e = Entry{
		Role:             w.Role,
		Timestamp:        w.Ts,
		CondenseParent:   w.CondenseParent,
		TruncationParent: w.TruncationParent,
		ReasoningDetails: w.ReasoningDetails,
	}
	switch {
	case w.IsSummary:
		e.Derived = Summary{CondenseID: w.CondenseID}
	case w.IsTruncationMarker:
		e.Derived = TruncationMarker{TruncationID: w.TruncationID}
	}
	for _, b := range w.Content {
		switch b.Type {
		case "text":
			e.Parts = append(e.Parts, TextPart{Text: b.Text})
		case "tool_use":
			e.Parts = append(e.Parts, FunctionCallPart{FunctionCall: FunctionCall{ID: b.ID, Name: b.Name, Arguments: string(b.Input)}})
		case "tool_result":
			fr := FunctionResponse{ID: b.ToolUseID}
			if b.IsError {
				fr.Error = b.Content
			} else {
				fr.Response = b.Content
			}
			e.Parts = append(e.Parts, FunctionResponsePart{FunctionResponse: fr})
		default:
			return fmt.Errorf("%w: unknown content block type %q", ErrInvalidEntry, b.Type)
		}
	}
	return nil
}

type condenseWire struct {
	CondenseID string `json:"condenseId"`
}

type truncationWire struct {
	TruncationID string `json:"truncationId"`
}

type eventWire struct {
	Ts                int64           `json:"ts"`
	Type              string          `json:"type"`
	Say               EventKind       `json:"say"`
	Text              string          `json:"text,omitempty"`
	Partial           bool            `json:"partial,omitempty"`
	ContextCondense   *condenseWire   `json:"contextCondense,omitempty"`
	ContextTruncation *truncationWire `json:"contextTruncation,omitempty"`
}

// MarshalJSON encodes the event in the persisted UI message format.
func (e Event) MarshalJSON() ([]byte, error) {
	w := eventWire{Ts: e.Timestamp, Type: "say", Say: e.Kind, Text: e.Text, Partial: e.Partial}
	if e.CorrelationID != "" {
		switch e.Kind {
		case EventKindCondenseContext:
			w.ContextCondense = &condenseWire{CondenseID: e.CorrelationID}
		case EventKindSlidingWindowTruncation:
			w.ContextTruncation = &truncationWire{TruncationID: e.CorrelationID}
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the persisted UI message format.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Event{Timestamp: w.Ts, Kind: w.Say, Text: w.Text, Partial: w.Partial}
	switch {
	case w.ContextCondense != nil:
		e.CorrelationID = w.ContextCondense.CondenseID
	case w.ContextTruncation != nil:
		e.CorrelationID = w.ContextTruncation.TruncationID
	}
	return nil
}
