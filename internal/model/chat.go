package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChatRequest is one conversational turn sent by the client.
type ChatRequest struct {
	UserInput           string                `json:"user_input"`
	ConversationHistory []ConversationMessage `json:"conversation_history"`
	UserContext         ConversationContext   `json:"user_context"`
}

// ChatResponse answers a ChatRequest. On failure Success is false, Error is
// set and ConversationContext is the context the client sent.
type ChatResponse struct {
	Success             bool                `json:"success"`
	Response            string              `json:"response"`
	StructuredContent   *ContentIdea        `json:"structured_content"`
	ConversationContext ConversationContext `json:"conversation_context"`
	ContentHistory      []ContentIdea       `json:"content_history"`
	Error               string              `json:"error,omitempty"`
}

// TrendingItems is the client-supplied trending context. Entries arrive as
// plain strings or as retrieval example objects, which are rendered with
// Snippet.
type TrendingItems []string

func (t *TrendingItems) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("trending_content must be an array: %w", err)
	}
	items := make(TrendingItems, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			items = append(items, s)
			continue
		}
		var ex RetrievalExample
		if err := json.Unmarshal(r, &ex); err != nil {
			return fmt.Errorf("unsupported trending_content entry %s", string(r))
		}
		items = append(items, ex.Snippet())
	}
	*t = items
	return nil
}
