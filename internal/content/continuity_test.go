package content

import (
	"testing"

	"ai-content-consultant/internal/model"
)

func TestAnalyzeContinuity(t *testing.T) {
	history := []model.ConversationMessage{
		{Role: model.RoleUser, Text: "I want an espresso coffee video"},
		{Role: model.RoleAssistant, Text: "Try a barista speedrun"},
	}
	ideas := []model.ContentIdea{{Idea: "Coffee art fails compilation"}}

	tests := []struct {
		name      string
		utterance string
		history   []model.ConversationMessage
		wantCont  bool
		wantTopic string
		wantRef   bool
	}{
		{"keyword", "make it funnier", nil, true, DefaultTopic, false},
		{"fresh greeting", "hello", nil, false, DefaultTopic, false},
		{"mentions earlier word", "espresso is life", history, true, "coffee", false},
		{"unrelated follow-on", "ok", history, false, "coffee", false},
		{"references earlier idea", "the coffee art one was great", history, true, "coffee", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeContinuity(tt.utterance, tt.history, ideas)
			if got.IsContinuation != tt.wantCont {
				t.Errorf("IsContinuation = %v, want %v", got.IsContinuation, tt.wantCont)
			}
			if got.Topic != tt.wantTopic {
				t.Errorf("Topic = %q, want %q", got.Topic, tt.wantTopic)
			}
			if (got.Reference != nil) != tt.wantRef {
				t.Errorf("Reference = %+v, want present=%v", got.Reference, tt.wantRef)
			}
		})
	}
}

func TestAnalyzeContinuityLeavesHistoryUntouched(t *testing.T) {
	history := make([]model.ConversationMessage, 2, 10)
	history[0] = model.ConversationMessage{Role: model.RoleUser, Text: "gym content"}
	history[1] = model.ConversationMessage{Role: model.RoleAssistant, Text: "sure"}
	spare := history[:3]
	spare[2] = model.ConversationMessage{Text: "sentinel"}

	AnalyzeContinuity("workout please", history, nil)

	if spare[2].Text != "sentinel" {
		t.Errorf("history backing array was modified: %q", spare[2].Text)
	}
}

func TestConversationTopic(t *testing.T) {
	msgs := func(texts ...string) []model.ConversationMessage {
		out := make([]model.ConversationMessage, len(texts))
		for i, s := range texts {
			out[i] = model.ConversationMessage{Role: model.RoleUser, Text: s}
		}
		return out
	}
	tests := []struct {
		messages []model.ConversationMessage
		want     string
	}{
		{msgs("gym"), DefaultTopic},
		{msgs("hello", "leg day at the gym"), "workout"},
		{msgs("new recipe", "for my kitchen"), "cooking"},
		{msgs("something crazy", "very messy"), "chaos"},
		{msgs("hi", "there"), DefaultTopic},
	}
	for _, tt := range tests {
		if got := ConversationTopic(tt.messages); got != tt.want {
			t.Errorf("ConversationTopic(%v) = %q, want %q", tt.messages, got, tt.want)
		}
	}
}

func TestLastContentReference(t *testing.T) {
	ideas := []model.ContentIdea{
		{Idea: "Gym fails compilation"},
		{Idea: "Dog reacts to vacuum"},
		{Idea: "Coffee art fails"},
		{Idea: "Morning routine speedrun"},
	}
	if ref := LastContentReference("redo the dog reacts video", ideas); ref == nil || ref.Idea != "Dog reacts to vacuum" {
		t.Errorf("expected dog idea, got %+v", ref)
	}
	// Only the last three ideas are considered.
	if ref := LastContentReference("gym fails again", ideas); ref != nil {
		t.Errorf("expected no reference outside the window, got %+v", ref)
	}
	if ref := LastContentReference("anything", nil); ref != nil {
		t.Errorf("expected nil for empty history, got %+v", ref)
	}
}
