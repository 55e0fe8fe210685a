package content

import (
	"strings"
	"testing"

	"ai-content-consultant/internal/model"
)

func TestNextContext(t *testing.T) {
	earlier := model.ContentIdea{Idea: "Gym fails", VideoStructure: "Slow motion", Caption: "Oops", Hashtags: []string{"gym"}}
	fresh := model.ContentIdea{Idea: "Latte art speedrun", VideoStructure: "Three cups", Caption: "Beat my time", Hashtags: []string{"coffee"}}
	placeholder := model.ContentIdea{Idea: model.NoIdea, VideoStructure: model.NoStructure, Caption: model.NoCaption, Hashtags: []string{}}
	unlabeled := ParseConversational("Sure, here's a thought.\nFilm your latte art in slow motion.")

	prev := model.ConversationContext{
		MessageCount:           2,
		LastGeneratedContent:   &earlier,
		ContentHistory:         []model.ContentIdea{earlier},
		ContentGenerationCount: 1,
	}

	tests := []struct {
		name        string
		outcome     TurnOutcome
		wantHistory int
		wantLast    string
		wantCount   int
	}{
		{"new idea", TurnOutcome{Utterance: "coffee idea", Intent: model.IntentGenerateContent, Idea: &fresh}, 2, "Latte art speedrun", 2},
		{"chat keeps last idea", TurnOutcome{Utterance: "thanks", Intent: model.IntentGeneralChat, Idea: &fresh}, 1, "Gym fails", 1},
		{"search keeps last idea", TurnOutcome{Utterance: "find videos", Intent: model.IntentSearchRequest}, 1, "Gym fails", 1},
		{"placeholder idea is not remembered", TurnOutcome{Utterance: "refine", Intent: model.IntentFollowUpRefinement, Idea: &placeholder}, 1, "Gym fails", 1},
		{"unlabeled reply is not remembered", TurnOutcome{Utterance: "coffee idea", Intent: model.IntentGenerateContent, Idea: &unlabeled}, 1, "Gym fails", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := NextContext(prev, tt.outcome)
			if next.MessageCount != 3 {
				t.Errorf("MessageCount = %d, want 3", next.MessageCount)
			}
			if next.CurrentIntent != tt.outcome.Intent {
				t.Errorf("CurrentIntent = %s", next.CurrentIntent)
			}
			if next.LastUserInput != tt.outcome.Utterance {
				t.Errorf("LastUserInput = %q", next.LastUserInput)
			}
			if len(next.ContentHistory) != tt.wantHistory {
				t.Errorf("len(ContentHistory) = %d, want %d", len(next.ContentHistory), tt.wantHistory)
			}
			if next.LastGeneratedContent == nil || next.LastGeneratedContent.Idea != tt.wantLast {
				t.Errorf("LastGeneratedContent = %+v, want idea %q", next.LastGeneratedContent, tt.wantLast)
			}
			if next.ContentGenerationCount != tt.wantCount {
				t.Errorf("ContentGenerationCount = %d, want %d", next.ContentGenerationCount, tt.wantCount)
			}
			if !strings.Contains(next.ConversationSummary, "3 user turns") {
				t.Errorf("ConversationSummary = %q", next.ConversationSummary)
			}
		})
	}

	if len(prev.ContentHistory) != 1 || prev.MessageCount != 2 {
		t.Error("previous context was modified")
	}
}

func TestNextContextFromEmpty(t *testing.T) {
	next := NextContext(model.ConversationContext{}, TurnOutcome{Utterance: "hi", Intent: model.IntentGeneralChat})
	if next.MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", next.MessageCount)
	}
	if next.ContentHistory == nil {
		t.Error("ContentHistory should be an empty slice, not nil")
	}
	if next.LastGeneratedContent != nil {
		t.Error("no idea was produced")
	}
	if next.NeedsContentGeneration {
		t.Error("general chat does not need content generation")
	}
}

func TestNextContextKeepsPlatformsWhenUnset(t *testing.T) {
	prev := model.ConversationContext{SelectedPlatforms: []string{"youtube"}}
	next := NextContext(prev, TurnOutcome{Utterance: "hi", Intent: model.IntentGeneralChat})
	if len(next.SelectedPlatforms) != 1 || next.SelectedPlatforms[0] != "youtube" {
		t.Errorf("SelectedPlatforms = %v", next.SelectedPlatforms)
	}
}
