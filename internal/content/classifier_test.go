package content

import (
	"errors"
	"testing"

	"ai-content-consultant/internal/domain"
	"ai-content-consultant/internal/model"
)

func structuredHistory() []model.ConversationMessage {
	return []model.ConversationMessage{
		{Role: model.RoleUser, Text: "Give me a coffee video idea"},
		{Role: model.RoleAssistant, Text: "Here's a viral content idea for you", StructuredContent: &model.ContentIdea{
			Idea:           "Latte art speedrun",
			VideoStructure: "Three cups, one timer",
			Caption:        "Beat my time",
			Hashtags:       []string{"coffee"},
		}},
	}
}

func conversationalHistory() []model.ConversationMessage {
	return []model.ConversationMessage{
		{Role: model.RoleUser, Text: "hello"},
		{Role: model.RoleAssistant, Text: "Hi! How can I help?", StructuredContent: &model.ContentIdea{
			Idea:     "Hi! How can I help?",
			Caption:  model.ConversationalNote,
			Hashtags: []string{},
		}},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		history   []model.ConversationMessage
		want      model.Intent
	}{
		{"ideation request", "Generate a tiktok idea about morning routines", nil, model.IntentGenerateContent},
		{"make a video phrase", "Can you help me make a video for my bakery?", nil, model.IntentGenerateContent},
		{"search phrase", "find trending videos about cooking", nil, model.IntentSearchRequest},
		{"search for phrase", "search for dance clips", nil, model.IntentSearchRequest},
		{"keyword plus video", "show me popular video formats", nil, model.IntentSearchRequest},
		{"search beats ideation", "create content like the popular videos this week", nil, model.IntentSearchRequest},
		{"greeting", "hi", nil, model.IntentGeneralChat},
		{"question", "what time of day should I post?", nil, model.IntentGeneralChat},
		{"refine after idea", "make it shorter", structuredHistory(), model.IntentFollowUpRefinement},
		{"different hashtags", "different hashtags please", structuredHistory(), model.IntentFollowUpRefinement},
		{"change the caption", "change the caption", structuredHistory(), model.IntentFollowUpRefinement},
		{"refine without idea", "make it shorter", nil, model.IntentGeneralChat},
		{"refine after chat reply", "change the caption", conversationalHistory(), model.IntentGeneralChat},
		{"whole words only", "I love my morning", structuredHistory(), model.IntentGeneralChat},
		{"ideation wins over refinement", "another idea please", structuredHistory(), model.IntentGenerateContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(TurnInput{Utterance: tt.utterance, History: tt.history})
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.utterance, got, tt.want)
			}
		})
	}
}

func TestClassifyRejectsEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := Classify(TurnInput{Utterance: in})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Classify(%q) error = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestClassifySearchPhraseIgnoresHistory(t *testing.T) {
	histories := [][]model.ConversationMessage{nil, structuredHistory(), conversationalHistory()}
	for _, phrase := range searchPhrases {
		for _, h := range histories {
			got, err := Classify(TurnInput{Utterance: "please " + phrase + " skincare", History: h})
			if err != nil {
				t.Fatal(err)
			}
			if got != model.IntentSearchRequest {
				t.Errorf("phrase %q with %d history messages = %s", phrase, len(h), got)
			}
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	in := TurnInput{Utterance: "make it funnier", History: structuredHistory(), SelectedPlatforms: []string{"instagram"}}
	first, _ := Classify(in)
	for i := 0; i < 10; i++ {
		if got, _ := Classify(in); got != first {
			t.Fatalf("run %d returned %s, first run %s", i, got, first)
		}
	}
}

func TestClassifyFallsBackToContextIdea(t *testing.T) {
	plainHistory := []model.ConversationMessage{
		{Role: model.RoleUser, Text: "Give me a coffee video idea", Timestamp: "2024-05-01T10:00:00Z"},
		{Role: model.RoleAssistant, Text: "Here's a viral content idea for you", Timestamp: "2024-05-01T10:00:03Z"},
	}
	previous := &model.ContentIdea{
		Idea:           "Latte art speedrun",
		VideoStructure: "Three cups, one timer",
		Caption:        "Beat my time",
		Hashtags:       []string{"coffee"},
	}
	placeholder := &model.ContentIdea{
		Idea:           model.NoIdea,
		VideoStructure: model.NoStructure,
		Caption:        model.NoCaption,
		Hashtags:       []string{},
	}

	tests := []struct {
		name     string
		history  []model.ConversationMessage
		previous *model.ContentIdea
		want     model.Intent
	}{
		{"plain history with context idea", plainHistory, previous, model.IntentFollowUpRefinement},
		{"no history with context idea", nil, previous, model.IntentFollowUpRefinement},
		{"plain history without context idea", plainHistory, nil, model.IntentGeneralChat},
		{"placeholder context idea", plainHistory, placeholder, model.IntentGeneralChat},
		{"conversational context idea", plainHistory, &model.ContentIdea{Idea: "Hi", Caption: model.ConversationalNote}, model.IntentGeneralChat},
		{"chat reply in history wins", conversationalHistory(), previous, model.IntentGeneralChat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(TurnInput{Utterance: "make the caption shorter", History: tt.history, PreviousIdea: tt.previous})
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}
