package content

import (
	"strings"
	"testing"

	"ai-content-consultant/internal/model"
)

func TestBuildPromptOrder(t *testing.T) {
	prompt := BuildPrompt(PromptInput{
		Intent:    model.IntentGenerateContent,
		Notes:     "TARGET PLATFORMS: tiktok",
		Platform:  "tiktok",
		Snippets:  []string{"(tiktok) pancake flip fail"},
		Utterance: "Generate a tiktok idea about morning routines",
	})

	order := []string{
		"You are an expert content strategist",
		"TARGET PLATFORMS: tiktok",
		"PLATFORM: Target platform is TikTok",
		"[1] (tiktok) pancake flip fail",
		"Generate a tiktok idea about morning routines",
		LabelIdea, LabelStructure, LabelCaption, LabelHashtags,
	}
	last := -1
	for _, part := range order {
		idx := strings.Index(prompt, part)
		if idx < 0 {
			t.Fatalf("prompt is missing %q:\n%s", part, prompt)
		}
		if idx <= last {
			t.Errorf("%q appears out of order", part)
		}
		last = idx
	}
}

func TestBuildPromptFormatInstructionOnlyForStructuredIntents(t *testing.T) {
	tests := []struct {
		intent     model.Intent
		wantLabels bool
	}{
		{model.IntentGenerateContent, true},
		{model.IntentFollowUpRefinement, true},
		{model.IntentGeneralChat, false},
		{model.IntentSearchRequest, false},
	}
	for _, tt := range tests {
		prompt := BuildPrompt(PromptInput{Intent: tt.intent, Utterance: "hi"})
		got := HasLabels(prompt)
		if got != tt.wantLabels {
			t.Errorf("intent %s: labels present = %v, want %v", tt.intent, got, tt.wantLabels)
		}
	}
}

func TestBuildPromptPlatform(t *testing.T) {
	tests := []struct {
		platform string
		want     string
	}{
		{"", "TikTok"},
		{"myspace", "TikTok"},
		{"Instagram", "Instagram"},
		{" youtube ", "YouTube"},
		{"TWITTER", "Twitter"},
	}
	for _, tt := range tests {
		prompt := BuildPrompt(PromptInput{Intent: model.IntentGeneralChat, Platform: tt.platform, Utterance: "hi"})
		if !strings.Contains(prompt, "Target platform is "+tt.want+".") {
			t.Errorf("platform %q: expected directive for %s", tt.platform, tt.want)
		}
	}
}

func TestBuildPromptSnippets(t *testing.T) {
	empty := BuildPrompt(PromptInput{Intent: model.IntentGeneralChat, Utterance: "hi", Snippets: []string{"", "  "}})
	if !strings.Contains(empty, NoContextText) {
		t.Error("expected the no-context sentinel when all snippets are blank")
	}

	numbered := BuildPrompt(PromptInput{Intent: model.IntentGeneralChat, Utterance: "hi", Snippets: []string{"", "first", " ", "second"}})
	if !strings.Contains(numbered, "[1] first\n[2] second") {
		t.Errorf("snippets not renumbered after skipping blanks:\n%s", numbered)
	}

	wrapped := BuildPrompt(PromptInput{Intent: model.IntentGeneralChat, Utterance: "hi", Snippets: []string{"x"}, RefStart: "<<REF>>", RefEnd: "<<END>>"})
	if !strings.Contains(wrapped, "<<REF>>\n[1] x\n<<END>>") {
		t.Errorf("snippets not wrapped by reference markers:\n%s", wrapped)
	}

	custom := BuildPrompt(PromptInput{Intent: model.IntentGeneralChat, Utterance: "hi", NoContextText: "nothing retrieved"})
	if !strings.Contains(custom, "nothing retrieved") || strings.Contains(custom, NoContextText) {
		t.Error("custom no-context text not applied")
	}
}

func TestBuildPromptSystemOverride(t *testing.T) {
	prompt := BuildPrompt(PromptInput{Intent: model.IntentGeneralChat, SystemInstruction: "You are terse.", Utterance: "hi"})
	if !strings.HasPrefix(prompt, "You are terse.") {
		t.Errorf("override not used:\n%s", prompt)
	}
	if strings.Contains(prompt, "expert content strategist") {
		t.Error("default instruction should be replaced by the override")
	}
}

func TestBuildContextNotes(t *testing.T) {
	if notes := BuildContextNotes(NotesInput{}); notes != "" {
		t.Errorf("expected empty notes for a fresh conversation, got %q", notes)
	}

	long := strings.Repeat("a", 350)
	notes := BuildContextNotes(NotesInput{
		Intent:            model.IntentFollowUpRefinement,
		History:           []model.ConversationMessage{{Role: model.RoleUser, Text: "make a video"}, {Role: model.RoleAssistant, Text: long}},
		Continuity:        Continuity{IsContinuation: true, Topic: "coffee", Reference: &model.ContentIdea{Idea: "Latte art speedrun"}},
		GeneratedCount:    2,
		SelectedPlatforms: []string{"tiktok", "instagram"},
		TrendingCount:     3,
	})
	for _, want := range []string{
		"CONTINUITY ALERT", "about coffee", "LAST CONTENT DISCUSSED: Latte art speedrun",
		"2 content ideas generated", "TARGET PLATFORMS: tiktok, instagram", "3 trending videos",
		"User: make a video", "Assistant: " + strings.Repeat("a", 300) + "...",
	} {
		if !strings.Contains(notes, want) {
			t.Errorf("notes missing %q", want)
		}
	}
	if strings.Contains(notes, strings.Repeat("a", 301)) {
		t.Error("assistant text was not truncated")
	}
}

func TestBuildContentPrompt(t *testing.T) {
	plain := BuildContentPrompt("a gym idea", Continuity{}, nil)
	if plain != "Create viral social media content based on this request: a gym idea" {
		t.Errorf("BuildContentPrompt() = %q", plain)
	}

	cont := BuildContentPrompt("make it funnier", Continuity{
		IsContinuation: true,
		Topic:          "workout",
		Reference:      &model.ContentIdea{Idea: "Gym fails", VideoStructure: "Slow motion"},
	}, []string{"tiktok"})
	for _, want := range []string{"modification of previous content about workout", "Idea: Gym fails\nStructure: Slow motion", "Optimize for: tiktok"} {
		if !strings.Contains(cont, want) {
			t.Errorf("content prompt missing %q", want)
		}
	}
}

func TestFormatContentResponse(t *testing.T) {
	idea := model.ContentIdea{Idea: "I", VideoStructure: "S", Caption: "C", Hashtags: []string{"a", "b"}}
	want := "Here's a viral content idea for you:\n\n**Idea:** I\n\n**Video Structure:** S\n\n**Caption:** C\n\n**Hashtags:** #a, #b"

	if got := FormatContentResponse(idea, false, 3); got != want {
		t.Errorf("FormatContentResponse() = %q", got)
	}
	if got := FormatContentResponse(idea, true, 0); got != want {
		t.Error("first idea should not carry the continuation line")
	}
	if got := FormatContentResponse(idea, true, 1); !strings.HasPrefix(got, "Building on our previous idea with your requested changes:\n\n") {
		t.Errorf("missing continuation line: %q", got)
	}
}
