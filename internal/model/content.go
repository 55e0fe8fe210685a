// Package model holds the service's data types and persisted records.
package model

import "strings"

// Intent is the classified purpose of a user turn.
type Intent string

const (
	IntentGenerateContent    Intent = "generate_content"
	IntentFollowUpRefinement Intent = "follow_up_refinement"
	IntentSearchRequest      Intent = "search_request"
	IntentGeneralChat        Intent = "general_chat"
)

// Structured reports whether turns with this intent produce a ContentIdea.
func (i Intent) Structured() bool {
	return i == IntentGenerateContent || i == IntentFollowUpRefinement
}

// Valid reports whether i is one of the four known intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentGenerateContent, IntentFollowUpRefinement, IntentSearchRequest, IntentGeneralChat:
		return true
	}
	return false
}

// Platform is a target social network.
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"

	DefaultPlatform = PlatformTikTok
)

// ParsePlatform matches s case-insensitively against the known platforms.
func ParsePlatform(s string) (Platform, bool) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformTikTok, PlatformInstagram, PlatformTwitter, PlatformYouTube:
		return p, true
	}
	return "", false
}

// DisplayName is the platform's user-facing spelling.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformTikTok:
		return "TikTok"
	case PlatformInstagram:
		return "Instagram"
	case PlatformTwitter:
		return "Twitter"
	case PlatformYouTube:
		return "YouTube"
	}
	return string(p)
}

// Placeholders used when a model reply lacks a section.
const (
	NoIdea             = "No idea generated"
	NoStructure        = "No structure provided"
	NoCaption          = "No caption generated"
	ConversationalNote = "This is a conversational response - no specific caption needed."
)

// ContentIdea is a structured social media content suggestion.
type ContentIdea struct {
	Idea           string   `json:"idea"`
	VideoStructure string   `json:"videoStructure"`
	Caption        string   `json:"caption"`
	Hashtags       []string `json:"hashtags"`
}

// IsPlaceholder reports whether every text section is a placeholder and no
// hashtags were found.
func (c ContentIdea) IsPlaceholder() bool {
	return c.Idea == NoIdea && c.VideoStructure == NoStructure && c.Caption == NoCaption && len(c.Hashtags) == 0
}

// IsConversational reports whether c records a free-form reply rather than
// a labeled idea.
func (c ContentIdea) IsConversational() bool {
	return c.Caption == ConversationalNote
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage is one entry of the client-held history. The wire form
// names the role "type" and the text "content". Timestamp is kept as the
// client sent it.
type ConversationMessage struct {
	Role              Role         `json:"type"`
	Text              string       `json:"content"`
	Timestamp         string       `json:"timestamp,omitempty"`
	StructuredContent *ContentIdea `json:"structured_content,omitempty"`
}

// ConversationContext is returned with every turn and sent back by the
// client on the next one.
type ConversationContext struct {
	CurrentIntent          Intent        `json:"current_intent"`
	MessageCount           int           `json:"message_count"`
	LastUserInput          string        `json:"last_user_input"`
	NeedsContentGeneration bool          `json:"needs_content_generation"`
	ContentPrompt          string        `json:"content_prompt"`
	LastGeneratedContent   *ContentIdea  `json:"last_generated_content"`
	ContentHistory         []ContentIdea `json:"content_history"`
	ConversationSummary    string        `json:"conversation_summary"`

	SelectedPlatforms      []string      `json:"selected_platforms,omitempty"`
	TrendingContent        TrendingItems `json:"trending_content,omitempty"`
	IsContinuation         bool          `json:"is_continuation"`
	ConversationTopic      string        `json:"conversation_topic,omitempty"`
	ContentGenerationCount int           `json:"content_generation_count"`
}

// RetrievalExample is a previously successful post used as prompt context.
type RetrievalExample struct {
	ID             string   `json:"id,omitempty"`
	Content        string   `json:"content"`
	Platform       string   `json:"platform"`
	Category       string   `json:"category"`
	Hashtags       []string `json:"hashtags"`
	Hook           string   `json:"hook"`
	EngagementRate float64  `json:"engagement_rate"`
	Score          float64  `json:"score,omitempty"`
}

// Snippet renders the example as a single prompt context line.
func (e RetrievalExample) Snippet() string {
	text := strings.TrimSpace(e.Content)
	if hook := strings.TrimSpace(e.Hook); hook != "" && !strings.Contains(text, hook) {
		text = hook + " - " + text
	}
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(e.Platform)
	if e.Category != "" {
		b.WriteString(", ")
		b.WriteString(e.Category)
	}
	b.WriteString(") ")
	b.WriteString(text)
	if len(e.Hashtags) > 0 {
		b.WriteString(" #")
		b.WriteString(strings.Join(e.Hashtags, " #"))
	}
	return b.String()
}
