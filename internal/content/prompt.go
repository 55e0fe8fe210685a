package content

import (
	"fmt"
	"strings"

	"ai-content-consultant/internal/model"
)

// DefaultSystemInstruction is used when no override is configured.
const DefaultSystemInstruction = `You are an expert content strategist and social media consultant specializing in viral content creation.
You help users with content ideas, strategy advice, and social media best practices.

When responding to users:
- Be conversational, helpful, and encouraging
- Provide actionable advice and practical tips
- Use the provided example posts as context and inspiration
- Be realistic about what works on social media while being supportive
- When the user asks to change a previous idea, acknowledge what you are changing and build on it instead of starting over

For VIDEO STRUCTURE, describe the overall narrative arc, key moments and pacing of the video, not step-by-step filming instructions.`

// NoContextText is the snippet block used when there are no examples.
const NoContextText = "No context provided."

const formatInstruction = `Format your reply using exactly these four section labels, in this order, each followed by its content:
IDEA: a clear, compelling concept that can go viral
VIDEO STRUCTURE: the overall structure and flow of the video
CAPTION: an engaging caption that complements the video
HASHTAGS: relevant hashtags separated by spaces, each starting with #
Do not wrap any section in quotation marks.`

const conversationalInstruction = "Reply conversationally in plain text."

// PromptInput carries everything the prompt is built from.
type PromptInput struct {
	Intent model.Intent
	// SystemInstruction overrides DefaultSystemInstruction when non-empty.
	SystemInstruction string
	// Notes are appended to the system instructions, see BuildContextNotes.
	Notes     string
	Platform  string
	Snippets  []string
	Utterance string

	// Optional wrappers around the snippet block and a replacement for
	// NoContextText.
	RefStart      string
	RefEnd        string
	NoContextText string
}

// BuildPrompt assembles the single text sent to the language model: system
// instructions, platform directive, numbered context snippets, the user's
// utterance and, for intents that expect a ContentIdea, the section format.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	system := strings.TrimSpace(in.SystemInstruction)
	if system == "" {
		system = DefaultSystemInstruction
	}
	b.WriteString(system)
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		b.WriteString("\n\n")
		b.WriteString(notes)
	}

	platform := ResolvePlatform([]string{in.Platform})
	fmt.Fprintf(&b, "\n\nPLATFORM: Target platform is %s. Tailor length, tone and format to %s.",
		platform.DisplayName(), platform.DisplayName())

	b.WriteString("\n\nCONTEXT:\n")
	b.WriteString(renderSnippets(in))

	b.WriteString("\n\nUSER MESSAGE:\n")
	b.WriteString(strings.TrimSpace(in.Utterance))

	b.WriteString("\n\n")
	if in.Intent.Structured() {
		b.WriteString(formatInstruction)
	} else {
		b.WriteString(conversationalInstruction)
	}
	return b.String()
}

func renderSnippets(in PromptInput) string {
	var lines []string
	for _, s := range in.Snippets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%d] %s", len(lines)+1, s))
	}
	if len(lines) == 0 {
		if in.NoContextText != "" {
			return in.NoContextText
		}
		return NoContextText
	}
	body := strings.Join(lines, "\n")
	if in.RefStart != "" || in.RefEnd != "" {
		body = in.RefStart + "\n" + body + "\n" + in.RefEnd
	}
	return body
}

// ResolvePlatform returns the first recognised platform, or the default.
func ResolvePlatform(selected []string) model.Platform {
	for _, s := range selected {
		if p, ok := model.ParsePlatform(s); ok {
			return p
		}
	}
	return model.DefaultPlatform
}

// NotesInput is the conversation state summarised into system notes.
type NotesInput struct {
	Intent            model.Intent
	History           []model.ConversationMessage
	Continuity        Continuity
	GeneratedCount    int
	SelectedPlatforms []string
	TrendingCount     int
}

const (
	historyWindow      = 8
	assistantTextLimit = 300
)

// BuildContextNotes renders the conversation state the model should take
// into account. It returns "" for a fresh conversation with no settings.
func BuildContextNotes(in NotesInput) string {
	var parts []string

	if in.Continuity.IsContinuation {
		parts = append(parts, fmt.Sprintf("CONTINUITY ALERT: The user is continuing or modifying our discussion about %s. Reference and build upon what we have already discussed.", in.Continuity.Topic))
		if ref := in.Continuity.Reference; ref != nil {
			parts = append(parts, fmt.Sprintf("LAST CONTENT DISCUSSED: %s - the user wants to modify or build upon this.", ref.Idea))
		}
	}
	if in.GeneratedCount > 0 {
		parts = append(parts, fmt.Sprintf("CONVERSATION CONTEXT: %d content ideas generated so far. Build upon the established themes and preferences.", in.GeneratedCount))
	}
	if len(in.SelectedPlatforms) > 0 {
		parts = append(parts, "TARGET PLATFORMS: "+strings.Join(in.SelectedPlatforms, ", "))
	}
	if in.TrendingCount > 0 {
		parts = append(parts, fmt.Sprintf("TRENDING CONTEXT: The user has %d trending videos for reference.", in.TrendingCount))
	}
	switch in.Intent {
	case model.IntentFollowUpRefinement:
		parts = append(parts, "USER INTENT: The user wants to refine the previous idea. Focus on the specific changes requested.")
	case model.IntentGenerateContent:
		parts = append(parts, "USER INTENT: The user wants a new content idea.")
	}

	if h := renderHistory(in.History); h != "" {
		parts = append(parts, "RECENT CONVERSATION HISTORY:\n"+h)
	}
	return strings.Join(parts, "\n\n")
}

func renderHistory(history []model.ConversationMessage) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	var lines []string
	for _, msg := range history {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		switch msg.Role {
		case model.RoleAssistant:
			lines = append(lines, "Assistant: "+truncateRunes(text, assistantTextLimit))
		default:
			lines = append(lines, "User: "+text)
		}
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// BuildContentPrompt is the generation request recorded in the context for
// structured turns.
func BuildContentPrompt(utterance string, c Continuity, platforms []string) string {
	var b strings.Builder
	b.WriteString("Create viral social media content based on this request: ")
	b.WriteString(strings.TrimSpace(utterance))
	if c.IsContinuation {
		fmt.Fprintf(&b, "\n\nIMPORTANT: This is a modification of previous content about %s", c.Topic)
		if c.Reference != nil {
			fmt.Fprintf(&b, "\n\nPREVIOUS CONTENT TO MODIFY:\nIdea: %s\nStructure: %s", c.Reference.Idea, c.Reference.VideoStructure)
			b.WriteString("\n\nUser wants to modify this content. Apply their specific requested changes while maintaining the core concept.")
		}
	}
	if len(platforms) > 0 {
		b.WriteString("\n\nOptimize for: ")
		b.WriteString(strings.Join(platforms, ", "))
	}
	return b.String()
}

// FormatContentResponse renders an idea as the assistant's chat reply.
// Continuations after at least one earlier idea get an acknowledgement line.
func FormatContentResponse(idea model.ContentIdea, continuation bool, previousCount int) string {
	tags := make([]string, 0, len(idea.Hashtags))
	for _, t := range idea.Hashtags {
		tags = append(tags, "#"+t)
	}
	reply := fmt.Sprintf("Here's a viral content idea for you:\n\n**Idea:** %s\n\n**Video Structure:** %s\n\n**Caption:** %s\n\n**Hashtags:** %s",
		idea.Idea, idea.VideoStructure, idea.Caption, strings.Join(tags, ", "))
	if continuation && previousCount > 0 {
		reply = "Building on our previous idea with your requested changes:\n\n" + reply
	}
	return reply
}
