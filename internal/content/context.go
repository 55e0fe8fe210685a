package content

import (
	"fmt"

	"ai-content-consultant/internal/model"
)

// TurnOutcome is what one accepted turn produced.
type TurnOutcome struct {
	Utterance         string
	Intent            model.Intent
	Idea              *model.ContentIdea
	Continuity        Continuity
	ContentPrompt     string
	SelectedPlatforms []string
	TrendingContent   []string
}

// Produced reports whether the turn yielded an idea worth remembering: a
// structured intent and a labeled reply with at least one non-placeholder
// section.
func (o TurnOutcome) Produced() bool {
	return o.Intent.Structured() && o.Idea != nil && !o.Idea.IsPlaceholder() && !o.Idea.IsConversational()
}

// NextContext derives the context returned to the caller after a turn.
// prev is never modified.
func NextContext(prev model.ConversationContext, out TurnOutcome) model.ConversationContext {
	next := prev
	next.CurrentIntent = out.Intent
	next.MessageCount = prev.MessageCount + 1
	next.LastUserInput = out.Utterance
	next.NeedsContentGeneration = out.Intent.Structured()
	next.ContentPrompt = out.ContentPrompt
	next.IsContinuation = out.Continuity.IsContinuation
	next.ConversationTopic = out.Continuity.Topic
	if out.SelectedPlatforms != nil {
		next.SelectedPlatforms = out.SelectedPlatforms
	}
	if out.TrendingContent != nil {
		next.TrendingContent = out.TrendingContent
	}

	next.ContentHistory = make([]model.ContentIdea, len(prev.ContentHistory), len(prev.ContentHistory)+1)
	copy(next.ContentHistory, prev.ContentHistory)
	if out.Produced() {
		idea := *out.Idea
		next.LastGeneratedContent = &idea
		next.ContentHistory = append(next.ContentHistory, idea)
		next.ContentGenerationCount = prev.ContentGenerationCount + 1
	}
	next.ConversationSummary = Summarize(next)
	return next
}

// Summarize describes the conversation in one line.
func Summarize(c model.ConversationContext) string {
	topic := c.ConversationTopic
	if topic == "" {
		topic = DefaultTopic
	}
	return fmt.Sprintf("%s conversation, %d user turns, %d ideas generated, last intent %s",
		topic, c.MessageCount, len(c.ContentHistory), c.CurrentIntent)
}
