package content

import (
	"strings"
	"unicode"

	"ai-content-consultant/internal/model"
)

// Continuity describes how a turn relates to the conversation so far.
type Continuity struct {
	IsContinuation bool
	Topic          string
	// Reference is the recent idea the utterance appears to talk about.
	Reference *model.ContentIdea
}

// DefaultTopic is used when no topic family matches recent messages.
const DefaultTopic = "general"

var continuationPhrases = []string{
	"more", "another", "different", "similar", "like that", "chaotic", "funnier",
	"better", "worse", "change", "modify", "update", "improve", "variation",
	"make it", "but", "instead", "also", "what about", "how about",
}

// topicFamilies is checked in order; the first family with a keyword in the
// recent messages names the topic.
var topicFamilies = []struct {
	topic    string
	keywords []string
}{
	{"coffee", []string{"coffee", "morning", "caffeine", "brew"}},
	{"workout", []string{"workout", "fitness", "exercise", "gym"}},
	{"cooking", []string{"cooking", "recipe", "food", "kitchen"}},
	{"dance", []string{"dance", "dancing", "choreography", "music"}},
	{"transformation", []string{"before", "after", "transformation", "change"}},
	{"morning routine", []string{"morning", "routine", "wake up", "start day"}},
	{"chaos", []string{"chaotic", "crazy", "wild", "messy", "dramatic"}},
}

const recentWindow = 6

// AnalyzeContinuity inspects utterance against history (which does not yet
// include utterance) and the ideas generated so far.
func AnalyzeContinuity(utterance string, history []model.ConversationMessage, ideas []model.ContentIdea) Continuity {
	recent := recentMessages(history)
	withCurrent := make([]model.ConversationMessage, 0, len(recent)+1)
	withCurrent = append(withCurrent, recent...)
	withCurrent = append(withCurrent, model.ConversationMessage{Role: model.RoleUser, Text: utterance})

	return Continuity{
		IsContinuation: isContinuation(utterance, history),
		Topic:          ConversationTopic(withCurrent),
		Reference:      LastContentReference(utterance, ideas),
	}
}

func isContinuation(utterance string, history []model.ConversationMessage) bool {
	words := newWordSet(utterance)
	if words.hasPhrase(continuationPhrases...) {
		return true
	}
	if len(history) < 2 {
		return false
	}
	for _, msg := range recentMessages(history) {
		for _, w := range strings.Fields(strings.ToLower(msg.Text)) {
			if len(w) > 4 && isAlpha(w) && words.has(w) {
				return true
			}
		}
	}
	return false
}

// ConversationTopic names the first topic family mentioned in messages.
// A conversation of fewer than two messages is always general.
func ConversationTopic(messages []model.ConversationMessage) string {
	if len(messages) < 2 {
		return DefaultTopic
	}
	var recent strings.Builder
	for _, msg := range recentMessages(messages) {
		recent.WriteString(strings.ToLower(msg.Text))
		recent.WriteByte(' ')
	}
	text := recent.String()
	for _, family := range topicFamilies {
		for _, kw := range family.keywords {
			if strings.Contains(text, kw) {
				return family.topic
			}
		}
	}
	return DefaultTopic
}

// LastContentReference returns the most recent of the last three ideas that
// shares at least two words with utterance.
func LastContentReference(utterance string, ideas []model.ContentIdea) *model.ContentIdea {
	if len(ideas) == 0 {
		return nil
	}
	input := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(utterance)) {
		input[w] = struct{}{}
	}
	start := len(ideas) - 3
	if start < 0 {
		start = 0
	}
	for i := len(ideas) - 1; i >= start; i-- {
		seen := make(map[string]struct{})
		overlap := 0
		for _, w := range strings.Fields(strings.ToLower(ideas[i].Idea)) {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, ok := input[w]; ok {
				overlap++
			}
		}
		if overlap >= 2 {
			ref := ideas[i]
			return &ref
		}
	}
	return nil
}

func recentMessages(history []model.ConversationMessage) []model.ConversationMessage {
	if len(history) <= recentWindow {
		return history
	}
	return history[len(history)-recentWindow:]
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
