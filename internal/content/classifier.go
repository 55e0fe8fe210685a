// Package content holds the pure conversational core: turn classification,
// prompt assembly, reply parsing and context updates. Nothing here performs
// I/O, so every function is safe for concurrent use.
package content

import (
	"strings"
	"unicode"

	"ai-content-consultant/internal/domain"
	"ai-content-consultant/internal/model"
)

// TurnInput is what the classifier sees of a turn. PreviousIdea is the
// context's last generated idea; it stands in when the history entries carry
// no structured content.
type TurnInput struct {
	Utterance         string
	History           []model.ConversationMessage
	SelectedPlatforms []string
	PreviousIdea      *model.ContentIdea
}

var (
	searchPhrases  = []string{"search for", "trending videos", "find videos", "popular videos", "find me videos", "look up videos"}
	searchKeywords = []string{"find", "search", "trending", "popular"}
	videoWords     = []string{"video", "videos"}

	generatePhrases  = []string{"make a video", "make a post", "make a reel", "make a tiktok", "come up with", "write a script"}
	generateKeywords = []string{"generate", "generating", "idea", "ideas", "content", "create", "creating", "brainstorm", "produce", "concept"}

	refinePhrases  = []string{"make it", "like that", "what about", "how about", "try again"}
	refineKeywords = []string{
		"shorter", "longer", "shorten", "lengthen", "different", "change", "modify", "tweak", "adjust",
		"update", "edit", "rewrite", "redo", "replace", "improve", "better", "funnier", "more", "less",
		"instead", "another", "similar", "simpler", "punchier", "catchier", "chaotic", "wilder", "variation",
		"caption", "hashtags", "hashtag", "hook", "structure", "title", "ending",
	}
)

// Classify decides the intent of a user turn. Search phrases win over
// ideation keywords, which win over refinement of the previous idea; with
// no signal the turn is general chat.
func Classify(in TurnInput) (model.Intent, error) {
	if strings.TrimSpace(in.Utterance) == "" {
		return "", &domain.InvalidInputError{Message: "user input must not be empty"}
	}
	words := newWordSet(in.Utterance)

	switch {
	case words.hasPhrase(searchPhrases...) || (words.hasAny(searchKeywords...) && words.hasAny(videoWords...)):
		return model.IntentSearchRequest, nil
	case words.hasPhrase(generatePhrases...) || words.hasAny(generateKeywords...):
		return model.IntentGenerateContent, nil
	case previousIdea(in) != nil && (words.hasPhrase(refinePhrases...) || words.hasAny(refineKeywords...)):
		return model.IntentFollowUpRefinement, nil
	}
	return model.IntentGeneralChat, nil
}

// previousIdea returns the idea a refinement would apply to. The most recent
// assistant message decides when it carries structured content: a
// conversational record there means the last reply was not an idea. Plain
// text history falls back to the context's last generated idea.
func previousIdea(in TurnInput) *model.ContentIdea {
	for i := len(in.History) - 1; i >= 0; i-- {
		msg := in.History[i]
		if msg.Role != model.RoleAssistant {
			continue
		}
		if msg.StructuredContent != nil {
			if msg.StructuredContent.IsConversational() {
				return nil
			}
			return msg.StructuredContent
		}
		break
	}
	if p := in.PreviousIdea; p != nil && !p.IsConversational() && !p.IsPlaceholder() {
		return p
	}
	return nil
}

// wordSet is a lowercased, punctuation-free view of an utterance. Keywords
// match whole words, so "more" does not fire on "morning".
type wordSet struct {
	words  map[string]struct{}
	joined string // " w1 w2 ... wn "
}

func newWordSet(s string) wordSet {
	fields := tokenize(s)
	ws := wordSet{words: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		ws.words[f] = struct{}{}
	}
	ws.joined = " " + strings.Join(fields, " ") + " "
	return ws
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func (w wordSet) has(word string) bool {
	_, ok := w.words[word]
	return ok
}

func (w wordSet) hasAny(words ...string) bool {
	for _, word := range words {
		if w.has(word) {
			return true
		}
	}
	return false
}

func (w wordSet) hasPhrase(phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(w.joined, " "+p+" ") {
			return true
		}
	}
	return false
}
