package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-content-consultant/internal/content"
	"ai-content-consultant/internal/domain"
	"ai-content-consultant/internal/model"
	"ai-content-consultant/pkg/llm"
	"ai-content-consultant/pkg/log"
	"ai-content-consultant/pkg/metrics"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	maxUtteranceRunes  = 4000
	maxSearchResults   = 5
	errorReplyTemplate = "I'm having trouble processing your request: %s"
)

// ChatService runs one conversational turn.
type ChatService interface {
	// ProcessTurn classifies the utterance and produces the reply and the
	// next conversation context. On error the returned response is still
	// populated for the client, carrying the context it sent.
	ProcessTurn(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error)
	// StreamTurn is ProcessTurn with conversational replies streamed to
	// writer while they are generated.
	StreamTurn(ctx context.Context, req *model.ChatRequest, writer llm.MessageWriter) (*model.ChatResponse, error)
}

// ChatOptions tune prompt assembly and retrieval.
type ChatOptions struct {
	SystemInstruction string
	RefStart          string
	RefEnd            string
	NoContextText     string
	RetrievalEnabled  bool
	TopK              int
	Generation        *llm.GenerationParams
}

type chatService struct {
	llmClient     llm.Client
	searchService SearchService
	opts          ChatOptions
}

// NewChatService wires the turn pipeline. searchService may be nil, in which
// case search turns report no results and ideation runs without examples.
func NewChatService(llmClient llm.Client, searchService SearchService, opts ChatOptions) ChatService {
	if opts.TopK <= 0 {
		opts.TopK = maxSearchResults
	}
	return &chatService{llmClient: llmClient, searchService: searchService, opts: opts}
}

func (s *chatService) ProcessTurn(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	return s.turn(ctx, req, nil)
}

func (s *chatService) StreamTurn(ctx context.Context, req *model.ChatRequest, writer llm.MessageWriter) (*model.ChatResponse, error) {
	return s.turn(ctx, req, writer)
}

func (s *chatService) turn(ctx context.Context, req *model.ChatRequest, writer llm.MessageWriter) (*model.ChatResponse, error) {
	start := time.Now()
	if err := validateChatRequest(req); err != nil {
		metrics.TurnsTotal.WithLabelValues("none", "invalid").Inc()
		return FailureResponse(req, err), err
	}

	prev := req.UserContext
	utterance := strings.TrimSpace(req.UserInput)
	platforms := prev.SelectedPlatforms

	intent, err := content.Classify(content.TurnInput{
		Utterance:         utterance,
		History:           req.ConversationHistory,
		SelectedPlatforms: platforms,
		PreviousIdea:      prev.LastGeneratedContent,
	})
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("none", "invalid").Inc()
		return FailureResponse(req, err), err
	}

	cont := content.AnalyzeContinuity(utterance, req.ConversationHistory, prev.ContentHistory)
	out := content.TurnOutcome{
		Utterance:         utterance,
		Intent:            intent,
		Continuity:        cont,
		SelectedPlatforms: platforms,
		TrendingContent:   prev.TrendingContent,
	}

	var (
		reply      string
		structured *model.ContentIdea
	)
	switch {
	case intent == model.IntentSearchRequest:
		reply = s.searchReply(ctx, utterance, platforms)
	case intent.Structured():
		idea, raw, err := s.generateIdea(ctx, req, utterance, intent, cont)
		if err != nil {
			metrics.TurnsTotal.WithLabelValues(string(intent), "failed").Inc()
			log.Errorf("[ChatService] generation failed for intent %s: %v", intent, err)
			return FailureResponse(req, err), err
		}
		structured = idea
		out.Idea = idea
		out.ContentPrompt = content.BuildContentPrompt(utterance, cont, platforms)
		if idea.IsConversational() {
			log.Warnf("[ChatService] %s reply carried no section labels, returning it as chat", intent)
			reply = strings.TrimSpace(raw)
		} else {
			reply = content.FormatContentResponse(*idea, cont.IsContinuation, len(prev.ContentHistory))
		}
	default:
		raw, err := s.converse(ctx, req, utterance, intent, cont, writer)
		if err != nil {
			metrics.TurnsTotal.WithLabelValues(string(intent), "failed").Inc()
			log.Errorf("[ChatService] conversational reply failed: %v", err)
			return FailureResponse(req, err), err
		}
		idea := content.ParseConversational(raw)
		structured = &idea
		reply = strings.TrimSpace(raw)
	}

	next := content.NextContext(prev, out)
	metrics.TurnsTotal.WithLabelValues(string(intent), "ok").Inc()
	log.Infow("[ChatService] turn finished",
		"intent", intent,
		"continuation", cont.IsContinuation,
		"topic", cont.Topic,
		"ideas", len(next.ContentHistory),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &model.ChatResponse{
		Success:             true,
		Response:            reply,
		StructuredContent:   structured,
		ConversationContext: next,
		ContentHistory:      next.ContentHistory,
	}, nil
}

// FailureResponse is the reply shown when a turn fails. The caller's context
// is returned unchanged so the conversation can be retried.
func FailureResponse(req *model.ChatRequest, err error) *model.ChatResponse {
	resp := &model.ChatResponse{
		Success:  false,
		Response: fmt.Sprintf(errorReplyTemplate, err.Error()),
		Error:    err.Error(),
	}
	if req != nil {
		resp.ConversationContext = req.UserContext
		resp.ContentHistory = req.UserContext.ContentHistory
	}
	if resp.ContentHistory == nil {
		resp.ContentHistory = []model.ContentIdea{}
	}
	return resp
}

func validateChatRequest(req *model.ChatRequest) error {
	if req == nil {
		return &domain.InvalidInputError{Message: "request body is required"}
	}
	err := validation.Validate(strings.TrimSpace(req.UserInput),
		validation.Required.Error("user_input must not be empty"),
		validation.RuneLength(0, maxUtteranceRunes).Error(fmt.Sprintf("user_input must be at most %d characters", maxUtteranceRunes)),
	)
	if err != nil {
		return &domain.InvalidInputError{Message: err.Error()}
	}
	return nil
}

// generateIdea returns the parsed idea and the raw reply it came from.
func (s *chatService) generateIdea(ctx context.Context, req *model.ChatRequest, utterance string, intent model.Intent, cont content.Continuity) (*model.ContentIdea, string, error) {
	platforms := req.UserContext.SelectedPlatforms
	snippets := s.ideationSnippets(ctx, utterance, platforms, req.UserContext.TrendingContent)
	prompt := s.buildPrompt(req, utterance, intent, cont, snippets)

	raw, err := s.llmClient.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, s.opts.Generation)
	if err != nil {
		return nil, "", &domain.GenerationFailedError{Message: "content generation failed", Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return nil, "", &domain.GenerationFailedError{Message: "content generation failed", Err: llm.ErrEmptyResponse}
	}

	idea := content.Parse(raw)
	idea.Hashtags = content.SanitizeHashtags(idea.Hashtags)
	return &idea, raw, nil
}

func (s *chatService) converse(ctx context.Context, req *model.ChatRequest, utterance string, intent model.Intent, cont content.Continuity, writer llm.MessageWriter) (string, error) {
	prompt := s.buildPrompt(req, utterance, intent, cont, req.UserContext.TrendingContent)
	messages := []llm.Message{{Role: llm.RoleUser, Content: prompt}}

	var (
		raw string
		err error
	)
	if writer != nil {
		raw, err = s.llmClient.StreamChatMessages(ctx, messages, s.opts.Generation, writer)
	} else {
		raw, err = s.llmClient.Generate(ctx, messages, s.opts.Generation)
	}
	if err != nil {
		return "", &domain.GenerationFailedError{Message: "reply generation failed", Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		return "", &domain.GenerationFailedError{Message: "reply generation failed", Err: llm.ErrEmptyResponse}
	}
	return raw, nil
}

func (s *chatService) buildPrompt(req *model.ChatRequest, utterance string, intent model.Intent, cont content.Continuity, snippets []string) string {
	prev := req.UserContext
	notes := content.BuildContextNotes(content.NotesInput{
		Intent:            intent,
		History:           req.ConversationHistory,
		Continuity:        cont,
		GeneratedCount:    len(prev.ContentHistory),
		SelectedPlatforms: prev.SelectedPlatforms,
		TrendingCount:     len(prev.TrendingContent),
	})
	return content.BuildPrompt(content.PromptInput{
		Intent:            intent,
		SystemInstruction: s.opts.SystemInstruction,
		Notes:             notes,
		Platform:          string(content.ResolvePlatform(prev.SelectedPlatforms)),
		Snippets:          snippets,
		Utterance:         utterance,
		RefStart:          s.opts.RefStart,
		RefEnd:            s.opts.RefEnd,
		NoContextText:     s.opts.NoContextText,
	})
}

// ideationSnippets puts the client's trending items first and appends
// retrieved examples. Retrieval failures only cost context.
func (s *chatService) ideationSnippets(ctx context.Context, utterance string, platforms []string, trending []string) []string {
	snippets := make([]string, 0, len(trending)+s.opts.TopK)
	snippets = append(snippets, trending...)
	if !s.opts.RetrievalEnabled || s.searchService == nil {
		return snippets
	}
	examples, err := s.searchService.SearchExamples(ctx, utterance, platformFilter(platforms), s.opts.TopK)
	if err != nil {
		log.Warnf("[ChatService] retrieval skipped: %v", err)
		return snippets
	}
	for _, ex := range examples {
		snippets = append(snippets, ex.Snippet())
	}
	return snippets
}

func (s *chatService) searchReply(ctx context.Context, utterance string, platforms []string) string {
	term := SearchTerm(utterance)
	var examples []model.RetrievalExample
	if s.searchService != nil {
		found, err := s.searchService.SearchExamples(ctx, term, platformFilter(platforms), maxSearchResults)
		if err != nil {
			log.Warnf("[ChatService] search for '%s' failed: %v", term, err)
		} else {
			examples = found
		}
	}
	return FormatSearchReply(term, examples)
}

// FormatSearchReply lists up to five examples found for term.
func FormatSearchReply(term string, examples []model.RetrievalExample) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d trending videos about %q.", len(examples), term)
	if len(examples) == 0 {
		b.WriteString(" Try a broader topic or another platform.")
		return b.String()
	}
	for i, ex := range examples {
		if i == maxSearchResults {
			break
		}
		line := strings.TrimSpace(ex.Hook)
		if line == "" {
			line = strings.TrimSpace(ex.Content)
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, line)
		if ex.Platform != "" {
			fmt.Fprintf(&b, " (%s)", ex.Platform)
		}
	}
	return b.String()
}

var searchFillerWords = map[string]bool{
	"search": true, "find": true, "look": true, "up": true, "show": true, "me": true,
	"trending": true, "popular": true, "video": true, "videos": true, "for": true,
	"some": true, "please": true, "can": true, "you": true,
}

// SearchTerm extracts what a search turn is about: the text after "about",
// "for" or "on", otherwise the utterance without search words.
func SearchTerm(utterance string) string {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	for _, marker := range []string{" about ", " for ", " on "} {
		if i := strings.LastIndex(lower, marker); i >= 0 {
			if term := strings.Trim(lower[i+len(marker):], " ?.!,\"'"); term != "" {
				return term
			}
		}
	}
	var kept []string
	for _, w := range strings.Fields(lower) {
		w = strings.Trim(w, "?.!,\"'")
		if w != "" && !searchFillerWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return lower
	}
	return strings.Join(kept, " ")
}

// platformFilter narrows retrieval only when the user picked a platform.
func platformFilter(platforms []string) string {
	if len(platforms) == 0 {
		return ""
	}
	return string(content.ResolvePlatform(platforms))
}
