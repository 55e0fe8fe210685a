// Package llm talks to an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"ai-content-consultant/internal/config"
	"ai-content-consultant/pkg/log"
	"ai-content-consultant/pkg/metrics"

	"github.com/gorilla/websocket"
	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("language model returned an empty response")

// MessageWriter receives streamed chunks. *websocket.Conn satisfies it.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// Client generates text from role-based messages.
type Client interface {
	// Generate returns the full completion. Transient failures are retried
	// according to the client's retry budget.
	Generate(ctx context.Context, messages []Message, gen *GenerationParams) (string, error)
	// StreamChatMessages writes completion chunks to writer as they arrive and
	// returns the concatenated text.
	StreamChatMessages(ctx context.Context, messages []Message, gen *GenerationParams, writer MessageWriter) (string, error)
}

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// GenerationParams overrides the configured sampling settings. Nil fields
// fall back to config.
type GenerationParams struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// completer is the subset of *openai.Client used here.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// chunkStream is the read side of *openai.ChatCompletionStream.
type chunkStream interface {
	Recv() (openai.ChatCompletionStreamResponse, error)
	Close() error
}

type openAIClient struct {
	cfg        config.LLMConfig
	api        completer
	openStream func(ctx context.Context, req openai.ChatCompletionRequest) (chunkStream, error)
	timeout    time.Duration
	maxRetries int
}

// NewClient builds a client for cfg. BaseURL may point at any
// OpenAI-compatible provider.
func NewClient(cfg config.LLMConfig) Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return newClient(cfg, openai.NewClientWithConfig(apiCfg))
}

func newClient(cfg config.LLMConfig, api completer) *openAIClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	c := &openAIClient{cfg: cfg, api: api, timeout: timeout, maxRetries: retries}
	c.openStream = func(ctx context.Context, req openai.ChatCompletionRequest) (chunkStream, error) {
		stream, err := api.CreateChatCompletionStream(ctx, req)
		if err != nil {
			return nil, err
		}
		return stream, nil
	}
	return c
}

func (c *openAIClient) Generate(ctx context.Context, messages []Message, gen *GenerationParams) (string, error) {
	req := c.buildRequest(messages, gen, false)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Warnf("[LLMClient] retrying generation, attempt %d, previous error: %v", attempt+1, lastErr)
		}
		text, err := c.generateOnce(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil || !IsTransient(err) {
			break
		}
	}
	return "", lastErr
}

func (c *openAIClient) generateOnce(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(attemptCtx, req)
	if err != nil {
		metrics.ObserveGeneration(err, time.Since(start))
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.ObserveGeneration(ErrEmptyResponse, time.Since(start))
		return "", ErrEmptyResponse
	}
	metrics.ObserveGeneration(nil, time.Since(start))
	log.Infow("[LLMClient] generation finished",
		"model", req.Model,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"total_tokens", resp.Usage.TotalTokens,
	)
	return resp.Choices[0].Message.Content, nil
}

// StreamChatMessages retries like Generate, but only while nothing has been
// written: once a chunk reached the writer the error is returned as is.
func (c *openAIClient) StreamChatMessages(ctx context.Context, messages []Message, gen *GenerationParams, writer MessageWriter) (string, error) {
	req := c.buildRequest(messages, gen, true)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Warnf("[LLMClient] retrying stream, attempt %d, previous error: %v", attempt+1, lastErr)
		}
		text, wrote, err := c.streamOnce(ctx, req, writer)
		if err == nil {
			return text, nil
		}
		if wrote {
			return text, err
		}
		lastErr = err
		if ctx.Err() != nil || !IsTransient(err) {
			break
		}
	}
	return "", lastErr
}

// streamOnce runs one streamed completion and reports whether any chunk was
// written.
func (c *openAIClient) streamOnce(ctx context.Context, req openai.ChatCompletionRequest, writer MessageWriter) (string, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	stream, err := c.openStream(attemptCtx, req)
	if err != nil {
		metrics.ObserveGeneration(err, time.Since(start))
		return "", false, fmt.Errorf("open completion stream: %w", err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			metrics.ObserveGeneration(err, time.Since(start))
			return full.String(), full.Len() > 0, fmt.Errorf("read completion stream: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if err := writer.WriteMessage(websocket.TextMessage, []byte(delta)); err != nil {
			return full.String(), true, fmt.Errorf("write stream chunk: %w", err)
		}
	}
	if strings.TrimSpace(full.String()) == "" {
		metrics.ObserveGeneration(ErrEmptyResponse, time.Since(start))
		return "", full.Len() > 0, ErrEmptyResponse
	}
	metrics.ObserveGeneration(nil, time.Since(start))
	return full.String(), true, nil
}

func (c *openAIClient) buildRequest(messages []Message, gen *GenerationParams, stream bool) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
		Stream:   stream,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	// Per-call params win over config; zero config values are left unset.
	if gen != nil && gen.Temperature != nil {
		req.Temperature = float32(*gen.Temperature)
	} else if c.cfg.Generation.Temperature != 0 {
		req.Temperature = float32(c.cfg.Generation.Temperature)
	}
	if gen != nil && gen.TopP != nil {
		req.TopP = float32(*gen.TopP)
	} else if c.cfg.Generation.TopP != 0 {
		req.TopP = float32(c.cfg.Generation.TopP)
	}
	if gen != nil && gen.MaxTokens != nil {
		req.MaxTokens = *gen.MaxTokens
	} else if c.cfg.Generation.MaxTokens != 0 {
		req.MaxTokens = c.cfg.Generation.MaxTokens
	}
	return req
}

// IsTransient reports whether err is worth one more attempt: timeouts,
// dropped connections, rate limiting and upstream 5xx.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
