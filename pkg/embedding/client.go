// Package embedding turns example posts and search queries into vectors.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"ai-content-consultant/internal/config"
	"ai-content-consultant/pkg/log"

	openai "github.com/sashabaranov/go-openai"
)

// Client creates embedding vectors.
type Client interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type embedder interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type openAICompatibleClient struct {
	cfg config.EmbeddingConfig
	api embedder
}

// NewClient builds an embedding client against an OpenAI-compatible API.
func NewClient(cfg config.EmbeddingConfig) Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &openAICompatibleClient{cfg: cfg, api: openai.NewClientWithConfig(apiCfg)}
}

func (c *openAICompatibleClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	log.Debugw("[EmbeddingClient] requesting embedding", "model", c.cfg.Model, "input_len", len(text))

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(c.cfg.Model),
		Dimensions: c.cfg.Dimensions,
	})
	if err != nil {
		log.Errorf("[EmbeddingClient] embedding call failed: %v", err)
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("received empty embedding from api")
	}
	return resp.Data[0].Embedding, nil
}
