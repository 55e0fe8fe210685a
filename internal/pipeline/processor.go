// Package pipeline turns queued ingestion tasks into indexed example posts.
package pipeline

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-content-consultant/internal/content"
	"ai-content-consultant/internal/model"
	"ai-content-consultant/pkg/embedding"
	"ai-content-consultant/pkg/log"
	"ai-content-consultant/pkg/metrics"
	"ai-content-consultant/pkg/storage"
	"ai-content-consultant/pkg/tasks"
)

// Indexer stores one example document.
type Indexer interface {
	IndexExample(ctx context.Context, doc model.ExampleDocument) error
}

// CacheInvalidator drops cached retrieval results after the corpus changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Processor embeds and indexes the examples of an ingestion task.
type Processor struct {
	embeddingClient embedding.Client
	store           storage.ObjectStore
	indexer         Indexer
	cache           CacheInvalidator
	modelVersion    string
}

// NewProcessor wires the pipeline. store and cache may be nil.
func NewProcessor(embeddingClient embedding.Client, store storage.ObjectStore, indexer Indexer, cache CacheInvalidator, modelVersion string) *Processor {
	return &Processor{
		embeddingClient: embeddingClient,
		store:           store,
		indexer:         indexer,
		cache:           cache,
		modelVersion:    modelVersion,
	}
}

// Process indexes the inline examples and the referenced manifest of task.
// It fails only when nothing could be indexed, so the task is retried.
func (p *Processor) Process(ctx context.Context, task tasks.ExampleIngestTask) error {
	log.Infow("[Processor] ingest started", "task_id", task.TaskID, "source", task.Source,
		"inline", len(task.Examples), "manifest", task.ManifestObject)

	docs := make([]model.ExampleDocument, 0, len(task.Examples))
	for _, ex := range task.Examples {
		docs = append(docs, DocumentFromExample(ex))
	}
	if task.ManifestObject != "" {
		posts, err := p.loadManifest(ctx, task.ManifestObject)
		if err != nil {
			return err
		}
		for _, post := range posts {
			docs = append(docs, DocumentFromPost(post))
		}
	}
	if len(docs) == 0 {
		log.Warnf("[Processor] task %s carries no examples", task.TaskID)
		return nil
	}

	indexed, failed := 0, 0
	for _, doc := range docs {
		if err := p.indexOne(ctx, doc); err != nil {
			failed++
			metrics.IngestedExamplesTotal.WithLabelValues("failed").Inc()
			log.Errorf("[Processor] example %s not indexed: %v", doc.ExampleID, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		indexed++
		metrics.IngestedExamplesTotal.WithLabelValues("indexed").Inc()
	}

	if indexed > 0 && p.cache != nil {
		if err := p.cache.Invalidate(ctx); err != nil {
			log.Warnf("[Processor] failed to invalidate example cache: %v", err)
		}
	}
	log.Infow("[Processor] ingest finished", "task_id", task.TaskID, "indexed", indexed, "failed", failed)
	if indexed == 0 {
		return fmt.Errorf("none of %d examples could be indexed", failed)
	}
	return nil
}

func (p *Processor) loadManifest(ctx context.Context, objectName string) ([]model.TrendingPost, error) {
	if p.store == nil {
		return nil, errors.New("object storage is not configured")
	}
	data, err := p.store.Get(ctx, objectName)
	if err != nil {
		return nil, err
	}
	var manifest model.TrendingManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", objectName, err)
	}
	return manifest.Posts, nil
}

func (p *Processor) indexOne(ctx context.Context, doc model.ExampleDocument) error {
	vector, err := p.embeddingClient.CreateEmbedding(ctx, embeddingText(doc))
	if err != nil {
		return err
	}
	doc.Vector = vector
	doc.ModelVersion = p.modelVersion
	doc.IndexedAt = time.Now().UTC()
	return p.indexer.IndexExample(ctx, doc)
}

func embeddingText(doc model.ExampleDocument) string {
	if doc.Hook != "" && !strings.Contains(doc.Text, doc.Hook) {
		return doc.Hook + "\n" + doc.Text
	}
	return doc.Text
}

// DocumentFromExample normalises an example sent inline.
func DocumentFromExample(ex model.RetrievalExample) model.ExampleDocument {
	platform := normalizePlatform(ex.Platform)
	text := strings.TrimSpace(ex.Content)
	hashtags := mergeHashtags(ex.Hashtags, text)
	category := strings.ToLower(strings.TrimSpace(ex.Category))
	if category == "" {
		category = ClassifyCategory(text + " " + strings.Join(hashtags, " "))
	}
	id := ex.ID
	if id == "" {
		id = exampleID(platform, text)
	}
	return model.ExampleDocument{
		ExampleID:      id,
		Platform:       platform,
		ContentType:    "video",
		Text:           text,
		Hook:           strings.TrimSpace(ex.Hook),
		Hashtags:       hashtags,
		Category:       category,
		EngagementRate: ex.EngagementRate,
	}
}

// DocumentFromPost normalises a manifest post and computes its engagement
// rate from the counters.
func DocumentFromPost(post model.TrendingPost) model.ExampleDocument {
	platform := normalizePlatform(post.Platform)
	text := strings.TrimSpace(post.Text)
	hashtags := mergeHashtags(post.Hashtags, text)
	category := strings.ToLower(strings.TrimSpace(post.Category))
	if category == "" {
		category = ClassifyCategory(text + " " + strings.Join(hashtags, " "))
	}
	id := post.ID
	if id == "" {
		id = exampleID(platform, text)
	}
	contentType := post.ContentType
	if contentType == "" {
		contentType = "video"
	}
	return model.ExampleDocument{
		ExampleID:      id,
		Platform:       platform,
		ContentType:    contentType,
		Text:           text,
		Hook:           strings.TrimSpace(post.Hook),
		Hashtags:       hashtags,
		Author:         post.Author,
		Category:       category,
		Views:          post.Views,
		Likes:          post.Likes,
		Shares:         post.Shares,
		Comments:       post.Comments,
		EngagementRate: EngagementRate(post.Likes, post.Comments, post.Shares, post.Views),
	}
}

// EngagementRate is interactions per view, in percent. Zero views give 0.
func EngagementRate(likes, comments, shares, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(likes+comments+shares) / float64(views) * 100
}

var categoryKeywords = []struct {
	category string
	prefixes []string
}{
	{"lifestyle", []string{"life", "daily", "routine", "morning", "night"}},
	{"fitness", []string{"workout", "gym", "fitness", "health", "exercise"}},
	{"food", []string{"food", "recipe", "cooking", "meal", "eat"}},
	{"fashion", []string{"outfit", "style", "fashion", "clothes", "wear"}},
	{"business", []string{"business", "entrepreneur", "startup", "work", "career"}},
	{"tech", []string{"tech", "software", "app", "code", "programming"}},
	{"entertainment", []string{"funny", "comedy", "music", "dance", "entertainment"}},
}

// ClassifyCategory returns the first category with a word of text starting
// with one of its keywords, or "general".
func ClassifyCategory(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, c := range categoryKeywords {
		for _, w := range words {
			for _, prefix := range c.prefixes {
				if strings.HasPrefix(w, prefix) {
					return c.category
				}
			}
		}
	}
	return "general"
}

func normalizePlatform(s string) string {
	if p, ok := model.ParsePlatform(s); ok {
		return string(p)
	}
	return string(model.DefaultPlatform)
}

// mergeHashtags combines the listed tags with the ones written in text,
// lowercased and without duplicates.
func mergeHashtags(listed []string, text string) []string {
	seen := make(map[string]bool)
	out := []string{}
	add := func(tags []string) {
		for _, t := range content.SanitizeHashtags(tags) {
			t = strings.ToLower(t)
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	add(listed)
	add(content.ExtractHashtags(text))
	return out
}

func exampleID(platform, text string) string {
	sum := sha1.Sum([]byte(platform + "|" + text))
	return hex.EncodeToString(sum[:])
}
