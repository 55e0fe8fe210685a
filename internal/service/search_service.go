// Package service holds the application use cases.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"ai-content-consultant/internal/model"
	"ai-content-consultant/internal/repository"
	"ai-content-consultant/pkg/embedding"
	"ai-content-consultant/pkg/log"
	"ai-content-consultant/pkg/metrics"

	"github.com/elastic/go-elasticsearch/v8"
)

// SearchService finds previously successful posts similar to a query.
type SearchService interface {
	SearchExamples(ctx context.Context, query, platform string, topK int) ([]model.RetrievalExample, error)
}

var errSearchUnavailable = errors.New("example search is not configured")

type searchService struct {
	embeddingClient embedding.Client
	esClient        *elasticsearch.Client
	indexName       string
	cache           repository.ExampleCacheRepository
}

// NewSearchService builds the hybrid search over indexName. cache may be nil.
func NewSearchService(embeddingClient embedding.Client, esClient *elasticsearch.Client, indexName string, cache repository.ExampleCacheRepository) SearchService {
	return &searchService{
		embeddingClient: embeddingClient,
		esClient:        esClient,
		indexName:       indexName,
		cache:           cache,
	}
}

// SearchExamples runs a kNN recall over the example vectors, filtered to
// platform when one is given, and reranks the window with BM25. A zero-hit
// search is retried once with the denoised phrase.
func (s *searchService) SearchExamples(ctx context.Context, query, platform string, topK int) ([]model.RetrievalExample, error) {
	if s.esClient == nil || s.embeddingClient == nil {
		return nil, errSearchUnavailable
	}
	if topK <= 0 {
		topK = 5
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, query, platform, topK)
		if err != nil {
			log.Warnf("[SearchService] cache read failed: %v", err)
		} else if ok {
			metrics.RetrievalQueriesTotal.WithLabelValues("cache", "hit").Inc()
			return cached, nil
		}
	}

	start := time.Now()
	examples, err := s.search(ctx, query, platform, topK)
	if err != nil {
		metrics.RetrievalQueriesTotal.WithLabelValues("elasticsearch", "error").Inc()
		return nil, err
	}
	metrics.RetrievalQueriesTotal.WithLabelValues("elasticsearch", "ok").Inc()
	log.Infow("[SearchService] search finished",
		"query", query, "platform", platform, "hits", len(examples), "elapsed_ms", time.Since(start).Milliseconds())

	if s.cache != nil {
		if err := s.cache.Set(ctx, query, platform, topK, examples); err != nil {
			log.Warnf("[SearchService] cache write failed: %v", err)
		}
	}
	return examples, nil
}

func (s *searchService) search(ctx context.Context, query, platform string, topK int) ([]model.RetrievalExample, error) {
	normalized := normalizeQuery(query)

	vector, err := s.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}

	hits, err := s.run(ctx, buildExampleQuery(vector, strings.TrimSpace(query), platform, topK))
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 && normalized != "" && normalized != strings.ToLower(strings.TrimSpace(query)) {
		log.Infof("[SearchService] no hits, retrying with phrase '%s'", normalized)
		hits, err = s.run(ctx, buildExampleQuery(vector, normalized, platform, topK))
		if err != nil {
			return nil, err
		}
	}

	examples := make([]model.RetrievalExample, 0, len(hits))
	for _, h := range hits {
		examples = append(examples, h.Source.ToExample(h.Score))
	}
	return examples, nil
}

type exampleHit struct {
	Source model.ExampleDocument `json:"_source"`
	Score  float64               `json:"_score"`
}

func (s *searchService) run(ctx context.Context, esQuery map[string]interface{}) ([]exampleHit, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}
	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.indexName),
		s.esClient.Search.WithBody(&buf),
		s.esClient.Search.WithSourceExcludes("vector"),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch returned %s: %s", res.Status(), string(body))
	}
	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]exampleHit, error) {
	var esResponse struct {
		Hits struct {
			Hits []exampleHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}
	return esResponse.Hits.Hits, nil
}

// buildExampleQuery recalls topK*30 neighbours and rescores them with an
// AND-match on text and hook. The kNN score keeps a small weight.
func buildExampleQuery(vector []float32, phrase, platform string, topK int) map[string]interface{} {
	recall := topK * 30
	knn := map[string]interface{}{
		"field":          "vector",
		"query_vector":   vector,
		"k":              recall,
		"num_candidates": recall,
	}
	boolQuery := map[string]interface{}{
		"should": []map[string]interface{}{
			{"multi_match": map[string]interface{}{
				"query":  phrase,
				"fields": []string{"text", "hook^2"},
			}},
			{"match_phrase": map[string]interface{}{
				"text": map[string]interface{}{"query": phrase, "boost": 3.0},
			}},
		},
	}
	if platform != "" {
		filter := []map[string]interface{}{{"term": map[string]interface{}{"platform": platform}}}
		knn["filter"] = filter
		boolQuery["filter"] = filter
	}
	return map[string]interface{}{
		"knn":   knn,
		"query": map[string]interface{}{"bool": boolQuery},
		"rescore": map[string]interface{}{
			"window_size": recall,
			"query": map[string]interface{}{
				"rescore_query": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":    phrase,
						"fields":   []string{"text", "hook"},
						"operator": "and",
					},
				},
				"query_weight":         0.2,
				"rescore_query_weight": 1.0,
			},
		},
		"size": topK,
	}
}

var queryStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "me": true, "please": true, "can": true,
	"you": true, "give": true, "some": true, "for": true, "about": true, "on": true,
	"i": true, "want": true, "need": true, "show": true, "of": true, "to": true,
}

// normalizeQuery lowercases q, drops punctuation and filler words, and
// collapses whitespace.
func normalizeQuery(q string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '#' {
			return unicode.ToLower(r)
		}
		return ' '
	}, q)
	var kept []string
	for _, w := range strings.Fields(cleaned) {
		if !queryStopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
