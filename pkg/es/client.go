// Package es manages the Elasticsearch index of example posts.
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ai-content-consultant/internal/config"
	"ai-content-consultant/internal/model"
	"ai-content-consultant/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES creates the client and the example index when missing. dims is the
// embedding vector size.
func InitES(esCfg config.ElasticsearchConfig, dims int) error {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName, dims)
}

// indexMapping describes ExampleDocument. Text fields use the english
// analyzer so "routines" matches "routine".
func indexMapping(dims int) string {
	return fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"example_id": { "type": "keyword" },
				"platform": { "type": "keyword" },
				"content_type": { "type": "keyword" },
				"text": { "type": "text", "analyzer": "english" },
				"hook": { "type": "text", "analyzer": "english" },
				"hashtags": { "type": "keyword" },
				"author": { "type": "keyword" },
				"category": { "type": "keyword" },
				"views": { "type": "long" },
				"likes": { "type": "long" },
				"shares": { "type": "long" },
				"comments": { "type": "long" },
				"engagement_rate": { "type": "float" },
				"vector": { "type": "dense_vector", "dims": %d, "index": true, "similarity": "cosine" },
				"model_version": { "type": "keyword" },
				"indexed_at": { "type": "date" }
			}
		}
	}`, dims)
}

func createIndexIfNotExists(indexName string, dims int) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		return fmt.Errorf("check index %s: %w", indexName, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("index '%s' already exists", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status %d checking index %s", res.StatusCode, indexName)
	}

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(indexMapping(dims))),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", indexName, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", indexName, res.String())
	}
	log.Infof("index '%s' created", indexName)
	return nil
}

// IndexExample stores doc under its ExampleID, replacing any earlier copy.
func IndexExample(ctx context.Context, indexName string, doc model.ExampleDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: doc.ExampleID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index example %s: %s", doc.ExampleID, res.String())
	}
	return nil
}

// Ping reports whether the cluster answers.
func Ping(ctx context.Context) error {
	if ESClient == nil {
		return fmt.Errorf("elasticsearch client not initialized")
	}
	res, err := ESClient.Ping(ESClient.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}

// ExampleIndexer writes example documents to one index.
type ExampleIndexer struct {
	IndexName string
}

func (i ExampleIndexer) IndexExample(ctx context.Context, doc model.ExampleDocument) error {
	return IndexExample(ctx, i.IndexName, doc)
}
