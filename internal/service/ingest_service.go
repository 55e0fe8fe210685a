package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"ai-content-consultant/internal/domain"
	"ai-content-consultant/internal/model"
	"ai-content-consultant/pkg/log"
	"ai-content-consultant/pkg/storage"
	"ai-content-consultant/pkg/tasks"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	maxExamplesPerBatch = 500
	maxManifestBytes    = 10 << 20
)

// EnqueueFunc hands an ingestion task to the queue.
type EnqueueFunc func(ctx context.Context, task tasks.ExampleIngestTask) error

// IngestReceipt acknowledges queued work.
type IngestReceipt struct {
	TaskID         string `json:"taskId"`
	ManifestObject string `json:"manifestObject,omitempty"`
	Examples       int    `json:"examples"`
}

// ExampleBatch is an inline batch of examples to index.
type ExampleBatch struct {
	Source   string                   `json:"source"`
	Examples []model.RetrievalExample `json:"examples"`
}

func (b ExampleBatch) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Examples,
			validation.Required,
			validation.Length(1, maxExamplesPerBatch),
			validation.Each(validation.By(validExample)),
		),
	)
}

func validExample(value interface{}) error {
	ex, _ := value.(model.RetrievalExample)
	if strings.TrimSpace(ex.Content) == "" {
		return errors.New("content is required")
	}
	if _, ok := model.ParsePlatform(ex.Platform); !ok {
		return fmt.Errorf("unknown platform %q", ex.Platform)
	}
	return nil
}

// IngestService queues example posts for indexing.
type IngestService interface {
	EnqueueExamples(ctx context.Context, userID uint, batch ExampleBatch) (*IngestReceipt, error)
	UploadManifest(ctx context.Context, userID uint, fileName string, r io.Reader) (*IngestReceipt, error)
}

type ingestService struct {
	store   storage.ObjectStore
	enqueue EnqueueFunc
}

// NewIngestService needs store only for manifest uploads; it may be nil.
func NewIngestService(store storage.ObjectStore, enqueue EnqueueFunc) IngestService {
	return &ingestService{store: store, enqueue: enqueue}
}

func (s *ingestService) EnqueueExamples(ctx context.Context, userID uint, batch ExampleBatch) (*IngestReceipt, error) {
	if err := batch.Validate(); err != nil {
		return nil, &domain.InvalidInputError{Message: err.Error()}
	}
	source := strings.TrimSpace(batch.Source)
	if source == "" {
		source = "api"
	}
	task := tasks.ExampleIngestTask{
		TaskID:      uuid.NewString(),
		Source:      source,
		Examples:    batch.Examples,
		RequestedBy: userID,
	}
	if err := s.enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue ingest task: %w", err)
	}
	log.Infow("[IngestService] examples queued", "task_id", task.TaskID, "count", len(batch.Examples), "user_id", userID)
	return &IngestReceipt{TaskID: task.TaskID, Examples: len(batch.Examples)}, nil
}

// UploadManifest checks that r holds a trending manifest, stores it and
// queues it for indexing.
func (s *ingestService) UploadManifest(ctx context.Context, userID uint, fileName string, r io.Reader) (*IngestReceipt, error) {
	if s.store == nil {
		return nil, errors.New("object storage is not configured")
	}
	data, err := io.ReadAll(io.LimitReader(r, maxManifestBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if len(data) > maxManifestBytes {
		return nil, &domain.InvalidInputError{Message: "manifest is larger than 10 MiB"}
	}
	manifest, err := DecodeManifest(data)
	if err != nil {
		return nil, err
	}

	taskID := uuid.NewString()
	objectName := fmt.Sprintf("manifests/%s.json", taskID)
	if err := s.store.Put(ctx, objectName, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return nil, err
	}

	source := manifest.Source
	if source == "" {
		source = fileName
	}
	task := tasks.ExampleIngestTask{
		TaskID:         taskID,
		Source:         source,
		ManifestObject: objectName,
		RequestedBy:    userID,
	}
	if err := s.enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue ingest task: %w", err)
	}
	log.Infow("[IngestService] manifest queued", "task_id", taskID, "object", objectName, "posts", len(manifest.Posts))
	return &IngestReceipt{TaskID: taskID, ManifestObject: objectName, Examples: len(manifest.Posts)}, nil
}

// DecodeManifest parses a trending manifest and requires at least one post.
func DecodeManifest(data []byte) (*model.TrendingManifest, error) {
	var manifest model.TrendingManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, &domain.InvalidInputError{Message: fmt.Sprintf("manifest is not valid JSON: %v", err)}
	}
	if len(manifest.Posts) == 0 {
		return nil, &domain.InvalidInputError{Message: "manifest has no posts"}
	}
	return &manifest, nil
}
