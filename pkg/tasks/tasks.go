// Package tasks defines the messages exchanged over Kafka.
package tasks

import "ai-content-consultant/internal/model"

// ExampleIngestTask asks the pipeline to index example posts. Examples are
// carried inline, ManifestObject names a trending manifest in object storage;
// either or both may be set.
type ExampleIngestTask struct {
	TaskID         string                   `json:"task_id"`
	Source         string                   `json:"source"`
	ManifestObject string                   `json:"manifest_object,omitempty"`
	Examples       []model.RetrievalExample `json:"examples,omitempty"`
	RequestedBy    uint                     `json:"requested_by"`
}
