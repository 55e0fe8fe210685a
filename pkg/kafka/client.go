// Package kafka queues example-ingestion tasks.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-content-consultant/internal/config"
	"ai-content-consultant/pkg/database"
	"ai-content-consultant/pkg/log"
	"ai-content-consultant/pkg/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
)

// maxAttempts is how often a failing task is run before its offset is
// committed anyway.
const maxAttempts = 3

// TaskProcessor handles one ingestion task.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.ExampleIngestTask) error
}

var producer *kafka.Writer

// InitProducer creates the shared writer for cfg.Topic.
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	log.Info("Kafka producer initialized")
}

// ProduceIngestTask enqueues task, keyed by its ID.
func ProduceIngestTask(ctx context.Context, task tasks.ExampleIngestTask) error {
	if producer == nil {
		return errors.New("kafka producer not initialized")
	}
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.TaskID),
		Value: taskBytes,
	})
}

// CloseProducer flushes and closes the shared writer.
func CloseProducer() {
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("failed to close kafka producer", err)
		}
	}
}

// StartConsumer reads ingestion tasks until ctx is cancelled. A failing
// task is retried in place before the next message is fetched; its offset is
// committed after success, for undecodable messages, and once maxAttempts
// failures have been counted.
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Error("failed to close kafka consumer", err)
		}
	}()

	log.Infof("Kafka consumer listening on topic '%s'", cfg.Topic)

	counter := redisAttempts{rdb: database.RDB}
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Kafka consumer stopped")
				return
			}
			log.Error("failed to fetch kafka message", err)
			return
		}

		var task tasks.ExampleIngestTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("dropping undecodable kafka message at offset %d: %v", m.Offset, err)
			commit(ctx, r, m)
			continue
		}

		log.Infow("processing ingest task", "task_id", task.TaskID, "source", task.Source, "offset", m.Offset)
		if !handle(ctx, processor, counter, task, retryBackoff) {
			log.Info("Kafka consumer stopped with an unfinished task")
			return
		}
		commit(ctx, r, m)
	}
}

// retryBackoff is the pause before the second attempt; later pauses grow
// linearly.
const retryBackoff = 2 * time.Second

// attemptCounter counts failed attempts per task across redeliveries.
type attemptCounter interface {
	Incr(ctx context.Context, taskID string) (int64, error)
	Reset(ctx context.Context, taskID string)
}

// handle runs task until it succeeds or its attempt budget is spent and
// reports whether the offset may be committed. It returns false only when
// ctx ends first, leaving the message for redelivery. The counter carries
// failures from earlier deliveries; when it is unavailable the local count
// bounds the retries.
func handle(ctx context.Context, processor TaskProcessor, counter attemptCounter, task tasks.ExampleIngestTask, backoff time.Duration) bool {
	for attempt := 1; ; attempt++ {
		err := processor.Process(ctx, task)
		if err == nil {
			counter.Reset(ctx, task.TaskID)
			log.Infow("ingest task finished", "task_id", task.TaskID, "attempt", attempt)
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		failures := int64(attempt)
		if n, cerr := counter.Incr(ctx, task.TaskID); cerr == nil && n > failures {
			failures = n
		} else if cerr != nil {
			log.Warnf("ingest task %s: attempt counter unavailable: %v", task.TaskID, cerr)
		}
		log.Errorf("ingest task %s failed (%d/%d): %v", task.TaskID, failures, maxAttempts, err)
		if failures >= maxAttempts {
			log.Errorf("ingest task %s failed %d times, committing offset", task.TaskID, failures)
			counter.Reset(ctx, task.TaskID)
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}
}

// redisAttempts keeps the counters in Redis so a crash mid-retry does not
// reset the budget.
type redisAttempts struct {
	rdb *redis.Client
}

func (a redisAttempts) Incr(ctx context.Context, taskID string) (int64, error) {
	if a.rdb == nil {
		return 0, errors.New("redis not initialized")
	}
	key := attemptsKey(taskID)
	n, err := a.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = a.rdb.Expire(ctx, key, 24*time.Hour).Err()
	return n, nil
}

func (a redisAttempts) Reset(ctx context.Context, taskID string) {
	if a.rdb != nil {
		_ = a.rdb.Del(ctx, attemptsKey(taskID)).Err()
	}
}

func attemptsKey(taskID string) string {
	return fmt.Sprintf("kafka:attempts:%s", taskID)
}

func commit(ctx context.Context, r *kafka.Reader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("failed to commit kafka offset %d: %v", m.Offset, err)
	}
}
