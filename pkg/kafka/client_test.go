package kafka

import (
	"context"
	"errors"
	"testing"

	"ai-content-consultant/pkg/tasks"
)

type flakyProcessor struct {
	failures int
	calls    int
	cancel   context.CancelFunc
}

func (p *flakyProcessor) Process(context.Context, tasks.ExampleIngestTask) error {
	p.calls++
	if p.calls <= p.failures {
		if p.cancel != nil {
			p.cancel()
		}
		return errors.New("elasticsearch unavailable")
	}
	return nil
}

type memoryAttempts struct {
	counts map[string]int64
	err    error
	resets int
}

func (m *memoryAttempts) Incr(_ context.Context, taskID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[taskID]++
	return m.counts[taskID], nil
}

func (m *memoryAttempts) Reset(_ context.Context, taskID string) {
	delete(m.counts, taskID)
	m.resets++
}

func TestHandleRetriesInPlace(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		prior     int64
		storeErr  error
		wantCalls int
	}{
		{name: "succeeds first time", failures: 0, wantCalls: 1},
		{name: "recovers on second attempt", failures: 1, wantCalls: 2},
		{name: "recovers on last attempt", failures: maxAttempts - 1, wantCalls: maxAttempts},
		{name: "gives up after budget", failures: 10, wantCalls: maxAttempts},
		{name: "earlier deliveries count", failures: 10, prior: maxAttempts - 1, wantCalls: 1},
		{name: "counter down still bounded", failures: 10, storeErr: errors.New("redis down"), wantCalls: maxAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &flakyProcessor{failures: tt.failures}
			counter := &memoryAttempts{counts: map[string]int64{"task-1": tt.prior}, err: tt.storeErr}

			if !handle(context.Background(), p, counter, tasks.ExampleIngestTask{TaskID: "task-1"}, 0) {
				t.Fatal("handle() = false, want the offset to be committable")
			}
			if p.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", p.calls, tt.wantCalls)
			}
			if tt.storeErr == nil && counter.counts["task-1"] != 0 {
				t.Errorf("attempt counter not reset: %d", counter.counts["task-1"])
			}
		})
	}
}

func TestHandleStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := &flakyProcessor{failures: 10, cancel: cancel}
	counter := &memoryAttempts{counts: map[string]int64{}}

	if handle(ctx, p, counter, tasks.ExampleIngestTask{TaskID: "task-2"}, 0) {
		t.Fatal("handle() = true, want the message left for redelivery")
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1", p.calls)
	}
	if counter.resets != 0 {
		t.Error("counter must survive an interrupted task")
	}
}
