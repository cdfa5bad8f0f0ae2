package queue

import (
	"context"
	"testing"
	"time"

	"StockCast/pkg/logger"
)

type testJob struct {
	handled chan *testPayload
}

type testPayload struct {
	ID string `json:"id"`
}

func (j *testJob) Name() string { return "test" }
func (j *testJob) Type() string { return "test.message" }

func (j *testJob) Handle(_ context.Context, payload interface{}) error {
	p, err := ParsePayload[testPayload](payload)
	if err != nil {
		return err
	}
	j.handled <- p
	return nil
}

func TestMemoryQueueDelivers(t *testing.T) {
	q := NewMemoryQueue(logger.Nop(), &Config{Workers: 2, QueueSize: 8})
	job := &testJob{handled: make(chan *testPayload, 8)}
	q.RegisterJob(job)

	if err := q.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer q.Stop(context.Background())

	if err := q.Enqueue(context.Background(), "test.message", &testPayload{ID: "a"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	select {
	case p := <-job.handled:
		if p.ID != "a" {
			t.Errorf("payload id = %q", p.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message never handled")
	}
}

func TestMemoryQueueUnknownType(t *testing.T) {
	q := NewMemoryQueue(logger.Nop(), &Config{Workers: 1, QueueSize: 8})
	job := &testJob{handled: make(chan *testPayload, 1)}
	q.RegisterJob(job)

	if err := q.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer q.Stop(context.Background())

	if err := q.Enqueue(context.Background(), "other.message", &testPayload{ID: "x"}); err == nil {
		t.Fatal("enqueue of unregistered type succeeded")
	}
	select {
	case <-job.handled:
		t.Fatal("unregistered type was handled")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryQueueStopDrains(t *testing.T) {
	q := NewMemoryQueue(logger.Nop(), &Config{Workers: 1, QueueSize: 8})
	job := &testJob{handled: make(chan *testPayload, 8)}
	q.RegisterJob(job)

	if err := q.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(context.Background(), "test.message", &testPayload{ID: id}); err != nil {
			t.Fatalf("Enqueue %s: %v", id, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := len(job.handled); got != 3 {
		t.Errorf("handled = %d, want 3 before stop returned", got)
	}
}
