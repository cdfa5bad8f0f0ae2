package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockCast/pkg/logger"

	"github.com/google/uuid"
)

// MemoryQueue is an in-process Queue backed by a buffered channel.
// Each enqueued message is delivered to exactly one worker.
type MemoryQueue struct {
	logger    *logger.Logger
	config    *Config
	jobs      map[string]Job
	ch        chan Message
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewMemoryQueue creates an in-process queue.
func NewMemoryQueue(lgr *logger.Logger, config *Config) *MemoryQueue {
	if config == nil {
		config = &Config{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &MemoryQueue{
		logger: lgr,
		config: config,
		jobs:   make(map[string]Job),
		ch:     make(chan Message, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterJob registers a job handler for its message type.
func (q *MemoryQueue) RegisterJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.jobs[job.Type()]; exists {
		q.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	q.jobs[job.Type()] = job
	q.logger.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

// Start launches the worker pool.
func (q *MemoryQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.isRunning {
		return fmt.Errorf("queue already running")
	}
	q.isRunning = true

	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("memory queue started", logger.Int("workers", q.config.Workers))
	return nil
}

// Stop rejects new messages, then waits for the workers to drain the
// buffer. Messages already enqueued still run; the context bounds how
// long the drain may take.
func (q *MemoryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.isRunning {
		q.mu.Unlock()
		return nil
	}
	q.isRunning = false
	close(q.ch)
	q.mu.Unlock()

	doneCh := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-ctx.Done():
		q.cancel() // abort in-flight handlers
		return fmt.Errorf("timeout waiting for queue workers: %w", ctx.Err())
	case <-doneCh:
		q.cancel()
		q.logger.Info("memory queue stopped gracefully")
		return nil
	}
}

// Enqueue adds a message to the queue.
func (q *MemoryQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	msg := Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	// hold the read lock across the send so Stop cannot close the
	// channel underneath us
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.isRunning {
		return fmt.Errorf("queue not running")
	}
	if _, registered := q.jobs[msgType]; !registered {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue full")
	}
}

func (q *MemoryQueue) worker(id int) {
	defer q.wg.Done()
	q.logger.Info("queue worker started", logger.Int("worker_id", id))

	for msg := range q.ch {
		q.process(msg)
	}
	q.logger.Info("queue worker stopping", logger.Int("worker_id", id))
}

func (q *MemoryQueue) process(msg Message) {
	q.mu.RLock()
	job, exists := q.jobs[msg.Type]
	q.mu.RUnlock()
	if !exists {
		q.logger.Error("no job found",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	start := time.Now()
	if err := job.Handle(q.ctx, msg.Payload); err != nil {
		q.logger.Error("message processing error",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()),
			logger.Duration("elapsed_ms", time.Since(start)),
			logger.Error(err))
	}
}
