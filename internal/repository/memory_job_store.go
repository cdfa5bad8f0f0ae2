package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockCast/internal/domain/models"
)

// MemoryJobStore keeps jobs in process memory. Suitable for a single
// instance and for tests; production deployments use the redis store.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]*models.Job)}
}

func (s *MemoryJobStore) Create(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.RequestID]; ok {
		return fmt.Errorf("create %s: %w", job.RequestID, models.ErrJobExists)
	}
	s.jobs[job.RequestID] = job.Clone()
	return nil
}

func (s *MemoryJobStore) Get(_ context.Context, requestID string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[requestID]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", requestID, models.ErrJobNotFound)
	}
	return job.Clone(), nil
}

func (s *MemoryJobStore) MarkProcessing(_ context.Context, requestID string) error {
	return s.transition(requestID, models.StatusProcessing, func(j *models.Job) {})
}

func (s *MemoryJobStore) Complete(_ context.Context, requestID string, result *models.ForecastResult) error {
	return s.transition(requestID, models.StatusCompleted, func(j *models.Job) {
		j.Result = result
	})
}

func (s *MemoryJobStore) Fail(_ context.Context, requestID string, reason string) error {
	return s.transition(requestID, models.StatusFailed, func(j *models.Job) {
		j.Error = reason
	})
}

func (s *MemoryJobStore) transition(requestID string, next models.JobStatus, apply func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[requestID]
	if !ok {
		return fmt.Errorf("transition %s: %w", requestID, models.ErrJobNotFound)
	}
	if job.Status.Terminal() {
		return fmt.Errorf("transition %s to %s: %w", requestID, next, models.ErrTerminalJob)
	}
	if !job.Status.CanTransition(next) {
		return fmt.Errorf("transition %s: %s -> %s not allowed", requestID, job.Status, next)
	}
	job.Status = next
	job.UpdatedAt = time.Now().UTC()
	apply(job)
	return nil
}
