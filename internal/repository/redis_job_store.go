package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/pkg/cache"
)

// RedisJobStore persists jobs in redis behind the cache service.
// Creation uses SET NX so a request id is taken at most once across
// instances. Updates are plain read-modify-write: each job has exactly
// one worker, so transitions never race.
type RedisJobStore struct {
	cache cache.Service
	ttl   time.Duration
}

func NewRedisJobStore(c cache.Service, ttl time.Duration) *RedisJobStore {
	return &RedisJobStore{cache: c, ttl: ttl}
}

func jobKey(requestID string) string {
	return "job:" + requestID
}

func (s *RedisJobStore) Create(ctx context.Context, job *models.Job) error {
	ok, err := s.cache.SetNX(ctx, jobKey(job.RequestID), job, s.ttl)
	if err != nil {
		return fmt.Errorf("create %s: %w", job.RequestID, err)
	}
	if !ok {
		return fmt.Errorf("create %s: %w", job.RequestID, models.ErrJobExists)
	}
	return nil
}

func (s *RedisJobStore) Get(ctx context.Context, requestID string) (*models.Job, error) {
	var job models.Job
	err := s.cache.Get(ctx, jobKey(requestID), &job)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("get %s: %w", requestID, models.ErrJobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", requestID, err)
	}
	return &job, nil
}

func (s *RedisJobStore) MarkProcessing(ctx context.Context, requestID string) error {
	return s.transition(ctx, requestID, models.StatusProcessing, func(j *models.Job) {})
}

func (s *RedisJobStore) Complete(ctx context.Context, requestID string, result *models.ForecastResult) error {
	return s.transition(ctx, requestID, models.StatusCompleted, func(j *models.Job) {
		j.Result = result
	})
}

func (s *RedisJobStore) Fail(ctx context.Context, requestID string, reason string) error {
	return s.transition(ctx, requestID, models.StatusFailed, func(j *models.Job) {
		j.Error = reason
	})
}

func (s *RedisJobStore) transition(ctx context.Context, requestID string, next models.JobStatus, apply func(*models.Job)) error {
	job, err := s.Get(ctx, requestID)
	if err != nil {
		return err
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
	if err := s.cache.Set(ctx, jobKey(requestID), job, s.ttl); err != nil {
		return fmt.Errorf("transition %s: %w", requestID, err)
	}
	return nil
}
