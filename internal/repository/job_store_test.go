package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/pkg/cache"
)

func newJob(id string) *models.Job {
	now := time.Now().UTC()
	return &models.Job{
		RequestID: id,
		Ticker:    "AAPL",
		StartDate: "2026-01-01",
		EndDate:   "2026-08-01",
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// fakeCache is an in-memory cache.Service backed by JSON, mirroring
// how the redis implementation round-trips values.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = b
	return nil
}

func (f *fakeCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	return true, f.Set(ctx, key, value, ttl)
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	b, ok := f.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeCache) Exists(_ context.Context, keys ...string) (bool, error) {
	for _, k := range keys {
		if _, ok := f.data[k]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeCache) Close() error { return nil }

func stores(t *testing.T) map[string]repository.JobStore {
	t.Helper()
	return map[string]repository.JobStore{
		"memory": NewMemoryJobStore(),
		"redis":  NewRedisJobStore(newFakeCache(), time.Hour),
	}
}

func TestJobStoreLifecycle(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Create(ctx, newJob("req-1")); err != nil {
				t.Fatalf("Create: %v", err)
			}

			got, err := store.Get(ctx, "req-1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Status != models.StatusPending {
				t.Fatalf("status = %s, want PENDING", got.Status)
			}

			if err := store.MarkProcessing(ctx, "req-1"); err != nil {
				t.Fatalf("MarkProcessing: %v", err)
			}
			result := &models.ForecastResult{Ticker: "AAPL"}
			if err := store.Complete(ctx, "req-1", result); err != nil {
				t.Fatalf("Complete: %v", err)
			}

			got, err = store.Get(ctx, "req-1")
			if err != nil {
				t.Fatalf("Get after complete: %v", err)
			}
			if got.Status != models.StatusCompleted {
				t.Errorf("status = %s, want COMPLETED", got.Status)
			}
			if got.Result == nil || got.Result.Ticker != "AAPL" {
				t.Errorf("result not persisted: %+v", got.Result)
			}
		})
	}
}

func TestJobStoreDuplicateCreate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Create(ctx, newJob("req-1")); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if err := store.Create(ctx, newJob("req-1")); !errors.Is(err, models.ErrJobExists) {
				t.Fatalf("duplicate Create err = %v, want ErrJobExists", err)
			}
		})
	}
}

func TestJobStoreTerminalImmutable(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Create(ctx, newJob("req-1")); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if err := store.MarkProcessing(ctx, "req-1"); err != nil {
				t.Fatalf("MarkProcessing: %v", err)
			}
			if err := store.Fail(ctx, "req-1", "boom"); err != nil {
				t.Fatalf("Fail: %v", err)
			}

			if err := store.MarkProcessing(ctx, "req-1"); !errors.Is(err, models.ErrTerminalJob) {
				t.Errorf("MarkProcessing on FAILED err = %v, want ErrTerminalJob", err)
			}
			if err := store.Complete(ctx, "req-1", nil); !errors.Is(err, models.ErrTerminalJob) {
				t.Errorf("Complete on FAILED err = %v, want ErrTerminalJob", err)
			}

			got, err := store.Get(ctx, "req-1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Status != models.StatusFailed || got.Error != "boom" {
				t.Errorf("terminal job mutated: %+v", got)
			}
		})
	}
}

func TestJobStoreSkipProcessingNotAllowed(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Create(ctx, newJob("req-1")); err != nil {
				t.Fatalf("Create: %v", err)
			}
			// PENDING -> COMPLETED must be rejected; only FAILED may
			// shortcut PROCESSING
			if err := store.Complete(ctx, "req-1", nil); err == nil {
				t.Fatal("Complete on PENDING succeeded, want error")
			}
			if err := store.Fail(ctx, "req-1", "invalid range"); err != nil {
				t.Fatalf("Fail on PENDING: %v", err)
			}
		})
	}
}

func TestJobStoreNotFound(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, models.ErrJobNotFound) {
				t.Fatalf("Get err = %v, want ErrJobNotFound", err)
			}
		})
	}
}
