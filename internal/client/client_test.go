package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/pkg/logger"
)

func submitBody() *models.SubmitForecastRequest {
	return &models.SubmitForecastRequest{
		Ticker:    "AAPL",
		StartDate: "2026-01-01",
		EndDate:   "2026-08-01",
	}
}

func TestSubmitRetriesTransient(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"status":202,"message":"Accepted","data":{"request_id":"req-1","status":"PENDING"}}`))
	}))
	defer srv.Close()

	var slept []time.Duration
	c := New(srv.URL, logger.Nop(),
		WithSubmitRetry(2, 5*time.Second),
		withSleep(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}))

	resp, err := c.Submit(context.Background(), submitBody())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.RequestID != "req-1" || resp.Status != models.StatusPending {
		t.Errorf("resp = %+v", resp)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
	if len(slept) != 1 || slept[0] != 5*time.Second {
		t.Errorf("backoff sleeps = %v, want one 5s wait", slept)
	}
}

func TestSubmitExhaustsAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, logger.Nop(),
		WithSubmitRetry(2, 5*time.Second),
		withSleep(func(context.Context, time.Duration) error { return nil }))

	if _, err := c.Submit(context.Background(), submitBody()); err == nil {
		t.Fatal("expected error after exhausted attempts")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want exactly 2", got)
	}
}

func TestSubmitDoesNotRetryRejection(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":400,"message":"Bad Request"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, logger.Nop(),
		WithSubmitRetry(2, 5*time.Second),
		withSleep(func(context.Context, time.Duration) error {
			t.Fatal("backoff slept for a non-transient failure")
			return nil
		}))

	if _, err := c.Submit(context.Background(), submitBody()); err == nil {
		t.Fatal("expected error for 400")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1 (no retry on rejection)", got)
	}
}

func TestStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, logger.Nop())
	if _, err := c.Status(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for 404")
	}
}

type scriptedFetcher struct {
	statuses []models.JobStatus
	calls    int
}

func (f *scriptedFetcher) Status(_ context.Context, requestID string) (*models.JobStatusResponse, error) {
	status := f.statuses[len(f.statuses)-1]
	if f.calls < len(f.statuses) {
		status = f.statuses[f.calls]
	}
	f.calls++
	return &models.JobStatusResponse{RequestID: requestID, Status: status}, nil
}

func TestNextPoll(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		status  models.JobStatus
		want    PollAction
	}{
		{"pending mid-budget", 5, models.StatusPending, ActionWait},
		{"processing mid-budget", 10, models.StatusProcessing, ActionWait},
		{"completed", 3, models.StatusCompleted, ActionReport},
		{"failed", 3, models.StatusFailed, ActionReport},
		{"budget exhausted", 20, models.StatusProcessing, ActionTimeout},
		{"terminal on last poll", 20, models.StatusCompleted, ActionReport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextPoll(tt.attempt, tt.status, 20); got != tt.want {
				t.Errorf("NextPoll(%d, %s) = %v, want %v", tt.attempt, tt.status, got, tt.want)
			}
		})
	}
}

func TestPollerReportsTerminal(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []models.JobStatus{
		models.StatusPending,
		models.StatusProcessing,
		models.StatusCompleted,
	}}
	p := NewPoller(fetcher, time.Millisecond, 20, logger.Nop())

	resp, err := p.Wait(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if resp.Status != models.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", resp.Status)
	}
	if fetcher.calls != 3 {
		t.Errorf("polls = %d, want 3", fetcher.calls)
	}
}

func TestPollerTimesOut(t *testing.T) {
	fetcher := &scriptedFetcher{statuses: []models.JobStatus{models.StatusProcessing}}
	p := NewPoller(fetcher, time.Millisecond, 20, logger.Nop())

	_, err := p.Wait(context.Background(), "req-1")
	if !errors.Is(err, models.ErrPollTimeout) {
		t.Fatalf("err = %v, want ErrPollTimeout", err)
	}
	if fetcher.calls != 20 {
		t.Errorf("polls = %d, want exactly 20", fetcher.calls)
	}
}
