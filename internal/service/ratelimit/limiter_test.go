package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowDrainsCapacity(t *testing.T) {
	l := New()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if !l.Allow("k", 2, 1) {
			t.Fatalf("call %d refused within capacity", i)
		}
	}
	if l.Allow("k", 2, 1) {
		t.Error("call allowed past capacity with no refill")
	}
}

func TestAllowRefillsOverTime(t *testing.T) {
	l := New()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("k", 1, 2) {
		t.Fatal("first call refused")
	}
	if l.Allow("k", 1, 2) {
		t.Fatal("drained bucket allowed")
	}

	now = now.Add(500 * time.Millisecond) // 2 tokens/s refills one
	if !l.Allow("k", 1, 2) {
		t.Error("call refused after refill")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("a", 1, 1) {
		t.Fatal("first key refused")
	}
	if !l.Allow("b", 1, 1) {
		t.Error("second key starved by first")
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	l := New()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.Allow("k", 1, 0.001) // drain; refill too slow to matter

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "k", 1, 0.001); err == nil {
		t.Error("Wait returned without a token or cancellation")
	}
}
