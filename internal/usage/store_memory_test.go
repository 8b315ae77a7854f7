package usage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreGetInitializesDefaults(t *testing.T) {
	s := newMemoryStore()

	u, err := s.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Plan != "Starter" || u.Limit != 10 || u.Used != 0 {
		t.Fatalf("unexpected defaults: %+v", u)
	}
	if u.ResetsAt.IsZero() {
		t.Fatalf("expected ResetsAt to be set")
	}
}

func TestMemoryStoreConsumeEnforcesLimit(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	u, err := s.Consume(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("consume to limit: %v", err)
	}
	if u.Used != 10 {
		t.Fatalf("expected used 10, got %d", u.Used)
	}

	if _, err := s.Consume(ctx, "user-1", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestMemoryStoreConsumeZeroIsNoOp(t *testing.T) {
	s := newMemoryStore()

	u, err := s.Consume(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("consume zero: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected used 0, got %d", u.Used)
	}
}

func TestMemoryStoreResetClearsUsage(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	if _, err := s.Consume(ctx, "user-1", 5); err != nil {
		t.Fatalf("consume: %v", err)
	}

	u, err := s.Reset(ctx, "user-1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected used 0 after reset, got %d", u.Used)
	}
}

func TestMemoryStoreEnsurePeriodRollsOverExpiredWindow(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	if _, err := s.Consume(ctx, "user-1", 5); err != nil {
		t.Fatalf("consume: %v", err)
	}

	s.mu.Lock()
	u := s.data["user-1"]
	u.ResetsAt = time.Now().UTC().Add(-time.Hour)
	s.data["user-1"] = u
	s.mu.Unlock()

	got, err := s.EnsurePeriod(ctx, "user-1")
	if err != nil {
		t.Fatalf("ensure period: %v", err)
	}
	if got.Used != 0 {
		t.Fatalf("expected usage reset after window expiry, got used %d", got.Used)
	}
	if !got.ResetsAt.After(time.Now().UTC()) {
		t.Fatalf("expected ResetsAt in the future, got %v", got.ResetsAt)
	}
}
