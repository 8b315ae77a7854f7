package learners

import (
	"context"
	"math"
	"testing"
)

func TestRecordAttemptSeedsMastery(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	if err := svc.RecordAttempt(context.Background(), "user-1", "topic-1", 3, 4); err != nil {
		t.Fatalf("record: %v", err)
	}

	p, err := svc.Profile(context.Background(), "user-1", "topic-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if math.Abs(p.Mastery-0.75) > 1e-9 {
		t.Fatalf("mastery = %f, want 0.75 on first attempt", p.Mastery)
	}
	if p.AttemptCount != 1 || p.CorrectCount != 3 {
		t.Fatalf("counters = %d/%d, want 1/3", p.AttemptCount, p.CorrectCount)
	}
	if p.LastAttemptAt == nil {
		t.Fatalf("last attempt timestamp should be set")
	}
}

func TestRecordAttemptAppliesEMA(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	// Perfect first attempt, then a zero score.
	if err := svc.RecordAttempt(context.Background(), "user-1", "topic-1", 4, 4); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.RecordAttempt(context.Background(), "user-1", "topic-1", 0, 4); err != nil {
		t.Fatalf("record: %v", err)
	}

	p, err := svc.Profile(context.Background(), "user-1", "topic-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	want := masteryAlpha*0.0 + (1-masteryAlpha)*1.0
	if math.Abs(p.Mastery-want) > 1e-9 {
		t.Fatalf("mastery = %f, want %f", p.Mastery, want)
	}
	if p.AttemptCount != 2 || p.CorrectCount != 4 {
		t.Fatalf("counters = %d/%d, want 2/4", p.AttemptCount, p.CorrectCount)
	}
}

func TestRecordAttemptIgnoresUngraded(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	if err := svc.RecordAttempt(context.Background(), "user-1", "topic-1", 0, 0); err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := svc.Profile(context.Background(), "user-1", "topic-1"); err != ErrNotFound {
		t.Fatalf("no profile should be created for ungraded attempts, got %v", err)
	}
}

func TestProfilesAreScopedPerTopic(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	if err := svc.RecordAttempt(context.Background(), "user-1", "topic-1", 2, 2); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.RecordAttempt(context.Background(), "user-1", "topic-2", 0, 2); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.RecordAttempt(context.Background(), "user-2", "topic-1", 1, 2); err != nil {
		t.Fatalf("record: %v", err)
	}

	profiles, err := svc.Profiles(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("profile count = %d, want 2", len(profiles))
	}
	for _, p := range profiles {
		if p.UserID != "user-1" {
			t.Fatalf("foreign profile leaked: %+v", p)
		}
	}
}
