package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usage.json")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	return s, path
}

func TestNewCreatesFile(t *testing.T) {
	_, path := newTestStore(t)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("usage file not created: %v", err)
	}
}

func TestIncrementAndGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Increment(ctx, "2026-03-01", "openai_requests", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Increment(ctx, "2026-03-01", "openai_requests", 2); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "2026-03-01", "openai_requests")
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("counter = %d, want 3", got)
	}

	// Missing day or key reads as zero, not an error.
	got, err = s.Get(ctx, "2026-03-02", "openai_requests")
	if err != nil || got != 0 {
		t.Errorf("missing counter = %d, %v; want 0, nil", got, err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	if err := s.Increment(ctx, "2026-03-01", "google_maps_requests", 4); err != nil {
		t.Fatal(err)
	}
	if err := s.AddCost(ctx, "2026-03-01", "google_maps_requests_cost", 0.02); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Get(ctx, "2026-03-01", "google_maps_requests")
	if err != nil {
		t.Fatal(err)
	}
	if got != 4 {
		t.Errorf("counter after reopen = %d, want 4", got)
	}

	usage, err := reopened.DayUsage(ctx, "2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if usage["google_maps_requests_cost"] != 0.02 {
		t.Errorf("cost after reopen = %v, want 0.02", usage["google_maps_requests_cost"])
	}
}

func TestConcurrentIncrements(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const n = 30
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := s.Increment(ctx, "2026-03-01", "twilio_calls", 1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "2026-03-01", "twilio_calls")
	if err != nil {
		t.Fatal(err)
	}
	if got != n {
		t.Errorf("counter = %d after %d concurrent increments", got, n)
	}
}

func TestResetDay(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_ = s.Increment(ctx, "2026-03-01", "openai_requests", 5)
	_ = s.Increment(ctx, "2026-03-02", "openai_requests", 7)

	if err := s.ResetDay(ctx, "2026-03-01"); err != nil {
		t.Fatal(err)
	}

	got, _ := s.Get(ctx, "2026-03-01", "openai_requests")
	if got != 0 {
		t.Errorf("reset day still reads %d", got)
	}
	// Other days are untouched.
	got, _ = s.Get(ctx, "2026-03-02", "openai_requests")
	if got != 7 {
		t.Errorf("unrelated day = %d, want 7", got)
	}
}
