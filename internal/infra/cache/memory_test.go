package cache

import (
	"testing"
	"time"

	domain "github.com/bryanwahyu/emergency-response/internal/domain/analysis"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func sampleResult() *domain.Result {
	return &domain.Result{
		EmergencyType: "Cardiac Emergency",
		Severity:      domain.SeverityCritical,
		Assessment:    "Emergency reported: chest pain",
		FirstAidSteps: []string{"Have the person sit down and rest"},
		Source:        "rule_based",
	}
}

func TestMemoryGetPut(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(clock)

	if _, ok := m.Get("fp"); ok {
		t.Fatal("empty cache returned a hit")
	}

	m.Put("fp", sampleResult(), 5*time.Minute)
	got, ok := m.Get("fp")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got.EmergencyType != "Cardiac Emergency" {
		t.Errorf("wrong result returned: %+v", got)
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(clock)
	m.Put("fp", sampleResult(), 5*time.Minute)

	clock.advance(5*time.Minute - time.Second)
	if _, ok := m.Get("fp"); !ok {
		t.Fatal("entry expired before its TTL elapsed")
	}

	// At exactly TTL the entry counts as absent.
	clock.advance(time.Second)
	if _, ok := m.Get("fp"); ok {
		t.Fatal("entry still live at expiry instant")
	}
	if m.Len() != 0 {
		t.Errorf("lazy eviction left %d entries", m.Len())
	}
}

func TestMemoryOverwriteRenewsTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(clock)
	m.Put("fp", sampleResult(), time.Minute)

	clock.advance(50 * time.Second)
	renewed := sampleResult()
	renewed.Assessment = "renewed"
	m.Put("fp", renewed, time.Minute)

	clock.advance(30 * time.Second)
	got, ok := m.Get("fp")
	if !ok {
		t.Fatal("overwrite did not renew the TTL")
	}
	if got.Assessment != "renewed" {
		t.Errorf("overwrite kept the old value: %q", got.Assessment)
	}
}

func TestMemoryIsolation(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(clock)

	orig := sampleResult()
	m.Put("fp", orig, time.Minute)

	// Mutating the original after Put must not leak into the cache.
	orig.FirstAidSteps[0] = "tampered"
	got, _ := m.Get("fp")
	if got.FirstAidSteps[0] == "tampered" {
		t.Error("Put stored the caller's slice instead of a copy")
	}

	// Mutating a returned copy must not leak back either.
	got.FirstAidSteps[0] = "tampered again"
	again, _ := m.Get("fp")
	if again.FirstAidSteps[0] == "tampered again" {
		t.Error("Get handed out the cached slice instead of a copy")
	}
}

func TestMemorySweep(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(clock)

	m.Put("short", sampleResult(), time.Minute)
	m.Put("long", sampleResult(), time.Hour)

	clock.advance(2 * time.Minute)
	if n := m.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d entries, want 1", n)
	}
	if _, ok := m.Get("long"); !ok {
		t.Error("Sweep removed a live entry")
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}
