package analysis

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	appquota "github.com/bryanwahyu/emergency-response/internal/application/quota"
	domain "github.com/bryanwahyu/emergency-response/internal/domain/analysis"
	quotadomain "github.com/bryanwahyu/emergency-response/internal/domain/quota"
	"github.com/bryanwahyu/emergency-response/internal/infra/cache"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// stubProvider counts calls and returns a canned result or error.
type stubProvider struct {
	calls  int
	result *domain.Result
	err    error
}

func (p *stubProvider) Analyze(context.Context, domain.Request) (*domain.Result, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.result.Clone(), nil
}

type memStore struct {
	mu   sync.Mutex
	days map[string]map[string]float64
}

func newMemStore() *memStore {
	return &memStore{days: make(map[string]map[string]float64)}
}

func (s *memStore) Get(_ context.Context, day, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.days[day][key]), nil
}

func (s *memStore) Increment(_ context.Context, day, key string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.days[day] == nil {
		s.days[day] = make(map[string]float64)
	}
	s.days[day][key] += float64(delta)
	return nil
}

func (s *memStore) AddCost(_ context.Context, day, key string, cost float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.days[day] == nil {
		s.days[day] = make(map[string]float64)
	}
	s.days[day][key] += cost
	return nil
}

func (s *memStore) DayUsage(_ context.Context, day string) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.days[day]))
	for k, v := range s.days[day] {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) ResetDay(_ context.Context, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.days, day)
	return nil
}

func aiResult() *domain.Result {
	return &domain.Result{
		EmergencyType: "Cardiac Emergency",
		Severity:      domain.SeverityCritical,
		Assessment:    "Likely acute coronary event",
		FirstAidSteps: []string{"Have the person sit down and rest"},
		PriorityLevel: "Priority 1 (Life threatening)",
		Source:        "ai_enhanced",
	}
}

func sampleRequest() domain.Request {
	return domain.Request{
		Message:  "chest pain and cant breathe",
		Location: domain.Location{Latitude: 40.7128, Longitude: -74.0060},
	}
}

func newTestPipeline(provider domain.Provider, limit int) (*Service, *memStore) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := newMemStore()
	quota := appquota.NewService(store, quotadomain.DailyLimits{
		quotadomain.ResourceOpenAI: limit,
	}, clock, false)
	return NewService(cache.NewMemory(clock), quota, provider, clock), store
}

func openaiCount(store *memStore) int {
	used, _ := store.Get(context.Background(), "2026-03-01", string(quotadomain.ResourceOpenAI))
	return used
}

func TestAnalyzeCacheIdempotence(t *testing.T) {
	provider := &stubProvider{result: aiResult()}
	svc, store := newTestPipeline(provider, 10)
	ctx := context.Background()
	req := sampleRequest()

	first, cached := svc.AnalyzeEmergency(ctx, req)
	if cached {
		t.Fatal("first call reported as cached")
	}
	if provider.calls != 1 || openaiCount(store) != 1 {
		t.Fatalf("first call: provider calls=%d usage=%d, want 1/1", provider.calls, openaiCount(store))
	}

	second, cached := svc.AnalyzeEmergency(ctx, req)
	if !cached {
		t.Fatal("second identical call missed the cache")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	// The hit must consume nothing.
	if provider.calls != 1 || openaiCount(store) != 1 {
		t.Errorf("cache hit consumed resources: provider calls=%d usage=%d", provider.calls, openaiCount(store))
	}
}

func TestAnalyzeFallbackOnProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("model timeout")}
	svc, store := newTestPipeline(provider, 10)

	result, cached := svc.AnalyzeEmergency(context.Background(), sampleRequest())
	if cached {
		t.Fatal("fresh failure reported as cached")
	}
	if result == nil {
		t.Fatal("pipeline returned nil despite fallback guarantee")
	}
	if result.Source != "rule_based" {
		t.Errorf("source = %q, want rule_based", result.Source)
	}
	if result.EmergencyType != "Cardiac Emergency" {
		t.Errorf("fallback classified as %q", result.EmergencyType)
	}
	// A failed attempt is not billable.
	if openaiCount(store) != 0 {
		t.Errorf("usage recorded for failed attempt: %d", openaiCount(store))
	}
}

func TestAnalyzeFallbackResultCached(t *testing.T) {
	provider := &stubProvider{err: errors.New("model timeout")}
	svc, _ := newTestPipeline(provider, 10)
	ctx := context.Background()

	svc.AnalyzeEmergency(ctx, sampleRequest())
	_, cached := svc.AnalyzeEmergency(ctx, sampleRequest())
	if !cached {
		t.Error("fallback result was not cached")
	}
	if provider.calls != 1 {
		t.Errorf("provider retried on cache hit: %d calls", provider.calls)
	}
}

func TestAnalyzeNilProvider(t *testing.T) {
	svc, store := newTestPipeline(nil, 10)

	result, _ := svc.AnalyzeEmergency(context.Background(), sampleRequest())
	if result.Source != "rule_based" {
		t.Errorf("source = %q, want rule_based", result.Source)
	}
	if openaiCount(store) != 0 {
		t.Error("usage recorded without a provider")
	}
}

func TestAnalyzeQuotaExhaustedSkipsAI(t *testing.T) {
	provider := &stubProvider{result: aiResult()}
	svc, _ := newTestPipeline(provider, 0)

	result, _ := svc.AnalyzeEmergency(context.Background(), sampleRequest())
	if provider.calls != 0 {
		t.Errorf("provider called with quota exhausted: %d calls", provider.calls)
	}
	if result.Source != "rule_based" {
		t.Errorf("source = %q, want rule_based", result.Source)
	}
}

func TestAnalyzeForceRefresh(t *testing.T) {
	provider := &stubProvider{result: aiResult()}
	svc, _ := newTestPipeline(provider, 10)
	ctx := context.Background()

	req := sampleRequest()
	svc.AnalyzeEmergency(ctx, req)

	// ForceRefresh bypasses the read but still rewrites the entry.
	req.ForceRefresh = true
	fresh, cached := svc.AnalyzeEmergency(ctx, req)
	if cached {
		t.Fatal("force refresh served from cache")
	}
	if provider.calls != 2 {
		t.Fatalf("provider calls = %d, want 2", provider.calls)
	}

	req.ForceRefresh = false
	again, cached := svc.AnalyzeEmergency(ctx, req)
	if !cached {
		t.Fatal("entry missing after force refresh rewrite")
	}
	if !reflect.DeepEqual(fresh, again) {
		t.Error("cache holds a different result than the refresh produced")
	}
}

func TestAnalyzeNearbyLocationsShareEntry(t *testing.T) {
	provider := &stubProvider{result: aiResult()}
	svc, _ := newTestPipeline(provider, 10)
	ctx := context.Background()

	a := sampleRequest()
	svc.AnalyzeEmergency(ctx, a)

	// ~40 m away; rounds to the same two-decimal grid cell.
	b := a
	b.Location.Latitude += 0.0003
	_, cached := svc.AnalyzeEmergency(ctx, b)
	if !cached {
		t.Error("near-identical location did not share the cache entry")
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}
