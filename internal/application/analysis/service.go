package analysis

import (
	"context"
	"log"
	"time"

	"github.com/bryanwahyu/emergency-response/internal/application"
	appquota "github.com/bryanwahyu/emergency-response/internal/application/quota"
	domain "github.com/bryanwahyu/emergency-response/internal/domain/analysis"
	quotadomain "github.com/bryanwahyu/emergency-response/internal/domain/quota"
	"github.com/bryanwahyu/emergency-response/internal/domain/triage"
)

// DefaultCacheTTL holds analysis results long enough to absorb duplicate
// reports of the same incident.
const DefaultCacheTTL = 300 * time.Second

// Service implements the emergency analysis pipeline:
// cache check -> quota check -> AI attempt -> rule-based fallback -> cache
// write. It always produces a result; provider failures never escape.
type Service struct {
	Cache     domain.ResultCache
	Quota     *appquota.Service
	Provider  domain.Provider
	Clock     application.Clock
	CacheTTL  time.Duration
	Precision int
}

// NewService wires the pipeline with defaults for TTL and coordinate
// precision.
func NewService(cache domain.ResultCache, quota *appquota.Service, provider domain.Provider, clock application.Clock) *Service {
	return &Service{
		Cache:     cache,
		Quota:     quota,
		Provider:  provider,
		Clock:     clock,
		CacheTTL:  DefaultCacheTTL,
		Precision: CoordPrecision,
	}
}

// AnalyzeEmergency runs one request through the pipeline. The returned
// result is owned by the caller; the cache keeps its own copy. The bool
// reports whether the result came from cache.
func (s *Service) AnalyzeEmergency(ctx context.Context, req domain.Request) (*domain.Result, bool) {
	fp := Fingerprint(req, s.Precision)

	// Dedup guarantee: a cache hit consumes no quota and makes no external
	// call. ForceRefresh bypasses the read but never the write.
	if !req.ForceRefresh {
		if cached, ok := s.Cache.Get(fp); ok {
			return cached, true
		}
	}

	result := s.attemptAI(ctx, req)
	if result == nil {
		result = triage.Analyze(req.Message, req.Location)
	}

	s.Cache.Put(fp, result, s.CacheTTL)
	return result, false
}

// attemptAI tries the provider once. Returns nil when the quota is spent,
// the provider is not configured, or the attempt fails; the caller falls
// back to the rule-based classifier.
func (s *Service) attemptAI(ctx context.Context, req domain.Request) *domain.Result {
	if s.Provider == nil {
		return nil
	}
	if !s.Quota.CanProceed(ctx, quotadomain.ResourceOpenAI) {
		log.Printf("openai quota exhausted, using rule-based analysis")
		return nil
	}

	result, err := s.Provider.Analyze(ctx, req)
	if err != nil {
		// No usage recorded for a failed attempt: no billable response was
		// received.
		log.Printf("ai analysis failed, falling back: %v", err)
		return nil
	}

	s.Quota.RecordUsage(ctx, quotadomain.ResourceOpenAI, quotadomain.UnitCostOpenAI)
	return result
}
