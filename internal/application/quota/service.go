package quota

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/bryanwahyu/emergency-response/internal/application"
	domain "github.com/bryanwahyu/emergency-response/internal/domain/quota"
)

// Service gate-keeps every metered external call against per-day limits.
// Safe for concurrent use; counter atomicity lives in the store.
type Service struct {
	Store  domain.CounterStore
	Limits domain.DailyLimits
	Clock  application.Clock

	demoMode atomic.Bool
}

// NewService builds a tracker. demoMode defaults to the given value; it is
// deliberately an injected flag, not an env read, so tests can set it
// per-case.
func NewService(store domain.CounterStore, limits domain.DailyLimits, clock application.Clock, demoMode bool) *Service {
	s := &Service{Store: store, Limits: limits, Clock: clock}
	s.demoMode.Store(demoMode)
	return s
}

// DemoMode reports whether quota checks pass unconditionally.
func (s *Service) DemoMode() bool { return s.demoMode.Load() }

// SetDemoMode flips the toggle at runtime (admin surface).
func (s *Service) SetDemoMode(on bool) {
	s.demoMode.Store(on)
	if on {
		log.Printf("demo mode enabled: metered calls are simulated")
	} else {
		log.Printf("demo mode disabled: live API calls allowed within limits")
	}
}

// CanProceed reports whether one more call to the resource fits today's
// limit. Unconfigured resources are blocked. If the store is unreadable we
// fail open: triage availability outranks cost protection.
func (s *Service) CanProceed(ctx context.Context, res domain.Resource) bool {
	if s.demoMode.Load() {
		return true
	}
	day := application.DayKey(s.Clock.Now())
	used, err := s.Store.Get(ctx, day, string(res))
	if err != nil {
		log.Printf("quota check failed open: resource=%s err=%v", res, err)
		return true
	}
	return used < s.Limits[res]
}

// RecordUsage increments today's counter for the resource and accumulates
// cost when one is supplied.
func (s *Service) RecordUsage(ctx context.Context, res domain.Resource, cost float64) {
	day := application.DayKey(s.Clock.Now())
	if err := s.Store.Increment(ctx, day, string(res), 1); err != nil {
		log.Printf("usage tracking error: resource=%s err=%v", res, err)
		return
	}
	if cost > 0 {
		if err := s.Store.AddCost(ctx, day, string(res)+domain.CostSuffix, cost); err != nil {
			log.Printf("cost tracking error: resource=%s err=%v", res, err)
		}
	}
}

// Report builds the daily usage summary with the estimated per-unit costs.
func (s *Service) Report(ctx context.Context) (domain.Report, error) {
	day := application.DayKey(s.Clock.Now())
	counters, err := s.Store.DayUsage(ctx, day)
	if err != nil {
		return domain.Report{}, err
	}

	openaiUsed := int(counters[string(domain.ResourceOpenAI)])
	mapsUsed := int(counters[string(domain.ResourceGoogleMaps)])
	callsUsed := int(counters[string(domain.ResourceTwilioCalls)])
	minutesUsed := int(counters[string(domain.ResourceTwilioMinutes)])

	openaiCost := float64(openaiUsed) * domain.UnitCostOpenAI
	mapsCost := float64(mapsUsed) * domain.UnitCostGoogleMaps
	twilioCost := float64(minutesUsed) * domain.UnitCostTwilioMinute

	status := "live"
	if s.demoMode.Load() {
		status = "demo_mode"
	}

	return domain.Report{
		Date:     day,
		DemoMode: s.demoMode.Load(),
		Usage: map[domain.Resource]domain.ResourceUsage{
			domain.ResourceOpenAI:      {Used: openaiUsed, Limit: s.Limits[domain.ResourceOpenAI], Cost: openaiCost},
			domain.ResourceGoogleMaps:  {Used: mapsUsed, Limit: s.Limits[domain.ResourceGoogleMaps], Cost: mapsCost},
			domain.ResourceTwilioCalls: {Used: callsUsed, Limit: s.Limits[domain.ResourceTwilioCalls], Cost: twilioCost},
		},
		TotalCost: openaiCost + mapsCost + twilioCost,
		Status:    status,
	}, nil
}

// ResetToday clears today's counters. Past days are kept for history.
func (s *Service) ResetToday(ctx context.Context) error {
	day := application.DayKey(s.Clock.Now())
	if err := s.Store.ResetDay(ctx, day); err != nil {
		return err
	}
	log.Printf("usage counters reset for %s", day)
	return nil
}
