package hospitals

import (
	"context"
	"log"

	domain "github.com/bryanwahyu/emergency-response/internal/domain/hospitals"
)

// Service finds nearby hospitals, degrading to a fixed demo list whenever
// the mapping provider is unavailable, unconfigured, or in demo mode.
type Service struct {
	Searcher domain.Searcher // nil when no maps key is configured
	DemoMode func() bool
}

func NewService(searcher domain.Searcher, demoMode func() bool) *Service {
	return &Service{Searcher: searcher, DemoMode: demoMode}
}

// FindNearby returns up to MaxResults hospitals around the location.
func (s *Service) FindNearby(ctx context.Context, q domain.SearchQuery) []domain.Hospital {
	if q.RadiusM <= 0 {
		q.RadiusM = domain.DefaultRadiusM
	}
	if s.Searcher == nil || s.DemoMode() {
		return demoHospitals(q.Latitude, q.Longitude)
	}

	list, err := s.Searcher.NearbyHospitals(ctx, q)
	if err != nil {
		log.Printf("hospital search failed, returning demo list: %v", err)
		return demoHospitals(q.Latitude, q.Longitude)
	}
	if len(list) > domain.MaxResults {
		list = list[:domain.MaxResults]
	}
	return list
}

// demoHospitals mirrors the fixed pair used for testing, offset from the
// caller's position.
func demoHospitals(lat, lon float64) []domain.Hospital {
	return []domain.Hospital{
		{
			ID:                "demo_hospital_1",
			Name:              "City General Hospital",
			Address:           "123 Main St, Downtown",
			Phone:             "+1-555-0123",
			Latitude:          lat + 0.01,
			Longitude:         lon + 0.01,
			Rating:            4.5,
			EmergencyServices: true,
		},
		{
			ID:                "demo_hospital_2",
			Name:              "Emergency Medical Center",
			Address:           "456 Oak Ave, Midtown",
			Phone:             "+1-555-0456",
			Latitude:          lat - 0.01,
			Longitude:         lon - 0.01,
			Rating:            4.2,
			EmergencyServices: true,
		},
	}
}
