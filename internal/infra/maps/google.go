package maps

import (
	"context"

	gmaps "googlemaps.github.io/maps"

	domain "github.com/bryanwahyu/emergency-response/internal/domain/hospitals"
)

// Searcher finds hospitals through the Google Places API.
type Searcher struct {
	client *gmaps.Client
}

func NewSearcher(apiKey string) (*Searcher, error) {
	cli, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Searcher{client: cli}, nil
}

// NearbyHospitals runs a Places Nearby search restricted to hospitals.
// Nearby results carry no phone number; the field stays a placeholder until
// a details lookup is worth its own quota cost.
func (s *Searcher) NearbyHospitals(ctx context.Context, q domain.SearchQuery) ([]domain.Hospital, error) {
	resp, err := s.client.NearbySearch(ctx, &gmaps.NearbySearchRequest{
		Location: &gmaps.LatLng{Lat: q.Latitude, Lng: q.Longitude},
		Radius:   uint(q.RadiusM),
		Type:     gmaps.PlaceTypeHospital,
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Hospital, 0, len(resp.Results))
	for _, place := range resp.Results {
		name := place.Name
		if name == "" {
			name = "Unknown Hospital"
		}
		address := place.Vicinity
		if address == "" {
			address = "Address not available"
		}
		out = append(out, domain.Hospital{
			ID:                place.PlaceID,
			Name:              name,
			Address:           address,
			Phone:             "Phone not available",
			Latitude:          place.Geometry.Location.Lat,
			Longitude:         place.Geometry.Location.Lng,
			Rating:            float64(place.Rating),
			EmergencyServices: true,
		})
		if len(out) == domain.MaxResults {
			break
		}
	}
	return out, nil
}
