package hospitals

import "context"

// Searcher port (interface untuk mapping provider).
type Searcher interface {
	NearbyHospitals(ctx context.Context, q SearchQuery) ([]Hospital, error)
}
