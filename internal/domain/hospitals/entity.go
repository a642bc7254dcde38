package hospitals

// Hospital is one nearby facility returned by search.
type Hospital struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Address           string  `json:"address"`
	Phone             string  `json:"phone"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Rating            float64 `json:"rating,omitempty"`
	EmergencyServices bool    `json:"emergency_services"`
}

// SearchQuery bounds a nearby search.
type SearchQuery struct {
	Latitude  float64
	Longitude float64
	RadiusM   int
}

// MaxResults limits how many hospitals a search returns.
const MaxResults = 5

// DefaultRadiusM is used when the caller sends no radius.
const DefaultRadiusM = 5000
