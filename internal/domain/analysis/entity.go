package analysis

// Severity enum
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
)

// MaxFirstAidSteps caps the first aid list on every result, AI or rule based.
const MaxFirstAidSteps = 6

// Location is the caller's reported position.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Request is one emergency analysis request. Owned by the caller for the
// duration of a single AnalyzeEmergency call.
type Request struct {
	Message      string   `json:"message"`
	Location     Location `json:"location"`
	ScenarioType string   `json:"scenario_type,omitempty"`
	ForceRefresh bool     `json:"force_new_analysis,omitempty"`
}

// Result is the structured triage outcome returned to the caller.
type Result struct {
	EmergencyType      string   `json:"emergency_type"`
	Severity           Severity `json:"severity"`
	Assessment         string   `json:"assessment"`
	RecommendedActions []string `json:"recommended_actions"`
	FirstAidSteps      []string `json:"first_aid_steps"`
	WarningSigns       []string `json:"warning_signs"`
	EstimatedResponse  string   `json:"estimated_response_time"`
	PriorityLevel      string   `json:"priority_level"`
	Source             string   `json:"source"`
}

// Clone returns an independent copy so the cache and the caller never share
// slice backing arrays.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.RecommendedActions = append([]string(nil), r.RecommendedActions...)
	out.FirstAidSteps = append([]string(nil), r.FirstAidSteps...)
	out.WarningSigns = append([]string(nil), r.WarningSigns...)
	return &out
}

// PriorityLabel maps severity to the dispatch priority label.
func PriorityLabel(s Severity) string {
	switch s {
	case SeverityCritical:
		return "Priority 1 (Life threatening)"
	case SeverityHigh:
		return "Priority 2 (Urgent)"
	case SeverityModerate:
		return "Priority 3 (Less urgent)"
	default:
		return "Priority 4 (Non-urgent)"
	}
}

// ResponseTimeLabel maps severity to the estimated response window shown to
// the caller.
func ResponseTimeLabel(s Severity) string {
	switch s {
	case SeverityCritical:
		return "Immediate (0-8 minutes)"
	case SeverityHigh:
		return "Urgent (8-15 minutes)"
	case SeverityModerate:
		return "Standard (15-30 minutes)"
	default:
		return "Routine (30+ minutes)"
	}
}

// NormalizeSeverity coerces free-form provider output into one of the four
// defined tiers. Anything unrecognized becomes moderate.
func NormalizeSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityCritical, SeverityHigh, SeverityModerate, SeverityLow:
		return Severity(s)
	default:
		return SeverityModerate
	}
}
