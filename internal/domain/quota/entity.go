package quota

// Resource is a metered external dependency tracked per calendar day.
type Resource string

const (
	ResourceOpenAI        Resource = "openai_requests"
	ResourceGoogleMaps    Resource = "google_maps_requests"
	ResourceTwilioCalls   Resource = "twilio_calls"
	ResourceTwilioMinutes Resource = "twilio_minutes"
)

// CostSuffix derives the cost counter key for a resource.
const CostSuffix = "_cost"

// Estimated unit costs in USD, same approximations the usage report has
// always shown. Not billing data.
const (
	UnitCostOpenAI       = 0.002
	UnitCostGoogleMaps   = 0.005
	UnitCostTwilioMinute = 0.013
)

// DailyLimits maps resource to max calls per day. A missing entry means 0,
// which blocks the resource outside demo mode.
type DailyLimits map[Resource]int

// ResourceUsage is one resource's slice of the daily report.
type ResourceUsage struct {
	Used  int     `json:"used"`
	Limit int     `json:"limit"`
	Cost  float64 `json:"cost"`
}

// Report is the daily usage summary.
type Report struct {
	Date      string                     `json:"date"`
	DemoMode  bool                       `json:"demo_mode"`
	Usage     map[Resource]ResourceUsage `json:"usage"`
	TotalCost float64                    `json:"total_cost"`
	Status    string                     `json:"status"`
}
