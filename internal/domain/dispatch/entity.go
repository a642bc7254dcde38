package dispatch

import "time"

// CallStatus for outbound telephony.
type CallStatus string

const (
	StatusDemo    CallStatus = "demo_mode"
	StatusSuccess CallStatus = "success"
	StatusError   CallStatus = "error"
)

// CallResult is the outcome of one dispatch attempt.
type CallResult struct {
	Status     CallStatus `json:"status"`
	Message    string     `json:"message"`
	CallID     string     `json:"call_id"`
	Dispatched bool       `json:"response_dispatched,omitempty"`
}

// Notification tells a hospital to prepare for an incoming patient.
type Notification struct {
	HospitalID       string `json:"hospital_id"`
	HospitalName     string `json:"hospital_name"`
	EmergencyDetails string `json:"emergency_details"`
	PatientLocation  string `json:"patient_location"`
	EstimatedArrival string `json:"estimated_arrival"`
}

// IncidentReport is the comprehensive record sent to all parties and
// archived for later review.
type IncidentReport struct {
	IncidentID         string    `json:"incident_id"`
	EmergencyDetails   any       `json:"emergency_details"`
	HospitalAssignment any       `json:"hospital_assignment"`
	Status             string    `json:"status"`
	Timestamp          time.Time `json:"timestamp"`
}
