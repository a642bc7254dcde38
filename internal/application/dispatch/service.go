package dispatch

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/emergency-response/internal/domain/dispatch"
)

// Service handles outbound emergency calls and hospital notifications.
// Without a live telephony provider it simulates the call, same as demo
// mode, so the surrounding flow always completes.
type Service struct {
	Caller   domain.Caller // nil when telephony is not configured
	Archive  domain.ReportArchive
	DemoMode func() bool
}

func NewService(caller domain.Caller, archive domain.ReportArchive, demoMode func() bool) *Service {
	return &Service{Caller: caller, Archive: archive, DemoMode: demoMode}
}

// ContactEmergencyServices places (or simulates) the call to dispatch.
func (s *Service) ContactEmergencyServices(ctx context.Context, phone, message string) domain.CallResult {
	if s.Caller == nil || s.DemoMode() {
		return domain.CallResult{
			Status:     domain.StatusDemo,
			Message:    "Demo mode: emergency call would be initiated",
			CallID:     "demo_call_" + shortID(),
			Dispatched: true,
		}
	}

	res, err := s.Caller.Call(ctx, phone, message)
	if err != nil {
		log.Printf("emergency call failed: %v", err)
		return domain.CallResult{
			Status:  domain.StatusError,
			Message: fmt.Sprintf("Failed to contact emergency services: %v", err),
		}
	}
	res.Dispatched = true
	return res
}

// CallHospital rings a specific hospital on the caller's behalf.
func (s *Service) CallHospital(ctx context.Context, hospitalID, userPhone string) domain.CallResult {
	if s.Caller == nil || s.DemoMode() {
		return domain.CallResult{
			Status:  domain.StatusDemo,
			Message: fmt.Sprintf("Demo mode: would call hospital %s", hospitalID),
			CallID:  "demo_hospital_call_" + shortID(),
		}
	}

	res, err := s.Caller.Call(ctx, hospitalID, "Incoming emergency patient, caller "+userPhone)
	if err != nil {
		log.Printf("hospital call failed: hospital=%s err=%v", hospitalID, err)
		return domain.CallResult{
			Status:  domain.StatusError,
			Message: fmt.Sprintf("Failed to call hospital: %v", err),
		}
	}
	return res
}

// NotifyHospital tells a hospital to prepare for an incoming patient.
// Notification is best effort: a failure is logged, never fatal.
func (s *Service) NotifyHospital(ctx context.Context, n domain.Notification) domain.CallResult {
	msg := fmt.Sprintf("Incoming emergency patient. %s. Location: %s. ETA: %s",
		n.EmergencyDetails, n.PatientLocation, n.EstimatedArrival)

	if s.Caller == nil || s.DemoMode() {
		return domain.CallResult{
			Status:  domain.StatusDemo,
			Message: fmt.Sprintf("Hospital %s notified (Demo Mode)", n.HospitalName),
			CallID:  "demo_notify_" + shortID(),
		}
	}

	res, err := s.Caller.Call(ctx, n.HospitalID, msg)
	if err != nil {
		log.Printf("hospital notify failed: hospital=%s err=%v", n.HospitalID, err)
		return domain.CallResult{
			Status:  domain.StatusError,
			Message: fmt.Sprintf("Failed to notify hospital: %v", err),
		}
	}
	return res
}

// ArchiveReport stores the incident report and returns its URL. Archiving is
// optional infrastructure; without it the report ID is still returned.
func (s *Service) ArchiveReport(ctx context.Context, report domain.IncidentReport) (string, string, error) {
	if report.IncidentID == "" {
		report.IncidentID = "EMG_" + shortID()
	}
	reportID := "RPT_" + shortID()
	if s.Archive == nil {
		return reportID, "", nil
	}

	key := fmt.Sprintf("reports/%s/%s.json", report.Timestamp.Format("2006-01-02"), reportID)
	url, err := s.Archive.StoreReport(ctx, key, report)
	if err != nil {
		return reportID, "", err
	}
	return reportID, url, nil
}

func shortID() string {
	id := uuid.New().String()
	return id[:8]
}
