package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appanalysis "github.com/bryanwahyu/emergency-response/internal/application/analysis"
	appdispatch "github.com/bryanwahyu/emergency-response/internal/application/dispatch"
	apphospitals "github.com/bryanwahyu/emergency-response/internal/application/hospitals"
	appquota "github.com/bryanwahyu/emergency-response/internal/application/quota"
	domanalysis "github.com/bryanwahyu/emergency-response/internal/domain/analysis"
	domdispatch "github.com/bryanwahyu/emergency-response/internal/domain/dispatch"
	domhospitals "github.com/bryanwahyu/emergency-response/internal/domain/hospitals"
	domquota "github.com/bryanwahyu/emergency-response/internal/domain/quota"
)

type Router struct {
	analysisSvc  *appanalysis.Service
	hospitalsSvc *apphospitals.Service
	dispatchSvc  *appdispatch.Service
	quotaSvc     *appquota.Service
}

func NewRouter(analysisSvc *appanalysis.Service, hospitalsSvc *apphospitals.Service,
	dispatchSvc *appdispatch.Service, quotaSvc *appquota.Service) http.Handler {

	r := &Router{
		analysisSvc:  analysisSvc,
		hospitalsSvc: hospitalsSvc,
		dispatchSvc:  dispatchSvc,
		quotaSvc:     quotaSvc,
	}
	mux := chi.NewRouter()

	mux.Get("/", r.wrap(r.handleRoot))
	mux.Get("/health", r.wrap(r.handleHealth))
	mux.Get("/test", r.wrap(r.handleTest))
	mux.Get("/status", r.wrap(r.handleStatus))

	mux.Post("/emergency/analyze", r.wrap(r.handleAnalyze))
	mux.Post("/emergency/hospitals", r.wrap(r.handleHospitals))
	mux.Post("/emergency/call", r.wrap(r.handleContactEmergency))
	mux.Post("/contact-emergency", r.wrap(r.handleContactEmergency))
	mux.Post("/call-hospital", r.wrap(r.handleCallHospital))
	mux.Post("/notify-hospital", r.wrap(r.handleNotifyHospital))
	mux.Post("/emergency/report", r.wrap(r.handleEmergencyReport))

	mux.Get("/api-usage", r.wrap(r.handleUsage))
	mux.Get("/analytics/usage", r.wrap(r.handleUsageAnalytics))
	mux.Get("/cost-protection/status", r.wrap(r.handleCostProtectionStatus))
	mux.Post("/demo-mode/enable", r.wrap(r.handleDemoEnable))
	mux.Post("/demo-mode/disable", r.wrap(r.handleDemoDisable))
	mux.Get("/demo-mode/status", r.wrap(r.handleDemoStatus))
	mux.Post("/demo/toggle", r.wrap(r.handleDemoToggle))

	// legacy endpoint, kept for old clients
	mux.Post("/ask", r.wrap(r.handleAsk))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, domanalysis.ErrQuotaExhausted) {
				http.Error(w, err.Error(), http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// GET /
func (r *Router) handleRoot(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, map[string]any{
		"service":   "Emergency Response AI System",
		"version":   "2.0.0",
		"status":    "operational",
		"demo_mode": r.quotaSvc.DemoMode(),
		"features": []string{
			"AI-Enhanced Emergency Analysis",
			"Rule-Based Fallback",
			"Smart Caching System",
			"Cost Protection",
		},
		"endpoints": map[string]string{
			"health":             "/health",
			"emergency_analysis": "/emergency/analyze",
			"hospital_search":    "/emergency/hospitals",
			"emergency_call":     "/emergency/call",
			"system_status":      "/status",
		},
	})
}

// GET /health
func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, map[string]any{"status": "healthy", "timestamp": time.Now().Format(time.RFC3339)})
}

// GET /test
func (r *Router) handleTest(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, map[string]any{
		"status":    "success",
		"message":   "API is working correctly",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GET /status
func (r *Router) handleStatus(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, map[string]any{
		"system":    "Emergency Response AI System",
		"status":    "operational",
		"version":   "2.0.0",
		"demo_mode": r.quotaSvc.DemoMode(),
		"features": map[string]bool{
			"ai_analysis":       true,
			"hospital_search":   true,
			"emergency_calling": true,
			"cost_protection":   true,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// POST /emergency/analyze
// Quota exhaustion surfaces as 429 here, at the outer layer only; the
// analysis pipeline itself always degrades to the rule-based classifier.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	start := time.Now()

	var body struct {
		Message      string               `json:"message"`
		Location     domanalysis.Location `json:"location"`
		ScenarioType string               `json:"scenario_type"`
		ForceRefresh bool                 `json:"force_new_analysis"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.Message == "" {
		return fmt.Errorf("message is required")
	}
	scenario := body.ScenarioType
	if scenario == "" {
		scenario = "custom-emergency"
	}

	result, cached := r.analysisSvc.AnalyzeEmergency(req.Context(), domanalysis.Request{
		Message:      body.Message,
		Location:     body.Location,
		ScenarioType: scenario,
		ForceRefresh: body.ForceRefresh,
	})

	return writeJSON(w, map[string]any{
		"analysis": result,
		"performance": map[string]any{
			"response_time_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"optimized":        true,
			"cached":           cached,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// POST /emergency/hospitals
func (r *Router) handleHospitals(w http.ResponseWriter, req *http.Request) error {
	start := time.Now()

	var body struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Radius    int     `json:"radius"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}

	if !r.quotaSvc.CanProceed(req.Context(), domquota.ResourceGoogleMaps) {
		return fmt.Errorf("daily Google Maps request limit reached: %w", domanalysis.ErrQuotaExhausted)
	}

	list := r.hospitalsSvc.FindNearby(req.Context(), domhospitals.SearchQuery{
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		RadiusM:   body.Radius,
	})
	r.quotaSvc.RecordUsage(req.Context(), domquota.ResourceGoogleMaps, domquota.UnitCostGoogleMaps)

	return writeJSON(w, map[string]any{
		"hospitals": list,
		"performance": map[string]any{
			"response_time_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"cached":           false,
			"optimized":        true,
		},
	})
}

// POST /contact-emergency (also /emergency/call)
func (r *Router) handleContactEmergency(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		PhoneNumber string `json:"phone_number"`
		Message     string `json:"message"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.PhoneNumber == "" {
		body.PhoneNumber = "911"
	}

	if !r.quotaSvc.CanProceed(req.Context(), domquota.ResourceTwilioCalls) {
		return fmt.Errorf("daily Twilio call limit reached: %w", domanalysis.ErrQuotaExhausted)
	}

	res := r.dispatchSvc.ContactEmergencyServices(req.Context(), body.PhoneNumber, body.Message)
	r.quotaSvc.RecordUsage(req.Context(), domquota.ResourceTwilioCalls, 0)

	return writeJSON(w, map[string]any{
		"status":              res.Status,
		"message":             res.Message,
		"call_id":             res.CallID,
		"response_dispatched": res.Dispatched,
		"estimated_arrival":   "5-8 minutes",
	})
}

// POST /call-hospital
func (r *Router) handleCallHospital(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		HospitalID string `json:"hospital_id"`
		UserPhone  string `json:"user_phone"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}

	if !r.quotaSvc.CanProceed(req.Context(), domquota.ResourceTwilioCalls) {
		return fmt.Errorf("daily Twilio call limit reached: %w", domanalysis.ErrQuotaExhausted)
	}

	res := r.dispatchSvc.CallHospital(req.Context(), body.HospitalID, body.UserPhone)
	r.quotaSvc.RecordUsage(req.Context(), domquota.ResourceTwilioCalls, 0)

	return writeJSON(w, res)
}

// POST /notify-hospital
func (r *Router) handleNotifyHospital(w http.ResponseWriter, req *http.Request) error {
	var n domdispatch.Notification
	if err := json.NewDecoder(req.Body).Decode(&n); err != nil {
		return err
	}

	res := r.dispatchSvc.NotifyHospital(req.Context(), n)

	return writeJSON(w, map[string]any{
		"status":                     res.Status,
		"message":                    fmt.Sprintf("Hospital %s notified", n.HospitalName),
		"preparation_status":         "ready",
		"estimated_preparation_time": "2-3 minutes",
	})
}

// POST /emergency/report
func (r *Router) handleEmergencyReport(w http.ResponseWriter, req *http.Request) error {
	var report domdispatch.IncidentReport
	if err := json.NewDecoder(req.Body).Decode(&report); err != nil {
		return err
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}
	if report.Status == "" {
		report.Status = "services_activated"
	}

	reportID, url, err := r.dispatchSvc.ArchiveReport(req.Context(), report)
	if err != nil {
		return fmt.Errorf("archive report: %w", err)
	}

	return writeJSON(w, map[string]any{
		"status":     "success",
		"message":    "Emergency report sent to all parties",
		"report_id":  reportID,
		"report_url": url,
		"recipients": []string{"Emergency Dispatch", "Hospital", "Emergency Coordinator"},
	})
}

// GET /api-usage
func (r *Router) handleUsage(w http.ResponseWriter, req *http.Request) error {
	report, err := r.quotaSvc.Report(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, report)
}

// GET /analytics/usage
func (r *Router) handleUsageAnalytics(w http.ResponseWriter, req *http.Request) error {
	report, err := r.quotaSvc.Report(req.Context())
	if err != nil {
		return err
	}

	total := 0
	for _, u := range report.Usage {
		total += u.Used
	}
	return writeJSON(w, map[string]any{
		"analytics": report,
		"summary": map[string]any{
			"total_requests": total,
			"total_cost":     report.TotalCost,
			"demo_mode":      report.DemoMode,
			"date":           report.Date,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GET /cost-protection/status
func (r *Router) handleCostProtectionStatus(w http.ResponseWriter, req *http.Request) error {
	report, err := r.quotaSvc.Report(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{
		"status":      "active",
		"demo_mode":   report.DemoMode,
		"daily_usage": report,
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}

// POST /demo-mode/enable
func (r *Router) handleDemoEnable(w http.ResponseWriter, _ *http.Request) error {
	r.quotaSvc.SetDemoMode(true)
	return writeJSON(w, map[string]any{"status": "success", "message": "Demo mode enabled"})
}

// POST /demo-mode/disable
func (r *Router) handleDemoDisable(w http.ResponseWriter, _ *http.Request) error {
	r.quotaSvc.SetDemoMode(false)
	return writeJSON(w, map[string]any{"status": "success", "message": "Demo mode disabled"})
}

// GET /demo-mode/status
func (r *Router) handleDemoStatus(w http.ResponseWriter, _ *http.Request) error {
	on := r.quotaSvc.DemoMode()
	status := "disabled"
	if on {
		status = "enabled"
	}
	return writeJSON(w, map[string]any{"demo_mode": on, "status": status})
}

// POST /demo/toggle
func (r *Router) handleDemoToggle(w http.ResponseWriter, _ *http.Request) error {
	next := !r.quotaSvc.DemoMode()
	r.quotaSvc.SetDemoMode(next)

	message := "Demo mode disabled"
	if next {
		message = "Demo mode enabled"
	}
	return writeJSON(w, map[string]any{
		"status":    "success",
		"demo_mode": next,
		"message":   message,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// POST /ask (legacy shape: {"request": "...", "latitude": .., "longitude": ..})
func (r *Router) handleAsk(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Request   string  `json:"request"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if body.Request == "" {
		return fmt.Errorf("request is required")
	}

	result, _ := r.analysisSvc.AnalyzeEmergency(req.Context(), domanalysis.Request{
		Message:      body.Request,
		Location:     domanalysis.Location{Latitude: body.Latitude, Longitude: body.Longitude},
		ScenarioType: "custom-emergency",
	})
	return writeJSON(w, result)
}
