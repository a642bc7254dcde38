package triage

import (
	"strings"
	"testing"

	"github.com/bryanwahyu/emergency-response/internal/domain/analysis"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"vehicle", "there was a car crash on the highway", "Vehicle Accident"},
		{"fall", "my grandmother fell down the stairs", "Fall Injury"},
		{"burn", "I burned my hand on the stove", "Burn Injury"},
		{"laceration", "deep cut on the arm, lots of blood", "Laceration"},
		{"cardiac", "he has chest pain and feels dizzy", "Cardiac Emergency"},
		{"respiratory", "she is struggling to breathe", "Respiratory Emergency"},
		{"default", "something is wrong with my neighbor", "General Emergency"},
		{"empty", "", "General Emergency"},
		{"case insensitive", "CHEST PAIN!!", "Cardiac Emergency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.message); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestClassifyTableOrder(t *testing.T) {
	// Cardiac is declared before respiratory: a message matching both must
	// resolve to cardiac.
	got := Classify("chest pain and cant breathe")
	if got != "Cardiac Emergency" {
		t.Fatalf("Classify = %q, want Cardiac Emergency", got)
	}
}

func TestAssessSeverity(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    analysis.Severity
	}{
		{"critical unconscious", "he is unconscious on the floor", analysis.SeverityCritical},
		{"critical dominates high", "unconscious after an accident with bleeding", analysis.SeverityCritical},
		{"high", "there is some bleeding from the wound", analysis.SeverityHigh},
		{"moderate", "feeling a bit unwell", analysis.SeverityModerate},
		{"empty", "", analysis.SeverityModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssessSeverity(tt.message); got != tt.want {
				t.Errorf("AssessSeverity(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestAnalyzeTotality(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		strings.Repeat("a very long emergency description ", 10000),
		"緊急事態です、助けてください",
		"\x00\x01\x02",
	}

	for _, msg := range inputs {
		res := Analyze(msg, analysis.Location{Latitude: 1, Longitude: 2})
		if res == nil {
			t.Fatalf("Analyze(%q...) returned nil", msg[:min(len(msg), 20)])
		}
		if res.EmergencyType == "" {
			t.Errorf("empty category for input %q", msg[:min(len(msg), 20)])
		}
		switch res.Severity {
		case analysis.SeverityCritical, analysis.SeverityHigh, analysis.SeverityModerate, analysis.SeverityLow:
		default:
			t.Errorf("invalid severity %q", res.Severity)
		}
		if len(res.FirstAidSteps) == 0 || len(res.FirstAidSteps) > analysis.MaxFirstAidSteps {
			t.Errorf("first aid steps out of bounds: %d", len(res.FirstAidSteps))
		}
		if res.PriorityLevel == "" || res.EstimatedResponse == "" {
			t.Errorf("missing labels: %+v", res)
		}
	}
}

func TestFirstAidTruncation(t *testing.T) {
	// Vehicle Accident has 6 base steps; the critical prepend would make 7,
	// so the list must cap at 6 with the CPR step kept at the head.
	steps := FirstAidSteps("Vehicle Accident", analysis.SeverityCritical)
	if len(steps) != analysis.MaxFirstAidSteps {
		t.Fatalf("got %d steps, want %d", len(steps), analysis.MaxFirstAidSteps)
	}
	if steps[0] != cprStep {
		t.Errorf("first step = %q, want CPR step", steps[0])
	}
	// Tail dropped, not the head: the base list's last entry must be gone.
	for _, s := range steps {
		if s == "Call emergency services immediately" {
			t.Errorf("tail entry survived truncation: %q", s)
		}
	}
}

func TestFirstAidNonCriticalNoCPR(t *testing.T) {
	steps := FirstAidSteps("Burn Injury", analysis.SeverityHigh)
	if steps[0] == cprStep {
		t.Errorf("CPR step prepended for non-critical severity")
	}
	if len(steps) != 5 {
		t.Errorf("got %d steps, want 5", len(steps))
	}
}

func TestFirstAidUnknownCategory(t *testing.T) {
	steps := FirstAidSteps("Alien Abduction", analysis.SeverityModerate)
	if len(steps) == 0 {
		t.Fatal("unknown category must fall back to the generic steps")
	}
	if steps[0] != firstAidTable[DefaultCategory][0] {
		t.Errorf("unknown category did not use default table")
	}
}

func TestCardiacScenario(t *testing.T) {
	res := Analyze("chest pain and cant breathe", analysis.Location{Latitude: 40.71, Longitude: -74.01})

	if res.EmergencyType != "Cardiac Emergency" {
		t.Errorf("category = %q, want Cardiac Emergency", res.EmergencyType)
	}
	if res.Severity != analysis.SeverityCritical {
		t.Errorf("severity = %q, want critical", res.Severity)
	}
	if res.PriorityLevel != "Priority 1 (Life threatening)" {
		t.Errorf("priority = %q, want Priority 1 (Life threatening)", res.PriorityLevel)
	}
	if res.FirstAidSteps[0] != cprStep {
		t.Errorf("critical result must lead with the CPR step, got %q", res.FirstAidSteps[0])
	}
}

func TestPriorityLabel(t *testing.T) {
	tests := []struct {
		sev  analysis.Severity
		want string
	}{
		{analysis.SeverityCritical, "Priority 1 (Life threatening)"},
		{analysis.SeverityHigh, "Priority 2 (Urgent)"},
		{analysis.SeverityModerate, "Priority 3 (Less urgent)"},
		{analysis.SeverityLow, "Priority 4 (Non-urgent)"},
	}
	for _, tt := range tests {
		if got := analysis.PriorityLabel(tt.sev); got != tt.want {
			t.Errorf("PriorityLabel(%s) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}
