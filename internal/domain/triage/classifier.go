package triage

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/emergency-response/internal/domain/analysis"
)

// Rule-based emergency classifier. This is the fallback of last resort: it is
// a total function over message text and must never fail, including on empty
// input. Keep it free of I/O and external state.

// DefaultCategory is returned when no keyword set matches.
const DefaultCategory = "General Emergency"

// categoryRule pairs a category with its trigger keywords. Order matters:
// first matching category wins, so more specific categories sit higher.
type categoryRule struct {
	category string
	keywords []string
}

// categoryTable is evaluated top to bottom. Do not reorder: classification
// stability depends on declaration order (cardiac outranks respiratory, etc).
var categoryTable = []categoryRule{
	{"Vehicle Accident", []string{"accident", "crash", "collision", "hit"}},
	{"Fall Injury", []string{"fall", "fell", "slip"}},
	{"Burn Injury", []string{"burn", "fire", "hot"}},
	{"Laceration", []string{"cut", "bleeding", "blood"}},
	{"Cardiac Emergency", []string{"chest pain", "heart", "cardiac"}},
	{"Respiratory Emergency", []string{"breathe", "breathing", "airway"}},
}

// criticalKeywords is checked before highKeywords, so a critical marker wins
// even when high-tier words also appear.
var criticalKeywords = []string{"unconscious", "not breathing", "severe bleeding", "chest pain"}

var highKeywords = []string{"bleeding", "pain", "injury", "accident"}

// cprStep is prepended to first aid when severity is critical.
const cprStep = "Be ready to start CPR if the person stops breathing"

var firstAidTable = map[string][]string{
	"Vehicle Accident": {
		"Ensure scene safety before approaching",
		"Check for consciousness and breathing",
		"Do not move the person unless in immediate danger",
		"Control any visible bleeding with direct pressure",
		"Keep the person warm and calm",
		"Call emergency services immediately",
	},
	"Fall Injury": {
		"Check for consciousness",
		"Look for signs of head, neck, or spinal injury",
		"Do not move if spinal injury is suspected",
		"Apply ice to swelling areas",
		"Elevate injured limbs if no fracture is suspected",
	},
	"Burn Injury": {
		"Remove from heat source",
		"Cool burn with cool running water for 10-20 minutes",
		"Do not use ice or butter",
		"Cover with clean, dry cloth",
		"Do not break blisters",
	},
	"Laceration": {
		"Apply direct pressure to control bleeding",
		"Elevate the injured area above heart level if possible",
		"Use clean cloth or bandages",
		"Do not remove embedded objects",
		"Seek medical attention for deep cuts",
	},
	"Cardiac Emergency": {
		"Have the person sit down and rest",
		"Loosen any tight clothing",
		"Ask about prescribed heart medication",
		"Give aspirin if available and not allergic",
		"Monitor breathing and consciousness closely",
	},
	"Respiratory Emergency": {
		"Help the person into a comfortable upright position",
		"Loosen tight clothing around neck and chest",
		"Assist with prescribed inhaler if available",
		"Keep the person calm to slow breathing",
		"Watch for bluish lips or fingertips",
	},
	DefaultCategory: {
		"Ensure scene safety",
		"Check for consciousness and breathing",
		"Call emergency services",
		"Provide comfort and reassurance",
		"Monitor vital signs",
	},
}

var warningSignsTable = map[string][]string{
	"Vehicle Accident": {
		"Loss of consciousness",
		"Severe head or neck pain",
		"Heavy or uncontrolled bleeding",
		"Difficulty breathing",
	},
	"Fall Injury": {
		"Loss of consciousness",
		"Numbness or tingling in limbs",
		"Severe back or neck pain",
		"Visible deformity of a limb",
	},
	"Burn Injury": {
		"Burns larger than the palm of the hand",
		"Charred or white skin",
		"Burns on face, hands, or airway",
		"Signs of shock",
	},
	"Laceration": {
		"Bleeding that does not stop with pressure",
		"Gaping wound edges",
		"Signs of shock (pale, clammy skin)",
		"Numbness below the wound",
	},
	"Cardiac Emergency": {
		"Crushing chest pressure spreading to arm or jaw",
		"Shortness of breath",
		"Cold sweat or nausea",
		"Irregular or absent pulse",
	},
	"Respiratory Emergency": {
		"Bluish lips or face",
		"Inability to speak full sentences",
		"Wheezing or gasping",
		"Decreasing responsiveness",
	},
	DefaultCategory: {
		"Worsening pain or distress",
		"Changes in consciousness",
		"Difficulty breathing",
		"Pale or bluish skin",
	},
}

var actionsTable = map[string][]string{
	"Cardiac Emergency": {
		"Call emergency services (911) immediately",
		"Do not let the person drive themselves",
		"Provide first aid as appropriate",
		"Stay with the person until help arrives",
	},
	"Respiratory Emergency": {
		"Call emergency services (911) immediately",
		"Keep the airway clear",
		"Provide first aid as appropriate",
		"Stay with the person until help arrives",
	},
	DefaultCategory: {
		"Call emergency services (911)",
		"Provide first aid as appropriate",
		"Stay with the person until help arrives",
		"Gather information for emergency responders",
	},
}

// Classify returns the first category whose keyword set matches the message.
func Classify(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range categoryTable {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return DefaultCategory
}

// AssessSeverity runs the two keyword passes. Critical dominates high.
func AssessSeverity(message string) analysis.Severity {
	lower := strings.ToLower(message)
	for _, kw := range criticalKeywords {
		if strings.Contains(lower, kw) {
			return analysis.SeverityCritical
		}
	}
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return analysis.SeverityHigh
		}
	}
	return analysis.SeverityModerate
}

// FirstAidSteps returns the per-category steps, prepending the CPR step for
// critical severity and capping at MaxFirstAidSteps, dropping from the tail.
func FirstAidSteps(category string, severity analysis.Severity) []string {
	base, ok := firstAidTable[category]
	if !ok {
		base = firstAidTable[DefaultCategory]
	}
	steps := make([]string, 0, len(base)+1)
	if severity == analysis.SeverityCritical {
		steps = append(steps, cprStep)
	}
	steps = append(steps, base...)
	if len(steps) > analysis.MaxFirstAidSteps {
		steps = steps[:analysis.MaxFirstAidSteps]
	}
	return steps
}

// WarningSigns returns the per-category warning signs.
func WarningSigns(category string) []string {
	if signs, ok := warningSignsTable[category]; ok {
		return append([]string(nil), signs...)
	}
	return append([]string(nil), warningSignsTable[DefaultCategory]...)
}

// RecommendedActions returns the per-category actions.
func RecommendedActions(category string) []string {
	if acts, ok := actionsTable[category]; ok {
		return append([]string(nil), acts...)
	}
	return append([]string(nil), actionsTable[DefaultCategory]...)
}

// Analyze produces a complete triage result from the message alone.
func Analyze(message string, loc analysis.Location) *analysis.Result {
	category := Classify(message)
	severity := AssessSeverity(message)

	return &analysis.Result{
		EmergencyType:      category,
		Severity:           severity,
		Assessment:         fmt.Sprintf("Emergency reported: %s", strings.TrimSpace(message)),
		RecommendedActions: RecommendedActions(category),
		FirstAidSteps:      FirstAidSteps(category, severity),
		WarningSigns:       WarningSigns(category),
		EstimatedResponse:  analysis.ResponseTimeLabel(severity),
		PriorityLevel:      analysis.PriorityLabel(severity),
		Source:             "rule_based",
	}
}
