package prompt

import "fmt"

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are an emergency medical triage assistant. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Use lowercase severity values: critical, high, moderate, low.
- first_aid_steps must contain at most 6 short, actionable steps.
- Never refuse; when information is missing, give conservative general-emergency guidance.
- Keep every string concise and free of medical jargon.

Schema (example with empty values):
{
  "emergency_type": "<string>",
  "severity": "<critical|high|moderate|low>",
  "assessment": "<string>",
  "recommended_actions": ["<string>"],
  "first_aid_steps": ["<string>"],
  "warning_signs": ["<string>"],
  "estimated_response_time": "<string>"
}`
}

// GetUserPrompt builds a compact user message from the report.
func GetUserPrompt(message string, lat, lon float64, scenario string) string {
	if scenario == "" {
		scenario = "custom-emergency"
	}
	return fmt.Sprintf(
		"Emergency report (%s) at latitude %.4f, longitude %.4f: %s\nRespond with the JSON per schema.",
		scenario, lat, lon, message,
	)
}
