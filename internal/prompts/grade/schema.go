package grade

import "encoding/json"

// ResponseSchema documents the grading response. Only the top-level object is
// enforced; field values are normalized by the grader, which ignores anything
// mistyped instead of discarding the whole grade.
var ResponseSchema = map[string]any{
	"name":   "clause_grade",
	"strict": false,
	"schema": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"elements":         field("Map of required element text to presence"),
			"elements_present": field("Required elements found in the text"),
			"present_elements": field("Alias of elements_present"),
			"elements_missing": field("Required elements not found in the text"),
			"missing_elements": field("Alias of elements_missing"),
			"confidence":       field("Confidence in the grade, 0 to 1"),
			"rationale":        field("One-sentence justification"),
		},
	},
}

func field(description string) map[string]any {
	return map[string]any{"description": description}
}

// ResponseSchemaJSON returns ResponseSchema encoded for validation.
func ResponseSchemaJSON() json.RawMessage {
	b, _ := json.Marshal(ResponseSchema)
	return b
}

// Response is the raw grading response. Every field is optional; the grader
// fills defaults for anything missing or mistyped.
type Response struct {
	Elements        json.RawMessage `json:"elements"`
	ElementsPresent any             `json:"elements_present"`
	PresentElements any             `json:"present_elements"`
	ElementsMissing any             `json:"elements_missing"`
	MissingElements any             `json:"missing_elements"`
	Confidence      any             `json:"confidence"`
	Rationale       any             `json:"rationale"`
}
