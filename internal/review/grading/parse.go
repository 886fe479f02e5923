package grading

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/draftly/internal/prompts/grade"
	"github.com/jackzampolin/draftly/internal/providers"
	"github.com/jackzampolin/draftly/internal/review/taxonomy"
)

// responseSchema is compiled on first use and shared by every grading call.
var responseSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return providers.CompileSchema(grade.ResponseSchemaJSON())
})

// ParseResponse turns raw collaborator output into a Grade covering every
// checklist element. The raw text is parsed directly first, then from its
// outermost brace-delimited region. Both the element map shape and the
// present/missing list shape are accepted.
func ParseResponse(raw string, checklist taxonomy.Checklist) (Grade, error) {
	doc, err := decode(raw)
	if err != nil {
		return Grade{}, err
	}
	schema, err := responseSchema()
	if err != nil {
		return Grade{}, err
	}
	if err := providers.ValidateAgainst(schema, doc); err != nil {
		return Grade{}, err
	}

	var resp grade.Response
	if err := json.Unmarshal(doc, &resp); err != nil {
		return Grade{}, fmt.Errorf("failed to decode grading response: %w", err)
	}

	g := Grade{
		Elements:   normalizeElements(resp, checklist),
		Confidence: DefaultConfidence,
		Rationale:  DefaultRationale,
	}
	if c, ok := resp.Confidence.(float64); ok {
		g.Confidence = clamp01(c)
	}
	if r, ok := resp.Rationale.(string); ok {
		g.Rationale = r
	}
	return g, nil
}

func decode(raw string) (json.RawMessage, error) {
	var probe map[string]any
	if err := json.Unmarshal([]byte(raw), &probe); err == nil {
		return json.RawMessage(raw), nil
	}
	extracted := providers.ExtractJSONObject(raw)
	if extracted == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(extracted), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return json.RawMessage(extracted), nil
}

// normalizeElements completes the grade over the checklist. Unlisted elements
// are absent and keys outside the checklist are dropped.
func normalizeElements(resp grade.Response, checklist taxonomy.Checklist) ElementGrade {
	out := make(ElementGrade, len(checklist))
	for _, el := range checklist {
		out[el.Text] = false
	}

	var byMap map[string]any
	if len(resp.Elements) > 0 && json.Unmarshal(resp.Elements, &byMap) == nil && byMap != nil {
		exact := make(map[string]bool, len(byMap))
		loose := make(map[string]bool, len(byMap))
		for k, v := range byMap {
			b, _ := v.(bool)
			exact[k] = b
			loose[normKey(k)] = loose[normKey(k)] || b
		}
		for _, el := range checklist {
			if v, ok := exact[el.Text]; ok {
				out[el.Text] = v
				continue
			}
			out[el.Text] = loose[normKey(el.Text)]
		}
		return out
	}

	present, ok := stringList(resp.ElementsPresent)
	if !ok {
		present, _ = stringList(resp.PresentElements)
	}
	listed := make(map[string]bool, len(present))
	for _, p := range present {
		listed[p] = true
		listed[normKey(p)] = true
	}
	for _, el := range checklist {
		out[el.Text] = listed[el.Text] || listed[normKey(el.Text)]
	}
	return out
}

// stringList reads a JSON array of strings. Non-arrays report false and
// non-string items are skipped.
func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}
