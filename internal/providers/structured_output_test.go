package providers

import (
	"encoding/json"
	"testing"
)

func TestParseStructuredJSON_StripsCodeFence(t *testing.T) {
	content := "```json\n{\"ok\":true}\n```"
	got, err := ParseStructuredJSON(content)
	if err != nil {
		t.Fatalf("ParseStructuredJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(got, &parsed); err != nil {
		t.Fatalf("failed to unmarshal parsed JSON: %v", err)
	}
	if ok, _ := parsed["ok"].(bool); !ok {
		t.Fatalf("expected ok=true, got %#v", parsed)
	}
}

func TestParseStructuredJSON_SurroundingProse(t *testing.T) {
	content := "Sure! Here is the grading:\n{\"elements\":{\"a\":true},\"confidence\":0.9}\nLet me know if you need more."
	got, err := ParseStructuredJSON(content)
	if err != nil {
		t.Fatalf("ParseStructuredJSON() error = %v", err)
	}
	if string(got) != `{"confidence":0.9,"elements":{"a":true}}` {
		t.Fatalf("unexpected normalized JSON: %s", got)
	}
}

func TestParseStructuredJSON_Failures(t *testing.T) {
	for _, content := range []string{"", "   ", "no json here", "{not: valid}", "} backwards {"} {
		if _, err := ParseStructuredJSON(content); err == nil {
			t.Errorf("ParseStructuredJSON(%q) expected error", content)
		}
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{`prefix {"a":{"b":2}} suffix`, `{"a":{"b":2}}`},
		{`{"a":1} and {"b":2}`, `{"a":1} and {"b":2}`},
		{`no braces`, ``},
		{`} {`, ``},
	}
	for _, tt := range tests {
		if got := ExtractJSONObject(tt.in); got != tt.want {
			t.Errorf("ExtractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateStructuredJSON_EnforcesCanonicalBounds(t *testing.T) {
	schema := json.RawMessage(`{
		"name":"clause_grade",
		"strict":true,
		"schema":{
			"type":"object",
			"properties":{
				"confidence":{"type":"number","minimum":0,"maximum":1}
			},
			"required":["confidence"]
		}
	}`)

	valid := json.RawMessage(`{"confidence":0.5}`)
	if err := ValidateStructuredJSON(schema, valid); err != nil {
		t.Fatalf("ValidateStructuredJSON(valid) error = %v", err)
	}

	invalid := json.RawMessage(`{"confidence":"high"}`)
	if err := ValidateStructuredJSON(schema, invalid); err == nil {
		t.Fatal("ValidateStructuredJSON(invalid) expected error, got nil")
	}
}

func TestValidateStructuredJSON_BareSchema(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","required":["x"]}`)
	if err := ValidateStructuredJSON(schema, json.RawMessage(`{"y":1}`)); err == nil {
		t.Fatal("expected missing required property to fail")
	}
	if err := ValidateStructuredJSON(nil, json.RawMessage(`{"y":1}`)); err != nil {
		t.Fatalf("empty schema should skip validation, got %v", err)
	}
}

func TestCompileSchema_Reuse(t *testing.T) {
	schema, err := CompileSchema(json.RawMessage(`{"name":"grade","schema":{"type":"object","required":["x"]}}`))
	if err != nil {
		t.Fatalf("CompileSchema() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := ValidateAgainst(schema, json.RawMessage(`{"x":1}`)); err != nil {
			t.Fatalf("ValidateAgainst(valid) error = %v", err)
		}
	}
	if err := ValidateAgainst(schema, json.RawMessage(`{"y":1}`)); err == nil {
		t.Fatal("ValidateAgainst(missing x) expected error")
	}
	if err := ValidateAgainst(schema, json.RawMessage(`{`)); err == nil {
		t.Fatal("ValidateAgainst(broken json) expected error")
	}

	if _, err := CompileSchema(json.RawMessage(`not json`)); err == nil {
		t.Fatal("CompileSchema(invalid) expected error")
	}
}
