package repair

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustParse(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("repaired output is not valid JSON: %v\noutput: %s", err, s)
	}
	return m
}

func TestRepairAlwaysParseable(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"no json here at all",
		"{}",
		`{"grade": "A"}`,
		"```json\n{\"grade\": \"B\"}\n```",
		"```\n{\"grade\": \"B\"}\n```",
		`Here is the result: {"grade": "C"} hope that helps!`,
		`{"questions": [{"question_number": "1"`,
		`{"grade": "A", "percentage": "90%", "summary": "Good wo`,
		`{grade: "A", percentage: "85%"}`,
		`{"grade": null, "percentage": null, "summary": null}`,
		`{"a": 1,}`,
		"\x00\xff garbage bytes",
		`[1, 2, 3]`,
	}
	for _, in := range inputs {
		out := Repair(in)
		if !json.Valid([]byte(out)) {
			t.Errorf("Repair(%q) = %q, not valid JSON", in, out)
		}
	}
}

func TestRepairNoObjectFallsBack(t *testing.T) {
	for _, in := range []string{"", "just prose", "[]", "42"} {
		if got := Repair(in); got != "{}" {
			t.Errorf("Repair(%q) = %q, want {}", in, got)
		}
	}
}

func TestRepairStripsFences(t *testing.T) {
	in := "```json\n{\"grade\": \"B\", \"percentage\": 85, \"questions\": []}\n```"
	m := mustParse(t, Repair(in))
	if m["grade"] != "B" {
		t.Errorf("grade = %v, want B", m["grade"])
	}
	if m["percentage"] != float64(85) {
		t.Errorf("percentage = %v, want 85", m["percentage"])
	}
}

func TestRepairDiscardsTrailingProse(t *testing.T) {
	in := `{"grade": "A", "summary": "Well done"} Let me know if you need anything else.`
	m := mustParse(t, Repair(in))
	if m["grade"] != "A" {
		t.Errorf("grade = %v, want A", m["grade"])
	}
	if len(m) != 2 {
		t.Errorf("expected 2 keys, got %v", m)
	}
}

func TestRepairTruncatedMidString(t *testing.T) {
	// Truncated mid-string: the string must be closed and braces balanced.
	in := `{"grade":"A","percentage":"90%","summary":"Good wo`
	m := mustParse(t, Repair(in))
	if m["grade"] != "A" {
		t.Errorf("grade = %v, want A", m["grade"])
	}
	summary, _ := m["summary"].(string)
	if !strings.HasPrefix(summary, "Good wo") {
		t.Errorf("summary = %q, want prefix 'Good wo'", summary)
	}
}

func TestRepairTruncatedNestedStructures(t *testing.T) {
	in := `{"questions": [{"question_number": "1", "feedback": {"strengths": ["clear`
	m := mustParse(t, Repair(in))
	qs, ok := m["questions"].([]any)
	if !ok || len(qs) != 1 {
		t.Fatalf("questions = %v, want one entry", m["questions"])
	}
}

func TestRepairTruncatedAfterKey(t *testing.T) {
	in := `{"grade": "B", "summary":`
	m := mustParse(t, Repair(in))
	if m["grade"] != "B" {
		t.Errorf("grade = %v, want B", m["grade"])
	}
}

func TestRepairQuotesUnquotedKeys(t *testing.T) {
	in := `{grade: "A", percentage: "85%"}`
	m := mustParse(t, Repair(in))
	if m["grade"] != "A" || m["percentage"] != "85%" {
		t.Errorf("unexpected result: %v", m)
	}
}

func TestRepairReplacesNullRequiredFields(t *testing.T) {
	in := `{"grade": null, "percentage": null, "summary": null}`
	m := mustParse(t, Repair(in))
	if m["grade"] != "N/A" {
		t.Errorf("grade = %v, want N/A", m["grade"])
	}
	if m["percentage"] != "0%" {
		t.Errorf("percentage = %v, want 0%%", m["percentage"])
	}
	if m["summary"] != "" {
		t.Errorf("summary = %v, want empty string", m["summary"])
	}
}

func TestRepairLeavesValidJSONAlone(t *testing.T) {
	// A comma-and-colon inside a string value must survive untouched.
	in := `{"summary": "Strengths: algebra, geometry", "grade": "B"}`
	m := mustParse(t, Repair(in))
	if m["summary"] != "Strengths: algebra, geometry" {
		t.Errorf("summary mangled: %v", m["summary"])
	}
}

func TestRepairEscapedQuotesInStrings(t *testing.T) {
	in := `{"summary": "the \"best\" answer uses } and {"} trailing garbage`
	m := mustParse(t, Repair(in))
	if m["summary"] != `the "best" answer uses } and {` {
		t.Errorf("summary = %v", m["summary"])
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		wantOK bool
	}{
		{"valid", `{"grade": "A"}`, true},
		{"empty input", "", true}, // repaired to {}
		{"fenced", "```json\n{\"grade\": \"B\"}\n```", true},
		{"truncated", `{"grade": "A", "summary": "Good wo`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Parse(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && m == nil {
				t.Error("Parse returned nil map on success")
			}
		})
	}
}
