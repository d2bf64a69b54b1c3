package types

import (
	"encoding/json"
	"testing"
)

func TestValidCode(t *testing.T) {
	valid := []string{"E101", "E201", "W204", "D302", "S401", "S400"}
	for _, code := range valid {
		if !ValidCode(code) {
			t.Errorf("expected %s to be valid", code)
		}
	}

	invalid := []string{"", "E1", "X101", "E501", "e101", "E10", "DOM001", "E1011a"}
	for _, code := range invalid {
		if ValidCode(code) {
			t.Errorf("expected %s to be invalid", code)
		}
	}
}

func TestValidationErrorValidate(t *testing.T) {
	err := ValidationError{
		Code:     "E201",
		Level:    LevelStatic,
		Message:  "forbidden import",
		Severity: SeverityError,
	}
	if verr := err.Validate(); verr != nil {
		t.Fatalf("expected valid finding, got %v", verr)
	}

	bad := err
	bad.Code = "Z999"
	if bad.Validate() == nil {
		t.Error("expected invalid code to fail validation")
	}

	bad = err
	bad.Severity = "fatal"
	if bad.Validate() == nil {
		t.Error("expected invalid severity to fail validation")
	}

	bad = err
	bad.Message = ""
	if bad.Validate() == nil {
		t.Error("expected missing message to fail validation")
	}
}

func TestNewResultStatus(t *testing.T) {
	meta := Metadata{Version: "test", Platform: "linux"}

	// No findings: pass with empty (non-nil) error list
	r := NewResult(nil, meta)
	if r.Status != StatusPass {
		t.Errorf("expected pass, got %s", r.Status)
	}
	if r.Errors == nil || len(r.Errors) != 0 {
		t.Errorf("expected empty error list, got %v", r.Errors)
	}

	// Warnings alone never force fail
	r = NewResult([]ValidationError{
		{Code: "W204", Level: LevelStatic, Message: "unused import", Severity: SeverityWarning},
	}, meta)
	if r.Status != StatusPass {
		t.Errorf("warnings alone should not fail, got %s", r.Status)
	}
	if r.Summary.Warnings != 1 || r.Summary.Errors != 0 || r.Summary.Total != 1 {
		t.Errorf("unexpected summary: %+v", r.Summary)
	}

	// One error forces fail
	r = NewResult([]ValidationError{
		{Code: "W204", Level: LevelStatic, Message: "unused import", Severity: SeverityWarning},
		{Code: "E201", Level: LevelStatic, Message: "forbidden import", Severity: SeverityError},
	}, meta)
	if r.Status != StatusFail {
		t.Errorf("expected fail, got %s", r.Status)
	}
	if !r.HasErrors() {
		t.Error("expected HasErrors to be true")
	}
}

func TestFindingsByCode(t *testing.T) {
	r := NewResult([]ValidationError{
		{Code: "E201", Level: LevelStatic, Message: "a", Severity: SeverityError, Line: 3},
		{Code: "W204", Level: LevelStatic, Message: "b", Severity: SeverityWarning, Line: 1},
		{Code: "E201", Level: LevelStatic, Message: "c", Severity: SeverityError, Line: 9},
	}, Metadata{})

	found := r.FindingsByCode("E201")
	if len(found) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(found))
	}
	if found[0].Line != 3 || found[1].Line != 9 {
		t.Errorf("expected detection order preserved, got %+v", found)
	}
	if len(r.FindingsByCode("S401")) != 0 {
		t.Error("expected no S401 findings")
	}
}

func TestResultWireFormat(t *testing.T) {
	r := NewResult([]ValidationError{
		{Code: "E101", Level: LevelSyntax, Message: "syntax error", Severity: SeverityError, Line: 4, Column: 2},
	}, Metadata{Version: "0.1.0", GoVersion: "go1.25", Platform: "linux"})

	data, err := r.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round-trip failed: %v", err)
	}
	for _, key := range []string{"status", "errors", "summary", "metadata"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("wire format missing %q key", key)
		}
	}
	if decoded["status"] != "fail" {
		t.Errorf("expected status fail, got %v", decoded["status"])
	}
	summary := decoded["summary"].(map[string]interface{})
	if summary["total"].(float64) != 1 || summary["errors"].(float64) != 1 {
		t.Errorf("unexpected summary: %v", summary)
	}
}

func TestDepthAndStatusEnums(t *testing.T) {
	if !DepthFast.IsValid() || !DepthFull.IsValid() {
		t.Error("expected fast/full to be valid depths")
	}
	if Depth("deep").IsValid() {
		t.Error("expected unknown depth to be invalid")
	}
	for _, s := range []Status{StatusPass, StatusFail, StatusError, StatusSkipped} {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if Status("maybe").IsValid() {
		t.Error("expected unknown status to be invalid")
	}
	if LevelSyntax.String() != "L1" || LevelSandbox.String() != "L4" {
		t.Error("unexpected level strings")
	}
}
