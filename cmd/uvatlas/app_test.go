package main

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func evaluateFile(t *testing.T, path string) EvalResult {
	t.Helper()
	source, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	result := NewApp().Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if result.Summary == nil {
		t.Fatal("expected a summary")
	}
	return result
}

// TestE2EQuadrantsExample exercises the full path: script -> engine -> job
// -> grid mesh -> charts -> validation.
func TestE2EQuadrantsExample(t *testing.T) {
	result := evaluateFile(t, "../../examples/quadrants.atlas")
	s := result.Summary

	if s.Name != "quadrants" {
		t.Errorf("name = %q, want quadrants", s.Name)
	}
	if s.Features != 2 {
		t.Errorf("features = %d, want 2", s.Features)
	}
	if len(s.Charts) != 4 {
		t.Fatalf("expected 4 charts, got %d", len(s.Charts))
	}
	colors := map[string]bool{}
	for _, c := range s.Charts {
		if c.Faces != 32 {
			t.Errorf("chart %d: %d faces, want 32", c.ID, c.Faces)
		}
		if c.Vertices != 25 {
			t.Errorf("chart %d: %d vertices, want 25", c.ID, c.Vertices)
		}
		colors[c.Color] = true
	}
	if len(colors) != 4 {
		t.Errorf("expected 4 distinct colors, got %v", colors)
	}
	if s.Faces != 128 || s.Vertices != 100 {
		t.Errorf("mesh after split: %d faces, %d vertices; want 128 and 100", s.Faces, s.Vertices)
	}
	if !s.Validated || !s.Valid {
		t.Errorf("expected a validated, valid result: %+v", s.Problems)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

// TestE2EDrilledBoxExample runs the sdfx kernel end to end.
func TestE2EDrilledBoxExample(t *testing.T) {
	if testing.Short() {
		t.Skip("marching cubes in short mode")
	}
	result := evaluateFile(t, "../../examples/drilled_box.atlas")
	s := result.Summary

	if len(s.Charts) == 0 {
		t.Fatal("expected at least one chart")
	}
	faces := 0
	for _, c := range s.Charts {
		if c.Faces == 0 {
			t.Errorf("chart %d is empty", c.ID)
		}
		faces += c.Faces
	}
	if faces != s.Faces {
		t.Errorf("charts cover %d of %d faces", faces, s.Faces)
	}
	if !s.Valid {
		t.Errorf("expected a valid result: %v", s.Problems)
	}
	if result.run == nil || result.run.Mesh == nil {
		t.Fatal("expected the run to be kept for the preview")
	}
}

// ---------------------------------------------------------------------------
// Empty and broken sources
// ---------------------------------------------------------------------------

func TestE2EEmptySource(t *testing.T) {
	result := NewApp().Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if result.Summary != nil {
		t.Errorf("expected no summary, got %+v", result.Summary)
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Errors == nil || result.Warnings == nil {
		t.Error("Errors and Warnings should be non-nil empty slices")
	}
}

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	result := NewApp().Evaluate("(grid :cols 2 :rows 2)\n(grid-line :x 1")

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for unmatched parens")
	}
	if result.Errors[0].Message == "" {
		t.Error("error message should not be empty")
	}
	if result.Summary != nil {
		t.Error("expected no summary on error")
	}
}

func TestE2EInvalidJob(t *testing.T) {
	// A feature with no mesh to put it on.
	result := NewApp().Evaluate(`(grid-line :x 1)`)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a job without a mesh source")
	}
	if !strings.Contains(result.Errors[0].Message, "invalid job") {
		t.Errorf("unexpected message: %q", result.Errors[0].Message)
	}
}

func TestE2EBuiltinError(t *testing.T) {
	result := NewApp().Evaluate(`(grid :cols 2.5)`)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a fractional column count")
	}
	if !strings.Contains(result.Errors[0].Message, "cols") {
		t.Errorf("error should mention cols: %q", result.Errors[0].Message)
	}
}

// ---------------------------------------------------------------------------
// Validation findings
// ---------------------------------------------------------------------------

func TestE2EUncoveredFacesAreReported(t *testing.T) {
	// A single seam produces no border face, so without reseeding no chart
	// is ever started.
	result := NewApp().Evaluate(`
(grid :cols 2 :rows 2)
(grid-line :x 1)
(options :seed-uncovered false)
`)
	if result.Summary == nil {
		t.Fatalf("expected a summary, errors: %v", result.Errors)
	}
	if len(result.Summary.Charts) != 0 {
		t.Errorf("expected 0 charts, got %d", len(result.Summary.Charts))
	}
	if len(result.Errors) != 9 {
		t.Errorf("expected one error per vertex (9), got %d", len(result.Errors))
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Message != "[warning] 8 faces are not in any chart" {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
	if result.Summary.Valid {
		t.Error("result should be invalid")
	}
}

func TestE2EValidationDisabled(t *testing.T) {
	result := NewApp().Evaluate(`
(grid :cols 2 :rows 2)
(options :validate false)
`)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	s := result.Summary
	if s.Validated || s.Valid {
		t.Errorf("validated=%v valid=%v, want false/false", s.Validated, s.Valid)
	}
	if len(s.Charts) != 1 || s.Charts[0].Faces != 8 {
		t.Errorf("expected one chart over all 8 faces, got %+v", s.Charts)
	}
}

// ---------------------------------------------------------------------------
// JSON shape
// ---------------------------------------------------------------------------

func TestEvalResultJSON(t *testing.T) {
	result := NewApp().Evaluate("(grid :cols 1 :rows 1)")

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"summary", "errors", "warnings"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if string(decoded["errors"]) != "[]" {
		t.Errorf("errors = %s, want []", decoded["errors"])
	}
	if len(decoded) != 3 {
		t.Errorf("unexpected keys in %s", data)
	}
}
