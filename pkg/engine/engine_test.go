package engine

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEvaluateEmptySource(t *testing.T) {
	for _, src := range []string{"", "   \n\t  \n  "} {
		j := mustEvaluate(t, src)
		if j.Grid != nil || j.Solid != nil || len(j.Features) != 0 {
			t.Errorf("expected empty job for %q, got %+v", src, j)
		}
	}
}

func TestEvaluatePlainExpressions(t *testing.T) {
	j := mustEvaluate(t, "(def x 10)\n(def y 20)\n(+ x y)")
	if j.Grid != nil || j.Solid != nil {
		t.Error("plain arithmetic should not declare a source")
	}
	if err := j.Validate(); err == nil {
		t.Error("a job without a source should not validate")
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	j, evalErrs, err := NewEngine().Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if j != nil {
		t.Error("expected nil job on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	_, evalErrs, err := NewEngine().Evaluate("(grid :cols undefined-symbol)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for undefined symbol")
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	source := "(grid :cols 2)\n(grid-line :x 1)\n(+ 1"
	_, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	if evalErrs[0].Line > 0 {
		t.Logf("error at line %d: %s", evalErrs[0].Line, evalErrs[0].Message)
	} else {
		t.Logf("no line info extracted, message=%q", evalErrs[0].Message)
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	if s := e.Error(); !strings.Contains(s, "line 5") || !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() = %q", s)
	}
	e2 := EvalError{Message: "no location"}
	if s := e2.Error(); strings.Contains(s, "line") {
		t.Errorf("Error() with no line should not mention a line, got %q", s)
	}
}

func TestEvaluateIsolatesRuns(t *testing.T) {
	eng := NewEngine()
	first, _, err := eng.Evaluate(`(grid :cols 3 :rows 3) (grid-line :x 1)`)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := eng.Evaluate(`(grid :cols 3 :rows 3)`)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Features) != 1 || len(second.Features) != 0 {
		t.Errorf("features leaked between runs: %d then %d", len(first.Features), len(second.Features))
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// Exercise the timeout plumbing with a channel that never delivers.
	var mu sync.Mutex
	gen := uint64(1)
	ch := make(chan evalResult)

	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, _, resultErr = waitWithTimeout(ch, 1, &mu, &gen)
	}()

	select {
	case <-done:
		if resultErr == nil || !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error, got %v", resultErr)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, _, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil || !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", "some generic error", 0, "some generic error"},
		{"lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short form", "line 3: grid: cols: expected integer", 3, "grid: cols"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
