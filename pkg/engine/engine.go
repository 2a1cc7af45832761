// Package engine evaluates job scripts. A script is a zygomys program whose
// builtins (grid, box, feature-path, options, ...) fill in a job.Job.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/uvatlas/pkg/job"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a non-fatal error in a script, such as a parse error or a
// builtin rejecting its arguments.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates scripts. It is safe for concurrent use; every call to
// Evaluate runs in a fresh sandbox.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs source and returns the job it describes. The job is not
// validated; see job.Job.Validate.
//
// Return semantics:
//   - On success: returns job + nil errors + nil error
//   - On parse/eval failure: returns nil job + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*job.Job, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		j, evalErrs, err := e.evaluate(source)
		ch <- evalResult{job: j, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func (e *Engine) evaluate(source string) (*job.Job, []EvalError, error) {
	j := job.New()
	if strings.TrimSpace(source) == "" {
		return j, nil, nil
	}

	// The sandbox keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, j)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return j, nil, nil
}

// linePattern matches zygomys messages of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError turns a zygomys error into EvalErrors, extracting the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
