package main

import (
	"log"

	"github.com/chazu/uvatlas/pkg/charts"
	"github.com/chazu/uvatlas/pkg/engine"
	"github.com/chazu/uvatlas/pkg/kernel/sdfx"
	"github.com/chazu/uvatlas/pkg/pipeline"
)

// App ties the script engine to the pipeline. Each Evaluate call runs one
// job from source to charts.
type App struct {
	engine *engine.Engine
	runner *pipeline.Runner
}

// ErrorData is a JSON-serializable script or validation error.
type ErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Summary  *pipeline.Summary `json:"summary"`
	Errors   []ErrorData       `json:"errors"`
	Warnings []ErrorData       `json:"warnings"`

	run *pipeline.Result
}

// NewApp creates an App with an engine and the sdfx kernel.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		runner: &pipeline.Runner{Kernel: sdfx.New()},
	}
}

// Evaluate takes a job script and returns the chart summary plus errors.
// An empty script describes no job and yields an empty result.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Errors:   []ErrorData{},
		Warnings: []ErrorData{},
	}

	// Step 1: Evaluate the script into a job.
	j, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, ErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	if j.Grid == nil && j.Solid == nil && len(j.Features) == 0 {
		return result
	}

	// Step 3: Build the mesh and segment it.
	run, err := a.runner.Run(j)
	if err != nil {
		log.Printf("Run error: %v", err)
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
		return result
	}
	result.run = run
	summary := run.Summary()
	result.Summary = &summary

	// Step 4: Sort validation findings by severity.
	for _, v := range run.Validation {
		d := ErrorData{Message: v.Error()}
		if v.Severity == charts.SeverityWarning {
			result.Warnings = append(result.Warnings, d)
		} else {
			result.Errors = append(result.Errors, d)
		}
	}
	return result
}
