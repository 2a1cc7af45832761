// Command uvatlas segments a mesh described by a job script into charts.
//
// Usage:
//
//	uvatlas [flags] job.atlas
//	uvatlas -in - -svg charts.svg < job.atlas
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chazu/uvatlas/pkg/preview"
	"golang.org/x/term"
)

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

var (
	source     = flag.String("in", "", "Job script, or - for stdin")
	svgOut     = flag.String("svg", "", "Write an SVG preview to this file, or - for stdout")
	size       = flag.Int("size", 512, "Preview size in pixels")
	projection = flag.String("projection", "top", "Preview projection: top, front, side or iso")
	edges      = flag.Bool("edges", true, "Outline faces in the preview")
	jsonOut    = flag.Bool("json", false, "Print the summary as JSON")
	quiet      = flag.Bool("q", false, "Suppress progress logging")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: uvatlas [flags] [job.atlas]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	in := *source
	if in == "" && flag.NArg() > 0 {
		in = flag.Arg(0)
	}
	if in == "" {
		flag.Usage()
		os.Exit(2)
	}
	proj, err := preview.ParseProjection(*projection)
	if err != nil {
		log.Fatal(err)
	}
	if *quiet {
		log.SetOutput(io.Discard)
	}

	script, err := readSource(in)
	if err != nil {
		log.Fatal(err)
	}

	result := NewApp().Evaluate(string(script))
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, w.Message)
	}
	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", in, e.Line, e.Col, e.Message)
		} else {
			fmt.Fprintln(os.Stderr, e.Message)
		}
	}
	if result.Summary == nil {
		if len(result.Errors) > 0 {
			os.Exit(1)
		}
		return
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Summary); err != nil {
			log.Fatal(err)
		}
	} else {
		printSummary(os.Stdout, result)
	}

	if *svgOut != "" {
		opts := preview.Options{Size: *size, Margin: 16, Projection: proj, Edges: *edges, Title: result.Summary.Name}
		if err := writePreview(*svgOut, result, opts); err != nil {
			log.Fatal(err)
		}
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

func readSource(in string) ([]byte, error) {
	if in == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(in)
	if err != nil {
		return nil, fmt.Errorf("unable to read the job script: %w", err)
	}
	return b, nil
}

func writePreview(out string, result EvalResult, opts preview.Options) error {
	if out == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		return preview.Render(os.Stdout, result.run.Mesh, result.run.Charts, opts)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("unable to create the preview file: %w", err)
	}
	if err := preview.Render(f, result.run.Mesh, result.run.Charts, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, result EvalResult) {
	s := result.Summary
	fmt.Fprintf(w, "%s: %d vertices, %d faces, %d feature curves\n", s.Name, s.Vertices, s.Faces, s.Features)
	for _, c := range s.Charts {
		fmt.Fprintf(w, "  chart %-3d %s  %5d faces %5d vertices %5d on perimeter\n",
			c.ID, c.Color, c.Faces, c.Vertices, c.Perimeter)
	}
	status := "not validated"
	if s.Validated {
		status = "valid"
		if !s.Valid {
			status = "INVALID"
		}
	}
	fmt.Fprintf(w, "%d charts (%d seeds, %d merges), %s\n", len(s.Charts), s.Stats.Seeds, s.Stats.Merges, status)
}
