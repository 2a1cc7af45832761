package charts

import (
	"fmt"

	"github.com/chazu/uvatlas/pkg/mesh"
	"github.com/samber/lo"
)

// ValidationSeverity indicates whether a finding makes the partition
// unusable or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // partition is inconsistent
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	ChartID  int // 0 if the finding is not about one chart
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.ChartID == 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] chart %d: %s", e.Severity, e.ChartID, e.Message)
}

// Valid reports whether errs holds no error-severity finding.
func Valid(errs []ValidationError) bool {
	return !lo.SomeBy(errs, func(e ValidationError) bool { return e.Severity == SeverityError })
}

// Validate checks the split charts against the mesh and logs every finding.
// It is read-only. An empty slice means the partition is consistent.
func (b *Builder) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, b.validateCoverage()...)
	errs = append(errs, b.validateOverlap()...)
	for _, e := range errs {
		b.log.Printf("charts: validate: %v", e)
	}
	return errs
}

// validateCoverage requires every vertex to belong to a chart and warns
// about faces outside all charts.
func (b *Builder) validateCoverage() []ValidationError {
	m := b.mesh
	var errs []ValidationError

	touched := make([]bool, m.NumVertices())
	owned := make([]bool, m.NumFaces())
	for _, c := range b.charts {
		for _, v := range c.Vertices() {
			if int(v) < len(touched) {
				touched[v] = true
			}
		}
		for _, f := range c.Faces() {
			if int(f) < len(owned) {
				owned[f] = true
			}
		}
	}

	for _, v := range m.Vertices() {
		if !touched[v] {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("vertex %d is not touched by any chart", v),
				Severity: SeverityError,
			})
		}
	}
	if n := lo.CountBy(m.Faces(), func(f mesh.FaceHandle) bool { return !owned[f] }); n > 0 {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("%d faces are not in any chart", n),
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validateOverlap flags chart pairs sharing more vertices than the later
// chart has on its perimeter.
func (b *Builder) validateOverlap() []ValidationError {
	var errs []ValidationError
	for i, a := range b.charts {
		inA := make(map[mesh.VertexHandle]bool, len(a.Vertices()))
		for _, v := range a.Vertices() {
			inA[v] = true
		}
		for _, other := range b.charts[i+1:] {
			shared := lo.CountBy(other.Vertices(), func(v mesh.VertexHandle) bool { return inA[v] })
			if shared > len(other.Perimeter()) {
				errs = append(errs, ValidationError{
					ChartID: other.ID(),
					Message: fmt.Sprintf("overlaps chart %d: %d shared vertices, perimeter has %d",
						a.ID(), shared, len(other.Perimeter())),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}
