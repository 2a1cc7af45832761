package charts

import (
	"math"

	"github.com/chazu/uvatlas/pkg/mesh"
)

// NoChart marks a face that no chart owns yet.
const NoChart = -1

// FaceState is the per-face bookkeeping of one segmentation run.
type FaceState struct {
	face         mesh.FaceHandle
	setDistances []int // 0 = not reached by that feature set
	distance     float64
	isBorder     bool
	chart        int
}

// NewFaceState returns the state of an unreached, unowned face.
func NewFaceState(face mesh.FaceHandle, numSets int) FaceState {
	return FaceState{
		face:         face,
		setDistances: make([]int, numSets),
		chart:        NoChart,
	}
}

func (s *FaceState) Face() mesh.FaceHandle { return s.face }

// SetDistanceTo records the distance from feature set k. The face becomes a
// border face if another set has already reached it.
func (s *FaceState) SetDistanceTo(k, d int) {
	for i, other := range s.setDistances {
		if i != k && other != 0 {
			s.isBorder = true
			break
		}
	}
	s.setDistances[k] = d
}

// DistanceTo returns the distance from feature set k, 0 if unreached.
func (s *FaceState) DistanceTo(k int) int { return s.setDistances[k] }

func (s *FaceState) HasDistanceTo(k int) bool { return s.setDistances[k] != 0 }

// Sets returns the indexes of the feature sets that reached the face.
func (s *FaceState) Sets() []int {
	var out []int
	for k, d := range s.setDistances {
		if d != 0 {
			out = append(out, k)
		}
	}
	return out
}

// CalcDistance sets the aggregate distance to the Euclidean norm of the
// per-set distances.
func (s *FaceState) CalcDistance() {
	sum := 0.0
	for _, d := range s.setDistances {
		sum += float64(d * d)
	}
	s.distance = math.Sqrt(sum)
}

// Distance is the aggregate distance computed by CalcDistance.
func (s *FaceState) Distance() float64 { return s.distance }

// IsBorder reports whether two or more feature sets reached the face.
func (s *FaceState) IsBorder() bool { return s.isBorder }

func (s *FaceState) HasChart() bool { return s.chart != NoChart }
func (s *FaceState) Chart() int { return s.chart }
func (s *FaceState) SetChart(idx int) { s.chart = idx }
