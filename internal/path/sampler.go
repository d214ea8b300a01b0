package path

import (
	"fmt"
	"math"

	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/trajectory"
)

// Default subdivision limits. A sub-interval is accepted once the twist
// between its end poses is within all three.
const (
	DefaultMaxDX         = 0.127   // m
	DefaultMaxDY         = 0.00127 // m
	DefaultMaxDTheta     = 0.0872  // rad
	DefaultMaxIterations = 5000
)

// segment is one fitted curve piece parameterized over t in [0, 1].
type segment interface {
	pointAt(t float64) trajectory.PathPoint
}

// Sampler subdivides segments into path points. The zero value uses the
// default limits.
type Sampler struct {
	MaxDX         float64
	MaxDY         float64
	MaxDTheta     float64
	MaxIterations int
}

func (s Sampler) withDefaults() Sampler {
	if s.MaxDX <= 0 {
		s.MaxDX = DefaultMaxDX
	}
	if s.MaxDY <= 0 {
		s.MaxDY = DefaultMaxDY
	}
	if s.MaxDTheta <= 0 {
		s.MaxDTheta = DefaultMaxDTheta
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	return s
}

type interval struct{ t0, t1 float64 }

// sample returns the points of seg from t=0 to t=1 inclusive. Sub-intervals
// are refined depth first so points come out in order of increasing t.
func (s Sampler) sample(seg segment) ([]trajectory.PathPoint, error) {
	s = s.withDefaults()

	points := []trajectory.PathPoint{seg.pointAt(0)}
	stack := []interval{{0, 1}}
	iterations := 0

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		start := seg.pointAt(cur.t0)
		end := seg.pointAt(cur.t1)
		twist := start.Pose.Log(end.Pose)

		if math.Abs(twist.DY) > s.MaxDY || math.Abs(twist.DX) > s.MaxDX || math.Abs(twist.DTheta) > s.MaxDTheta {
			mid := (cur.t0 + cur.t1) / 2
			stack = append(stack, interval{mid, cur.t1}, interval{cur.t0, mid})
		} else {
			points = append(points, end)
		}

		iterations++
		if iterations >= s.MaxIterations {
			return nil, fmt.Errorf("%w: segment still not converged after %d subdivisions; "+
				"check for waypoints that are too close together or tangents that force a loop",
				trajectory.ErrMalformedPath, iterations)
		}
	}
	return points, nil
}

// sampleAll samples every segment and joins them, dropping the duplicated
// start point of each segment after the first.
func (s Sampler) sampleAll(segments []segment) ([]trajectory.PathPoint, error) {
	var points []trajectory.PathPoint
	for i, seg := range segments {
		pts, err := s.sample(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if i > 0 {
			pts = pts[1:]
		}
		points = append(points, pts...)
	}
	return points, nil
}

// pathPoint builds a sample from position and first and second
// derivatives with respect to any parameter.
func pathPoint(p geometry.Translation2d, dx, dy, ddx, ddy float64) trajectory.PathPoint {
	speedSq := dx*dx + dy*dy
	if speedSq < 1e-18 {
		// Stationary parameterization: fall back to the direction the
		// curve is accelerating in.
		return trajectory.PathPoint{Pose: geometry.Pose2d{Translation: p, Rotation: geometry.NewRotation2d(math.Atan2(ddy, ddx))}}
	}
	return trajectory.PathPoint{
		Pose:      geometry.Pose2d{Translation: p, Rotation: geometry.NewRotation2d(math.Atan2(dy, dx))},
		Curvature: (dx*ddy - ddx*dy) / (speedSq * math.Sqrt(speedSq)),
	}
}
