package trajectory

import (
	"fmt"
	"math"

	"github.com/banshee-data/holonomic/internal/geometry"
)

// straightLine samples the x axis from 0 to length every step metres.
func straightLine(length, step float64) []PathPoint {
	n := int(math.Round(length/step)) + 1
	points := make([]PathPoint, n)
	for i := range points {
		points[i] = PathPoint{Pose: geometry.NewPose2d(float64(i)*step, 0, 0)}
	}
	return points
}

// polyline is a PathService that joins waypoints with straight segments
// sampled every step metres, emitting every waypoint exactly.
func polyline(step float64) PathServiceFunc {
	return func(waypoints []Waypoint, reversed bool) ([]PathPoint, error) {
		if len(waypoints) < 2 {
			return nil, fmt.Errorf("%w: need two waypoints, got %d", ErrMalformedPath, len(waypoints))
		}
		var points []PathPoint
		for i := 0; i < len(waypoints)-1; i++ {
			a, b := waypoints[i].Position, waypoints[i+1].Position
			d := a.Distance(b)
			if d < 1e-9 {
				return nil, fmt.Errorf("%w: coincident waypoints %d and %d", ErrMalformedPath, i, i+1)
			}
			heading := b.Minus(a).Angle()
			n := int(math.Ceil(d / step))
			start := 1
			if i == 0 {
				start = 0
			}
			for k := start; k <= n; k++ {
				p := a.Interpolate(b, float64(k)/float64(n))
				if k == n {
					p = b
				}
				points = append(points, PathPoint{Pose: geometry.Pose2d{Translation: p, Rotation: heading}})
			}
		}
		return points, nil
	}
}

func rot(deg float64) *geometry.Rotation2d {
	r := geometry.FromDegrees(deg)
	return &r
}
