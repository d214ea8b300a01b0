package path

import (
	"fmt"
	"math"

	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/trajectory"
)

// minWaypointSpacing is the closest two consecutive waypoints may be, m.
const minWaypointSpacing = 1e-6

func validateWaypoints(waypoints []trajectory.Waypoint) error {
	if len(waypoints) < 2 {
		return fmt.Errorf("%w: need at least two waypoints, got %d", trajectory.ErrMalformedPath, len(waypoints))
	}
	for i, w := range waypoints {
		q := w.Position
		if math.IsNaN(q.X) || math.IsNaN(q.Y) || math.IsInf(q.X, 0) || math.IsInf(q.Y, 0) {
			return fmt.Errorf("%w: waypoint %d is not finite", trajectory.ErrMalformedPath, i)
		}
		if i == 0 {
			continue
		}
		if waypoints[i-1].Position.Distance(q) < minWaypointSpacing {
			return fmt.Errorf("%w: waypoints %d and %d coincide at (%.3f, %.3f)",
				trajectory.ErrMalformedPath, i-1, i, q.X, q.Y)
		}
	}
	return nil
}

// tangents returns the direction of travel through every waypoint. A
// provided tangent is used as is, flipped when reversed because callers
// give reversed tangents in the direction the robot faces. Missing tangents
// point from the previous waypoint toward the next one, which already is the
// direction of travel.
func tangents(waypoints []trajectory.Waypoint, reversed bool) []geometry.Rotation2d {
	n := len(waypoints)
	out := make([]geometry.Rotation2d, n)
	for i, w := range waypoints {
		if w.Tangent != nil {
			out[i] = *w.Tangent
			if reversed {
				out[i] = out[i].Plus(geometry.NewRotation2d(math.Pi))
			}
			continue
		}
		prev, next := i-1, i+1
		if prev < 0 {
			prev = 0
		}
		if next > n-1 {
			next = n - 1
		}
		out[i] = waypoints[next].Position.Minus(waypoints[prev].Position).Angle()
	}
	return out
}

// anyTangent reports whether a caller fixed at least one tangent.
func anyTangent(waypoints []trajectory.Waypoint) bool {
	for _, w := range waypoints {
		if w.Tangent != nil {
			return true
		}
	}
	return false
}

// finish snaps segment ends onto their waypoints and, when reversed, turns
// each sample around so velocity along it is negative.
func finish(points []trajectory.PathPoint, waypoints []trajectory.Waypoint, reversed bool) []trajectory.PathPoint {
	if len(points) > 0 {
		points[0].Pose.Translation = waypoints[0].Position
		points[len(points)-1].Pose.Translation = waypoints[len(waypoints)-1].Position
	}
	if reversed {
		for i := range points {
			points[i].Pose = points[i].Pose.Flip()
			points[i].Curvature = -points[i].Curvature
		}
	}
	return points
}
