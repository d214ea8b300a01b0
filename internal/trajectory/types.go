package trajectory

import (
	"github.com/banshee-data/holonomic/internal/geometry"
)

// Waypoint is a caller-supplied control point. Tangent fixes the path's
// direction of travel through the point; Heading, when set, becomes a
// heading keyframe for the robot's facing direction at that point.
type Waypoint struct {
	Position geometry.Translation2d `json:"position"`
	Tangent  *geometry.Rotation2d   `json:"tangent,omitempty"`
	Heading  *geometry.Rotation2d   `json:"heading,omitempty"`
}

// PathPoint is one dense sample of the fitted path. Pose.Rotation is the
// direction of travel along the curve, not the robot's facing direction.
type PathPoint struct {
	Pose      geometry.Pose2d `json:"pose"`
	Curvature float64         `json:"curvature"` // rad/m
}

// HeadingKeyframe binds a desired robot heading to a path sample index.
type HeadingKeyframe struct {
	Heading geometry.Rotation2d `json:"heading"`
	Index   int                 `json:"index"`
}

// PathService fits a smooth curve through ordered waypoints and returns
// samples ordered by increasing arc length. Degenerate input must be
// reported by returning an error wrapping ErrMalformedPath.
type PathService interface {
	GeneratePath(waypoints []Waypoint, reversed bool) ([]PathPoint, error)
}

// PathServiceFunc adapts a function to PathService.
type PathServiceFunc func(waypoints []Waypoint, reversed bool) ([]PathPoint, error)

func (f PathServiceFunc) GeneratePath(waypoints []Waypoint, reversed bool) ([]PathPoint, error) {
	return f(waypoints, reversed)
}
