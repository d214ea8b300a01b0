package trajectory

import (
	"errors"
	"fmt"

	"github.com/banshee-data/holonomic/internal/monitoring"
)

// waypointMatchTolerance is how close (m) a path sample must be to a
// waypoint to carry that waypoint's heading keyframe.
const waypointMatchTolerance = 1e-6

// Generator turns waypoints into trajectories using a PathService.
type Generator struct {
	paths PathService

	// ReportError receives malformed-input errors before the generator
	// falls back to DoNothing. Defaults to the monitoring logger.
	ReportError func(err error)
}

// NewGenerator returns a generator that fits paths with paths.
func NewGenerator(paths PathService) *Generator {
	return &Generator{paths: paths}
}

func (g *Generator) report(err error) {
	if g.ReportError != nil {
		g.ReportError(err)
		return
	}
	monitoring.Logf("trajectory: %v; following a do-nothing trajectory instead", err)
}

// Generate fits a path through waypoints and parameterizes it. Waypoints
// carrying a Heading become heading keyframes; when none do, the robot
// faces the direction of travel. Malformed geometry is reported and yields
// DoNothing with a nil error. Contradictory constraints or a stalled
// profile return an error wrapping ErrTrajectoryGeneration.
func (g *Generator) Generate(waypoints []Waypoint, cfg Config) (*Trajectory, error) {
	return g.generate(waypoints, nil, cfg)
}

// GenerateWithKeyframes is Generate with explicit keyframes bound to path
// sample indices. Waypoint headings are ignored.
func (g *Generator) GenerateWithKeyframes(waypoints []Waypoint, keyframes []HeadingKeyframe, cfg Config) (*Trajectory, error) {
	if len(keyframes) == 0 {
		keyframes = []HeadingKeyframe{}
	}
	return g.generate(waypoints, keyframes, cfg)
}

func (g *Generator) generate(waypoints []Waypoint, keyframes []HeadingKeyframe, cfg Config) (*Trajectory, error) {
	points, err := g.paths.GeneratePath(waypoints, cfg.Reversed)
	if err != nil {
		if errors.Is(err, ErrMalformedPath) {
			g.report(err)
			return DoNothing(), nil
		}
		return nil, fmt.Errorf("generate path: %w", err)
	}
	if len(points) == 0 {
		g.report(fmt.Errorf("%w: path service returned no samples", ErrMalformedPath))
		return DoNothing(), nil
	}

	if keyframes == nil {
		keyframes, err = KeyframesFromWaypoints(waypoints, points)
		if err != nil {
			g.report(err)
			return DoNothing(), nil
		}
	}

	traj, err := Parameterize(points, keyframes, cfg)
	if err != nil {
		if IsRecoverable(err) {
			g.report(err)
			return DoNothing(), nil
		}
		return nil, err
	}
	return traj, nil
}

// KeyframesFromWaypoints binds each waypoint Heading to the index of the
// path sample at that waypoint. It returns nil when no waypoint has a
// heading. When any does, the first and last waypoints must too.
func KeyframesFromWaypoints(waypoints []Waypoint, points []PathPoint) ([]HeadingKeyframe, error) {
	any := false
	for _, w := range waypoints {
		if w.Heading != nil {
			any = true
			break
		}
	}
	if !any {
		return nil, nil
	}
	if waypoints[0].Heading == nil || waypoints[len(waypoints)-1].Heading == nil {
		return nil, fmt.Errorf("%w: first and last waypoints need a heading when any waypoint has one", ErrInvalidKeyframes)
	}

	indices, err := matchWaypoints(waypoints, points)
	if err != nil {
		return nil, err
	}

	keyframes := make([]HeadingKeyframe, 0, len(waypoints))
	for i, w := range waypoints {
		if w.Heading == nil {
			continue
		}
		keyframes = append(keyframes, HeadingKeyframe{Heading: *w.Heading, Index: indices[i]})
	}
	// The last waypoint is the last sample even if the fitter emitted a
	// trailing duplicate.
	keyframes[len(keyframes)-1].Index = len(points) - 1
	return keyframes, nil
}

// matchWaypoints finds, in order, the sample index at each waypoint.
func matchWaypoints(waypoints []Waypoint, points []PathPoint) ([]int, error) {
	indices := make([]int, len(waypoints))
	j := 0
	for i, w := range waypoints {
		found := false
		for ; j < len(points); j++ {
			if points[j].Pose.Translation.Distance(w.Position) <= waypointMatchTolerance {
				indices[i] = j
				found = true
				j++
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: waypoint %d (%.3f, %.3f) is not a path sample",
				ErrMalformedPath, i, w.Position.X, w.Position.Y)
		}
	}
	return indices, nil
}
