package trajectory

import (
	"fmt"
	"math"

	"github.com/banshee-data/holonomic/internal/geometry"
)

// integrationEpsilon separates a real acceleration or velocity from
// rounding noise when assigning time to a step.
const integrationEpsilon = 1e-6

// Parameterize profiles pre-sampled path points and integrates them into a
// time-indexed trajectory. With no keyframes the robot faces the direction
// of travel; otherwise keyframes are interpolated into one heading per
// point. Points are expected in forward-travel orientation: in reversed
// mode the caller's path service has already rotated them back.
func Parameterize(points []PathPoint, keyframes []HeadingKeyframe, cfg Config) (*Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTrajectoryGeneration, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no path points", ErrMalformedPath)
	}

	var headings []geometry.Rotation2d
	if len(keyframes) > 0 {
		var err error
		headings, err = InterpolateHeadings(keyframes, len(points))
		if err != nil {
			return nil, err
		}
	}

	constrained, err := profile(points, cfg)
	if err != nil {
		return nil, err
	}

	states, err := integrate(constrained, headings, cfg.Reversed)
	if err != nil {
		return nil, err
	}
	return New(states), nil
}

// integrate walks the constrained samples assigning elapsed time to each.
// A state's acceleration is the acceleration of the segment leaving it, so
// it is filled in one step late; the last state keeps the acceleration it
// arrived with.
func integrate(constrained []constrainedState, headings []geometry.Rotation2d, reversed bool) ([]State, error) {
	sign := 1.0
	if reversed {
		sign = -1.0
	}

	states := make([]State, 0, len(constrained))
	var (
		elapsed  float64
		distance float64
		velocity float64
	)

	for i, cs := range constrained {
		ds := cs.distance - distance
		var accel, dt float64

		switch {
		case i == 0:
		case ds < minStep:
			// Coincident samples share a time and the incoming acceleration.
			accel = sign * states[i-1].Acceleration
		default:
			accel = (cs.maxVel*cs.maxVel - velocity*velocity) / (ds * 2)
			states[i-1].Acceleration = sign * accel

			switch {
			case math.Abs(accel) > integrationEpsilon:
				// vf = v0 + a·t
				dt = (cs.maxVel - velocity) / accel
			case math.Abs(velocity) > integrationEpsilon:
				// Δx = v·t
				dt = ds / velocity
			default:
				return nil, &StallError{Index: i}
			}
		}

		velocity = cs.maxVel
		distance = cs.distance
		elapsed += dt

		travel := cs.point.Pose.Rotation
		facing := travel
		if headings != nil {
			facing = headings[i]
		}

		states = append(states, State{
			Time:          elapsed,
			Velocity:      sign * velocity,
			Acceleration:  sign * accel,
			Pose:          cs.point.Pose.WithRotation(facing),
			TravelHeading: travel,
			Curvature:     cs.point.Curvature,
		})
	}
	return states, nil
}
