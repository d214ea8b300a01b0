package trajectory

import (
	"fmt"
	"math"
)

// minStep is the arc length below which a step carries no usable
// acceleration information.
const minStep = 1e-6

// constrainedState is the per-sample working record of the profiler.
type constrainedState struct {
	point    PathPoint
	distance float64 // cumulative arc length, m
	maxVel   float64 // m/s
	minAccel float64 // m/s²
	maxAccel float64 // m/s²
}

// profile runs the forward and backward passes over points and returns one
// constrained state per point. The passes are the two-pass relaxation
// described by Sprunk (2008): each sample ends up at the lower of the
// velocity reachable accelerating from the start and the velocity from
// which the end is still reachable decelerating.
func profile(points []PathPoint, cfg Config) ([]constrainedState, error) {
	states := make([]constrainedState, len(points))
	if len(points) == 0 {
		return states, nil
	}

	if err := forwardPass(points, states, cfg); err != nil {
		return nil, err
	}
	if err := backwardPass(states, cfg); err != nil {
		return nil, err
	}
	return states, nil
}

func forwardPass(points []PathPoint, states []constrainedState, cfg Config) error {
	seed := constrainedState{
		point:    points[0],
		maxVel:   cfg.StartVelocity,
		minAccel: -cfg.MaxAcceleration,
		maxAccel: cfg.MaxAcceleration,
	}
	predecessor := &seed

	for i := range points {
		state := &states[i]
		state.point = points[i]

		ds := state.point.Pose.Translation.Distance(predecessor.point.Pose.Translation)
		state.distance = predecessor.distance + ds

		// Acceleration limits may depend on velocity, so iterate until the
		// predecessor's acceleration agrees with what this sample can take.
		for {
			// vf = sqrt(vi² + 2·a·d)
			state.maxVel = math.Min(cfg.MaxVelocity,
				reachable(predecessor.maxVel, predecessor.maxAccel, ds))
			state.minAccel = -cfg.MaxAcceleration
			state.maxAccel = cfg.MaxAcceleration

			for _, c := range cfg.Constraints {
				state.maxVel = math.Min(state.maxVel,
					c.MaxVelocity(state.point.Pose, state.point.Curvature, state.maxVel))
			}

			if err := enforceAccelerationLimits(cfg.Reversed, cfg.Constraints, state, i); err != nil {
				return err
			}

			if ds < minStep {
				break
			}

			actualAccel := (state.maxVel*state.maxVel - predecessor.maxVel*predecessor.maxVel) / (ds * 2)

			if state.maxAccel < actualAccel-minStep {
				// This sample cannot take that much acceleration; tighten the
				// predecessor and recompute.
				predecessor.maxAccel = state.maxAccel
				continue
			}
			if actualAccel > predecessor.minAccel {
				predecessor.maxAccel = actualAccel
			}
			// Anything below the predecessor's min acceleration is repaired
			// by the backward pass.
			break
		}
		predecessor = state
	}
	return nil
}

func backwardPass(states []constrainedState, cfg Config) error {
	last := len(states) - 1
	seed := constrainedState{
		point:    states[last].point,
		distance: states[last].distance,
		maxVel:   cfg.EndVelocity,
		minAccel: -cfg.MaxAcceleration,
		maxAccel: cfg.MaxAcceleration,
	}
	successor := &seed

	for i := last; i >= 0; i-- {
		state := &states[i]
		ds := state.distance - successor.distance // <= 0

		for {
			// vf = sqrt(vi² + 2·a·d), integrating backwards from the successor.
			newMaxVel := reachable(successor.maxVel, successor.minAccel, ds)

			if newMaxVel >= state.maxVel {
				break
			}
			state.maxVel = newMaxVel

			if err := enforceAccelerationLimits(cfg.Reversed, cfg.Constraints, state, i); err != nil {
				return err
			}

			if ds > -minStep {
				break
			}

			actualAccel := (state.maxVel*state.maxVel - successor.maxVel*successor.maxVel) / (ds * 2)

			if state.minAccel > actualAccel+minStep {
				successor.minAccel = state.minAccel
				continue
			}
			successor.minAccel = actualAccel
			break
		}
		successor = state
	}
	return nil
}

// enforceAccelerationLimits narrows state's acceleration window to every
// constraint's bounds at the state's current max velocity. In reversed mode
// constraints see the signed (negative) velocity and their window is
// mirrored back into the forward-travel frame the profiler works in.
func enforceAccelerationLimits(reversed bool, constraints []Constraint, state *constrainedState, index int) error {
	factor := 1.0
	if reversed {
		factor = -1.0
	}
	for _, c := range constraints {
		mm := c.MinMaxAcceleration(state.point.Pose, state.point.Curvature, state.maxVel*factor)
		if mm.Min > mm.Max {
			return &ConstraintError{
				Constraint: constraintName(c),
				Index:      index,
				Min:        mm.Min,
				Max:        mm.Max,
			}
		}

		if reversed {
			state.minAccel = math.Max(state.minAccel, -mm.Max)
			state.maxAccel = math.Min(state.maxAccel, -mm.Min)
		} else {
			state.minAccel = math.Max(state.minAccel, mm.Min)
			state.maxAccel = math.Min(state.maxAccel, mm.Max)
		}
	}
	return nil
}

// reachable returns the velocity after travelling ds at constant
// acceleration a from v. A negative radicand means the state cannot be
// reached at all and yields zero.
func reachable(v, a, ds float64) float64 {
	return math.Sqrt(math.Max(0, v*v+a*ds*2))
}

func constraintName(c Constraint) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", c)
}
