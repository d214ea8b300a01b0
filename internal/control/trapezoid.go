package control

import "math"

// TrapezoidConstraints bounds a one-dimensional motion profile.
type TrapezoidConstraints struct {
	MaxVelocity     float64
	MaxAcceleration float64
}

// TrapezoidState is a position and velocity in a one-dimensional profile.
type TrapezoidState struct {
	Position float64
	Velocity float64
}

// TrapezoidProfile moves from a current state to a goal accelerating,
// cruising and decelerating at the constraint limits. A profile that cannot
// reach cruise speed degenerates into a triangle.
type TrapezoidProfile struct {
	Constraints TrapezoidConstraints
}

// Calculate returns the state t seconds along the profile from current to
// goal.
func (p TrapezoidProfile) Calculate(t float64, current, goal TrapezoidState) TrapezoidState {
	maxV := p.Constraints.MaxVelocity
	maxA := p.Constraints.MaxAcceleration

	direction := 1.0
	if current.Position > goal.Position {
		direction = -1
	}
	current = direct(current, direction)
	goal = direct(goal, direction)

	if math.Abs(current.Velocity) > maxV {
		current.Velocity = math.Copysign(maxV, current.Velocity)
	}

	// Extend the profile back to zero velocity at both ends so the same
	// trapezoid arithmetic covers nonzero boundary velocities.
	cutoffBegin := current.Velocity / maxA
	cutoffDistBegin := cutoffBegin * cutoffBegin * maxA / 2
	cutoffEnd := goal.Velocity / maxA
	cutoffDistEnd := cutoffEnd * cutoffEnd * maxA / 2

	fullTrapezoidDist := cutoffDistBegin + (goal.Position - current.Position) + cutoffDistEnd
	accelTime := maxV / maxA
	fullSpeedDist := fullTrapezoidDist - accelTime*accelTime*maxA
	if fullSpeedDist < 0 {
		accelTime = math.Sqrt(fullTrapezoidDist / maxA)
		fullSpeedDist = 0
	}

	endAccel := accelTime - cutoffBegin
	endFullSpeed := endAccel + fullSpeedDist/maxV
	endDecel := endFullSpeed + accelTime - cutoffEnd

	result := current
	switch {
	case t < endAccel:
		result.Velocity += t * maxA
		result.Position += (current.Velocity + t*maxA/2) * t
	case t < endFullSpeed:
		result.Velocity = maxV
		result.Position += (current.Velocity+endAccel*maxA/2)*endAccel + maxV*(t-endAccel)
	case t <= endDecel:
		left := endDecel - t
		result.Velocity = goal.Velocity + left*maxA
		result.Position = goal.Position - (goal.Velocity+left*maxA/2)*left
	default:
		result = goal
	}
	return direct(result, direction)
}

func direct(s TrapezoidState, direction float64) TrapezoidState {
	return TrapezoidState{Position: s.Position * direction, Velocity: s.Velocity * direction}
}
