package control

import "github.com/banshee-data/holonomic/internal/geometry"

// ProfiledPID steers a PID along a trapezoid profile toward its goal, so
// the setpoint it chases moves no faster than the constraints allow.
type ProfiledPID struct {
	pid     *PID
	profile TrapezoidProfile

	goal     TrapezoidState
	setpoint TrapezoidState

	continuous bool
	minInput   float64
	maxInput   float64
}

// NewProfiledPID returns a profiled controller with DefaultPeriod.
func NewProfiledPID(kp, ki, kd float64, constraints TrapezoidConstraints) *ProfiledPID {
	return NewProfiledPIDWithPeriod(kp, ki, kd, constraints, DefaultPeriod)
}

// NewProfiledPIDWithPeriod returns a profiled controller called every period
// seconds.
func NewProfiledPIDWithPeriod(kp, ki, kd float64, constraints TrapezoidConstraints, period float64) *ProfiledPID {
	return &ProfiledPID{
		pid:     NewPIDWithPeriod(kp, ki, kd, period),
		profile: TrapezoidProfile{Constraints: constraints},
	}
}

// PID exposes the inner controller for gain and tolerance tuning.
func (c *ProfiledPID) PID() *PID { return c.pid }

// EnableContinuousInput wraps both the measurement and the profile over
// [min, max).
func (c *ProfiledPID) EnableContinuousInput(min, max float64) {
	c.pid.EnableContinuousInput(min, max)
	c.continuous = true
	c.minInput = min
	c.maxInput = max
}

// SetTolerance sets the position and velocity tolerance of AtGoal.
func (c *ProfiledPID) SetTolerance(position, velocity float64) {
	c.pid.SetTolerance(position, velocity)
}

// Goal returns the current goal.
func (c *ProfiledPID) Goal() TrapezoidState { return c.goal }

// Setpoint returns the current point along the profile.
func (c *ProfiledPID) Setpoint() TrapezoidState { return c.setpoint }

// AtGoal reports whether the profile has reached the goal and the
// controller is within tolerance of it.
func (c *ProfiledPID) AtGoal() bool {
	return c.pid.AtSetpoint() && c.goal == c.setpoint
}

// Calculate advances the profile one period toward goal and returns the
// controller output for measurement.
func (c *ProfiledPID) Calculate(measurement, goal float64) float64 {
	c.goal = TrapezoidState{Position: goal}

	if c.continuous {
		// Move the goal and setpoint to whichever copy of them is closest
		// to the measurement so the profile never takes the long way round.
		bound := (c.maxInput - c.minInput) / 2
		goalDist := geometry.InputModulus(c.goal.Position-measurement, -bound, bound)
		setpointDist := geometry.InputModulus(c.setpoint.Position-measurement, -bound, bound)
		c.goal.Position = goalDist + measurement
		c.setpoint.Position = setpointDist + measurement
	}

	c.setpoint = c.profile.Calculate(c.pid.Period(), c.setpoint, c.goal)
	return c.pid.Calculate(measurement, c.setpoint.Position)
}

// Reset restarts the profile from position at rest and clears the inner
// controller.
func (c *ProfiledPID) Reset(position float64) {
	c.pid.Reset()
	c.setpoint = TrapezoidState{Position: position}
}
