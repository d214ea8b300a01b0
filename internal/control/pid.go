package control

import (
	"math"

	"github.com/banshee-data/holonomic/internal/geometry"
)

// DefaultPeriod is the control loop period assumed when none is given, s.
const DefaultPeriod = 0.02

// PID is a discrete proportional-integral-derivative controller run once
// per fixed period. It is not safe for concurrent use.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	period float64

	continuous bool
	minInput   float64
	maxInput   float64

	minIntegral float64
	maxIntegral float64

	positionTolerance float64
	velocityTolerance float64

	setpoint      float64
	positionError float64
	prevError     float64
	velocityError float64
	totalError    float64

	haveSetpoint    bool
	haveMeasurement bool
}

// NewPID returns a controller with the given gains and DefaultPeriod.
func NewPID(kp, ki, kd float64) *PID {
	return NewPIDWithPeriod(kp, ki, kd, DefaultPeriod)
}

// NewPIDWithPeriod returns a controller that is called every period seconds.
// A non-positive period falls back to DefaultPeriod.
func NewPIDWithPeriod(kp, ki, kd, period float64) *PID {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &PID{
		Kp:                kp,
		Ki:                ki,
		Kd:                kd,
		period:            period,
		minIntegral:       -1,
		maxIntegral:       1,
		positionTolerance: 0.05,
		velocityTolerance: math.Inf(1),
	}
}

// Period returns the loop period in seconds.
func (p *PID) Period() float64 { return p.period }

// EnableContinuousInput treats min and max as the same point, so the error
// always takes the shorter way around.
func (p *PID) EnableContinuousInput(min, max float64) {
	p.continuous = true
	p.minInput = min
	p.maxInput = max
}

// DisableContinuousInput restores plain subtraction for the error.
func (p *PID) DisableContinuousInput() { p.continuous = false }

// IsContinuousInputEnabled reports whether the input wraps.
func (p *PID) IsContinuousInputEnabled() bool { return p.continuous }

// SetIntegratorRange bounds the integral term's contribution to the output.
func (p *PID) SetIntegratorRange(min, max float64) {
	p.minIntegral = min
	p.maxIntegral = max
}

// SetTolerance sets the errors within which AtSetpoint reports true.
func (p *PID) SetTolerance(position, velocity float64) {
	p.positionTolerance = position
	p.velocityTolerance = velocity
}

// Setpoint returns the last setpoint.
func (p *PID) Setpoint() float64 { return p.setpoint }

// SetSetpoint changes the setpoint without running the controller.
func (p *PID) SetSetpoint(setpoint float64) {
	p.setpoint = setpoint
	p.haveSetpoint = true
}

// AtSetpoint reports whether the last errors are within tolerance.
func (p *PID) AtSetpoint() bool {
	return p.haveMeasurement && p.haveSetpoint &&
		math.Abs(p.positionError) < p.positionTolerance &&
		math.Abs(p.velocityError) < p.velocityTolerance
}

// PositionError returns the error from the last Calculate.
func (p *PID) PositionError() float64 { return p.positionError }

// VelocityError returns the error rate from the last Calculate.
func (p *PID) VelocityError() float64 { return p.velocityError }

// Calculate runs one step toward setpoint from measurement.
func (p *PID) Calculate(measurement, setpoint float64) float64 {
	p.SetSetpoint(setpoint)
	p.haveMeasurement = true
	p.prevError = p.positionError

	if p.continuous {
		bound := (p.maxInput - p.minInput) / 2
		p.positionError = geometry.InputModulus(setpoint-measurement, -bound, bound)
	} else {
		p.positionError = setpoint - measurement
	}
	p.velocityError = (p.positionError - p.prevError) / p.period

	if p.Ki != 0 {
		p.totalError = clamp(p.totalError+p.positionError*p.period,
			p.minIntegral/p.Ki, p.maxIntegral/p.Ki)
	}

	return p.Kp*p.positionError + p.Ki*p.totalError + p.Kd*p.velocityError
}

// Reset clears accumulated error.
func (p *PID) Reset() {
	p.positionError = 0
	p.prevError = 0
	p.velocityError = 0
	p.totalError = 0
	p.haveMeasurement = false
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Max(lo, math.Min(hi, v))
}
