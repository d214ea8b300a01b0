package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPID_Proportional(t *testing.T) {
	p := NewPID(2, 0, 0)
	assert.InDelta(t, 4, p.Calculate(1, 3), 1e-12)
	assert.InDelta(t, 2, p.PositionError(), 1e-12)
	assert.InDelta(t, -2, p.Calculate(3, 2), 1e-12)
}

func TestPID_Derivative(t *testing.T) {
	p := NewPIDWithPeriod(0, 0, 1, 0.1)
	p.Calculate(0, 1)
	// Error falls from 1 to 0.5 over one 0.1 s period.
	assert.InDelta(t, -5, p.Calculate(0.5, 1), 1e-9)
}

func TestPID_IntegralIsClamped(t *testing.T) {
	p := NewPID(0, 1, 0)
	p.SetIntegratorRange(-0.5, 0.5)
	var out float64
	for i := 0; i < 1000; i++ {
		out = p.Calculate(0, 10)
	}
	assert.InDelta(t, 0.5, out, 1e-12)

	p.Reset()
	assert.InDelta(t, 0.2, p.Calculate(0, 10), 1e-12) // 10 * 0.02
}

func TestPID_ContinuousInput(t *testing.T) {
	p := NewPID(1, 0, 0)
	p.EnableContinuousInput(-math.Pi, math.Pi)
	assert.True(t, p.IsContinuousInputEnabled())

	// 3 rad to -3 rad is 2π-6 the short way, not -6.
	assert.InDelta(t, 2*math.Pi-6, p.Calculate(3, -3), 1e-12)

	p.DisableContinuousInput()
	assert.InDelta(t, -6, p.Calculate(3, -3), 1e-12)
}

func TestPID_AtSetpoint(t *testing.T) {
	p := NewPID(1, 0, 0)
	assert.False(t, p.AtSetpoint())

	p.SetTolerance(0.1, math.Inf(1))
	p.Calculate(0.95, 1)
	assert.True(t, p.AtSetpoint())
	p.Calculate(0.5, 1)
	assert.False(t, p.AtSetpoint())
}

func TestNewPIDWithPeriod_DefaultsBadPeriod(t *testing.T) {
	assert.Equal(t, DefaultPeriod, NewPIDWithPeriod(1, 0, 0, 0).Period())
	assert.Equal(t, 0.01, NewPIDWithPeriod(1, 0, 0, 0.01).Period())
}
