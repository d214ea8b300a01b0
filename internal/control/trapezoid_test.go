package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrapezoidProfile_FullTrapezoid(t *testing.T) {
	p := TrapezoidProfile{Constraints: TrapezoidConstraints{MaxVelocity: 2, MaxAcceleration: 1}}
	start := TrapezoidState{}
	goal := TrapezoidState{Position: 10}

	tests := []struct {
		at      float64
		wantPos float64
		wantVel float64
	}{
		{0, 0, 0},
		{1, 0.5, 1},
		{2, 2, 2},
		{3.5, 5, 2},
		{6, 9.5, 1},
		{7, 10, 0},
		{100, 10, 0},
	}
	for _, tt := range tests {
		got := p.Calculate(tt.at, start, goal)
		assert.InDelta(t, tt.wantPos, got.Position, 1e-9, "t=%v", tt.at)
		assert.InDelta(t, tt.wantVel, got.Velocity, 1e-9, "t=%v", tt.at)
	}
}

func TestTrapezoidProfile_Triangle(t *testing.T) {
	p := TrapezoidProfile{Constraints: TrapezoidConstraints{MaxVelocity: 2, MaxAcceleration: 1}}
	peak := p.Calculate(1, TrapezoidState{}, TrapezoidState{Position: 1})
	assert.InDelta(t, 0.5, peak.Position, 1e-9)
	assert.InDelta(t, 1, peak.Velocity, 1e-9)
}

func TestTrapezoidProfile_Backwards(t *testing.T) {
	p := TrapezoidProfile{Constraints: TrapezoidConstraints{MaxVelocity: 2, MaxAcceleration: 1}}
	got := p.Calculate(1, TrapezoidState{Position: 3}, TrapezoidState{Position: -7})
	assert.InDelta(t, 2.5, got.Position, 1e-9)
	assert.InDelta(t, -1, got.Velocity, 1e-9)
}

func TestTrapezoidProfile_ClampsInitialVelocity(t *testing.T) {
	p := TrapezoidProfile{Constraints: TrapezoidConstraints{MaxVelocity: 1, MaxAcceleration: 1}}
	got := p.Calculate(0.5, TrapezoidState{Velocity: 5}, TrapezoidState{Position: 10})
	assert.InDelta(t, 1, got.Velocity, 1e-9)
	assert.InDelta(t, 0.5, got.Position, 1e-9)
}
