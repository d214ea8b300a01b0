package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAngleModulus(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"inside range", 1.0, 1.0},
		{"just over pi", math.Pi + 0.1, -math.Pi + 0.1},
		{"pi maps to -pi", math.Pi, -math.Pi},
		{"negative wrap", -3 * math.Pi / 2, math.Pi / 2},
		{"several turns", 4*math.Pi + 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AngleModulus(tt.in), 1e-12)
		})
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), 1e-12)
	assert.InDelta(t, 3*math.Pi/2, NormalizeAngle(-math.Pi/2), 1e-12)
	assert.InDelta(t, 0.25, NormalizeAngle(0.25+6*math.Pi), 1e-9)
	got := NormalizeAngle(-1e-18)
	assert.True(t, got >= 0 && got < 2*math.Pi, "got %v", got)
}

func TestRotationInterpolateTakesShortArc(t *testing.T) {
	from := FromDegrees(350)
	to := FromDegrees(10)
	mid := from.Interpolate(to, 0.5)
	assert.InDelta(t, 0, NormalizeAngle(mid.Radians), 1e-9)
}

func TestPoseRelativeTo(t *testing.T) {
	origin := NewPose2d(1, 1, math.Pi/2)
	p := NewPose2d(1, 3, math.Pi/2)
	rel := p.RelativeTo(origin)
	assert.InDelta(t, 2, rel.X(), 1e-12)
	assert.InDelta(t, 0, rel.Y(), 1e-12)
	assert.InDelta(t, 0, rel.Rotation.Radians, 1e-12)
}

func TestPoseLogStraightLine(t *testing.T) {
	start := NewPose2d(0, 0, 0)
	end := NewPose2d(2, 0, 0)
	twist := start.Log(end)
	assert.InDelta(t, 2, twist.DX, 1e-12)
	assert.InDelta(t, 0, twist.DY, 1e-12)
	assert.InDelta(t, 0, twist.DTheta, 1e-12)
}

func TestPoseLogQuarterArc(t *testing.T) {
	// A quarter circle of radius 1 turning left: chord from (0,0) to (1,1).
	start := NewPose2d(0, 0, 0)
	end := NewPose2d(1, 1, math.Pi/2)
	twist := start.Log(end)
	assert.InDelta(t, math.Pi/2, twist.DX, 1e-9)
	assert.InDelta(t, 0, twist.DY, 1e-9)
	assert.InDelta(t, math.Pi/2, twist.DTheta, 1e-12)
}

func TestFieldRelativeRoundTrip(t *testing.T) {
	field := ChassisSpeeds{VX: 1, VY: 0, Omega: 0.3}
	robot := FromFieldRelativeSpeeds(field, FromDegrees(90))
	assert.InDelta(t, 0, robot.VX, 1e-12)
	assert.InDelta(t, -1, robot.VY, 1e-12)
	assert.InDelta(t, 0.3, robot.Omega, 1e-12)

	back := ToFieldRelativeSpeeds(robot, FromDegrees(90))
	assert.InDelta(t, field.VX, back.VX, 1e-12)
	assert.InDelta(t, field.VY, back.VY, 1e-12)
}

func TestExpInvertsLog(t *testing.T) {
	start := NewPose2d(1, -2, 0.3)
	end := NewPose2d(2.5, 0.5, 1.9)

	got := start.Exp(start.Log(end))
	assert.InDelta(t, end.X(), got.X(), 1e-9)
	assert.InDelta(t, end.Y(), got.Y(), 1e-9)
	assert.InDelta(t, 0, AngleModulus(got.Rotation.Radians-end.Rotation.Radians), 1e-9)
}

func TestExpStraightAndArc(t *testing.T) {
	straight := NewPose2d(0, 0, math.Pi/2).Exp(Twist2d{DX: 2})
	assert.InDelta(t, 0, straight.X(), 1e-12)
	assert.InDelta(t, 2, straight.Y(), 1e-12)

	// Quarter circle of radius 1 turning left.
	arc := Pose2d{}.Exp(Twist2d{DX: math.Pi / 2, DTheta: math.Pi / 2})
	assert.InDelta(t, 1, arc.X(), 1e-12)
	assert.InDelta(t, 1, arc.Y(), 1e-12)
	assert.InDelta(t, math.Pi/2, arc.Rotation.Radians, 1e-12)
}
