package path

import (
	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/trajectory"
)

// controlVectorScale sets the tangent magnitude at each waypoint relative
// to the chord of the segment it starts or ends.
const controlVectorScale = 1.2

// quinticSegment holds per-axis coefficients c[0] + c[1]t + ... + c[5]t⁵.
type quinticSegment struct {
	x, y [6]float64
	end  geometry.Translation2d
}

// newQuinticSegment solves the quintic Hermite basis for the given end
// positions, first derivatives, and zero second derivatives.
func newQuinticSegment(p0, p1 geometry.Translation2d, t0, t1 geometry.Rotation2d) quinticSegment {
	scale := controlVectorScale * p0.Distance(p1)
	return quinticSegment{
		x:   quinticCoefficients(p0.X, scale*t0.Cos(), 0, p1.X, scale*t1.Cos(), 0),
		y:   quinticCoefficients(p0.Y, scale*t0.Sin(), 0, p1.Y, scale*t1.Sin(), 0),
		end: p1,
	}
}

func quinticCoefficients(p0, v0, a0, p1, v1, a1 float64) [6]float64 {
	return [6]float64{
		p0,
		v0,
		a0 / 2,
		-10*p0 - 6*v0 - 1.5*a0 + 0.5*a1 - 4*v1 + 10*p1,
		15*p0 + 8*v0 + 1.5*a0 - a1 + 7*v1 - 15*p1,
		-6*p0 - 3*v0 - 0.5*a0 + 0.5*a1 - 3*v1 + 6*p1,
	}
}

// eval returns value, first and second derivative at t.
func eval(c [6]float64, t float64) (v, d, dd float64) {
	v = ((((c[5]*t+c[4])*t+c[3])*t+c[2])*t+c[1])*t + c[0]
	d = (((5*c[5]*t+4*c[4])*t+3*c[3])*t+2*c[2])*t + c[1]
	dd = ((20*c[5]*t+12*c[4])*t+6*c[3])*t + 2*c[2]
	return v, d, dd
}

func (s quinticSegment) pointAt(t float64) trajectory.PathPoint {
	x, dx, ddx := eval(s.x, t)
	y, dy, ddy := eval(s.y, t)
	p := geometry.Translation2d{X: x, Y: y}
	if t == 1 {
		p = s.end
	}
	return pathPoint(p, dx, dy, ddx, ddy)
}

// QuinticService fits quintic Hermite segments between consecutive
// waypoints.
type QuinticService struct {
	Sampler Sampler
}

func (q QuinticService) GeneratePath(waypoints []trajectory.Waypoint, reversed bool) ([]trajectory.PathPoint, error) {
	if err := validateWaypoints(waypoints); err != nil {
		return nil, err
	}
	dirs := tangents(waypoints, reversed)

	segments := make([]segment, len(waypoints)-1)
	for i := range segments {
		segments[i] = newQuinticSegment(waypoints[i].Position, waypoints[i+1].Position, dirs[i], dirs[i+1])
	}

	points, err := q.Sampler.sampleAll(segments)
	if err != nil {
		return nil, err
	}
	return finish(points, waypoints, reversed), nil
}
