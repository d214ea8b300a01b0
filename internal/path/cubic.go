package path

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/trajectory"
)

// cubicSegment is the piece of a chord-length spline between two knots.
type cubicSegment struct {
	x, y   interp.DerivativePredictor
	s0, s1 float64
	end    geometry.Translation2d
}

func (c cubicSegment) pointAt(t float64) trajectory.PathPoint {
	s := c.s0 + (c.s1-c.s0)*t
	p := geometry.Translation2d{X: c.x.Predict(s), Y: c.y.Predict(s)}
	if t == 1 {
		p = c.end
	}
	ddx, ddy := c.secondDerivative(s)
	return pathPoint(p, c.x.PredictDerivative(s), c.y.PredictDerivative(s), ddx, ddy)
}

// secondDerivative differentiates the fitted first derivative numerically,
// staying inside the segment so a knot's neighbour never leaks in.
func (c cubicSegment) secondDerivative(s float64) (float64, float64) {
	h := (c.s1 - c.s0) * 1e-4
	lo := math.Max(c.s0, s-h)
	hi := math.Min(c.s1, s+h)
	if hi == c.s1 {
		// The derivative at a knot belongs to the segment on its right.
		hi = math.Nextafter(c.s1, c.s0)
	}
	span := hi - lo
	ddx := (c.x.PredictDerivative(hi) - c.x.PredictDerivative(lo)) / span
	ddy := (c.y.PredictDerivative(hi) - c.y.PredictDerivative(lo)) / span
	return ddx, ddy
}

// CubicService fits cubic splines of x and y over cumulative chord length.
// Without any tangents the spline is natural (zero curvature at both ends).
// When any waypoint fixes a tangent, Hermite cubics through every waypoint
// are used instead, estimating the missing tangents from neighbours.
type CubicService struct {
	Sampler Sampler
}

func (c CubicService) GeneratePath(waypoints []trajectory.Waypoint, reversed bool) ([]trajectory.PathPoint, error) {
	if err := validateWaypoints(waypoints); err != nil {
		return nil, err
	}

	n := len(waypoints)
	xs := make([]float64, n)
	ys := make([]float64, n)
	chords := make([]float64, n)
	for i, w := range waypoints {
		xs[i], ys[i] = w.Position.X, w.Position.Y
		if i > 0 {
			chords[i] = w.Position.Distance(waypoints[i-1].Position)
		}
	}
	knots := floats.CumSum(make([]float64, n), chords)

	var fx, fy interp.DerivativePredictor
	if anyTangent(waypoints) {
		dirs := tangents(waypoints, reversed)
		dxs := make([]float64, n)
		dys := make([]float64, n)
		for i, d := range dirs {
			dxs[i], dys[i] = d.Cos(), d.Sin()
		}
		var hx, hy interp.PiecewiseCubic
		hx.FitWithDerivatives(knots, xs, dxs)
		hy.FitWithDerivatives(knots, ys, dys)
		fx, fy = &hx, &hy
	} else {
		var nx, ny interp.NaturalCubic
		if err := nx.Fit(knots, xs); err != nil {
			return nil, fmt.Errorf("%w: fit x spline: %v", trajectory.ErrMalformedPath, err)
		}
		if err := ny.Fit(knots, ys); err != nil {
			return nil, fmt.Errorf("%w: fit y spline: %v", trajectory.ErrMalformedPath, err)
		}
		fx, fy = &nx, &ny
	}

	segments := make([]segment, n-1)
	for i := range segments {
		segments[i] = cubicSegment{x: fx, y: fy, s0: knots[i], s1: knots[i+1], end: waypoints[i+1].Position}
	}

	points, err := c.Sampler.sampleAll(segments)
	if err != nil {
		return nil, err
	}
	return finish(points, waypoints, reversed), nil
}
