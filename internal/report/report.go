// Package report renders trajectories and follow runs as PNG plots and
// interactive HTML charts.
package report

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/holonomic/internal/follow"
	"github.com/banshee-data/holonomic/internal/trajectory"
	"github.com/banshee-data/holonomic/internal/units"
)

// ErrEmpty is returned when there is nothing to draw.
var ErrEmpty = errors.New("nothing to plot")

// profile is a trajectory's states split into series, with speeds already
// converted to the display unit.
type profile struct {
	t, v, a []float64
	x, y    []float64
	unit    string
}

func newProfile(traj *trajectory.Trajectory, unit string) (profile, error) {
	if traj == nil || traj.Len() == 0 {
		return profile{}, ErrEmpty
	}
	if err := units.Validate(unit); err != nil {
		return profile{}, err
	}
	states := traj.States()
	p := profile{
		t:    make([]float64, len(states)),
		v:    make([]float64, len(states)),
		a:    make([]float64, len(states)),
		x:    make([]float64, len(states)),
		y:    make([]float64, len(states)),
		unit: unit,
	}
	for i, s := range states {
		p.t[i] = s.Time
		p.v[i] = units.ConvertSpeed(s.Velocity, unit)
		p.a[i] = units.ConvertAcceleration(s.Acceleration, unit)
		p.x[i] = s.Pose.X()
		p.y[i] = s.Pose.Y()
	}
	return p, nil
}

// peakSpeed is the largest speed magnitude in the display unit.
func (p profile) peakSpeed() float64 {
	return max(floats.Max(p.v), -floats.Min(p.v))
}

// run is a follow run split into reference and measured paths.
type run struct {
	refX, refY   []float64
	measX, measY []float64
	t, errNorm   []float64
}

func newRun(samples []follow.TickSample) (run, error) {
	if len(samples) == 0 {
		return run{}, ErrEmpty
	}
	var r run
	for _, s := range samples {
		r.refX = append(r.refX, s.Reference.Pose.X())
		r.refY = append(r.refY, s.Reference.Pose.Y())
		r.measX = append(r.measX, s.Measured.X())
		r.measY = append(r.measY, s.Measured.Y())
		r.t = append(r.t, s.Time)
		r.errNorm = append(r.errNorm, s.PoseError.Translation.Norm())
	}
	return r, nil
}

// maxError is the largest translation error seen during the run, m.
func (r run) maxError() float64 { return floats.Max(r.errNorm) }
