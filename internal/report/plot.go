package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/holonomic/internal/follow"
	"github.com/banshee-data/holonomic/internal/trajectory"
	"github.com/banshee-data/holonomic/internal/units"
)

var (
	velocityColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	accelColor     = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	referenceColor = color.RGBA{R: 127, G: 127, B: 127, A: 255}
	measuredColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

func xys(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}

func addLine(p *plot.Plot, label string, c color.Color, pts plotter.XYs) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

func placeLegend(p *plot.Plot) {
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
}

// ProfilePlot draws velocity and acceleration against time.
func ProfilePlot(traj *trajectory.Trajectory, unit string) (*plot.Plot, error) {
	prof, err := newProfile(traj, unit)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Velocity profile (%.2f s, peak %.2f %s)", traj.TotalTime(), prof.peakSpeed(), units.Label(unit))
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = units.Label(unit) + ", " + units.Label(unit) + "/s"
	p.Add(plotter.NewGrid())

	if err := addLine(p, "velocity", velocityColor, xys(prof.t, prof.v)); err != nil {
		return nil, err
	}
	if err := addLine(p, "acceleration", accelColor, xys(prof.t, prof.a)); err != nil {
		return nil, err
	}
	placeLegend(p)
	return p, nil
}

// PathPlot draws the trajectory's path in the field plane.
func PathPlot(traj *trajectory.Trajectory) (*plot.Plot, error) {
	prof, err := newProfile(traj, units.MPS)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "Path"
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())
	if err := addLine(p, "path", velocityColor, xys(prof.x, prof.y)); err != nil {
		return nil, err
	}
	placeLegend(p)
	return p, nil
}

// RunPlot overlays the measured path of a follow run on its reference.
func RunPlot(samples []follow.TickSample) (*plot.Plot, error) {
	r, err := newRun(samples)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Follow run (max error %.3f m)", r.maxError())
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())
	if err := addLine(p, "reference", referenceColor, xys(r.refX, r.refY)); err != nil {
		return nil, err
	}
	if err := addLine(p, "measured", measuredColor, xys(r.measX, r.measY)); err != nil {
		return nil, err
	}
	placeLegend(p)
	return p, nil
}

func save(p *plot.Plot, file string) error {
	if err := p.Save(10*vg.Inch, 5*vg.Inch, file); err != nil {
		return fmt.Errorf("save %s: %w", file, err)
	}
	return nil
}

// SaveProfilePlot writes ProfilePlot to file. The format follows the file
// extension.
func SaveProfilePlot(traj *trajectory.Trajectory, unit, file string) error {
	p, err := ProfilePlot(traj, unit)
	if err != nil {
		return err
	}
	return save(p, file)
}

// SavePathPlot writes PathPlot to file.
func SavePathPlot(traj *trajectory.Trajectory, file string) error {
	p, err := PathPlot(traj)
	if err != nil {
		return err
	}
	return save(p, file)
}

// SaveRunPlot writes RunPlot to file.
func SaveRunPlot(samples []follow.TickSample, file string) error {
	p, err := RunPlot(samples)
	if err != nil {
		return err
	}
	return save(p, file)
}
