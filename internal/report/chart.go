package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/holonomic/internal/follow"
	"github.com/banshee-data/holonomic/internal/trajectory"
	"github.com/banshee-data/holonomic/internal/units"
)

func lineData(xs, ys []float64) []opts.LineData {
	data := make([]opts.LineData, len(xs))
	for i := range xs {
		data[i] = opts.LineData{Value: []interface{}{xs[i], ys[i]}}
	}
	return data
}

func scatterData(xs, ys []float64) []opts.ScatterData {
	data := make([]opts.ScatterData, len(xs))
	for i := range xs {
		data[i] = opts.ScatterData{Value: []interface{}{xs[i], ys[i]}}
	}
	return data
}

func profileChart(traj *trajectory.Trajectory, prof profile) *charts.Line {
	label := units.Label(prof.unit)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trajectory profile", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Velocity profile",
			Subtitle: fmt.Sprintf("states=%d total=%.2fs peak=%.2f %s", traj.Len(), traj.TotalTime(), prof.peakSpeed(), label),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: label}),
	)
	line.AddSeries("velocity", lineData(prof.t, prof.v), charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	line.AddSeries("acceleration", lineData(prof.t, prof.a), charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

func pathChart(title string, series map[string][2][]float64, order []string) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y (m)"}),
	)
	for _, name := range order {
		xy := series[name]
		scatter.AddSeries(name, scatterData(xy[0], xy[1]), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	}
	return scatter
}

// WriteProfileChart renders an HTML page with the velocity profile and the
// path of traj, speeds shown in unit.
func WriteProfileChart(w io.Writer, traj *trajectory.Trajectory, unit string) error {
	prof, err := newProfile(traj, unit)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.SetPageTitle("Trajectory")
	page.AddCharts(
		profileChart(traj, prof),
		pathChart("Path", map[string][2][]float64{"path": {prof.x, prof.y}}, []string{"path"}),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// WriteRunChart renders an HTML page comparing a follow run with its
// reference and plotting the translation error over time.
func WriteRunChart(w io.Writer, samples []follow.TickSample) error {
	r, err := newRun(samples)
	if err != nil {
		return err
	}

	errLine := charts.NewLine()
	errLine.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Tracking error", Subtitle: fmt.Sprintf("ticks=%d max=%.3fm", len(samples), r.maxError())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "m"}),
	)
	errLine.AddSeries("error", lineData(r.t, r.errNorm), charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	page := components.NewPage()
	page.SetPageTitle("Follow run")
	page.AddCharts(
		pathChart("Reference vs measured", map[string][2][]float64{
			"reference": {r.refX, r.refY},
			"measured":  {r.measX, r.measY},
		}, []string{"reference", "measured"}),
		errLine,
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
