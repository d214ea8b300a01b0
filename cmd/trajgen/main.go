// Command trajgen generates a trajectory from a waypoint plan, stores it
// and optionally renders reports.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/holonomic/internal/config"
	"github.com/banshee-data/holonomic/internal/db"
	"github.com/banshee-data/holonomic/internal/report"
	"github.com/banshee-data/holonomic/internal/trajectory"
	"github.com/banshee-data/holonomic/internal/units"
	"github.com/banshee-data/holonomic/internal/version"
)

var (
	planFile    = flag.String("plan", "", "Waypoint plan JSON file (required)")
	configFile  = flag.String("config", "", "Tuning config JSON file (built-in defaults when empty)")
	dbPath      = flag.String("db", "", "Database path (overrides database_path)")
	name        = flag.String("name", "", "Trajectory name (defaults to the plan's name or file name)")
	noStore     = flag.Bool("no-store", false, "Do not store the trajectory")
	plotPrefix  = flag.String("plot", "", "Write <prefix>-profile.png and <prefix>-path.png")
	chartFile   = flag.String("chart", "", "Write an HTML profile chart to this file")
	speedUnits  = flag.String("units", units.MPS, "Speed units for output ("+units.GetValidUnitsString()+")")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// plan is the on-disk waypoint description. Keyframes, when present,
// override waypoint headings.
type plan struct {
	Name      string                       `json:"name"`
	Waypoints []trajectory.Waypoint        `json:"waypoints"`
	Keyframes []trajectory.HeadingKeyframe `json:"keyframes,omitempty"`
}

func loadPlan(path string) (*plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	var p plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}
	if len(p.Waypoints) == 0 {
		return nil, fmt.Errorf("plan %s has no waypoints", path)
	}
	return &p, nil
}

func loadConfig(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

func run(out io.Writer) error {
	if *planFile == "" {
		return errors.New("-plan is required")
	}
	if err := units.Validate(*speedUnits); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	p, err := loadPlan(*planFile)
	if err != nil {
		return err
	}

	gen := trajectory.NewGenerator(cfg.PathService())
	var traj *trajectory.Trajectory
	if p.Keyframes != nil {
		traj, err = gen.GenerateWithKeyframes(p.Waypoints, p.Keyframes, cfg.TrajectoryConfig())
	} else {
		traj, err = gen.Generate(p.Waypoints, cfg.TrajectoryConfig())
	}
	if err != nil {
		return err
	}

	trajName := *name
	if trajName == "" {
		trajName = p.Name
	}
	if trajName == "" {
		trajName = filepath.Base(*planFile)
	}

	peak := 0.0
	for _, s := range traj.States() {
		peak = max(peak, math.Abs(units.ConvertSpeed(s.Velocity, *speedUnits)))
	}
	fmt.Fprintf(out, "%s: %d states, %.3f s, peak %.2f %s\n",
		trajName, traj.Len(), traj.TotalTime(), peak, units.Label(*speedUnits))

	if !*noStore {
		path := *dbPath
		if path == "" {
			path = cfg.GetDatabasePath()
		}
		store, err := db.NewDB(path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()

		id, err := store.SaveTrajectory(trajName, p.Waypoints, cfg, traj)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "stored trajectory %s in %s\n", id, path)
	}

	if *plotPrefix != "" {
		if err := report.SaveProfilePlot(traj, *speedUnits, *plotPrefix+"-profile.png"); err != nil {
			return err
		}
		if err := report.SavePathPlot(traj, *plotPrefix+"-path.png"); err != nil {
			return err
		}
	}
	if *chartFile != "" {
		f, err := os.Create(*chartFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.WriteProfileChart(f, traj, *speedUnits); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("trajgen", version.String())
		return
	}

	if err := run(os.Stdout); err != nil {
		log.Fatalf("trajgen: %v", err)
	}
}
