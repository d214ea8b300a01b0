// Command trajfollow follows a stored trajectory with the simulator or a
// serial drivetrain bridge and records the run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/banshee-data/holonomic/internal/config"
	"github.com/banshee-data/holonomic/internal/db"
	"github.com/banshee-data/holonomic/internal/drive"
	"github.com/banshee-data/holonomic/internal/follow"
	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/monitoring"
	"github.com/banshee-data/holonomic/internal/report"
	"github.com/banshee-data/holonomic/internal/timeutil"
	"github.com/banshee-data/holonomic/internal/version"
)

var (
	configFile   = flag.String("config", "", "Tuning config JSON file (built-in defaults when empty)")
	dbPath       = flag.String("db", "", "Database path (overrides database_path)")
	trajectoryID = flag.String("trajectory", "", "Trajectory ID to follow (defaults to the most recent)")
	port         = flag.String("port", "", "Serial port of the drivetrain bridge (overrides serial_port; simulator when both are empty)")
	noStore      = flag.Bool("no-store", false, "Do not record the run")
	plotFile     = flag.String("plot", "", "Write a PNG of the run against its reference")
	chartFile    = flag.String("chart", "", "Write an HTML chart of the run")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

func loadConfig(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

// openDrivetrain returns the serial bridge when a port is configured and
// otherwise a simulator placed at start, plus a name for the run record.
// The bridge's monitor goroutine is tracked by wg.
func openDrivetrain(ctx context.Context, cfg *config.TuningConfig, clock timeutil.Clock, start geometry.Pose2d, wg *sync.WaitGroup) (drive.Drivetrain, string, func(), error) {
	serialPort := *port
	if serialPort == "" {
		serialPort = cfg.GetSerialPort()
	}
	if serialPort == "" {
		sim := drive.NewSim(clock, start)
		sim.MaxSpeed = cfg.GetMaxVelocity()
		sim.MaxAngularSpeed = cfg.GetMaxAngularVelocity()
		return sim, "sim", func() {}, nil
	}

	bridge, err := drive.OpenSerial(serialPort, cfg.PortOptions())
	if err != nil {
		return nil, "", nil, err
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bridge.Monitor(ctx); err != nil && !errors.Is(err, context.Canceled) {
			monitoring.Logf("failed to monitor serial port: %v", err)
		}
		monitoring.Logf("monitor routine terminated")
	}()
	return bridge, serialPort, func() { bridge.Close() }, nil
}

func run(ctx context.Context, out io.Writer, clock timeutil.Clock) error {
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}

	path := *dbPath
	if path == "" {
		path = cfg.GetDatabasePath()
	}
	store, err := db.NewDB(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	id := *trajectoryID
	if id == "" {
		recs, err := store.ListTrajectories()
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return fmt.Errorf("no trajectories stored in %s", path)
		}
		id = recs[len(recs)-1].ID
	}
	traj, rec, err := store.LoadTrajectory(id)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
	}()

	dt, dtName, closeDrive, err := openDrivetrain(ctx, cfg, clock, traj.InitialPose(), &wg)
	if err != nil {
		return err
	}
	defer closeDrive()

	runner := follow.NewRunner(traj, cfg.FollowerConfig().NewFollower(), dt,
		follow.WithClock(clock),
		follow.WithPeriod(cfg.GetControlPeriod()),
		follow.WithStopOnFinish(cfg.GetStopOnFinish()),
		follow.WithResetPose(cfg.GetResetPose()),
	)
	res, runErr := runner.Run(ctx)

	final := res.FinalPose()
	fmt.Fprintf(out, "%s on %s: %d ticks, finished=%t, final (%.3f, %.3f, %.1f°)\n",
		rec.Name, dtName, len(res.Samples), res.Finished, final.X(), final.Y(), final.Rotation.Degrees())

	if !*noStore {
		runID, err := store.SaveRun(rec.ID, dtName, res)
		if err != nil {
			return errors.Join(runErr, err)
		}
		fmt.Fprintf(out, "stored run %s\n", runID)
	}

	if len(res.Samples) > 0 {
		if *plotFile != "" {
			if err := report.SaveRunPlot(res.Samples, *plotFile); err != nil {
				return errors.Join(runErr, err)
			}
		}
		if *chartFile != "" {
			f, err := os.Create(*chartFile)
			if err != nil {
				return errors.Join(runErr, err)
			}
			defer f.Close()
			if err := report.WriteRunChart(f, res.Samples); err != nil {
				return errors.Join(runErr, err)
			}
		}
	}
	return runErr
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("trajfollow", version.String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, timeutil.RealClock{}); err != nil {
		log.Fatalf("trajfollow: %v", err)
	}
}
