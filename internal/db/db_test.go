package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/holonomic/internal/follow"
	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/testutil"
	"github.com/banshee-data/holonomic/internal/timeutil"
	"github.com/banshee-data/holonomic/internal/trajectory"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) (*DB, *timeutil.MockClock) {
	t.Helper()
	testutil.MuteLogs(t)
	clock := timeutil.NewMockClock(epoch)
	db, err := NewDBWithClock(filepath.Join(t.TempDir(), "test.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, clock
}

func sampleTrajectory() *trajectory.Trajectory {
	return trajectory.New([]trajectory.State{
		{Time: 0, Velocity: 0, Acceleration: 1, Pose: geometry.NewPose2d(0, 0, 0), TravelHeading: geometry.NewRotation2d(0)},
		{Time: 1, Velocity: 1, Acceleration: 0, Pose: geometry.NewPose2d(0.5, 0.1, 0.2), TravelHeading: geometry.NewRotation2d(0.1), Curvature: 0.3},
		{Time: 2, Velocity: 1, Acceleration: -1, Pose: geometry.NewPose2d(1.5, 0.2, 0.4), TravelHeading: geometry.NewRotation2d(0.1)},
		{Time: 3, Velocity: 0, Acceleration: -1, Pose: geometry.NewPose2d(2, 0.2, 0.5), TravelHeading: geometry.NewRotation2d(0)},
	})
}

func sampleWaypoints() []trajectory.Waypoint {
	heading := geometry.NewRotation2d(0.5)
	return []trajectory.Waypoint{
		{Position: geometry.Translation2d{X: 0, Y: 0}},
		{Position: geometry.Translation2d{X: 2, Y: 0.2}, Heading: &heading},
	}
}

func TestMigrations(t *testing.T) {
	db, _ := newTestDB(t)

	latest, err := LatestMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), latest)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, latest, version)
	assert.False(t, dirty)

	// rerunning is a no-op
	require.NoError(t, db.MigrateUp())

	require.NoError(t, db.MigrateDown())
	version, _, err = db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'follow_runs'`).Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, db.MigrateUp())
	version, _, err = db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestSaveAndLoadTrajectory(t *testing.T) {
	db, _ := newTestDB(t)
	traj := sampleTrajectory()

	id, err := db.SaveTrajectory("s-curve", sampleWaypoints(), map[string]float64{"max_velocity": 1}, traj)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	loaded, rec, err := db.LoadTrajectory(id)
	require.NoError(t, err)
	if diff := cmp.Diff(traj.States(), loaded.States()); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, traj.TotalTime(), loaded.TotalTime())
	assert.Equal(t, traj.Sample(1.5), loaded.Sample(1.5))

	assert.Equal(t, "s-curve", rec.Name)
	assert.Equal(t, 4, rec.States)
	assert.Equal(t, 3.0, rec.TotalTime)
	assert.Equal(t, epoch, rec.CreatedAt)
	assert.JSONEq(t, `{"max_velocity":1}`, string(rec.Config))
	if diff := cmp.Diff(sampleWaypoints(), rec.Waypoints); diff != "" {
		t.Errorf("waypoints mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveTrajectoryDefaults(t *testing.T) {
	db, _ := newTestDB(t)
	id, err := db.SaveTrajectory("nothing", nil, nil, trajectory.DoNothing())
	require.NoError(t, err)

	rec, err := db.GetTrajectory(id)
	require.NoError(t, err)
	assert.Empty(t, rec.Waypoints)
	assert.JSONEq(t, `{}`, string(rec.Config))
	assert.Equal(t, 1, rec.States)
}

func TestLoadTrajectoryNotFound(t *testing.T) {
	db, _ := newTestDB(t)
	_, _, err := db.LoadTrajectory("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, db.DeleteTrajectory("missing"), ErrNotFound)
}

func TestListTrajectories(t *testing.T) {
	db, clock := newTestDB(t)

	recs, err := db.ListTrajectories()
	require.NoError(t, err)
	assert.Empty(t, recs)

	first, err := db.SaveTrajectory("first", nil, nil, sampleTrajectory())
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := db.SaveTrajectory("second", nil, nil, trajectory.DoNothing())
	require.NoError(t, err)

	recs, err = db.ListTrajectories()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, first, recs[0].ID)
	assert.Equal(t, second, recs[1].ID)
	assert.Equal(t, epoch.Add(time.Minute), recs[1].CreatedAt)
}

func sampleRun(traj *trajectory.Trajectory) follow.RunResult {
	var samples []follow.TickSample
	for i, t := range []float64{0, 1, 2, 3} {
		ref := traj.Sample(t)
		measured := geometry.NewPose2d(ref.Pose.X()-0.01, ref.Pose.Y()+0.02, ref.Pose.Rotation.Radians)
		samples = append(samples, follow.TickSample{
			Time:      t,
			Reference: ref,
			Measured:  measured,
			Command:   geometry.ChassisSpeeds{VX: ref.Velocity, VY: 0.1 * float64(i), Omega: -0.2},
			PoseError: ref.Pose.RelativeTo(measured),
		})
	}
	return follow.RunResult{Samples: samples, Finished: true, Elapsed: 3 * time.Second}
}

func TestSaveRunAndSamples(t *testing.T) {
	db, _ := newTestDB(t)
	traj := sampleTrajectory()
	trajID, err := db.SaveTrajectory("s-curve", nil, nil, traj)
	require.NoError(t, err)

	res := sampleRun(traj)
	runID, err := db.SaveRun(trajID, "sim", res)
	require.NoError(t, err)

	rec, err := db.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, trajID, rec.TrajectoryID)
	assert.Equal(t, "sim", rec.Drivetrain)
	assert.True(t, rec.Finished)
	assert.Equal(t, 3*time.Second, rec.Elapsed)
	assert.Equal(t, res.FinalPose(), rec.FinalPose)
	assert.Equal(t, 4, rec.Samples)

	samples, err := db.RunSamples(runID)
	require.NoError(t, err)
	if diff := cmp.Diff(res.Samples, samples); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}

	_, err = db.RunSamples("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetRun("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRunRequiresTrajectory(t *testing.T) {
	db, _ := newTestDB(t)
	_, err := db.SaveRun("missing", "sim", sampleRun(sampleTrajectory()))
	assert.Error(t, err)
}

func TestListRunsAndCascade(t *testing.T) {
	db, clock := newTestDB(t)
	a, err := db.SaveTrajectory("a", nil, nil, sampleTrajectory())
	require.NoError(t, err)
	b, err := db.SaveTrajectory("b", nil, nil, sampleTrajectory())
	require.NoError(t, err)

	runA, err := db.SaveRun(a, "sim", sampleRun(sampleTrajectory()))
	require.NoError(t, err)
	clock.Advance(time.Second)
	runB, err := db.SaveRun(b, "/dev/ttyUSB0", follow.RunResult{})
	require.NoError(t, err)

	all, err := db.ListRuns("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, runA, all[0].ID)
	assert.Equal(t, runB, all[1].ID)
	assert.False(t, all[1].Finished)
	assert.Zero(t, all[1].Samples)

	onlyA, err := db.ListRuns(a)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, runA, onlyA[0].ID)

	require.NoError(t, db.DeleteTrajectory(a))
	all, err = db.ListRuns("")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, runB, all[0].ID)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM follow_samples WHERE run_id = ?`, runA).Scan(&n))
	assert.Zero(t, n)
}
