package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/holonomic/internal/follow"
	"github.com/banshee-data/holonomic/internal/geometry"
)

// RunRecord summarizes a stored follow run.
type RunRecord struct {
	ID           string          `json:"run_id"`
	TrajectoryID string          `json:"trajectory_id"`
	Drivetrain   string          `json:"drivetrain"`
	Finished     bool            `json:"finished"`
	Elapsed      time.Duration   `json:"elapsed"`
	FinalPose    geometry.Pose2d `json:"final_pose"`
	Samples      int             `json:"samples"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SaveRun stores a follow run of trajectoryID and returns its new ID.
// drivetrain names what was driven, e.g. "sim" or a serial port.
func (db *DB) SaveRun(trajectoryID, drivetrain string, res follow.RunResult) (string, error) {
	id := uuid.New().String()
	final := res.FinalPose()

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO follow_runs (run_id, trajectory_id, drivetrain, finished, elapsed_s,
			final_x, final_y, final_heading, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, trajectoryID, drivetrain, res.Finished, res.Elapsed.Seconds(),
		final.X(), final.Y(), final.Rotation.Radians, db.nowNs(),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO follow_samples (
			run_id, sample_index, time,
			ref_time, ref_velocity, ref_accel, ref_x, ref_y, ref_heading, ref_travel, ref_curvature,
			x, y, heading, vx, vy, omega, err_x, err_y, err_heading
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, s := range res.Samples {
		ref := s.Reference
		if _, err := stmt.Exec(id, i, s.Time,
			ref.Time, ref.Velocity, ref.Acceleration, ref.Pose.X(), ref.Pose.Y(), ref.Pose.Rotation.Radians,
			ref.TravelHeading.Radians, ref.Curvature,
			s.Measured.X(), s.Measured.Y(), s.Measured.Rotation.Radians,
			s.Command.VX, s.Command.VY, s.Command.Omega,
			s.PoseError.X(), s.PoseError.Y(), s.PoseError.Rotation.Radians,
		); err != nil {
			return "", fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

const runColumns = `r.run_id, r.trajectory_id, r.drivetrain, r.finished, r.elapsed_s,
	r.final_x, r.final_y, r.final_heading, r.created_at_ns,
	(SELECT COUNT(*) FROM follow_samples s WHERE s.run_id = r.run_id)`

func scanRunRecord(row scanner) (*RunRecord, error) {
	var (
		rec           RunRecord
		elapsed       float64
		x, y, heading float64
		createdNs     int64
	)
	if err := row.Scan(&rec.ID, &rec.TrajectoryID, &rec.Drivetrain, &rec.Finished, &elapsed,
		&x, &y, &heading, &createdNs, &rec.Samples); err != nil {
		return nil, err
	}
	rec.Elapsed = time.Duration(elapsed * float64(time.Second))
	rec.FinalPose = geometry.NewPose2d(x, y, heading)
	rec.CreatedAt = time.Unix(0, createdNs).UTC()
	return &rec, nil
}

// GetRun returns the summary of one run.
func (db *DB) GetRun(id string) (*RunRecord, error) {
	rec, err := scanRunRecord(db.QueryRow(`SELECT `+runColumns+` FROM follow_runs r WHERE r.run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// ListRuns returns the runs of trajectoryID, oldest first. An empty
// trajectoryID lists every run.
func (db *DB) ListRuns(trajectoryID string) ([]RunRecord, error) {
	rows, err := db.Query(`SELECT `+runColumns+` FROM follow_runs r
		WHERE ? = '' OR r.trajectory_id = ?
		ORDER BY r.created_at_ns, r.rowid`, trajectoryID, trajectoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRunRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// RunSamples returns the recorded ticks of a run in order.
func (db *DB) RunSamples(runID string) ([]follow.TickSample, error) {
	if _, err := db.GetRun(runID); err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT time,
			ref_time, ref_velocity, ref_accel, ref_x, ref_y, ref_heading, ref_travel, ref_curvature,
			x, y, heading, vx, vy, omega, err_x, err_y, err_heading
		FROM follow_samples WHERE run_id = ? ORDER BY sample_index`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []follow.TickSample
	for rows.Next() {
		var (
			s                                 follow.TickSample
			refX, refY, refHeading, refTravel float64
			x, y, heading                     float64
			errX, errY, errHeading            float64
		)
		if err := rows.Scan(&s.Time,
			&s.Reference.Time, &s.Reference.Velocity, &s.Reference.Acceleration,
			&refX, &refY, &refHeading, &refTravel, &s.Reference.Curvature,
			&x, &y, &heading, &s.Command.VX, &s.Command.VY, &s.Command.Omega,
			&errX, &errY, &errHeading,
		); err != nil {
			return nil, err
		}
		s.Reference.Pose = geometry.NewPose2d(refX, refY, refHeading)
		s.Reference.TravelHeading = geometry.NewRotation2d(refTravel)
		s.Measured = geometry.NewPose2d(x, y, heading)
		s.PoseError = geometry.NewPose2d(errX, errY, errHeading)
		out = append(out, s)
	}
	return out, rows.Err()
}
