package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/holonomic/internal/geometry"
	"github.com/banshee-data/holonomic/internal/trajectory"
)

// TrajectoryRecord describes a stored trajectory.
type TrajectoryRecord struct {
	ID        string                `json:"trajectory_id"`
	Name      string                `json:"name"`
	TotalTime float64               `json:"total_time"`
	States    int                   `json:"states"`
	Waypoints []trajectory.Waypoint `json:"waypoints"`
	Config    json.RawMessage       `json:"config,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// SaveTrajectory stores traj with the waypoints and generation settings it
// came from and returns its new ID. config is stored as JSON; nil stores an
// empty object.
func (db *DB) SaveTrajectory(name string, waypoints []trajectory.Waypoint, config any, traj *trajectory.Trajectory) (string, error) {
	if waypoints == nil {
		waypoints = []trajectory.Waypoint{}
	}
	waypointsJSON, err := json.Marshal(waypoints)
	if err != nil {
		return "", fmt.Errorf("encode waypoints: %w", err)
	}
	configJSON := []byte("{}")
	if config != nil {
		if configJSON, err = json.Marshal(config); err != nil {
			return "", fmt.Errorf("encode config: %w", err)
		}
	}

	id := uuid.New().String()
	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO trajectories (trajectory_id, name, total_time, waypoints_json, config_json, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, traj.TotalTime(), string(waypointsJSON), string(configJSON), db.nowNs(),
	); err != nil {
		return "", fmt.Errorf("insert trajectory: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO trajectory_states (
			trajectory_id, state_index, time, velocity, acceleration,
			x, y, heading, travel_heading, curvature
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, s := range traj.States() {
		if _, err := stmt.Exec(id, i, s.Time, s.Velocity, s.Acceleration,
			s.Pose.X(), s.Pose.Y(), s.Pose.Rotation.Radians, s.TravelHeading.Radians, s.Curvature,
		); err != nil {
			return "", fmt.Errorf("insert state %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

const trajectoryColumns = `t.trajectory_id, t.name, t.total_time, t.waypoints_json, t.config_json, t.created_at_ns,
	(SELECT COUNT(*) FROM trajectory_states s WHERE s.trajectory_id = t.trajectory_id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrajectoryRecord(row scanner) (*TrajectoryRecord, error) {
	var (
		rec           TrajectoryRecord
		waypointsJSON string
		configJSON    string
		createdNs     int64
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.TotalTime, &waypointsJSON, &configJSON, &createdNs, &rec.States); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(waypointsJSON), &rec.Waypoints); err != nil {
		return nil, fmt.Errorf("decode waypoints of %s: %w", rec.ID, err)
	}
	rec.Config = json.RawMessage(configJSON)
	rec.CreatedAt = time.Unix(0, createdNs).UTC()
	return &rec, nil
}

// GetTrajectory returns the record for id without its states.
func (db *DB) GetTrajectory(id string) (*TrajectoryRecord, error) {
	row := db.QueryRow(`SELECT `+trajectoryColumns+` FROM trajectories t WHERE t.trajectory_id = ?`, id)
	rec, err := scanTrajectoryRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trajectory %s: %w", id, ErrNotFound)
	}
	return rec, err
}

// LoadTrajectory reads a stored trajectory back into memory.
func (db *DB) LoadTrajectory(id string) (*trajectory.Trajectory, *TrajectoryRecord, error) {
	rec, err := db.GetTrajectory(id)
	if err != nil {
		return nil, nil, err
	}

	rows, err := db.Query(`SELECT time, velocity, acceleration, x, y, heading, travel_heading, curvature
		FROM trajectory_states WHERE trajectory_id = ? ORDER BY state_index`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	states := make([]trajectory.State, 0, rec.States)
	for rows.Next() {
		var (
			s                        trajectory.State
			x, y, heading, travelHdg float64
		)
		if err := rows.Scan(&s.Time, &s.Velocity, &s.Acceleration, &x, &y, &heading, &travelHdg, &s.Curvature); err != nil {
			return nil, nil, err
		}
		s.Pose = geometry.NewPose2d(x, y, heading)
		s.TravelHeading = geometry.NewRotation2d(travelHdg)
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return trajectory.New(states), rec, nil
}

// ListTrajectories returns every stored trajectory, oldest first.
func (db *DB) ListTrajectories() ([]TrajectoryRecord, error) {
	rows, err := db.Query(`SELECT ` + trajectoryColumns + ` FROM trajectories t ORDER BY t.created_at_ns, t.rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrajectoryRecord
	for rows.Next() {
		rec, err := scanTrajectoryRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// DeleteTrajectory removes a trajectory along with its states and runs.
func (db *DB) DeleteTrajectory(id string) error {
	res, err := db.Exec(`DELETE FROM trajectories WHERE trajectory_id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("trajectory %s: %w", id, ErrNotFound)
	}
	return nil
}
