// Package db stores generated trajectories and recorded follow runs in
// SQLite.
package db

import (
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/holonomic/internal/timeutil"
)

// ErrNotFound is returned when a trajectory or run does not exist.
var ErrNotFound = errors.New("not found")

type DB struct {
	*sql.DB

	path  string
	clock timeutil.Clock
}

// NewDB opens (creating if needed) the database at path and migrates it to
// the latest schema.
func NewDB(path string) (*DB, error) {
	return NewDBWithClock(path, timeutil.RealClock{})
}

// NewDBWithClock is NewDB with the clock used for creation timestamps.
func NewDBWithClock(path string, clock timeutil.Clock) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	db := &DB{DB: sqlDB, path: path, clock: clock}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string { return db.path }

func (db *DB) nowNs() int64 { return db.clock.Now().UnixNano() }
