package db

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"

	"github.com/banshee-data/holonomic/internal/httputil"
	"github.com/banshee-data/holonomic/internal/monitoring"
	"github.com/banshee-data/holonomic/internal/report"
	"github.com/banshee-data/holonomic/internal/units"
)

// AttachAdminRoutes mounts debug endpoints for the store under /debug/ on
// mux: a tailsql console, a backup download, JSON listings and HTML charts
// of stored trajectories and runs. tsweb restricts /debug/ to local and
// tailnet clients.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Trajectory DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(db.handleBackup))
	debug.Handle("trajectories", "Stored trajectories (JSON)", http.HandlerFunc(db.handleTrajectories))
	debug.Handle("runs", "Stored follow runs (JSON, ?trajectory_id=)", http.HandlerFunc(db.handleRuns))
	debug.HandleSilentFunc("trajectory-chart", db.handleTrajectoryChart)
	debug.HandleSilentFunc("run-chart", db.handleRunChart)
	return nil
}

var errorStatuses = map[error]int{ErrNotFound: http.StatusNotFound}

func (db *DB) handleTrajectories(w http.ResponseWriter, r *http.Request) {
	recs, err := db.ListTrajectories()
	if err != nil {
		httputil.WriteError(w, err, errorStatuses)
		return
	}
	if recs == nil {
		recs = []TrajectoryRecord{}
	}
	httputil.WriteJSONOK(w, recs)
}

func (db *DB) handleRuns(w http.ResponseWriter, r *http.Request) {
	recs, err := db.ListRuns(r.URL.Query().Get("trajectory_id"))
	if err != nil {
		httputil.WriteError(w, err, errorStatuses)
		return
	}
	if recs == nil {
		recs = []RunRecord{}
	}
	httputil.WriteJSONOK(w, recs)
}

// handleTrajectoryChart renders ?id= as an HTML profile chart, speeds in
// ?unit= (default mps).
func (db *DB) handleTrajectoryChart(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.BadRequest(w, "missing id")
		return
	}
	unit := r.URL.Query().Get("unit")
	if unit == "" {
		unit = units.MPS
	}
	if err := units.Validate(unit); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	traj, _, err := db.LoadTrajectory(id)
	if err != nil {
		httputil.WriteError(w, err, errorStatuses)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.WriteProfileChart(w, traj, unit); err != nil {
		http.Error(w, fmt.Sprintf("render chart: %v", err), http.StatusInternalServerError)
	}
}

// handleRunChart renders the run ?id= against its reference.
func (db *DB) handleRunChart(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.BadRequest(w, "missing id")
		return
	}
	samples, err := db.RunSamples(id)
	if err != nil {
		httputil.WriteError(w, err, errorStatuses)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.WriteRunChart(w, samples); err != nil {
		http.Error(w, fmt.Sprintf("render chart: %v", err), http.StatusInternalServerError)
	}
}

func (db *DB) handleBackup(w http.ResponseWriter, r *http.Request) {
	dir, err := os.MkdirTemp("", "trajectory-backup-")
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup dir: %v", err), http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			monitoring.Logf("db: failed to remove backup dir: %v", err)
		}
	}()

	name := fmt.Sprintf("backup-%d.db", db.clock.Now().Unix())
	backupPath := filepath.Join(dir, name)
	if _, err := db.Exec("VACUUM INTO ?", backupPath); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
		return
	}

	backupFile, err := os.Open(backupPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
		return
	}
	defer backupFile.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.gz", name))
	w.Header().Set("Content-Type", "application/gzip")

	gzipWriter := gzip.NewWriter(w)
	defer gzipWriter.Close()
	if _, err := io.Copy(gzipWriter, backupFile); err != nil {
		monitoring.Logf("db: failed to stream backup: %v", err)
	}
}
