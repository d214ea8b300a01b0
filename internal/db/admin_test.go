package db

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/holonomic/internal/httputil"
	"github.com/banshee-data/holonomic/internal/testutil"
)

func TestAttachAdminRoutes(t *testing.T) {
	db, _ := newTestDB(t)
	traj := sampleTrajectory()
	trajID, err := db.SaveTrajectory("s-curve", sampleWaypoints(), nil, traj)
	require.NoError(t, err)
	runID, err := db.SaveRun(trajID, "sim", sampleRun(traj))
	require.NoError(t, err)

	mux := http.NewServeMux()
	require.NoError(t, db.AttachAdminRoutes(mux))

	serve := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.LoopbackRequest(http.MethodGet, target))
		return w
	}

	t.Run("trajectories", func(t *testing.T) {
		w := serve("/debug/trajectories")
		require.Equal(t, http.StatusOK, w.Code)
		var recs []TrajectoryRecord
		require.NoError(t, json.NewDecoder(w.Body).Decode(&recs))
		require.Len(t, recs, 1)
		assert.Equal(t, trajID, recs[0].ID)
	})

	t.Run("runs", func(t *testing.T) {
		w := serve("/debug/runs?trajectory_id=" + trajID)
		require.Equal(t, http.StatusOK, w.Code)
		var recs []RunRecord
		require.NoError(t, json.NewDecoder(w.Body).Decode(&recs))
		require.Len(t, recs, 1)
		assert.Equal(t, runID, recs[0].ID)

		w = serve("/debug/runs?trajectory_id=other")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("trajectory chart", func(t *testing.T) {
		w := serve("/debug/trajectory-chart?id=" + trajID + "&unit=mph")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Velocity profile")

		assert.Equal(t, http.StatusBadRequest, serve("/debug/trajectory-chart").Code)
		assert.Equal(t, http.StatusBadRequest, serve("/debug/trajectory-chart?id="+trajID+"&unit=knots").Code)
		w = serve("/debug/trajectory-chart?id=missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
		var body httputil.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Contains(t, body.Error, "missing")
	})

	t.Run("run chart", func(t *testing.T) {
		w := serve("/debug/run-chart?id=" + runID)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Reference vs measured")

		assert.Equal(t, http.StatusBadRequest, serve("/debug/run-chart").Code)
		assert.Equal(t, http.StatusNotFound, serve("/debug/run-chart?id=missing").Code)
	})

	t.Run("backup", func(t *testing.T) {
		w := serve("/debug/backup")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "backup-")

		zr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, "SQLite format 3\x00", string(body[:16]))
	})

	t.Run("tailsql registered", func(t *testing.T) {
		assert.NotEqual(t, http.StatusNotFound, serve("/debug/tailsql/").Code)
	})
}
