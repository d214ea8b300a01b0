// Package testutil provides shared test helpers for the trajectory tools.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/holonomic/internal/monitoring"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// LoopbackRequest builds a request from 127.0.0.1, which the tsweb debug
// handlers accept without further checks.
func LoopbackRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}

// WriteJSON marshals v into dir/name and returns the path.
func WriteJSON(t testing.TB, dir, name string, v interface{}) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	AssertNoError(t, err)
	path := filepath.Join(dir, name)
	AssertNoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// MuteLogs silences the monitoring logger until the test ends.
func MuteLogs(t testing.TB) {
	t.Helper()
	t.Cleanup(monitoring.Swap(nil))
}

// CaptureLogs routes the monitoring logger into the returned slice until the
// test ends.
func CaptureLogs(t testing.TB) *[]string {
	t.Helper()
	var lines []string
	t.Cleanup(monitoring.Swap(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	}))
	return &lines
}
