package testutil

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/banshee-data/holonomic/internal/monitoring"
)

func TestLoopbackRequest(t *testing.T) {
	req := LoopbackRequest(http.MethodGet, "/debug/trajectories?unit=kph")
	if req.Method != http.MethodGet || req.URL.Path != "/debug/trajectories" {
		t.Errorf("got %s %s", req.Method, req.URL.Path)
	}
	if req.RemoteAddr != "127.0.0.1:12345" {
		t.Errorf("RemoteAddr = %q", req.RemoteAddr)
	}
	if got := req.URL.Query().Get("unit"); got != "kph" {
		t.Errorf("unit = %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	path := WriteJSON(t, t.TempDir(), "waypoints.json", map[string]float64{"x": 1.5})

	data, err := os.ReadFile(path)
	AssertNoError(t, err)
	var got map[string]float64
	AssertNoError(t, json.Unmarshal(data, &got))
	if got["x"] != 1.5 {
		t.Errorf("round trip gave %v", got)
	}
}

func TestCaptureLogs(t *testing.T) {
	lines := CaptureLogs(t)
	monitoring.Logf("sample %d", 7)
	if len(*lines) != 1 || (*lines)[0] != "sample 7" {
		t.Errorf("captured %q", *lines)
	}
}
