package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Polsky40/efemerides/internal/angle"
	"github.com/Polsky40/efemerides/internal/config"
	"github.com/Polsky40/efemerides/internal/ephemeris"
	"github.com/Polsky40/efemerides/internal/scan"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// testEpoch mirrors the scan package's synthetic anchor.
var testEpoch = ephemeris.JulianDay(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

// linearProvider serves one synthetic body sweeping 1 degree per day so
// handler tests have deterministic crossings.
type linearProvider struct{}

func (linearProvider) PositionAt(body ephemeris.Body, jd float64) (ephemeris.Position, error) {
	if body != ephemeris.Mars {
		return ephemeris.Position{}, fmt.Errorf("no synthetic motion for %s", body)
	}
	return ephemeris.Position{Longitude: angle.Wrap360(jd - testEpoch), Speed: 1}, nil
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.New()
	if mutate != nil {
		mutate(cfg)
	}
	provider := linearProvider{}
	scanner := scan.NewScanner(provider, 2, testLogger())
	srv := NewServer(cfg, testLogger(), scanner, provider)
	ts := httptest.NewServer(srv.HTTPServer().Handler)
	t.Cleanup(ts.Close)
	return ts
}

func postScan(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/aspects/scan", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestScanEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := postScan(t, ts, `{
		"bodies": ["mars"],
		"target": 90,
		"orb": 0.05,
		"jd_start": "2025-01-01",
		"jd_end": "2025-05-01",
		"step_hours": 24
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	events, ok := body["events"].([]any)
	require.True(t, ok, "events must be a list, got %T", body["events"])
	require.Len(t, events, 1)

	ev := events[0].(map[string]any)
	assert.Equal(t, "MARS", ev["planet"])
	assert.Equal(t, "90", ev["target"])
	assert.Equal(t, "D", ev["motion"])
	assert.Equal(t, "2025-04-01T00:00Z", ev["utc"])
}

func TestScanEndpointPrecision(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := postScan(t, ts, `{
		"bodies": ["mars"],
		"target": 90,
		"orb": 0.05,
		"jd_start": "2025-01-01",
		"jd_end": "2025-05-01",
		"strategy": "precision"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Orb entry and exit around the exact alignment.
	events := body["events"].([]any)
	assert.Len(t, events, 2)
}

func TestScanEndpointEmptyWindowStillJSON(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := postScan(t, ts, `{
		"bodies": ["mars"],
		"target": 200,
		"jd_start": "2025-01-01",
		"jd_end": "2025-01-02"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// No crossings: events must be [] rather than null.
	events, ok := body["events"].([]any)
	require.True(t, ok)
	assert.Empty(t, events)
}

func TestScanEndpointSkipped(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := postScan(t, ts, `{
		"bodies": ["mars", "ganymede"],
		"target": ["90", "asc"],
		"jd_start": "2025-01-01",
		"jd_end": "2025-05-01",
		"step_hours": 24
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	skipped, ok := body["skipped"].([]any)
	require.True(t, ok)
	assert.Len(t, skipped, 2)
}

func TestScanEndpointValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"no bodies", `{"target": 90, "jd_start": "2025-01-01", "jd_end": "2025-01-02"}`},
		{"no target", `{"bodies": ["mars"], "jd_start": "2025-01-01", "jd_end": "2025-01-02"}`},
		{"missing dates", `{"bodies": ["mars"], "target": 90}`},
		{"bad date", `{"bodies": ["mars"], "target": 90, "jd_start": "01/01/2025", "jd_end": "2025-01-02"}`},
		{"start after end", `{"bodies": ["mars"], "target": 90, "jd_start": "2025-02-01", "jd_end": "2025-01-01"}`},
		{"bad strategy", `{"bodies": ["mars"], "target": 90, "jd_start": "2025-01-01", "jd_end": "2025-01-02", "strategy": "exhaustive"}`},
		{"negative orb", `{"bodies": ["mars"], "target": 90, "orb": -1, "jd_start": "2025-01-01", "jd_end": "2025-01-02"}`},
		{"zero step", `{"bodies": ["mars"], "target": 90, "step_hours": 0, "jd_start": "2025-01-01", "jd_end": "2025-01-02"}`},
		{"non-numeric aspect", `{"bodies": ["mars"], "target": 90, "aspect": "trine", "jd_start": "2025-01-01", "jd_end": "2025-01-02"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postScan(t, ts, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

// Requests whose sample count exceeds the configured budget are rejected
// before any computation.
func TestScanEndpointBudget(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.MaxSamplesPerScan = 100 })

	resp, body := postScan(t, ts, `{
		"bodies": ["mars"],
		"target": 90,
		"jd_start": "2025-01-01",
		"jd_end": "2026-01-01",
		"step_hours": 1
	}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "budget")
}

func TestPositionEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/v1/bodies/mars/position?at=2025-04-01T00:00")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pos map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pos))
	assert.Equal(t, "MARS", pos["planet"])
	assert.Equal(t, "D", pos["motion"])
	assert.InDelta(t, 90, pos["longitude"].(float64), 1e-9)
	assert.Equal(t, `00°00'00" in Cancer`, pos["sign_position"])
}

func TestPositionEndpointErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name, path string
		status     int
	}{
		{"missing at", "/api/v1/bodies/mars/position", http.StatusBadRequest},
		{"bad at", "/api/v1/bodies/mars/position?at=yesterday", http.StatusBadRequest},
		{"unknown body", "/api/v1/bodies/ganymede/position?at=2025-04-01T00:00", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestBodiesEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/v1/bodies")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["bodies"], "SUN")
	assert.Contains(t, body["bodies"], "PLUTO")
	assert.Len(t, body["bodies"], 10)
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "aspectd")
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/aspects/scan", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.AuthEnabled = true
		c.AuthToken = "sekrit"
	})

	// Scan requires the token.
	resp, err := http.Post(ts.URL+"/api/v1/aspects/scan", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/aspects/scan", strings.NewReader(`{
		"bodies": ["mars"], "target": 90, "jd_start": "2025-01-01", "jd_end": "2025-01-02"
	}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Read-only paths stay open.
	for _, path := range []string{"/", "/healthz", "/readyz", "/api/v1/bodies"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, "path %s", path)
	}
}

func TestScanLimiter(t *testing.T) {
	l := newScanLimiter(2)

	assert.True(t, l.acquire("10.0.0.1"))
	assert.True(t, l.acquire("10.0.0.1"))
	assert.False(t, l.acquire("10.0.0.1"), "per-IP cap")
	assert.True(t, l.acquire("10.0.0.2"), "other IPs unaffected")

	l.release("10.0.0.1")
	assert.True(t, l.acquire("10.0.0.1"))
}
