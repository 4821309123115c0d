package http

import (
	"context"
	"encoding/json"
	"net/http"
	"signetic_scheduler/internal/entities"
	"signetic_scheduler/internal/infrastructure"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryOverrides map[string]entities.Coordinates

func (m memoryOverrides) Put(_ context.Context, location string, coords entities.Coordinates) error {
	if coords.Latitude > 90 || coords.Latitude < -90 {
		return infrastructure.ErrInvalidCoordinates
	}
	m[location] = coords
	return nil
}

func doRequest(t *testing.T, srv *testServer, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestRootAndHealth(t *testing.T) {
	srv := newTestServer(t, 10, 4096, nil)

	resp, body := doRequest(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Welcome to Signetic AI Scheduler API", body["message"])
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, body = doRequest(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestStats(t *testing.T) {
	srv := newTestServer(t, 10, 4096, nil)
	conn := srv.dial(t, "watcher")
	readFrame(t, conn)

	resp, body := doRequest(t, srv, http.MethodGet, "/api/chat/stats", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["active_sessions"])
	assert.Contains(t, body, "rate_limiter")
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, 10, 4096, nil)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/chat/stats", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestPutLocation(t *testing.T) {
	overrides := memoryOverrides{}
	srv := newTestServer(t, 10, 4096, overrides)

	resp, _ := doRequest(t, srv, http.MethodPut, "/api/geocoder/locations/Gotham", `{"latitude":40.1,"longitude":-74.2}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entities.Coordinates{Latitude: 40.1, Longitude: -74.2}, overrides["Gotham"])

	resp, _ = doRequest(t, srv, http.MethodPut, "/api/geocoder/locations/Gotham", `{"latitude":140,"longitude":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, srv, http.MethodPut, "/api/geocoder/locations/Gotham", `{"latitude":40}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, srv, http.MethodPut, "/api/geocoder/locations/123", `{"latitude":1,"longitude":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutLocationNotRoutedWithoutOverrides(t *testing.T) {
	srv := newTestServer(t, 10, 4096, nil)

	resp, _ := doRequest(t, srv, http.MethodPut, "/api/geocoder/locations/Gotham", `{"latitude":1,"longitude":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
