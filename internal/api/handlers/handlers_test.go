// Package handlers_test provides behavior tests for the API handlers package.
package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jthorne/dnsauthd/internal/api/handlers"
	"github.com/jthorne/dnsauthd/internal/api/models"
	"github.com/jthorne/dnsauthd/internal/config"
	"github.com/jthorne/dnsauthd/internal/server"
	"github.com/jthorne/dnsauthd/internal/zone"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func createTestHandler(t *testing.T) *handlers.Handler {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 5353},
	}
	return handlers.New(cfg, nil)
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth_ReturnsOK(t *testing.T) {
	h := createTestHandler(t)
	router := gin.New()
	router.GET("/health", h.Health)

	w := performRequest(router, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestStats_ReturnsServerStats(t *testing.T) {
	h := createTestHandler(t)
	router := gin.New()
	router.GET("/stats", h.Stats)

	w := performRequest(router, "GET", "/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ServerStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Uptime)
	assert.Positive(t, resp.CPU.NumCPU)
	assert.Equal(t, 0, resp.ZoneCount)
}

func TestStats_ReflectsDNSQueryCounters(t *testing.T) {
	h := createTestHandler(t)
	stats := server.NewDNSStats()
	stats.RecordQuery("udp")
	stats.RecordQuery("tcp")
	stats.RecordNXDOMAIN()
	h.SetDNSStats(stats)

	router := gin.New()
	router.GET("/stats", h.Stats)

	w := performRequest(router, "GET", "/stats", "")
	var resp models.ServerStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, uint64(2), resp.DNSStats.QueriesTotal)
	assert.Equal(t, uint64(1), resp.DNSStats.QueriesUDP)
	assert.Equal(t, uint64(1), resp.DNSStats.QueriesTCP)
	assert.Equal(t, uint64(1), resp.DNSStats.ResponsesNX)
}

func TestStats_ReflectsZoneCount(t *testing.T) {
	h := createTestHandler(t)
	z, err := zone.ParseText("$ORIGIN example.com.\n@ IN SOA ns1.example.com. admin.example.com. 1 3600 900 604800 86400\n")
	require.NoError(t, err)
	h.SetZones([]*zone.Zone{z})

	router := gin.New()
	router.GET("/stats", h.Stats)

	w := performRequest(router, "GET", "/stats", "")
	var resp models.ServerStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ZoneCount)
}

func TestHandler_New(t *testing.T) {
	cfg := &config.Config{}
	h := handlers.New(cfg, nil)
	assert.NotNil(t, h)
}
