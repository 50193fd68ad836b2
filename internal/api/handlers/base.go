// Package handlers implements the REST API endpoint handlers for dnsauthd.
package handlers

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jthorne/dnsauthd/internal/config"
	"github.com/jthorne/dnsauthd/internal/server"
	"github.com/jthorne/dnsauthd/internal/zone"
)

// Handler contains dependencies for API handlers.
type Handler struct {
	cfg       *config.Config
	logger    *slog.Logger
	startTime time.Time

	mu       sync.RWMutex
	zones    []*zone.Zone
	dnsStats *server.DNSStats
}

// New creates a new Handler with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		startTime: time.Now(),
	}
}

// SetZones sets the loaded zones for runtime access (zone counts in /stats).
func (h *Handler) SetZones(zones []*zone.Zone) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.zones = zones
}

// SetDNSStats wires the transport layer's query counters into /stats.
func (h *Handler) SetDNSStats(stats *server.DNSStats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dnsStats = stats
}

func (h *Handler) zoneCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.zones)
}

func (h *Handler) dnsStatsSnapshot() server.DNSStatsSnapshot {
	h.mu.RLock()
	stats := h.dnsStats
	h.mu.RUnlock()
	if stats == nil {
		return server.DNSStatsSnapshot{}
	}
	return stats.Snapshot()
}
