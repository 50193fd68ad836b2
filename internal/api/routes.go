package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jthorne/dnsauthd/internal/api/handlers"
)

// RegisterRoutes mounts the read-only operational surface. Zone and
// record management stay config/file-driven: there are no mutation
// endpoints here.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler) {
	api := r.Group("/api/v1")
	api.GET("/health", h.Health)
	api.GET("/stats", h.Stats)

	r.GET("/healthz", h.Health)
	r.GET("/stats", h.Stats)
}
