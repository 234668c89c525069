package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealscope/comps-api/internal/database"
)

// HealthHandler reports readiness of the service and its dependencies
type HealthHandler struct {
	db        *database.DB
	cachePing func(ctx context.Context) error
}

// NewHealthHandler creates a health handler. cachePing may be nil when the
// in-memory cache backend is in use.
func NewHealthHandler(db *database.DB, cachePing func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{db: db, cachePing: cachePing}
}

// GetHealth checks database and cache reachability
func (h *HealthHandler) GetHealth(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "ok"
	cacheStatus := "ok"

	if err := h.db.HealthCheck(); err != nil {
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	if h.cachePing != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.cachePing(ctx); err != nil {
			cacheStatus = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, gin.H{
		"database":  dbStatus,
		"cache":     cacheStatus,
		"timestamp": time.Now(),
	})
}
