package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"slidecast-go/internal/handlers/common"
	"slidecast-go/internal/stats"
	"slidecast-go/internal/storage"
)

// healthHandler reports process liveness plus storage backend health.
func healthHandler(store storage.Backend, backendName string) gin.HandlerFunc {
	started := time.Now()
	return func(c *gin.Context) {
		status := http.StatusOK
		storageState := "ok"
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			if err := store.Health(ctx); err != nil {
				status = http.StatusServiceUnavailable
				storageState = err.Error()
			}
		}
		c.JSON(status, gin.H{
			"status":  httpStateLabel(status),
			"uptime":  time.Since(started).Round(time.Second).String(),
			"storage": gin.H{"backend": backendName, "state": storageState},
		})
	}
}

func httpStateLabel(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

// usageHandler exposes per-model usage counters.
func usageHandler(usage *stats.UsageStats) gin.HandlerFunc {
	return func(c *gin.Context) {
		if usage == nil {
			common.AbortWithError(c, http.StatusServiceUnavailable, "unavailable", "usage tracking disabled")
			return
		}
		all, err := usage.GetAllUsage(c.Request.Context())
		if err != nil {
			common.AbortWithError(c, http.StatusInternalServerError, "storage_error", "failed to read usage")
			return
		}
		c.JSON(http.StatusOK, gin.H{"usage": all})
	}
}

// usageResetHandler clears all usage counters.
func usageResetHandler(usage *stats.UsageStats) gin.HandlerFunc {
	return func(c *gin.Context) {
		if usage == nil {
			common.AbortWithError(c, http.StatusServiceUnavailable, "unavailable", "usage tracking disabled")
			return
		}
		if err := usage.ResetAll(c.Request.Context()); err != nil {
			common.AbortWithError(c, http.StatusInternalServerError, "storage_error", "failed to reset usage")
			return
		}
		c.JSON(http.StatusOK, gin.H{"reset": true})
	}
}
