package handlers

import (
	"context"
	"net/http"
	"time"

	"ledgerly/storage"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Health reports whether the subscriber store is reachable.
func Health(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
