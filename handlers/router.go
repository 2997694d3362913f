package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"ledgerly/middleware"
	"ledgerly/storage"

	"github.com/gin-gonic/gin"
)

func NewRouter(store storage.Store, notifier Notifier, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(recovery(log), middleware.RequestID(), middleware.Logger(log))

	subscribe := NewSubscribeHandler(store, notifier, log)

	r.GET("/healthz", Health(store))

	api := r.Group("/api")
	{
		api.POST("/subscribe", subscribe.Subscribe)
	}

	return r
}

// recovery turns a panic into the standard internal error response.
func recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err any) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			"error", err,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	})
}
