package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docvault/expiry-scanner/logger"
)

const requestIDHeader = "X-Request-ID"

// NewRouter mounts the health check and the /api/v1 routes.
func NewRouter(expiryHandler *ExpiryHandler, uploadHandler *UploadHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Expiry Scanner",
		})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/expiry/detect", expiryHandler.DetectExpiry)
		api.POST("/files/scan", uploadHandler.ScanFile)
	}

	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		l := logger.WithRequestID(requestID)
		l.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	}
}
