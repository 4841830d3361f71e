// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/s3facility/internal/api/handlers"
	"github.com/andresuchdata/s3facility/internal/api/middleware"
	"github.com/andresuchdata/s3facility/internal/gateway"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// maxMultipartMemory caps the in-memory part of multipart uploads.
const maxMultipartMemory = 32 << 20

func NewRouter(gw *gateway.Gateway, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if gw != nil {
		filesHandler := handlers.NewFilesHandler(gw)
		filesGroup := apiGroup.Group("/files")
		{
			filesGroup.POST("", filesHandler.Upload)
			filesGroup.GET("/url", filesHandler.DownloadURL)
			filesGroup.POST("/delete", filesHandler.Delete)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
