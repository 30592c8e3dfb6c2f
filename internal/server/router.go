package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HealthFunc reports backing-store health for /healthz.
type HealthFunc func(ctx context.Context) error

// RouterConfig carries the transport-level knobs for the HTTP surface.
type RouterConfig struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

// NewRouter wires the course API onto a gin engine.
func NewRouter(h *CourseHandler, health HealthFunc, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/courses", h.Upload)
		api.GET("/courses", h.List)
		api.GET("/courses/export", h.Export)
		api.GET("/courses/:id", h.Get)
		api.DELETE("/courses/:id", h.Delete)
		api.PATCH("/courses/:id/archive", h.Archive)
	}

	return r
}
