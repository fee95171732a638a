// Package api exposes the operator actions over HTTP for a presentation layer.
package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Startup-Mindset/job-posting/internal/app"
	"github.com/Startup-Mindset/job-posting/internal/logger"
	"github.com/Startup-Mindset/job-posting/internal/metrics"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
)

// Server serializes HTTP requests onto the single review session.
type Server struct {
	app       *app.App
	metrics   *metrics.Metrics
	logger    *logger.Logger
	origins   []string
	maxUpload int64
	mu        sync.Mutex
}

// Options configure a Server.
type Options struct {
	AllowedOrigins []string
	// MaxUploadBytes bounds how much of an upload is read; anything past
	// it is rejected by the App's size check.
	MaxUploadBytes int64
}

// NewServer creates a server around a.
func NewServer(a *app.App, m *metrics.Metrics, log *logger.Logger, opts Options) *Server {
	if log == nil {
		log = logger.Nop()
	}

	if m == nil {
		m = metrics.New()
	}

	return &Server{
		app:       a,
		metrics:   m,
		logger:    log,
		origins:   opts.AllowedOrigins,
		maxUpload: opts.MaxUploadBytes,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())

	corsCfg := cors.DefaultConfig()
	if len(s.origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.origins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", headerRequestID}
	corsCfg.ExposeHeaders = []string{headerRequestID}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api/v1/jobs")
	{
		api.POST("/file", s.submitFile)
		api.POST("/text", s.submitText)
		api.POST("/url", s.submitURL)

		api.GET("/current", s.current)
		api.PATCH("/current", s.edit)
		api.DELETE("/current", s.reset)
		api.POST("/current/publish", s.publish)
	}

	return r
}

// requestID reuses the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"request_id", c.GetString(ctxRequestID),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
