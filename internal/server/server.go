// Package server exposes the service over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-ai-service/internal/common/config"
	"stock-ai-service/internal/common/logger"
)

// Server wraps the gin engine with a configured http.Server.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	log    logger.Logger
}

// New builds the engine, registers routes, and configures timeouts.
func New(cfg *config.Config, handlers *Handlers, log logger.Logger) *Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))

	RegisterRoutes(engine, handlers)

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      engine,
			ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
			WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
		},
		log: log,
	}
}

// Engine exposes the router, used by tests to drive requests directly.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start blocks serving HTTP until Shutdown or failure.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", map[string]interface{}{
		"addr": s.http.Addr,
	})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug("request handled", map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})
	}
}
