// Package server provides the generic gin-based API server used by the
// braind daemon: health check, optional pprof, and graceful close.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// GenericAPIServer wraps a gin engine and an http.Server.
type GenericAPIServer struct {
	*gin.Engine

	address         string
	healthz         bool
	enableProfiling bool
	middlewares     []string

	srv *http.Server
}

func (s *GenericAPIServer) setup() {
	if s.healthz {
		s.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
	if s.enableProfiling {
		pprof.Register(s.Engine)
	}
}

// Run starts the HTTP server and blocks until it stops.
func (s *GenericAPIServer) Run() error {
	s.srv = &http.Server{
		Addr:    s.address,
		Handler: s.Engine,
	}

	logger.Info("[Server] start to listening on %s", s.address)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts the server down with a bounded drain window.
func (s *GenericAPIServer) Close() {
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		logger.Warn("[Server] shutdown failed: %v", err)
	}
}
