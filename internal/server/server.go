// Package server exposes the client's state over a local read-only HTTP
// API for dashboards and probes.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/courseselect/internal/enrollment"
	"github.com/danmuck/courseselect/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const version = "0.1.0"

// SnapshotSource is anything that publishes enrollment snapshots.
type SnapshotSource interface {
	Snapshot() enrollment.Snapshot
}

type Config struct {
	Addr        string
	CorsOrigins []string
}

// StatusServer serves /health, /ready, /metrics and the /state views.
type StatusServer struct {
	cfg      Config
	router   *gin.Engine
	source   SnapshotSource
	appeared time.Time
}

func New(cfg Config, source SnapshotSource) *StatusServer {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(observability.Logger("status-api")))
	r.Use(observability.RequestMetricsMiddleware())
	if len(cfg.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CorsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &StatusServer{
		cfg:      cfg,
		router:   r,
		source:   source,
		appeared: time.Now(),
	}
	s.registerRoutes()
	return s
}

func (s *StatusServer) Handler() http.Handler {
	return s.router
}

// Serve listens on cfg.Addr until ctx is done.
func (s *StatusServer) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
