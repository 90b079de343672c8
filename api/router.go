// Package api serves scrapes over HTTP.
package api

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cnosuke/pagemeta/config"
	ierrors "github.com/cnosuke/pagemeta/internal/errors"
	"github.com/cnosuke/pagemeta/scraper"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// NewRouter creates a configured Gin engine.
//
//	Global:  Recovery → RequestID → AccessLog
func NewRouter(s PageScraper, defaults scraper.Options, m *Metrics, mode string) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog())

	r.GET("/healthz", Health())
	r.GET("/metrics", m.Handler())

	v1 := r.Group("/v1")
	v1.GET("/scrape", Scrape(s, defaults, m))

	return r
}

// Run serves the API on cfg.HTTP.Addr until SIGINT or SIGTERM.
func Run(cfg *config.Config) error {
	s, err := scraper.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           NewRouter(s, scraper.DefaultOptions(cfg), NewMetrics(), cfg.HTTP.Mode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("starting HTTP server", "addr", cfg.HTTP.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return ierrors.Wrap(err, "HTTP server error")
	case <-ctx.Done():
	}

	zap.S().Infow("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return ierrors.Wrap(err, "HTTP server forced shutdown")
	}
	zap.S().Infow("HTTP server drained gracefully")
	return nil
}
