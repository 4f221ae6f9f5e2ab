package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/syncupstack/syncup-engine/internal/config"
)

// Server wraps the echo instance and lifecycle helpers.
type Server struct {
	cfg  config.ServerConfig
	echo *echo.Echo
}

// NewServer builds the HTTP server with routes, middleware, and the
// Prometheus scrape endpoint mounted.
func NewServer(cfg config.ServerConfig, handler *Handler, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status))
			return nil
		},
	}))

	handler.Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{cfg: cfg, echo: e}
}

// Start serves requests until Shutdown is invoked.
func (s *Server) Start() error {
	err := s.echo.Start(s.cfg.Address)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// GracefulTimeout returns the configured drain window.
func (s *Server) GracefulTimeout() time.Duration {
	return s.cfg.GracefulTimeout
}
