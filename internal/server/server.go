// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package server exposes the antipode lookups as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wneessen/otherside/internal/config"
	"github.com/wneessen/otherside/internal/directions"
	"github.com/wneessen/otherside/internal/geo"
	"github.com/wneessen/otherside/internal/geocode"
	"github.com/wneessen/otherside/internal/logger"
	"github.com/wneessen/otherside/internal/poi"
	"github.com/wneessen/otherside/internal/service"
)

const readHeaderTimeout = time.Second * 10

// Backend is the set of lookups the API serves
type Backend interface {
	Points() []poi.PointOfInterest
	CacheStats() geocode.Stats
	Antipode(lat, lng float64) (geo.Pair, error)
	Locate(ctx context.Context, lat, lng float64) (service.Location, error)
	Nearest(lat, lng float64) (poi.Match, error)
	Geocode(ctx context.Context, text string) (geo.Coordinate, bool)
	ReverseCountry(ctx context.Context, lat, lng float64) (string, error)
	Suggestions(ctx context.Context, query string) []geocode.Suggestion
	Directions(ctx context.Context, from, to geo.Coordinate) (directions.Route, error)
}

type Server struct {
	config  *config.Config
	logger  *logger.Logger
	backend Backend
	engine  *gin.Engine
}

func New(conf *config.Config, log *logger.Logger, backend Backend) *Server {
	server := &Server{
		config:  conf,
		logger:  log,
		backend: backend,
		engine:  gin.New(),
	}
	server.setupRoutes()
	return server
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API on the configured address until ctx is cancelled, then shuts the
// server down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) setupRoutes() {
	s.engine.Use(gin.Recovery(), s.requestLogger(), s.cors())

	s.engine.GET("/ping", s.ping)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	{
		api.GET("/antipode", s.antipode)
		api.GET("/locate", s.locate)
		api.GET("/nearest", s.nearest)
		api.POST("/geocode", s.geocode)
		api.GET("/reverse-geocode", s.reverseGeocode)
		api.GET("/suggestions", s.suggestions)
		api.GET("/directions", s.directions)
	}
}
