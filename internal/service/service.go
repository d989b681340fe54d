// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/text/language"

	"github.com/wneessen/otherside/internal/config"
	"github.com/wneessen/otherside/internal/directions"
	"github.com/wneessen/otherside/internal/directions/provider/osrm"
	"github.com/wneessen/otherside/internal/geo"
	"github.com/wneessen/otherside/internal/geocode"
	"github.com/wneessen/otherside/internal/http"
	"github.com/wneessen/otherside/internal/i18n"
	"github.com/wneessen/otherside/internal/logger"
	"github.com/wneessen/otherside/internal/metrics"
	"github.com/wneessen/otherside/internal/poi"
)

var (
	// ErrInvalidCoordinate is returned when a latitude or longitude is out of range
	ErrInvalidCoordinate = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	// ErrNoPoints is returned when the dataset holds no points of interest
	ErrNoPoints = errors.New("no points of interest loaded")
)

// Location is the outcome of looking up a coordinate: its antipode, the countries on both
// sides and the point of interest closest to the antipode.
type Location struct {
	geo.Pair
	OriginalCountry string     `json:"original_country"`
	AntipodeCountry string     `json:"antipode_country"`
	Nearest         *poi.Match `json:"nearest,omitempty"`
}

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	lang      language.Tag
	geocoder  *geocode.Cache
	loader    *poi.Loader
	planner   *directions.Planner
	scheduler gocron.Scheduler

	pointsLock sync.RWMutex
	points     []poi.PointOfInterest
}

func New(conf *config.Config, log *logger.Logger) (*Service, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	lang := i18n.Language(conf.Locale)
	client := http.New(log)

	coder, err := selectGeocodeProvider(conf, client, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode provider: %w", err)
	}
	strategies, err := selectDatasetStrategies(conf, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset loader: %w", err)
	}
	planner := directions.NewPlanner(osrm.New(client, conf.Directions.Endpoint), log, conf.Directions.Profiles...)

	service := &Service{
		config:    conf,
		logger:    log,
		lang:      lang,
		geocoder:  geocode.NewCache(coder, log),
		loader:    poi.NewLoader(log, strategies...),
		planner:   planner,
		scheduler: scheduler,
		points:    []poi.PointOfInterest{},
	}
	return service, nil
}

// Run loads the dataset, schedules its periodic reload and blocks until ctx is cancelled
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("starting otherside service", slog.String("geocoder", s.geocoder.Name()),
		slog.String("language", s.lang.String()))
	s.Reload(ctx)

	if err := s.createScheduledJob(ctx, s.config.Dataset.ReloadInterval, s.Reload,
		"dataset_reload_job"); err != nil {
		_ = s.scheduler.Shutdown()
		return err
	}
	s.scheduler.Start()

	<-ctx.Done()
	return s.scheduler.Shutdown()
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string,
) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// Reload replaces the points of interest with a freshly loaded dataset
func (s *Service) Reload(ctx context.Context) {
	points := s.loader.LoadPoints(ctx)

	s.pointsLock.Lock()
	s.points = points
	s.pointsLock.Unlock()
	metrics.DatasetPoints.Set(float64(len(points)))
}

// Points returns the currently loaded points of interest. The slice must not be modified.
func (s *Service) Points() []poi.PointOfInterest {
	s.pointsLock.RLock()
	defer s.pointsLock.RUnlock()
	return s.points
}

// Antipode returns the pair of the coordinate and its antipode
func (s *Service) Antipode(lat, lng float64) (geo.Pair, error) {
	coords := geo.Coordinate{Lat: lat, Lng: lng}
	if !coords.Valid() {
		return geo.Pair{}, ErrInvalidCoordinate
	}
	return geo.NewPair(coords), nil
}

// Locate resolves the antipode of a coordinate, the countries on both sides and the point of
// interest nearest to the antipode
func (s *Service) Locate(ctx context.Context, lat, lng float64) (Location, error) {
	pair, err := s.Antipode(lat, lng)
	if err != nil {
		return Location{}, err
	}

	location := Location{
		Pair:            pair,
		OriginalCountry: s.geocoder.ReverseCountry(ctx, pair.Original.Lat, pair.Original.Lng),
		AntipodeCountry: s.geocoder.ReverseCountry(ctx, pair.Antipode.Lat, pair.Antipode.Lng),
	}
	if match, ok := poi.FindNearest(pair.Antipode.Lat, pair.Antipode.Lng, s.Points()); ok {
		location.Nearest = &match
	}
	return location, nil
}

// Nearest returns the point of interest closest to the coordinate
func (s *Service) Nearest(lat, lng float64) (poi.Match, error) {
	if !(geo.Coordinate{Lat: lat, Lng: lng}).Valid() {
		return poi.Match{}, ErrInvalidCoordinate
	}
	match, ok := poi.FindNearest(lat, lng, s.Points())
	if !ok {
		return poi.Match{}, ErrNoPoints
	}
	return match, nil
}

// Geocode returns the coordinate for a free-text location
func (s *Service) Geocode(ctx context.Context, text string) (geo.Coordinate, bool) {
	return s.geocoder.GeocodeLocation(ctx, text)
}

// Suggestions returns location suggestions for a partial query
func (s *Service) Suggestions(ctx context.Context, query string) []geocode.Suggestion {
	return s.geocoder.Suggestions(ctx, query)
}

// ReverseCountry returns the country at the coordinate or an empty string if there is none
func (s *Service) ReverseCountry(ctx context.Context, lat, lng float64) (string, error) {
	if !(geo.Coordinate{Lat: lat, Lng: lng}).Valid() {
		return "", ErrInvalidCoordinate
	}
	return s.geocoder.ReverseCountry(ctx, lat, lng), nil
}

// Directions plans a route between two coordinates
func (s *Service) Directions(ctx context.Context, from, to geo.Coordinate) (directions.Route, error) {
	if !from.Valid() || !to.Valid() {
		return directions.Route{}, ErrInvalidCoordinate
	}
	return s.planner.Plan(ctx, from, to)
}

// CacheStats returns the number of cached geocoding results per lookup kind
func (s *Service) CacheStats() geocode.Stats {
	return s.geocoder.Stats()
}
