// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package poi

import (
	"context"
	"log/slog"

	"github.com/wneessen/otherside/internal/logger"
	"github.com/wneessen/otherside/internal/metrics"
)

// Strategy is one way of retrieving the points-of-interest dataset
type Strategy interface {
	Name() string
	Load(ctx context.Context) ([]PointOfInterest, error)
}

// Loader tries its strategies in order and returns the dataset of the first one that succeeds
type Loader struct {
	strategies []Strategy
	logger     *logger.Logger
}

func NewLoader(log *logger.Logger, strategies ...Strategy) *Loader {
	return &Loader{
		strategies: strategies,
		logger:     log,
	}
}

// LoadPoints returns the dataset of the first successful strategy. If every strategy fails, an
// empty dataset is returned. Records with an invalid coordinate are dropped.
func (l *Loader) LoadPoints(ctx context.Context) []PointOfInterest {
	for _, strategy := range l.strategies {
		points, err := strategy.Load(ctx)
		if err != nil {
			l.logger.Error("failed to load points of interest", slog.String("strategy", strategy.Name()),
				logger.Err(err))
			metrics.DatasetLoads.WithLabelValues(strategy.Name(), "failure").Inc()
			continue
		}
		metrics.DatasetLoads.WithLabelValues(strategy.Name(), "success").Inc()

		points = l.validPoints(strategy.Name(), points)
		l.logger.Info("points of interest loaded", slog.String("strategy", strategy.Name()),
			slog.Int("points", len(points)))
		return points
	}

	l.logger.Warn("no strategy was able to load points of interest, continuing with an empty dataset")
	return []PointOfInterest{}
}

func (l *Loader) validPoints(strategy string, points []PointOfInterest) []PointOfInterest {
	valid := make([]PointOfInterest, 0, len(points))
	for i, point := range points {
		if !point.Coordinate().Valid() {
			l.logger.Warn("skipping point of interest with invalid coordinate", slog.String("strategy", strategy),
				slog.Int("index", i), slog.String("name", point.Name), slog.Float64("lat", point.Lat),
				slog.Float64("lng", point.Lng))
			continue
		}
		valid = append(valid, point)
	}
	return valid
}
