// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package directions plans routes between two coordinates using a routing provider.
package directions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wneessen/otherside/internal/geo"
	"github.com/wneessen/otherside/internal/logger"
)

// ErrNoRoute is returned when the provider knows no route between the points for a profile
var ErrNoRoute = errors.New("no route found between the given points")

// DefaultProfiles are tried in order when no profiles are configured
var DefaultProfiles = []string{"driving", "foot"}

type Provider interface {
	Name() string
	Route(ctx context.Context, profile string, from, to geo.Coordinate) (Route, error)
}

type Route struct {
	Profile         string  `json:"profile"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	Distance        string  `json:"distance"`
	Duration        string  `json:"duration"`
	StartAddress    string  `json:"start_address"`
	EndAddress      string  `json:"end_address"`
	Steps           []Step  `json:"steps"`
}

type Step struct {
	Distance    string `json:"distance"`
	Duration    string `json:"duration"`
	Instruction string `json:"instruction"`
	TravelMode  string `json:"travel_mode"`
}

// Planner asks the provider for a route, falling back to the next profile when a profile
// has no route
type Planner struct {
	provider Provider
	profiles []string
	logger   *logger.Logger
}

func NewPlanner(provider Provider, log *logger.Logger, profiles ...string) *Planner {
	if len(profiles) == 0 {
		profiles = DefaultProfiles
	}
	return &Planner{
		provider: provider,
		profiles: profiles,
		logger:   log,
	}
}

// Plan returns the route for the first profile the provider can route. Errors other than
// ErrNoRoute end the search.
func (p *Planner) Plan(ctx context.Context, from, to geo.Coordinate) (Route, error) {
	for _, profile := range p.profiles {
		route, err := p.provider.Route(ctx, profile, from, to)
		switch {
		case err == nil:
			return route, nil
		case errors.Is(err, ErrNoRoute):
			p.logger.Debug("no route for profile, trying next one", slog.String("profile", profile),
				slog.String("provider", p.provider.Name()))
			continue
		default:
			return Route{}, fmt.Errorf("failed to plan route with profile %q: %w", profile, err)
		}
	}
	return Route{}, ErrNoRoute
}
