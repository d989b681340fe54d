// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package osrm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wneessen/otherside/internal/directions"
	"github.com/wneessen/otherside/internal/geo"
	"github.com/wneessen/otherside/internal/http"
)

const (
	APIEndpoint = "https://router.project-osrm.org"
	APITimeout  = time.Second * 15
	name        = "osrm"

	codeOk      = "Ok"
	codeNoRoute = "NoRoute"
)

type OSRM struct {
	endpoint string
	http     *http.Client
}

type Response struct {
	Code      string     `json:"code"`
	Message   string     `json:"message"`
	Routes    []Route    `json:"routes"`
	Waypoints []Waypoint `json:"waypoints"`
}

type Route struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Legs     []Leg   `json:"legs"`
}

type Leg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Summary  string  `json:"summary"`
	Steps    []Step  `json:"steps"`
}

type Step struct {
	Distance float64  `json:"distance"`
	Duration float64  `json:"duration"`
	Name     string   `json:"name"`
	Mode     string   `json:"mode"`
	Maneuver Maneuver `json:"maneuver"`
}

type Maneuver struct {
	Type     string `json:"type"`
	Modifier string `json:"modifier"`
}

// Waypoint is a routing endpoint snapped to the street network. Location is ordered
// longitude, latitude.
type Waypoint struct {
	Name     string    `json:"name"`
	Location []float64 `json:"location"`
}

// New returns an OSRM provider. An empty endpoint selects the public demo server.
func New(client *http.Client, endpoint string) *OSRM {
	if endpoint == "" {
		endpoint = APIEndpoint
	}
	return &OSRM{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     client,
	}
}

func (o *OSRM) Name() string {
	return name
}

func (o *OSRM) Route(ctx context.Context, profile string, from, to geo.Coordinate) (directions.Route, error) {
	var response Response

	endpoint := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f", o.endpoint, url.PathEscape(profile),
		from.Lng, from.Lat, to.Lng, to.Lat)
	query := url.Values{}
	query.Set("steps", "true")
	query.Set("overview", "false")

	code, err := o.http.GetJSON(ctx, endpoint, &response, query, nil, APITimeout)
	if err != nil {
		return directions.Route{}, fmt.Errorf("failed to retrieve route from OSRM API: %w", err)
	}
	switch {
	case response.Code == codeNoRoute:
		return directions.Route{}, directions.ErrNoRoute
	case response.Code != codeOk:
		return directions.Route{}, fmt.Errorf("OSRM API responded with code %q (HTTP %d): %s", response.Code,
			code, response.Message)
	case len(response.Routes) < 1:
		return directions.Route{}, directions.ErrNoRoute
	}

	return buildRoute(profile, response), nil
}

func buildRoute(profile string, response Response) directions.Route {
	result := response.Routes[0]
	route := directions.Route{
		Profile:         profile,
		DistanceMeters:  result.Distance,
		DurationSeconds: result.Duration,
		Distance:        directions.FormatDistance(result.Distance),
		Duration:        directions.FormatDuration(result.Duration),
		Steps:           make([]directions.Step, 0),
	}
	if len(response.Waypoints) > 0 {
		route.StartAddress = response.Waypoints[0].Name
		route.EndAddress = response.Waypoints[len(response.Waypoints)-1].Name
	}

	for _, leg := range result.Legs {
		for _, step := range leg.Steps {
			route.Steps = append(route.Steps, directions.Step{
				Distance:    directions.FormatDistance(step.Distance),
				Duration:    directions.FormatDuration(step.Duration),
				Instruction: instruction(step),
				TravelMode:  step.Mode,
			})
		}
	}
	return route
}

// instruction turns an OSRM maneuver into a readable sentence
func instruction(step Step) string {
	var text string
	switch step.Maneuver.Type {
	case "depart":
		text = "Head " + direction(step.Maneuver.Modifier, "out")
	case "arrive":
		return "Arrive at your destination"
	case "roundabout", "rotary":
		text = "Enter the roundabout"
	case "exit roundabout", "exit rotary":
		text = "Exit the roundabout"
	case "merge":
		text = "Merge " + direction(step.Maneuver.Modifier, "ahead")
	case "fork":
		text = "Keep " + direction(step.Maneuver.Modifier, "straight") + " at the fork"
	case "on ramp":
		text = "Take the ramp " + direction(step.Maneuver.Modifier, "ahead")
	case "off ramp":
		text = "Take the exit " + direction(step.Maneuver.Modifier, "ahead")
	case "end of road":
		text = "Turn " + direction(step.Maneuver.Modifier, "ahead") + " at the end of the road"
	case "continue", "new name":
		text = "Continue " + direction(step.Maneuver.Modifier, "straight")
	default:
		switch step.Maneuver.Modifier {
		case "", "straight":
			text = "Go straight"
		case "uturn":
			text = "Make a U-turn"
		default:
			text = "Turn " + step.Maneuver.Modifier
		}
	}
	if step.Name != "" {
		text += " onto " + step.Name
	}
	return text
}

func direction(modifier, fallback string) string {
	if modifier == "" {
		return fallback
	}
	return modifier
}
