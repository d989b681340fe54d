// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/otherside/internal/geo"
	"github.com/wneessen/otherside/internal/geocode"
	"github.com/wneessen/otherside/internal/http"
)

const (
	APIEndpoint = "https://api.geocode.earth/v1"
	APITimeout  = time.Second * 10
	// SuggestionLimit is the maximum number of autocomplete results requested per query
	SuggestionLimit = 5
	name            = "geocode-earth"
)

var ErrMissingAPIKey = errors.New("an API key is required for the geocode.earth geocoder")

type GeocodeEarth struct {
	apikey   string
	endpoint string
	http     *http.Client
	lang     language.Tag
}

type Response struct {
	Features []Feature `json:"features"`
	Type     string    `json:"type"`
}

type Feature struct {
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
	Type       string     `json:"type"`
}

// Geometry is a GeoJSON point. Coordinates are ordered longitude, latitude.
type Geometry struct {
	Coordinates []float64 `json:"coordinates"`
	Type        string    `json:"type"`
}

type Properties struct {
	DisplayName string `json:"label"`
	Layer       string `json:"layer"`
	Country     string `json:"country"`
	CountryCode string `json:"country_a"`
}

func New(client *http.Client, lang language.Tag, apikey string) (*GeocodeEarth, error) {
	if apikey == "" {
		return nil, ErrMissingAPIKey
	}
	return &GeocodeEarth{
		apikey:   apikey,
		endpoint: APIEndpoint,
		lang:     lang,
		http:     client,
	}, nil
}

func (g *GeocodeEarth) Name() string {
	return name
}

func (g *GeocodeEarth) Reverse(ctx context.Context, coords geo.Coordinate) (geocode.Address, error) {
	query := url.Values{}
	query.Set("point.lat", fmt.Sprintf("%f", coords.Lat))
	query.Set("point.lon", fmt.Sprintf("%f", coords.Lng))
	query.Set("size", "1")

	response, err := g.get(ctx, "reverse", query)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to retrieve address details from geocode.earth API: %w", err)
	}
	if len(response.Features) < 1 {
		return geocode.Address{Latitude: coords.Lat, Longitude: coords.Lng}, nil
	}

	result := response.Features[0].Properties
	return geocode.Address{
		AddressFound: true,
		Latitude:     coords.Lat,
		Longitude:    coords.Lng,
		DisplayName:  result.DisplayName,
		Country:      result.Country,
		CountryCode:  result.CountryCode,
	}, nil
}

func (g *GeocodeEarth) Search(ctx context.Context, address string) (geo.Coordinate, error) {
	query := url.Values{}
	query.Set("text", address)
	query.Set("size", "1")

	response, err := g.get(ctx, "search", query)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to retrieve coordinates from geocode.earth API: %w", err)
	}
	if len(response.Features) < 1 {
		return geo.Coordinate{}, fmt.Errorf("no coordinates found for address %q", address)
	}
	return response.Features[0].Geometry.coordinate()
}

func (g *GeocodeEarth) Suggest(ctx context.Context, text string) ([]geocode.Suggestion, error) {
	query := url.Values{}
	query.Set("text", text)
	query.Set("size", strconv.Itoa(SuggestionLimit))

	response, err := g.get(ctx, "autocomplete", query)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve suggestions from geocode.earth API: %w", err)
	}
	suggestions := make([]geocode.Suggestion, 0, len(response.Features))
	for _, feature := range response.Features {
		coords, err := feature.Geometry.coordinate()
		if err != nil {
			continue
		}
		suggestions = append(suggestions, geocode.Suggestion{
			Text: feature.Properties.DisplayName,
			Lat:  coords.Lat,
			Lng:  coords.Lng,
		})
	}
	return suggestions, nil
}

func (g *GeocodeEarth) get(ctx context.Context, path string, query url.Values) (Response, error) {
	var response Response
	query.Set("api_key", g.apikey)
	query.Set("lang", g.lang.String())

	code, err := g.http.GetJSON(ctx, g.endpoint+"/"+path, &response, query, nil, APITimeout)
	if err != nil {
		return response, err
	}
	if code != 200 {
		return response, fmt.Errorf("received non-positive response code from geocode.earth API: %d", code)
	}
	return response, nil
}

func (g Geometry) coordinate() (geo.Coordinate, error) {
	if len(g.Coordinates) < 2 {
		return geo.Coordinate{}, errors.New("feature geometry has no coordinates")
	}
	return geo.Coordinate{Lat: g.Coordinates[1], Lng: g.Coordinates[0]}, nil
}
