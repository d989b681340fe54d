// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

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
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	APITimeout  = time.Second * 10
	// SuggestionLimit is the maximum number of suggestions requested per query
	SuggestionLimit = 5
	name            = "opencage"
)

var ErrMissingAPIKey = errors.New("an API key is required for the OpenCage geocoder")

type OpenCage struct {
	apikey string
	http   *http.Client
	lang   language.Tag
}

type Response struct {
	Results      []Result `json:"results"`
	Status       Status   `json:"status"`
	TotalResults int      `json:"total_results"`
}

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Result struct {
	Components  Components `json:"components"`
	DisplayName string     `json:"formatted"`
	Geometry    Geometry   `json:"geometry"`
}

type Components struct {
	Type        string `json:"_type"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	BodyOfWater string `json:"body_of_water"`
}

type Geometry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

func New(client *http.Client, lang language.Tag, apikey string) (*OpenCage, error) {
	if apikey == "" {
		return nil, ErrMissingAPIKey
	}
	return &OpenCage{
		apikey: apikey,
		lang:   lang,
		http:   client,
	}, nil
}

func (o *OpenCage) Name() string {
	return name
}

func (o *OpenCage) Reverse(ctx context.Context, coords geo.Coordinate) (geocode.Address, error) {
	response, err := o.query(ctx, fmt.Sprintf("%f,%f", coords.Lat, coords.Lng), 1)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to retrieve address details from OpenCage API: %w", err)
	}
	if response.TotalResults < 1 || len(response.Results) < 1 {
		return geocode.Address{Latitude: coords.Lat, Longitude: coords.Lng}, nil
	}

	result := response.Results[0]
	return geocode.Address{
		AddressFound: true,
		Latitude:     result.Geometry.Lat,
		Longitude:    result.Geometry.Lon,
		DisplayName:  result.DisplayName,
		Country:      result.Components.Country,
		CountryCode:  result.Components.CountryCode,
	}, nil
}

func (o *OpenCage) Search(ctx context.Context, address string) (geo.Coordinate, error) {
	response, err := o.query(ctx, address, 1)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to retrieve coordinates from OpenCage API: %w", err)
	}
	if len(response.Results) < 1 {
		return geo.Coordinate{}, fmt.Errorf("no coordinates found for address %q", address)
	}
	return geo.Coordinate{
		Lat: response.Results[0].Geometry.Lat,
		Lng: response.Results[0].Geometry.Lon,
	}, nil
}

func (o *OpenCage) Suggest(ctx context.Context, query string) ([]geocode.Suggestion, error) {
	response, err := o.query(ctx, query, SuggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve suggestions from OpenCage API: %w", err)
	}
	suggestions := make([]geocode.Suggestion, 0, len(response.Results))
	for _, result := range response.Results {
		suggestions = append(suggestions, geocode.Suggestion{
			Text: result.DisplayName,
			Lat:  result.Geometry.Lat,
			Lng:  result.Geometry.Lon,
		})
	}
	return suggestions, nil
}

func (o *OpenCage) query(ctx context.Context, q string, limit int) (Response, error) {
	var response Response

	query := url.Values{}
	query.Set("key", o.apikey)
	query.Set("q", q)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("no_annotations", "1")
	query.Set("no_record", "1")
	query.Set("language", o.lang.String())

	code, err := o.http.GetJSON(ctx, APIEndpoint, &response, query, nil, APITimeout)
	if err != nil {
		return response, err
	}
	if code != 200 {
		return response, fmt.Errorf("received non-positive response code %d: %s", code, response.Status.Message)
	}
	return response, nil
}
