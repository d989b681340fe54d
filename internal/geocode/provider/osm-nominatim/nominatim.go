// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/wneessen/otherside/internal/geo"
	"github.com/wneessen/otherside/internal/geocode"
	"github.com/wneessen/otherside/internal/http"
)

const (
	APISearchEndpoint  = "https://nominatim.openstreetmap.org/search"
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"
	APITimeout         = time.Second * 10
	// SuggestionLimit is the maximum number of suggestions requested per query
	SuggestionLimit = 5
	// reverseZoom limits reverse lookups to country level details
	reverseZoom = "3"
	name        = "osm-nominatim"
)

type Nominatim struct {
	http    *http.Client
	lang    language.Tag
	limiter *rate.Limiter
}

type ReverseResult struct {
	APILat      string  `json:"lat"`
	APILon      string  `json:"lon"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Address     Address `json:"address"`
	Error       string  `json:"error"`
}

type SearchResult struct {
	APILat      string `json:"lat"`
	APILon      string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type Address struct {
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// New returns a Nominatim provider. The usage policy of the public instance allows one request
// per second, requestsPerSec limits the outgoing requests accordingly. Zero or less disables the
// limit.
func New(client *http.Client, lang language.Tag, requestsPerSec float64) *Nominatim {
	limit := rate.Inf
	if requestsPerSec > 0 {
		limit = rate.Limit(requestsPerSec)
	}
	return &Nominatim{
		lang:    lang,
		http:    client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (n *Nominatim) Name() string {
	return name
}

func (n *Nominatim) Reverse(ctx context.Context, coords geo.Coordinate) (geocode.Address, error) {
	var result ReverseResult
	var err error

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", fmt.Sprintf("%f", coords.Lat))
	query.Set("lon", fmt.Sprintf("%f", coords.Lng))
	query.Set("zoom", reverseZoom)
	query.Set("addressdetails", "1")
	query.Set("accept-language", n.lang.String())

	if err = n.get(ctx, APIReverseEndpoint, &result, query); err != nil {
		return geocode.Address{}, fmt.Errorf("failed to fetch reverse address details from Nominatim API: %w", err)
	}

	// Nominatim answers points without any address, e.g. in the ocean, with an error message
	if result.Error != "" {
		return geocode.Address{Latitude: coords.Lat, Longitude: coords.Lng}, nil
	}

	address := geocode.Address{
		AddressFound: true,
		DisplayName:  result.DisplayName,
		Country:      result.Address.Country,
		CountryCode:  result.Address.CountryCode,
	}
	address.Latitude, err = strconv.ParseFloat(result.APILat, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	address.Longitude, err = strconv.ParseFloat(result.APILon, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}

	return address, nil
}

func (n *Nominatim) Search(ctx context.Context, address string) (geo.Coordinate, error) {
	results, err := n.search(ctx, address, 1)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if len(results) < 1 {
		return geo.Coordinate{}, fmt.Errorf("no coordinates found for address %q", address)
	}
	return parseCoordinate(results[0])
}

func (n *Nominatim) Suggest(ctx context.Context, query string) ([]geocode.Suggestion, error) {
	results, err := n.search(ctx, query, SuggestionLimit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]geocode.Suggestion, 0, len(results))
	for _, result := range results {
		coords, err := parseCoordinate(result)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, geocode.Suggestion{
			Text: result.DisplayName,
			Lat:  coords.Lat,
			Lng:  coords.Lng,
		})
	}
	return suggestions, nil
}

func (n *Nominatim) search(ctx context.Context, text string, limit int) ([]SearchResult, error) {
	var results []SearchResult

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("q", text)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("accept-language", n.lang.String())

	if err := n.get(ctx, APISearchEndpoint, &results, query); err != nil {
		return nil, fmt.Errorf("failed to fetch address details from Nominatim API: %w", err)
	}
	return results, nil
}

func (n *Nominatim) get(ctx context.Context, endpoint string, target any, query url.Values) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait aborted: %w", err)
	}
	code, err := n.http.GetJSON(ctx, endpoint, target, query, nil, APITimeout)
	if err != nil {
		return err
	}
	if code != 200 {
		return errors.New("received non-positive response code from Nominatim API: " + strconv.Itoa(code))
	}
	return nil
}

func parseCoordinate(result SearchResult) (geo.Coordinate, error) {
	var coords geo.Coordinate
	var err error
	coords.Lat, err = strconv.ParseFloat(result.APILat, 64)
	if err != nil {
		return coords, fmt.Errorf("failed to parse latitude from Nominatim API response: %w", err)
	}
	coords.Lng, err = strconv.ParseFloat(result.APILon, 64)
	if err != nil {
		return coords, fmt.Errorf("failed to parse longitude from Nominatim API response: %w", err)
	}
	return coords, nil
}
