// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"

	"github.com/wneessen/otherside/internal/geo"
)

// Address is the result of a reverse lookup. AddressFound is false when the provider answered
// but had nothing to report for the coordinate, e.g. in the open ocean.
type Address struct {
	AddressFound bool
	Latitude     float64
	Longitude    float64
	DisplayName  string
	Country      string
	CountryCode  string
}

// Suggestion is a place proposal for a partially typed search query.
type Suggestion struct {
	Text string  `json:"text"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Geocoder is implemented by the external geocoding providers.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, text string) (geo.Coordinate, error)
	Reverse(ctx context.Context, coords geo.Coordinate) (Address, error)
	Suggest(ctx context.Context, query string) ([]Suggestion, error)
}
