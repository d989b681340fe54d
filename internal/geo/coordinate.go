// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geo implements the coordinate math used to find the other side of the world.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances
const EarthRadiusKm = 6371.0

// Coordinate represents a geographic coordinate in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Pair is a coordinate together with its antipode.
type Pair struct {
	Original Coordinate `json:"original"`
	Antipode Coordinate `json:"antipode"`
}

// NewPair returns the Pair for the given coordinate.
func NewPair(c Coordinate) Pair {
	return Pair{Original: c, Antipode: c.Antipode()}
}

// Antipode returns the point diametrically opposite of lat/lng on the globe. The latitude is
// negated and the longitude is shifted by 180 degrees and normalized into (-180, 180].
func Antipode(lat, lng float64) Coordinate {
	return Coordinate{Lat: -lat, Lng: NormalizeLongitude(lng + 180)}
}

// NormalizeLongitude maps a longitude produced by a single 180 degree shift back into (-180, 180].
func NormalizeLongitude(lng float64) float64 {
	if lng > 180 {
		lng -= 360
	}
	return lng
}

// HaversineDistanceKm returns the great-circle distance in kilometers between two points using
// the Haversine formula.
func HaversineDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h past 1 for antipodal points
	h = math.Min(h, 1)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Antipode returns the antipode of the coordinate.
func (c Coordinate) Antipode() Coordinate {
	return Antipode(c.Lat, c.Lng)
}

// DistanceKm returns the great-circle distance to other in kilometers.
func (c Coordinate) DistanceKm(other Coordinate) float64 {
	return HaversineDistanceKm(c.Lat, c.Lng, other.Lat, other.Lng)
}

// Valid checks if the coordinate is valid according to the EPSG logic
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// String returns the coordinate as "lat,lng" with six decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
