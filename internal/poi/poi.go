// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package poi holds the points-of-interest dataset, the strategies to load it and the
// nearest-point search over it.
package poi

import (
	"github.com/wneessen/otherside/internal/geo"
)

// PointOfInterest is a named location of the dataset
type PointOfInterest struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"latitude"`
	Lng     float64 `json:"longitude"`
	Address string  `json:"address,omitempty"`
}

// Match is a copy of a PointOfInterest annotated with its distance to the searched coordinate
type Match struct {
	PointOfInterest
	DistanceKm float64 `json:"distance_km"`
}

// Coordinate returns the position of the point
func (p PointOfInterest) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: p.Lat, Lng: p.Lng}
}

// FindNearest scans points linearly and returns the one closest to lat/lng by great-circle
// distance. On equal distances the earlier point wins. The boolean is false when points is empty.
func FindNearest(lat, lng float64, points []PointOfInterest) (Match, bool) {
	if len(points) == 0 {
		return Match{}, false
	}

	best := -1
	minDistance := 0.0
	for i, point := range points {
		distance := geo.HaversineDistanceKm(lat, lng, point.Lat, point.Lng)
		if best == -1 || distance < minDistance {
			best = i
			minDistance = distance
		}
	}

	return Match{PointOfInterest: points[best], DistanceKm: minDistance}, true
}
