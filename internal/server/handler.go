// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wneessen/otherside/internal/directions"
	"github.com/wneessen/otherside/internal/geo"
	"github.com/wneessen/otherside/internal/logger"
	"github.com/wneessen/otherside/internal/service"
)

const directionsFailedMessage = "Could not calculate directions. The antipode might be in an inaccessible location."

type geocodeRequest struct {
	LocationText string `json:"locationText" binding:"required"`
}

type directionsResponse struct {
	Status string `json:"status"`
	directions.Route
}

type directionsError struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"points": len(s.backend.Points()),
		"cache":  s.backend.CacheStats(),
	})
}

func (s *Server) antipode(c *gin.Context) {
	coords, ok := coordinateParams(c, "lat", "lng")
	if !ok {
		return
	}
	pair, err := s.backend.Antipode(coords.Lat, coords.Lng)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (s *Server) locate(c *gin.Context) {
	coords, ok := coordinateParams(c, "lat", "lng")
	if !ok {
		return
	}
	location, err := s.backend.Locate(c.Request.Context(), coords.Lat, coords.Lng)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

func (s *Server) nearest(c *gin.Context) {
	coords, ok := coordinateParams(c, "lat", "lng")
	if !ok {
		return
	}
	match, err := s.backend.Nearest(coords.Lat, coords.Lng)
	switch {
	case errors.Is(err, service.ErrNoPoints):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		badRequest(c, err)
	default:
		c.JSON(http.StatusOK, match)
	}
}

func (s *Server) geocode(c *gin.Context) {
	var req geocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}
	coords, ok := s.backend.Geocode(c.Request.Context(), req.LocationText)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
		return
	}
	c.JSON(http.StatusOK, coords)
}

func (s *Server) reverseGeocode(c *gin.Context) {
	coords, ok := coordinateParams(c, "lat", "lng")
	if !ok {
		return
	}
	country, err := s.backend.ReverseCountry(c.Request.Context(), coords.Lat, coords.Lng)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"country": country})
}

func (s *Server) suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, s.backend.Suggestions(c.Request.Context(), c.Query("query")))
}

func (s *Server) directions(c *gin.Context) {
	from, ok := coordinateParams(c, "from_lat", "from_lng")
	if !ok {
		return
	}
	to, ok := coordinateParams(c, "to_lat", "to_lng")
	if !ok {
		return
	}

	route, err := s.backend.Directions(c.Request.Context(), from, to)
	switch {
	case errors.Is(err, service.ErrInvalidCoordinate):
		badRequest(c, err)
	case errors.Is(err, directions.ErrNoRoute):
		c.JSON(http.StatusNotFound, directionsError{Status: "ERROR", ErrorMessage: directionsFailedMessage})
	case err != nil:
		s.logger.Warn("failed to plan directions", logger.Err(err))
		c.JSON(http.StatusBadGateway, directionsError{Status: "ERROR", ErrorMessage: directionsFailedMessage})
	default:
		c.JSON(http.StatusOK, directionsResponse{Status: "OK", Route: route})
	}
}

// coordinateParams parses a coordinate from the query parameters. On failure it writes a 400
// response and returns false.
func coordinateParams(c *gin.Context, latKey, lngKey string) (geo.Coordinate, bool) {
	lat, err := floatParam(c, latKey)
	if err != nil {
		badRequest(c, err)
		return geo.Coordinate{}, false
	}
	lng, err := floatParam(c, lngKey)
	if err != nil {
		badRequest(c, err)
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: lat, Lng: lng}, true
}

func floatParam(c *gin.Context, key string) (float64, error) {
	value, ok := c.GetQuery(key)
	if !ok || value == "" {
		return 0, fmt.Errorf("missing query parameter %q", key)
	}
	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q is not a number", key)
	}
	return number, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
