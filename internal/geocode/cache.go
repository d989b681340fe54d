// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/wneessen/otherside/internal/geo"
	"github.com/wneessen/otherside/internal/logger"
	"github.com/wneessen/otherside/internal/metrics"
)

const (
	// coordPrecision is the factor used to round coordinates to 4 decimals (≈ 11 m)
	coordPrecision = 1e4

	// MinSuggestionQueryLength is the minimum query length that triggers a suggestion lookup
	MinSuggestionQueryLength = 3

	kindLocation    = "location"
	kindSuggestions = "suggestions"
	kindCountry     = "country"
)

// Stats holds the number of cached entries per lookup kind.
type Stats struct {
	Locations   int `json:"locations"`
	Suggestions int `json:"suggestions"`
	Countries   int `json:"countries"`
}

// Cache memoizes the lookups of a Geocoder. Each lookup kind has its own map. Entries are
// never evicted and only successful lookups are stored; failures degrade to empty results
// and are retried on the next call.
type Cache struct {
	coder  Geocoder
	logger *logger.Logger
	group  singleflight.Group

	mu          sync.RWMutex
	locations   map[string]geo.Coordinate
	suggestions map[string][]Suggestion
	countries   map[string]string
}

// NewCache returns an empty Cache in front of coder.
func NewCache(coder Geocoder, log *logger.Logger) *Cache {
	return &Cache{
		coder:       coder,
		logger:      log,
		locations:   make(map[string]geo.Coordinate),
		suggestions: make(map[string][]Suggestion),
		countries:   make(map[string]string),
	}
}

func (c *Cache) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

// GeocodeLocation resolves free text to a coordinate. The boolean is false if the text is empty
// or the provider lookup failed.
func (c *Cache) GeocodeLocation(ctx context.Context, text string) (geo.Coordinate, bool) {
	key := NormalizeQuery(text)
	if key == "" {
		return geo.Coordinate{}, false
	}

	c.mu.RLock()
	coords, ok := c.locations[key]
	c.mu.RUnlock()
	if ok {
		metrics.CacheHits.WithLabelValues(kindLocation).Inc()
		return coords, true
	}
	metrics.CacheMisses.WithLabelValues(kindLocation).Inc()

	val, err := c.do(ctx, kindLocation+"|"+key, func(ctx context.Context) (any, error) {
		result, err := c.coder.Search(ctx, strings.TrimSpace(text))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.locations[key] = result
		c.mu.Unlock()
		return result, nil
	})
	if err != nil {
		c.lookupFailed(kindLocation, err, slog.String("text", text))
		return geo.Coordinate{}, false
	}
	return val.(geo.Coordinate), true
}

// Suggestions returns place proposals for a partially typed query. Queries shorter than
// MinSuggestionQueryLength never reach the provider. The returned slice is never nil.
func (c *Cache) Suggestions(ctx context.Context, query string) []Suggestion {
	key := NormalizeQuery(query)
	if utf8.RuneCountInString(key) < MinSuggestionQueryLength {
		return []Suggestion{}
	}

	c.mu.RLock()
	list, ok := c.suggestions[key]
	c.mu.RUnlock()
	if ok {
		metrics.CacheHits.WithLabelValues(kindSuggestions).Inc()
		return slices.Clone(list)
	}
	metrics.CacheMisses.WithLabelValues(kindSuggestions).Inc()

	val, err := c.do(ctx, kindSuggestions+"|"+key, func(ctx context.Context) (any, error) {
		result, err := c.coder.Suggest(ctx, strings.TrimSpace(query))
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = []Suggestion{}
		}
		c.mu.Lock()
		c.suggestions[key] = result
		c.mu.Unlock()
		return result, nil
	})
	if err != nil {
		c.lookupFailed(kindSuggestions, err, slog.String("query", query))
		return []Suggestion{}
	}
	return slices.Clone(val.([]Suggestion))
}

// ReverseCountry returns the country name for the coordinate. Coordinates without a country,
// like the open ocean, resolve to an empty string which is cached like any other result.
// A failed lookup also returns an empty string but is not cached.
func (c *Cache) ReverseCountry(ctx context.Context, lat, lng float64) string {
	key := CoordinateKey(lat, lng)

	c.mu.RLock()
	country, ok := c.countries[key]
	c.mu.RUnlock()
	if ok {
		metrics.CacheHits.WithLabelValues(kindCountry).Inc()
		return country
	}
	metrics.CacheMisses.WithLabelValues(kindCountry).Inc()

	val, err := c.do(ctx, kindCountry+"|"+key, func(ctx context.Context) (any, error) {
		addr, err := c.coder.Reverse(ctx, geo.Coordinate{Lat: lat, Lng: lng})
		if err != nil {
			return nil, err
		}
		result := ""
		if addr.AddressFound {
			result = addr.Country
		}
		c.mu.Lock()
		c.countries[key] = result
		c.mu.Unlock()
		return result, nil
	})
	if err != nil {
		c.lookupFailed(kindCountry, err, slog.String("coordinates", key))
		return ""
	}
	return val.(string)
}

// Stats returns the number of cached entries per lookup kind.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Locations:   len(c.locations),
		Suggestions: len(c.suggestions),
		Countries:   len(c.countries),
	}
}

// do runs lookup once per key for all concurrent callers. The shared lookup is detached from
// the cancellation of the caller that started it, the provider timeout bounds it instead. Each
// caller only waits as long as its own context allows.
func (c *Cache) do(ctx context.Context, key string, lookup func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return lookup(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *Cache) lookupFailed(kind string, err error, attr slog.Attr) {
	metrics.ProviderFailures.WithLabelValues(c.coder.Name(), kind).Inc()
	c.logger.Warn("geocode lookup failed", slog.String("provider", c.coder.Name()),
		slog.String("kind", kind), attr, logger.Err(err))
}

// NormalizeQuery returns the cache key for free text: trimmed, inner whitespace collapsed
// and lowercased.
func NormalizeQuery(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// CoordinateKey returns the cache key for a coordinate rounded to 4 decimals.
func CoordinateKey(lat, lng float64) string {
	return fmt.Sprintf("%.4f,%.4f", roundCoord(lat), roundCoord(lng))
}

func roundCoord(val float64) float64 {
	val = math.Round(val*coordPrecision) / coordPrecision
	if val == 0 {
		// fold negative zero
		return 0
	}
	return val
}
