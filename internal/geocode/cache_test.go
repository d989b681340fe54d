// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/google/go-cmp/cmp"

	"github.com/wneessen/otherside/internal/geo"
	"github.com/wneessen/otherside/internal/logger"
)

var (
	testCoords      = geo.Coordinate{Lat: 48.8566, Lng: 2.3522}
	testOceanCoords = geo.Coordinate{Lat: -30.5, Lng: -140.25}
	testSuggestions = []Suggestion{
		{Text: "Paris, Île-de-France, France", Lat: 48.8566, Lng: 2.3522},
		{Text: "Paris, Texas, United States", Lat: 33.6609, Lng: -95.5555},
	}
)

type mockGeocoder struct {
	searchCalls  atomic.Int32
	reverseCalls atomic.Int32
	suggestCalls atomic.Int32

	failSearch  atomic.Bool
	failReverse atomic.Bool
	failSuggest atomic.Bool

	// release holds searches back until it is closed
	release chan struct{}
}

func (m *mockGeocoder) Name() string { return "mock" }

func (m *mockGeocoder) Search(ctx context.Context, text string) (geo.Coordinate, error) {
	m.searchCalls.Add(1)
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return geo.Coordinate{}, ctx.Err()
		}
	}
	if m.failSearch.Load() {
		return geo.Coordinate{}, errors.New("lookup intentionally failed")
	}
	if !strings.EqualFold(text, "paris") {
		return geo.Coordinate{}, errors.New("no coordinates found")
	}
	return testCoords, nil
}

func (m *mockGeocoder) Reverse(_ context.Context, coords geo.Coordinate) (Address, error) {
	m.reverseCalls.Add(1)
	if m.failReverse.Load() {
		return Address{}, errors.New("lookup intentionally failed")
	}
	if coords == testOceanCoords {
		return Address{}, nil
	}
	return Address{
		AddressFound: true,
		Latitude:     coords.Lat,
		Longitude:    coords.Lng,
		DisplayName:  "Paris, Île-de-France, France métropolitaine, France",
		Country:      "France",
		CountryCode:  "fr",
	}, nil
}

func (m *mockGeocoder) Suggest(_ context.Context, query string) ([]Suggestion, error) {
	m.suggestCalls.Add(1)
	if m.failSuggest.Load() {
		return nil, errors.New("lookup intentionally failed")
	}
	if strings.HasPrefix(strings.ToLower(query), "par") {
		return append([]Suggestion(nil), testSuggestions...), nil
	}
	return nil, nil
}

func testCache(t *testing.T) (*Cache, *mockGeocoder) {
	t.Helper()
	coder := &mockGeocoder{}
	return NewCache(coder, logger.NewLogger(slog.LevelDebug, io.Discard)), coder
}

func TestNewCache(t *testing.T) {
	t.Run("a new cache should be returned", func(t *testing.T) {
		cache, _ := testCache(t)
		if cache == nil {
			t.Fatal("expected a non-nil cache")
		}
		if cache.Name() != "geocoder cache using mock" {
			t.Errorf("expected cache name to be 'geocoder cache using mock', got %q", cache.Name())
		}
		if stats := cache.Stats(); stats != (Stats{}) {
			t.Errorf("expected empty cache, got %+v", stats)
		}
	})
}

func TestCache_GeocodeLocation(t *testing.T) {
	t.Run("a looked up location should be returned", func(t *testing.T) {
		cache, coder := testCache(t)
		coords, ok := cache.GeocodeLocation(t.Context(), "Paris")
		if !ok {
			t.Fatal("expected location to be found")
		}
		if coords != testCoords {
			t.Errorf("expected coordinates to be %s, got %s", testCoords, coords)
		}
		if coder.searchCalls.Load() != 1 {
			t.Errorf("expected 1 provider call, got %d", coder.searchCalls.Load())
		}
	})
	t.Run("a cached location bypasses a failing provider", func(t *testing.T) {
		cache, coder := testCache(t)
		if _, ok := cache.GeocodeLocation(t.Context(), "Paris"); !ok {
			t.Fatal("expected location to be found")
		}
		coder.failSearch.Store(true)
		coords, ok := cache.GeocodeLocation(t.Context(), "Paris")
		if !ok {
			t.Fatal("expected cached location to be returned")
		}
		if coords != testCoords {
			t.Errorf("expected coordinates to be %s, got %s", testCoords, coords)
		}
		if coder.searchCalls.Load() != 1 {
			t.Errorf("expected 1 provider call, got %d", coder.searchCalls.Load())
		}
	})
	t.Run("failed lookups are not cached", func(t *testing.T) {
		cache, coder := testCache(t)
		coder.failSearch.Store(true)
		if _, ok := cache.GeocodeLocation(t.Context(), "Paris"); ok {
			t.Fatal("expected lookup to fail")
		}
		coder.failSearch.Store(false)
		if _, ok := cache.GeocodeLocation(t.Context(), "Paris"); !ok {
			t.Fatal("expected retried lookup to succeed")
		}
		if coder.searchCalls.Load() != 2 {
			t.Errorf("expected 2 provider calls, got %d", coder.searchCalls.Load())
		}
	})
	t.Run("unknown locations are reported as not found", func(t *testing.T) {
		cache, _ := testCache(t)
		if _, ok := cache.GeocodeLocation(t.Context(), "Atlantis"); ok {
			t.Error("expected location to be not found")
		}
	})
	t.Run("differently formatted text shares a cache entry", func(t *testing.T) {
		cache, coder := testCache(t)
		for _, text := range []string{"Paris", "  PARIS ", "paris"} {
			if _, ok := cache.GeocodeLocation(t.Context(), text); !ok {
				t.Fatalf("expected %q to be found", text)
			}
		}
		if coder.searchCalls.Load() != 1 {
			t.Errorf("expected 1 provider call, got %d", coder.searchCalls.Load())
		}
	})
	t.Run("empty text never reaches the provider", func(t *testing.T) {
		cache, coder := testCache(t)
		if _, ok := cache.GeocodeLocation(t.Context(), "   "); ok {
			t.Error("expected empty text to be not found")
		}
		if coder.searchCalls.Load() != 0 {
			t.Errorf("expected no provider call, got %d", coder.searchCalls.Load())
		}
	})
	t.Run("concurrent lookups return the same location", func(t *testing.T) {
		cache, _ := testCache(t)
		wg := sync.WaitGroup{}
		for range 16 {
			wg.Go(func() {
				coords, ok := cache.GeocodeLocation(t.Context(), "Paris")
				if !ok || coords != testCoords {
					t.Errorf("expected %s, got %s (found: %t)", testCoords, coords, ok)
				}
			})
		}
		wg.Wait()
		if cache.Stats().Locations != 1 {
			t.Errorf("expected 1 cached location, got %d", cache.Stats().Locations)
		}
	})
	t.Run("a cancelled caller does not fail others waiting on the same lookup", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			coder := &mockGeocoder{release: make(chan struct{})}
			cache := NewCache(coder, logger.NewLogger(slog.LevelDebug, io.Discard))
			ctx, cancel := context.WithCancel(t.Context())

			var cancelledOK, liveOK bool
			var liveCoords geo.Coordinate
			wg := sync.WaitGroup{}
			wg.Go(func() {
				_, cancelledOK = cache.GeocodeLocation(ctx, "Paris")
			})
			synctest.Wait()
			wg.Go(func() {
				liveCoords, liveOK = cache.GeocodeLocation(context.Background(), "paris")
			})
			synctest.Wait()
			cancel()
			synctest.Wait()
			close(coder.release)
			wg.Wait()

			if cancelledOK {
				t.Error("expected the cancelled caller to get no location")
			}
			if !liveOK || liveCoords != testCoords {
				t.Errorf("expected %s for the live caller, got %s (found: %t)", testCoords, liveCoords, liveOK)
			}
			if coder.searchCalls.Load() != 1 {
				t.Errorf("expected 1 provider call, got %d", coder.searchCalls.Load())
			}
			if cache.Stats().Locations != 1 {
				t.Errorf("expected 1 cached location, got %d", cache.Stats().Locations)
			}
		})
	})
}

func TestCache_Suggestions(t *testing.T) {
	t.Run("short queries never reach the provider", func(t *testing.T) {
		cache, coder := testCache(t)
		for _, query := range []string{"", "p", "pa", " pa  "} {
			got := cache.Suggestions(t.Context(), query)
			if got == nil || len(got) != 0 {
				t.Errorf("expected empty suggestions for %q, got %+v", query, got)
			}
		}
		if coder.suggestCalls.Load() != 0 {
			t.Errorf("expected no provider call, got %d", coder.suggestCalls.Load())
		}
	})
	t.Run("suggestions are looked up and cached case-insensitively", func(t *testing.T) {
		cache, coder := testCache(t)
		got := cache.Suggestions(t.Context(), "Par")
		if diff := cmp.Diff(testSuggestions, got); diff != "" {
			t.Errorf("unexpected suggestions (-want +got):\n%s", diff)
		}
		got = cache.Suggestions(t.Context(), "PAR")
		if diff := cmp.Diff(testSuggestions, got); diff != "" {
			t.Errorf("unexpected cached suggestions (-want +got):\n%s", diff)
		}
		if coder.suggestCalls.Load() != 1 {
			t.Errorf("expected 1 provider call, got %d", coder.suggestCalls.Load())
		}
	})
	t.Run("empty suggestion lists are cached", func(t *testing.T) {
		cache, coder := testCache(t)
		for range 2 {
			if got := cache.Suggestions(t.Context(), "xyzzy"); got == nil || len(got) != 0 {
				t.Errorf("expected empty suggestions, got %+v", got)
			}
		}
		if coder.suggestCalls.Load() != 1 {
			t.Errorf("expected 1 provider call, got %d", coder.suggestCalls.Load())
		}
	})
	t.Run("failed lookups return an empty list and are not cached", func(t *testing.T) {
		cache, coder := testCache(t)
		coder.failSuggest.Store(true)
		if got := cache.Suggestions(t.Context(), "paris"); got == nil || len(got) != 0 {
			t.Errorf("expected empty suggestions, got %+v", got)
		}
		coder.failSuggest.Store(false)
		if got := cache.Suggestions(t.Context(), "paris"); len(got) != len(testSuggestions) {
			t.Errorf("expected %d suggestions, got %d", len(testSuggestions), len(got))
		}
		if coder.suggestCalls.Load() != 2 {
			t.Errorf("expected 2 provider calls, got %d", coder.suggestCalls.Load())
		}
	})
	t.Run("modifying returned suggestions does not alter the cache", func(t *testing.T) {
		cache, _ := testCache(t)
		got := cache.Suggestions(t.Context(), "paris")
		got[0].Text = "changed"
		got = cache.Suggestions(t.Context(), "paris")
		if got[0].Text != testSuggestions[0].Text {
			t.Errorf("expected cached suggestion to be %q, got %q", testSuggestions[0].Text, got[0].Text)
		}
	})
}

func TestCache_ReverseCountry(t *testing.T) {
	t.Run("the country of a coordinate is returned", func(t *testing.T) {
		cache, _ := testCache(t)
		if got := cache.ReverseCountry(t.Context(), testCoords.Lat, testCoords.Lng); got != "France" {
			t.Errorf("expected country to be 'France', got %q", got)
		}
	})
	t.Run("ocean coordinates resolve to an empty country exactly once", func(t *testing.T) {
		cache, coder := testCache(t)
		for range 2 {
			if got := cache.ReverseCountry(t.Context(), testOceanCoords.Lat, testOceanCoords.Lng); got != "" {
				t.Errorf("expected empty country, got %q", got)
			}
		}
		if coder.reverseCalls.Load() != 1 {
			t.Errorf("expected 1 provider call, got %d", coder.reverseCalls.Load())
		}
	})
	t.Run("very close coordinates share a cache entry", func(t *testing.T) {
		cache, coder := testCache(t)
		_ = cache.ReverseCountry(t.Context(), testCoords.Lat, testCoords.Lng)
		got := cache.ReverseCountry(t.Context(), testCoords.Lat+0.00002, testCoords.Lng-0.00003)
		if got != "France" {
			t.Errorf("expected country to be 'France', got %q", got)
		}
		if coder.reverseCalls.Load() != 1 {
			t.Errorf("expected 1 provider call, got %d", coder.reverseCalls.Load())
		}
	})
	t.Run("failed lookups return an empty country and are not cached", func(t *testing.T) {
		cache, coder := testCache(t)
		coder.failReverse.Store(true)
		if got := cache.ReverseCountry(t.Context(), testCoords.Lat, testCoords.Lng); got != "" {
			t.Errorf("expected empty country, got %q", got)
		}
		coder.failReverse.Store(false)
		if got := cache.ReverseCountry(t.Context(), testCoords.Lat, testCoords.Lng); got != "France" {
			t.Errorf("expected country to be 'France', got %q", got)
		}
		if coder.reverseCalls.Load() != 2 {
			t.Errorf("expected 2 provider calls, got %d", coder.reverseCalls.Load())
		}
		if cache.Stats().Countries != 1 {
			t.Errorf("expected 1 cached country, got %d", cache.Stats().Countries)
		}
	})
}

func TestCoordinateKey(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     string
	}{
		{"coordinates are rounded to four decimals", 52.51294, 13.39096, "52.5129,13.3910"},
		{"negative coordinates are rounded", -33.86881, -151.20936, "-33.8688,-151.2094"},
		{"values rounding to zero lose their sign", -0.00001, -0.00004, "0.0000,0.0000"},
		{"integers are padded", 10, -5, "10.0000,-5.0000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoordinateKey(tc.lat, tc.lng); got != tc.want {
				t.Errorf("expected key to be %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Paris", "paris"},
		{"  New   York ", "new york"},
		{"", ""},
		{"ÎLE-DE-FRANCE", "île-de-france"},
	}
	for _, tc := range tests {
		t.Run("normalizing "+tc.in, func(t *testing.T) {
			if got := NormalizeQuery(tc.in); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
