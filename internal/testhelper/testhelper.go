// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper provides shared helpers for the package tests.
package testhelper

import (
	"net/http"
	"os"
	"testing"
)

// TestOnlineAPIURL is an endpoint that is only contacted in integration tests
const TestOnlineAPIURL = "https://httpbin.org/delay/2"

// MockRoundTripper lets tests replace the transport of an HTTP client with a function
type MockRoundTripper struct {
	Fn func(*http.Request) (*http.Response, error)
}

// RoundTrip satisfies the http.RoundTripper interface
func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless PERFORM_INTEGRATION_TESTS is set
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if val := os.Getenv("PERFORM_INTEGRATION_TESTS"); val == "" {
		t.Skip("skipping integration tests")
	}
}

// FileResponder returns a round trip function that answers every request with the content of
// the given file and status code
func FileResponder(t *testing.T, file string, status int) func(*http.Request) (*http.Response, error) {
	t.Helper()
	return func(*http.Request) (*http.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			t.Fatalf("failed to open JSON response file: %s", err)
		}
		return &http.Response{
			StatusCode: status,
			Body:       data,
			Header:     make(http.Header),
		}, nil
	}
}
