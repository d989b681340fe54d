// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"runtime"
	"strconv"
	"time"

	"github.com/wneessen/otherside/internal/logger"
	"github.com/wneessen/otherside/internal/metrics"
)

const (
	// DefaultTimeout is the default timeout value for the HTTPClient
	DefaultTimeout = time.Second * 10
)

var (
	// version is the version of the application (will be set at build time)
	version = "dev"
	// UserAgent is the User-Agent that the HTTP client sends with API requests
	UserAgent = fmt.Sprintf("Mozilla/5.0 (%s; %s) otherside/%s (+https://github.com/wneessen/otherside/)",
		runtime.GOOS,
		runtime.GOARCH,
		version,
	)

	ErrNonPointerTarget = errors.New("target must be a non-nil pointer")
)

// Client fetches JSON documents from the upstream APIs, like the geocoders, the routing
// service and remote datasets.
type Client struct {
	*http.Client
	logger *logger.Logger
}

// New returns a new HTTP client
func New(logger *logger.Logger) *Client {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	httpTransport := &http.Transport{TLSClientConfig: tlsConfig, Proxy: http.ProxyFromEnvironment}
	httpClient := &http.Client{
		Timeout:   DefaultTimeout,
		Transport: httpTransport,
	}
	return &Client{httpClient, logger}
}

// GetJSON performs a HTTP GET request against endpoint and decodes the JSON response into
// target. A timeout of zero or less falls back to DefaultTimeout. The status code is returned
// as-is, callers decide which codes they accept, since some APIs report errors in a JSON body
// with a non-2xx status.
func (h *Client) GetJSON(ctx context.Context, endpoint string, target any, query url.Values, headers map[string]string, timeout time.Duration) (int, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return 0, ErrNonPointerTarget
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := newJSONRequest(ctx, endpoint, query, headers)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	response, err := h.Do(request)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(request.URL.Host, "error").Inc()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	if response == nil {
		return 0, errors.New("nil response received")
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			h.logger.Error("failed to close HTTP response body", logger.Err(err))
		}
	}(response.Body)

	latency := time.Since(start)
	metrics.UpstreamRequests.WithLabelValues(request.URL.Host, strconv.Itoa(response.StatusCode)).Inc()
	metrics.UpstreamDuration.WithLabelValues(request.URL.Host).Observe(latency.Seconds())
	h.logger.Debug("upstream request", slog.String("host", request.URL.Host),
		slog.String("path", request.URL.Path), slog.Int("status", response.StatusCode),
		slog.Duration("latency", latency))

	if err = json.NewDecoder(response.Body).Decode(target); err != nil {
		return response.StatusCode, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return response.StatusCode, nil
}

func newJSONRequest(ctx context.Context, endpoint string, query url.Values, headers map[string]string) (*http.Request, error) {
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed create new HTTP request with context: %w", err)
	}
	request.Header.Set("User-Agent", UserAgent)
	request.Header.Set("Accept", "application/json")
	for k, v := range headers {
		request.Header.Set(k, v)
	}
	return request, nil
}
