// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/otherside/internal/logger"
	"github.com/wneessen/otherside/internal/testhelper"
)

type testType struct {
	String string  `json:"string"`
	Int    int     `json:"int"`
	Float  float64 `json:"float"`
	Bool   bool    `json:"bool"`
}

const testFile = "../../testdata/testtype.json"

func TestNew(t *testing.T) {
	client := New(logger.New(slog.LevelInfo))
	if client == nil {
		t.Fatal("expected client to be non-nil")
	}
	if client.Timeout != DefaultTimeout {
		t.Errorf("expected client timeout to be %s, got %s", DefaultTimeout, client.Timeout)
	}
}

func TestClient_GetJSON(t *testing.T) {
	t.Run("getting and serializing JSON should work", func(t *testing.T) {
		var gotReq *stdhttp.Request
		respond := testhelper.FileResponder(t, testFile, stdhttp.StatusOK)
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			gotReq = req
			return respond(req)
		}

		client := New(logger.New(slog.LevelInfo))
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}
		query := url.Values{}
		query.Add("key", "value")
		headers := make(map[string]string)
		headers["X-Custom-Header"] = "custom-value"

		target := new(testType)
		code, err := client.GetJSON(t.Context(), "https://example.com", target, query, headers, 0)
		if err != nil {
			t.Fatalf("failed to get JSON response: %s", err)
		}
		if code != 200 {
			t.Errorf("expected status code 200, got %d", code)
		}
		if target.String != "test" {
			t.Errorf("expected target string to be 'test', got %s", target.String)
		}
		if target.Int != 123 {
			t.Errorf("expected target int to be 123, got %d", target.Int)
		}
		if target.Float != 123.456 {
			t.Errorf("expected target float to be 123.456, got %f", target.Float)
		}
		if !target.Bool {
			t.Error("expected target bool to be true")
		}
		if gotReq.URL.Query().Get("key") != "value" {
			t.Errorf("expected query parameter to be sent, got %q", gotReq.URL.RawQuery)
		}
		if gotReq.Header.Get("X-Custom-Header") != "custom-value" {
			t.Errorf("expected custom header to be sent, got %q", gotReq.Header.Get("X-Custom-Header"))
		}
		if gotReq.Header.Get("User-Agent") != UserAgent {
			t.Errorf("expected user agent to be %q, got %q", UserAgent, gotReq.Header.Get("User-Agent"))
		}
	})
	t.Run("upstream requests are logged at debug level", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		client := New(logger.NewLogger(slog.LevelDebug, buf))
		client.Transport = testhelper.MockRoundTripper{
			Fn: testhelper.FileResponder(t, testFile, stdhttp.StatusOK),
		}
		target := new(testType)
		if _, err := client.GetJSON(t.Context(), "https://api.example.com/v1/search", target, nil, nil, 0); err != nil {
			t.Fatalf("failed to get JSON response: %s", err)
		}
		for _, want := range []string{`msg="upstream request"`, "host=api.example.com", "path=/v1/search", "status=200"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected log output to contain %q, got: %s", want, buf.String())
			}
		}
	})
	t.Run("non-2xx status codes are passed to the caller", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		client.Transport = testhelper.MockRoundTripper{
			Fn: testhelper.FileResponder(t, testFile, stdhttp.StatusBadRequest),
		}
		target := new(testType)
		code, err := client.GetJSON(t.Context(), "https://example.com", target, nil, nil, 0)
		if err != nil {
			t.Fatalf("expected request to succeed, got %s", err)
		}
		if code != stdhttp.StatusBadRequest {
			t.Errorf("expected status code 400, got %d", code)
		}
	})
	t.Run("unmarshalling into non-pointer should fail", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		var target testType
		_, err := client.GetJSON(t.Context(), "https://example.com", target, nil, nil, 0)
		if err == nil {
			t.Fatal("expected get to fail")
		}
		if !errors.Is(err, ErrNonPointerTarget) {
			t.Errorf("expected error to be %s, got %s", ErrNonPointerTarget, err)
		}
	})
	t.Run("parsing an invalid url should fail", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		target := new(testType)
		_, err := client.GetJSON(t.Context(), "http://example.com/xyz%", target, nil, nil, 0)
		if err == nil {
			t.Fatal("expected get to fail")
		}
		if !strings.Contains(err.Error(), "failed to parse URL") {
			t.Errorf("expected error to contain 'failed to parse URL', got %s", err)
		}
	})
	t.Run("get request fails", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("intentionally failing")
		}

		client := New(logger.New(slog.LevelInfo))
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		target := new(testType)
		_, err := client.GetJSON(t.Context(), "https://example.com", target, nil, nil, 0)
		if err == nil {
			t.Fatal("expected get request to fail")
		}
	})
	t.Run("getting an undecodable body fails", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       &failReadCloser{},
				Header:     make(stdhttp.Header),
			}, nil
		}

		client := New(logger.NewLogger(slog.LevelInfo, io.Discard))
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		target := new(testType)
		_, err := client.GetJSON(t.Context(), "https://example.com", target, nil, nil, 0)
		if err == nil {
			t.Fatal("expected get request to fail")
		}
		if !strings.Contains(err.Error(), "failed to decode JSON") {
			t.Errorf("expected error to contain 'failed to decode JSON', got %s", err)
		}
	})
}

func TestClient_GetJSON_timeout(t *testing.T) {
	t.Run("get request fails on context cancel", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		}
		client := New(logger.New(slog.LevelInfo))
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}
		ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond)
		defer cancel()

		target := new(testType)
		_, err := client.GetJSON(ctx, "https://example.com", target, nil, nil, time.Second*5)
		if err == nil {
			t.Fatal("expected get request to fail")
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected error to be %s, got %s", context.DeadlineExceeded, err)
		}
	})
	t.Run("get request times out against a slow API", func(t *testing.T) {
		testhelper.PerformIntegrationTests(t)
		client := New(logger.New(slog.LevelInfo))

		target := new(testType)
		_, err := client.GetJSON(t.Context(), testhelper.TestOnlineAPIURL, target, nil, nil, time.Millisecond*50)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected error to be %s, got %s", context.DeadlineExceeded, err)
		}
	})
}

type failReadCloser struct{}

func (failReadCloser) Read(p []byte) (int, error) { return len(p), nil }
func (failReadCloser) Close() error               { return errors.New("failed to close") }
