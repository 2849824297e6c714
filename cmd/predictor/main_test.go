package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heartcheck/predictor/internal/shared/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	cfg.Model.Path = "../../models/heart_disease_classifier.json"
	cfg.RateLimit.RPS = 1
	cfg.RateLimit.Burst = 2

	app, err := newApp(cfg)
	if err != nil {
		t.Fatalf("Failed to build app: %v", err)
	}
	return app
}

func TestNewAppRejectsMissingModel(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	cfg.Model.Path = filepath.Join(t.TempDir(), "missing.json")

	if _, err := newApp(cfg); err == nil {
		t.Error("Expected error for a missing model artifact")
	}
}

func TestRouterEndpoints(t *testing.T) {
	router := newRouter(newTestApp(t))

	tests := []struct {
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{http.MethodGet, "/health", "", http.StatusOK, `"healthy"`},
		{http.MethodGet, "/ready", "", http.StatusOK, `"model":"ready"`},
		{http.MethodGet, "/", "", http.StatusOK, "Heart Disease Prediction"},
		{http.MethodGet, "/static/app.css", "", http.StatusOK, ".sidebar"},
		{http.MethodGet, "/api/v1/", "", http.StatusOK, "heart-disease-logreg@1.0.0"},
		{http.MethodGet, "/api/v1/fields", "", http.StatusOK, `"chest_pain_type"`},
		{http.MethodGet, "/api/v1/model", "", http.StatusOK, `"logistic_regression"`},
		{http.MethodPost, "/api/v1/predict", `{}`, http.StatusOK, `"result":"negative"`},
		{http.MethodGet, "/metrics", "", http.StatusOK, `model_info{name="heart-disease-logreg",version="1.0.0"} 1`},
		{http.MethodGet, "/api/v1/nope", "", http.StatusNotFound, `"NOT_FOUND"`},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.RemoteAddr = "192.0.2.1:1234"
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d", tt.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("Expected body to contain %q", tt.want)
			}
			if rec.Header().Get("X-Frame-Options") != "DENY" {
				t.Error("Security headers missing")
			}
		})
	}
}

func TestRouterRateLimitsPredictions(t *testing.T) {
	router := newRouter(newTestApp(t))

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "192.0.2.9:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("Expected third prediction to be limited, got %d", last)
	}

	// The page itself is never limited
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for the page, got %d", rec.Code)
	}
}

func postWithForwardedFor(router http.Handler, remoteAddr, xff string) int {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Forwarded-For", xff)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouterRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	router := newRouter(newTestApp(t))

	limited := 0
	for i := 0; i < 20; i++ {
		if postWithForwardedFor(router, "192.0.2.20:1234", fmt.Sprintf("203.0.113.%d", i)) == http.StatusTooManyRequests {
			limited++
		}
	}

	if limited < 17 {
		t.Errorf("Rotating X-Forwarded-For must not reset the limit, only %d of 20 limited", limited)
	}
}

func TestRouterTrustProxyUsesForwardedFor(t *testing.T) {
	app := newTestApp(t)
	app.Config.Server.TrustProxy = true
	router := newRouter(app)

	// Behind a trusted proxy the forwarded address identifies the client
	for i := 0; i < 5; i++ {
		if code := postWithForwardedFor(router, "10.0.0.1:1234", fmt.Sprintf("203.0.113.%d", i)); code != http.StatusOK {
			t.Errorf("Distinct forwarded clients should not share a bucket, got %d", code)
		}
	}
}
