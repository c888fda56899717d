package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promcollectors "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/infrastructure/config"
)

func testServerConfig() *config.Config {
	return &config.Config{
		Version:     "test",
		Environment: "test",
		Server: config.ServerConfig{
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: time.Second,
			RateLimit: config.RateLimitConfig{
				RequestsPerSecond: 100,
				BurstSize:         100,
			},
		},
	}
}

func cleanResult() *fraud.DetectionResult {
	return &fraud.DetectionResult{
		RiskScore:          0,
		RiskLevel:          fraud.RiskVeryLow,
		Reasons:            []fraud.Reason{},
		RecommendedActions: []fraud.SecurityAction{},
		Confidence:         1.0,
		ModelVersion:       "v2.1.0",
		ProcessedAt:        time.Now().UTC(),
	}
}

func TestServer_EvaluateRoute(t *testing.T) {
	engine := new(mockEngine)
	engine.On("Evaluate", mock.Anything, mock.Anything).Return(cleanResult(), nil)

	srv := NewServer(testServerConfig(), Services{Engine: engine}, nil, nil, quietLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud/evaluate",
		bytes.NewReader(validEvaluateBody(t, uuid.New(), uuid.New())))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := NewServer(testServerConfig(), Services{Engine: new(mockEngine)}, nil, nil, quietLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fraud/evaluate", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_RateLimitOnAPIRoutes(t *testing.T) {
	cfg := testServerConfig()
	cfg.Server.RateLimit.RequestsPerSecond = 1
	cfg.Server.RateLimit.BurstSize = 1

	engine := new(mockEngine)
	engine.On("Evaluate", mock.Anything, mock.Anything).Return(cleanResult(), nil)

	srv := NewServer(cfg, Services{Engine: engine}, nil, nil, quietLogger())

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud/evaluate",
		bytes.NewReader(validEvaluateBody(t, uuid.New(), uuid.New())))
	req.RemoteAddr = "198.51.100.1:4242"
	srv.Handler().ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/fraud/evaluate",
		bytes.NewReader(validEvaluateBody(t, uuid.New(), uuid.New())))
	req.RemoteAddr = "198.51.100.1:4242"
	srv.Handler().ServeHTTP(second, req)

	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestServer_Healthz(t *testing.T) {
	checkers := []HealthChecker{
		HealthCheckFunc{CheckerName: "redis", Fn: func(ctx context.Context) error { return nil }},
	}
	srv := NewServer(testServerConfig(), Services{Engine: new(mockEngine)}, nil, checkers, quietLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "pass", resp.Checks["redis"].Status)
}

func TestServer_HealthzFailingDependency(t *testing.T) {
	checkers := []HealthChecker{
		HealthCheckFunc{CheckerName: "redis", Fn: func(ctx context.Context) error { return nil }},
		HealthCheckFunc{CheckerName: "journal", Fn: func(ctx context.Context) error {
			return errors.New("stream unavailable")
		}},
	}
	srv := NewServer(testServerConfig(), Services{Engine: new(mockEngine)}, nil, checkers, quietLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "pass", resp.Checks["redis"].Status)
	assert.Equal(t, "fail", resp.Checks["journal"].Status)
	assert.Contains(t, resp.Checks["journal"].Error, "stream unavailable")
}

func TestServer_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(promcollectors.NewGoCollector())

	srv := NewServer(testServerConfig(), Services{Engine: new(mockEngine)}, registry, nil, quietLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServer_NoMetricsWithoutRegistry(t *testing.T) {
	srv := NewServer(testServerConfig(), Services{Engine: new(mockEngine)}, nil, nil, quietLogger())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RunStopsOnContextCancel(t *testing.T) {
	cfg := testServerConfig()
	cfg.Server.Port = 0

	srv := NewServer(cfg, Services{Engine: new(mockEngine)}, nil, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
