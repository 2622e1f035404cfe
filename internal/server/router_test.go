package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/authordata/author-service/handlers"
	"github.com/authordata/author-service/internal/author/repository"
	"github.com/authordata/author-service/internal/author/service"
	"github.com/authordata/author-service/internal/config"
	"github.com/authordata/author-service/pkg/metrics"
	"github.com/authordata/author-service/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Author: config.AuthorConfig{PageSize: 3, ErrorMode: config.ErrorModeStrict},
	}
}

func testRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)
	return reg
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestRouter_ServesAuthorResource(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	r := NewRouter(testConfig(), Deps{
		Service:  service.New(repo),
		Ready:    map[string]handlers.Pinger{"mongodb": repo},
		Gatherer: testRegistry(),
	})

	req := httptest.NewRequest(http.MethodPost, "/author", strings.NewReader(`{"name":"Jane"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/author", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var docs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "authors_http_requests_total")
	assert.Contains(t, w.Body.String(), "authors_store_operation_duration_seconds")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NotReadyWhenStoreDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(testConfig(), Deps{
		Service:  service.New(repository.NewMemoryRepo()),
		Ready:    map[string]handlers.Pinger{"mongodb": stubPinger{errors.New("server selection timeout")}},
		Gatherer: testRegistry(),
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_RedisRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, UseRedis: true, RPS: 0, Burst: 1, WindowSeconds: 60}
	r := NewRouter(cfg, Deps{
		Service:  service.New(repository.NewMemoryRepo()),
		Redis:    client,
		Gatherer: testRegistry(),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/author", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/author", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}
