package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/mark-c-hall/moviecards/internal/config"
	"github.com/mark-c-hall/moviecards/internal/metrics"
	"github.com/mark-c-hall/moviecards/internal/models"
	"github.com/mark-c-hall/moviecards/internal/moviecards"
	"github.com/mark-c-hall/moviecards/internal/rest"
)

// newGateway puts the gateway in front of a fake moviecards service.
func newGateway(t *testing.T, upstream http.Handler) *httptest.Server {
	t.Helper()
	remote := httptest.NewServer(upstream)
	t.Cleanup(remote.Close)

	client := &rest.Client{
		HTTPClient: http.Client{Timeout: 5 * time.Second},
		Limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))

	cfg := config.ServerConfig{
		RequestTimeout:  5 * time.Second,
		CORSOrigin:      "*",
		RateLimitPerSec: 1000,
		RateBurst:       1000,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h, err := NewHandler(moviecards.NewCatalog(client, remote.URL), reg, cfg, logger)
	require.NoError(t, err)

	gateway := httptest.NewServer(h)
	t.Cleanup(gateway.Close)
	return gateway
}

func upstream() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /actors", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1, "name": "Actor 1", "birthDate": "1975-06-09", "country": "Spain", "deadDate": null}]`)
	})
	mux.HandleFunc("GET /actors/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("GET /movies", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("POST /movies", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "12")
	})
	mux.HandleFunc("PUT /movies/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func TestGateway_ListActors(t *testing.T) {
	gateway := newGateway(t, upstream())

	resp, err := http.Get(gateway.URL + "/api/actors")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var actors []models.Actor
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actors))
	require.Len(t, actors, 1)
	assert.Equal(t, "Actor 1", actors[0].Name)
	assert.Nil(t, actors[0].DeadDate)
}

func TestGateway_StatusMapping(t *testing.T) {
	gateway := newGateway(t, upstream())

	tests := []struct {
		path string
		want int
	}{
		{"/api/actors/999", http.StatusNotFound},
		{"/api/actors/abc", http.StatusBadRequest},
		{"/api/movies", http.StatusBadGateway},
		{"/healthz", http.StatusOK},
		{"/metrics", http.StatusOK},
	}
	for _, tt := range tests {
		resp, err := http.Get(gateway.URL + tt.path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tt.want, resp.StatusCode, tt.path)
	}
}

func TestGateway_SaveMovie(t *testing.T) {
	gateway := newGateway(t, upstream())

	resp, err := http.Post(gateway.URL+"/api/movies", "application/json",
		strings.NewReader(`{"id": 0, "title": "New Movie", "director": "New Director"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var movie models.Movie
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&movie))
	assert.Equal(t, 12, movie.ID)
	assert.Equal(t, "New Director", movie.Director)

	resp2, err := http.Post(gateway.URL+"/api/movies", "application/json",
		strings.NewReader(`{"id": 5, "title": "Updated Movie"}`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestGateway_RejectsUnknownFields(t *testing.T) {
	gateway := newGateway(t, upstream())

	resp, err := http.Post(gateway.URL+"/api/movies", "application/json",
		strings.NewReader(`{"name": "not a movie field"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGateway_ErrorBodyHidesUpstreamDetails(t *testing.T) {
	gateway := newGateway(t, upstream())

	tests := []struct {
		path string
		want string
	}{
		{"/api/movies", "upstream failure"},
		{"/api/actors/999", "not found"},
	}
	for _, tt := range tests {
		resp, err := http.Get(gateway.URL + tt.path)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		assert.JSONEq(t, fmt.Sprintf(`{"error": %q}`, tt.want), string(body), tt.path)
		assert.NotContains(t, string(body), "boom", tt.path)
		assert.NotContains(t, string(body), "http://", tt.path)
	}
}

func TestGateway_SaveRejectsNegativeID(t *testing.T) {
	var puts atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /actors/{id}", func(w http.ResponseWriter, r *http.Request) {
		puts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	gateway := newGateway(t, mux)

	resp, err := http.Post(gateway.URL+"/api/actors", "application/json",
		strings.NewReader(`{"id": -3, "name": "Nobody"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, puts.Load())
}

func TestNewHandler_RequiresCatalog(t *testing.T) {
	_, err := NewHandler(&moviecards.Catalog{}, nil, config.ServerConfig{}, slog.Default())
	assert.Error(t, err)
}
