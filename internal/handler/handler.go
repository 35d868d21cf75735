package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/mark-c-hall/moviecards/internal/config"
	"github.com/mark-c-hall/moviecards/internal/metrics"
	mw "github.com/mark-c-hall/moviecards/internal/middleware"
	"github.com/mark-c-hall/moviecards/internal/models"
	"github.com/mark-c-hall/moviecards/internal/moviecards"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	handler http.Handler
}

func NewHandler(catalog *moviecards.Catalog, gatherer prometheus.Gatherer, cfg config.ServerConfig, logger *slog.Logger) (*Handler, error) {
	if catalog == nil || catalog.Actors == nil || catalog.Movies == nil {
		return nil, errors.New("handler requires actor and movie clients")
	}

	mux := http.NewServeMux()
	addRoutes(mux, catalog.Actors, catalog.Movies, gatherer, logger)

	var h http.Handler = mux
	h = mw.Metrics()(h)
	h = mw.RateLimit(rate.Limit(cfg.RateLimitPerSec), cfg.RateBurst, logger)(h)
	h = mw.Timeout(cfg.RequestTimeout)(h)
	h = mw.Recovery(logger)(h)
	h = mw.Logging(logger)(h)
	h = mw.CORS(cfg.CORSOrigin)(h)
	h = otelhttp.NewHandler(h, "moviecards-gateway")

	return &Handler{handler: h}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

func addRoutes(mux *http.ServeMux, actors moviecards.Service[models.Actor], movies moviecards.Service[models.Movie], gatherer prometheus.Gatherer, logger *slog.Logger) {
	addResource(mux, moviecards.ActorsPath, actors, func(a models.Actor) int { return a.ID }, logger)
	addResource(mux, moviecards.MoviesPath, movies, func(m models.Movie) int { return m.ID }, logger)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

func addResource[T any](mux *http.ServeMux, path string, svc moviecards.Service[T], getID func(T) int, logger *slog.Logger) {
	base := "/api/" + path

	mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.GetAll(r.Context())
		if err != nil {
			writeError(w, r, path, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, items)
	})

	mux.HandleFunc("GET "+base+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "id must be a positive integer"})
			return
		}
		item, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, path, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, item)
	})

	mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		var entity T
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&entity); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body: " + err.Error()})
			return
		}

		id := getID(entity)
		if id < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "id must not be negative"})
			return
		}
		status := http.StatusOK
		if id == 0 {
			status = http.StatusCreated
		}
		saved, err := svc.Save(r.Context(), entity)
		if err != nil {
			writeError(w, r, path, err, logger)
			return
		}
		writeJSON(w, status, saved)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, resource string, err error, logger *slog.Logger) {
	status := http.StatusBadGateway
	kind := "remote"
	msg := "upstream failure"
	if moviecards.IsNotFound(err) {
		status = http.StatusNotFound
		kind = "not_found"
		msg = "not found"
	}
	metrics.RemoteFailures.WithLabelValues(resource, kind).Inc()

	logger.WarnContext(r.Context(), "moviecards call failed",
		"resource", resource,
		"kind", kind,
		"error", err,
		"request_id", mw.RequestID(r.Context()),
	)
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
