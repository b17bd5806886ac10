package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"wayfinder/core-go/internal/editsession"
	"wayfinder/core-go/internal/mapstore"
	"wayfinder/core-go/internal/maperr"
	"wayfinder/core-go/internal/metrics"
	"wayfinder/core-go/internal/search"
)

// ReadyCheck reports whether a backing service can take traffic.
type ReadyCheck func(ctx context.Context) error

type Options struct {
	SessionTTL         time.Duration
	SearchDefaultLimit int
	// ReadyChecks run on /readyz in addition to the store check.
	ReadyChecks map[string]ReadyCheck
}

type Handler struct {
	log         zerolog.Logger
	maps        mapstore.Store
	sessions    editsession.Store
	metrics     *metrics.Metrics
	sessionTTL  time.Duration
	searchLimit int
	readyChecks map[string]ReadyCheck
	locks       *keyedMutex
}

func NewHandler(log zerolog.Logger, maps mapstore.Store, sessions editsession.Store, m *metrics.Metrics, opts Options) *Handler {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = editsession.DefaultTTL
	}
	limit := opts.SearchDefaultLimit
	if limit <= 0 {
		limit = search.DefaultLimit
	}
	return &Handler{
		log:         log,
		maps:        maps,
		sessions:    sessions,
		metrics:     m,
		sessionTTL:  ttl,
		searchLimit: limit,
		readyChecks: opts.ReadyChecks,
		locks:       newKeyedMutex(),
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(h.accessLog)

	// Health
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyZ)
	r.Handle("/metrics", h.metrics.Handler())

	// API
	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/maps", func(r chi.Router) {
				r.Get("/", h.handleListMaps)
				r.Post("/", h.handleCreateMap)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.handleGetMap)
					r.Delete("/", h.handleDeleteMap)
					r.Get("/exits", h.handleListExits)
					r.Get("/entrances", h.handleListEntrances)
					r.Get("/graph", h.handleMapGraph)
					r.Route("/floors/{floor}", func(r chi.Router) {
						r.Get("/svg", h.handleMapFloorSVG)
						r.Post("/rasterize", h.handleMapRasterize)
						r.Post("/resize", h.handleMapResize)
					})
				})
			})

			r.Route("/nodes", func(r chi.Router) {
				r.Get("/search", h.handleSearchNodes)
				r.Route("/beacon/{beaconId}", func(r chi.Router) {
					r.Get("/", h.handleNodeByBeacon)
					r.Get("/map", h.handleMapByBeacon)
				})
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", h.handleCreateSession)
				r.Route("/{sid}", func(r chi.Router) {
					r.Get("/", h.handleGetSession)
					r.Put("/", h.handleUpdateSession)
					r.Delete("/", h.handleDeleteSession)
					r.Post("/commit", h.handleCommitSession)
					r.Post("/floors", h.handleSessionAddFloor)
					r.Route("/floors/{floor}", func(r chi.Router) {
						r.Get("/svg", h.handleSessionFloorSVG)
						r.Post("/rasterize", h.handleSessionRasterize)
						r.Post("/resize", h.handleSessionResize)
					})
					r.Post("/nodes", h.handleSessionAddNode)
					r.Route("/nodes/{ref}", func(r chi.Router) {
						r.Put("/", h.handleSessionUpdateNode)
						r.Delete("/", h.handleSessionDeleteNode)
					})
					r.Post("/edges", h.handleSessionAddEdge)
					r.Delete("/edges/{ref}", h.handleSessionDeleteEdge)
				})
			})
		})
	})

	return r
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// Label metrics by route pattern so ids do not explode cardinality.
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		h.metrics.ObserveHTTPRequest(r.Method, route, ww.Status(), time.Since(start))

		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("http_request")
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	resp := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	}
	if details != nil {
		resp["error"].(map[string]any)["details"] = details
	}
	h.writeJSON(w, status, resp)
}

// writeDomainError maps a maperr code onto a status. Anything else is logged
// and reported as an internal error.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error, action string) {
	code := maperr.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case maperr.CodeValidation,
		maperr.CodeInvalidDimension,
		maperr.CodeCoordinateOutOfBounds,
		maperr.CodeOutOfBounds:
		status = http.StatusBadRequest
	case maperr.CodeDuplicateFloor,
		maperr.CodeMapConflict:
		status = http.StatusConflict
	case maperr.CodeFloorNotFound,
		maperr.CodeNodeNotFound,
		maperr.CodeEdgeNotFound,
		maperr.CodeMapNotFound,
		maperr.CodeSessionNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.log.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg(action + " failed")
		h.writeError(w, status, "internal_error", action+" failed", nil)
		return
	}
	h.writeError(w, status, string(code), maperr.UserMessage(err), nil)
}

func decodeJSONStrict(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected extra data after JSON body")
		}
		return err
	}
	return nil
}

func (h *Handler) writeInvalidBody(w http.ResponseWriter, err error) {
	h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleReadyZ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.maps == nil || h.sessions == nil {
		h.writeError(w, http.StatusServiceUnavailable, "store_unavailable", "stores not configured", nil)
		return
	}

	for name, check := range h.readyChecks {
		if err := check(ctx); err != nil {
			h.writeError(w, http.StatusServiceUnavailable, name+"_unavailable", name+" not ready", map[string]any{"error": err.Error()})
			return
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

func (h *Handler) ensureStores(w http.ResponseWriter) bool {
	if h.maps == nil || h.sessions == nil {
		h.writeError(w, http.StatusServiceUnavailable, "store_unavailable", "stores not configured", nil)
		return false
	}
	return true
}

func parseMapID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, maperr.New(maperr.CodeValidation, "map id %q is not a positive integer", raw)
	}
	return id, nil
}

func parseFloorParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "floor")
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, maperr.New(maperr.CodeValidation, "floor %q is not an integer", raw)
	}
	return n, nil
}

// parseLimitParam returns fallback for an empty value and clamps to max.
func parseLimitParam(value string, fallback, maxLimit int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("invalid value")
	}
	if parsed <= 0 {
		return 0, errors.New("must be positive")
	}
	if parsed > maxLimit {
		parsed = maxLimit
	}
	return parsed, nil
}
