package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"evt/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListEvents() []types.EventInfo
	Status() types.StatusResponse
	Ready() bool
	Subscribe(event, kind, label string) (types.SubscribeResponse, error)
	Publish(event string, args []any) types.PublishResponse
	UnsubscribeID(id int64) error
	UnsubscribeEvent(name string) error
	Purge()
	Counts() map[string]int64
	Deliveries(ctx context.Context, event string, n int) ([]types.Delivery, error)
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/events", handleListEvents(svc))
	r.Delete("/events/{name}", handleUnsubscribeEvent(svc))
	r.Post("/events/{name}/subscriptions", handleSubscribe(svc))
	r.Post("/events/{name}/publish", handlePublish(svc))
	r.Delete("/subscriptions/{id}", handleUnsubscribeID(svc))
	r.Post("/purge", handlePurge(svc))
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, svc.Status()) })
	r.Get("/counts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.CountsResponse{Counts: svc.Counts()})
	})
	r.Get("/deliveries", handleDeliveries(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// handleListEvents godoc
// @Summary      List events
// @Description  Known event names with their live subscriptions.
// @Tags         events
// @Produce      json
// @Success      200  {object}  types.EventsResponse
// @Router       /events [get]
func handleListEvents(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.EventsResponse{Events: svc.ListEvents()})
	}
}

// handleSubscribe godoc
// @Summary      Subscribe a sink
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        name  path  string                  true  "Event name"
// @Param        body  body  types.SubscribeRequest  true  "Sink"
// @Success      201  {object}  types.SubscribeResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /events/{name}/subscriptions [post]
func handleSubscribe(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		name, ok := eventParam(w, r)
		if !ok {
			return
		}
		var req types.SubscribeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Kind) == "" {
			IncrementRejected("missing_kind")
			writeJSONError(w, http.StatusBadRequest, "kind is required")
			return
		}
		resp, err := svc.Subscribe(name, req.Kind, req.Label)
		if err != nil {
			status := statusFor(err)
			writeJSONError(w, status, err.Error())
			logRequestEnd(r, "subscribe", status, start, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
		logRequestEnd(r, "subscribe", http.StatusCreated, start, nil)
	}
}

// handlePublish godoc
// @Summary      Publish an event
// @Description  Synchronously invokes every subscriber of the event with the given arguments.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        name  path  string                true  "Event name"
// @Param        body  body  types.PublishRequest  true  "Arguments"
// @Success      200  {object}  types.PublishResponse
// @Failure      400  {object}  types.ErrorResponse
// @Router       /events/{name}/publish [post]
func handlePublish(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		name, ok := eventParam(w, r)
		if !ok {
			return
		}
		var req types.PublishRequest
		if r.ContentLength != 0 {
			if !decodeJSON(w, r, &req) {
				return
			}
		}
		resp := svc.Publish(name, req.Args)
		writeJSON(w, http.StatusOK, resp)
		logRequestEnd(r, "publish", http.StatusOK, start, nil)
	}
}

// handleUnsubscribeEvent godoc
// @Summary      Unsubscribe every subscriber of an event
// @Tags         events
// @Param        name  path  string  true  "Event name"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /events/{name} [delete]
func handleUnsubscribeEvent(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		name, ok := eventParam(w, r)
		if !ok {
			return
		}
		if err := svc.UnsubscribeEvent(name); err != nil {
			status := statusFor(err)
			writeJSONError(w, status, err.Error())
			logRequestEnd(r, "unsubscribe_event", status, start, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		logRequestEnd(r, "unsubscribe_event", http.StatusNoContent, start, nil)
	}
}

// handleUnsubscribeID godoc
// @Summary      Unsubscribe one subscription
// @Tags         subscriptions
// @Param        id  path  int  true  "Subscription id"
// @Success      204
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Router       /subscriptions/{id} [delete]
func handleUnsubscribeID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id < 0 {
			IncrementRejected("bad_id")
			writeJSONError(w, http.StatusBadRequest, "subscription id must be a non-negative integer")
			return
		}
		if err := svc.UnsubscribeID(id); err != nil {
			status := statusFor(err)
			writeJSONError(w, status, err.Error())
			logRequestEnd(r, "unsubscribe_id", status, start, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		logRequestEnd(r, "unsubscribe_id", http.StatusNoContent, start, nil)
	}
}

// handlePurge godoc
// @Summary      Purge the registry
// @Description  Drops every event and subscription. Subscription ids are not reused afterwards.
// @Tags         events
// @Success      204
// @Router       /purge [post]
func handlePurge(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		svc.Purge()
		w.WriteHeader(http.StatusNoContent)
		logRequestEnd(r, "purge", http.StatusNoContent, start, nil)
	}
}

// handleDeliveries godoc
// @Summary      Recent journaled deliveries
// @Tags         journal
// @Produce      json
// @Param        event  query  string  false  "Filter by event"
// @Param        limit  query  int     false  "Maximum rows (default 50)"
// @Success      200  {object}  types.DeliveriesResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /deliveries [get]
func handleDeliveries(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultDeliveriesLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				IncrementRejected("bad_limit")
				writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}
		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		out, err := svc.Deliveries(ctx, r.URL.Query().Get("event"), limit)
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, types.DeliveriesResponse{Deliveries: out})
	}
}

// eventParam extracts the {name} path parameter. chi routes on RawPath when
// the request has one, and the parameter is still escaped only in that case.
func eventParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	var err error
	if r.URL.RawPath != "" {
		name, err = url.PathUnescape(name)
	}
	if err != nil || name == "" {
		IncrementRejected("bad_event")
		writeJSONError(w, http.StatusBadRequest, "invalid event name")
		return "", false
	}
	return name, true
}

// decodeJSON enforces the content type and body limit and decodes the body
// into v. It writes the error response itself and reports success.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		IncrementRejected("content_type")
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			IncrementRejected("body_too_large")
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		IncrementRejected("invalid_json")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
