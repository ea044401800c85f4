package event

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/chronicle/pkg/httputil"
	"github.com/platinummonkey/chronicle/pkg/middleware"
	"github.com/platinummonkey/chronicle/pkg/observability"
)

// Handlers provides the HTTP surface for both API generations.
type Handlers struct {
	service *Service
	log     *logrus.Entry
	metrics *observability.Metrics
}

// NewHandlers creates the event handlers.
func NewHandlers(service *Service, log *logrus.Entry) *Handlers {
	return &Handlers{service: service, log: log}
}

// WithMetrics attaches the business metrics. Without it creation counters
// are simply not recorded.
func (h *Handlers) WithMetrics(m *observability.Metrics) *Handlers {
	h.metrics = m
	return h
}

func (h *Handlers) countCreated(apiVersion string) {
	if h.metrics != nil {
		h.metrics.EventsCreatedTotal.WithLabelValues(apiVersion).Inc()
	}
}

// RegisterRoutes registers the v1 and v2 event routes. Reads require the
// read scope and creates the write scope. The v1 generation is deprecated
// and answers with a Deprecation response header.
func (h *Handlers) RegisterRoutes(router *mux.Router, auth *middleware.ScopeAuth) {
	v2 := router.PathPrefix("/v2").Subrouter()
	v2.Use(auth.RequireByMethod(middleware.ScopeReadEvent, middleware.ScopeWriteEvent))
	v2.HandleFunc("/event", h.listEvents).Methods("GET")
	v2.HandleFunc("/event", h.createEvent).Methods("POST")
	v2.HandleFunc("/event/{id}", h.getEvent).Methods("GET")

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(deprecationHeader)
	v1.Use(auth.RequireByMethod(middleware.ScopeReadEvent, middleware.ScopeWriteEvent))
	v1.HandleFunc("/event", h.listEventsV1).Methods("GET")
	v1.HandleFunc("/event", h.createEventV1).Methods("POST")
	v1.HandleFunc("/event/{id}", h.getEventV1).Methods("GET")
}

// getEvent handles GET /v2/event/{id}
func (h *Handlers) getEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

// listEvents handles GET /v2/event
func (h *Handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := ParseFilter(
		query.Get("creator"),
		query.Get("event_type"),
		query.Get("start_date"),
		query.Get("end_date"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

// createEvent handles POST /v2/event
func (h *Handlers) createEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	e, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.countCreated("v2")
	w.Header().Set("Location", "/v2/event/"+e.ID)
	httputil.WriteCreated(w, e.ToResponse())
}

// getEventV1 handles GET /v1/event/{id}
func (h *Handlers) getEventV1(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	resp, err := h.service.GetV1(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

// listEventsV1 handles GET /v1/event. The type filter parameter is named
// "type" here; it has the same semantics as v2's "event_type".
func (h *Handlers) listEventsV1(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := ParseFilter(
		query.Get("creator"),
		query.Get("type"),
		query.Get("start_date"),
		query.Get("end_date"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.service.ListV1(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, resp)
}

// createEventV1 handles POST /v1/event. Unlike v2 this historically answered
// 200 rather than 201; existing v1 clients depend on that.
func (h *Handlers) createEventV1(w http.ResponseWriter, r *http.Request) {
	var req CreateRequestV1
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	e, err := h.service.CreateV1(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.countCreated("v1")
	w.Header().Set("Location", "/v1/event/"+e.ID)
	httputil.WriteSuccess(w, e.ToV1Response())
}

// writeError maps service errors onto the HTTP taxonomy: validation 400,
// unknown id 404, disallowed administrative action 403, storage failure 503.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case IsValidation(err):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, ErrForbidden):
		httputil.WriteForbidden(w, err.Error())
	default:
		h.log.WithError(err).Error("storage failure")
		httputil.WriteServiceUnavailable(w, "storage unavailable")
	}
}

func deprecationHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Deprecation", "true")
		next.ServeHTTP(w, r)
	})
}
