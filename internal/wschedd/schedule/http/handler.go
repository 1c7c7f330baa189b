// Package http exposes the schedule service over a JSON API.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/wrale/wrale-scheduler/api/types/v1alpha1"
	"github.com/wrale/wrale-scheduler/internal/wschedd/device"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

// BasePath is where RegisterRoutes mounts the schedule API
const BasePath = "/api/v1alpha1/schedule"

// EventStreamer streams a device's schedule events to a client
type EventStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, deviceID int64)
}

// Handler encapsulates the HTTP API for schedule management
type Handler struct {
	service  schedule.Service
	devices  device.Repository
	streamer EventStreamer
	auth     Authenticator
	logger   zerolog.Logger
}

// NewHandler creates a new HTTP handler. streamer may be nil, in which case
// the event stream endpoint is not mounted.
func NewHandler(
	service schedule.Service,
	devices device.Repository,
	streamer EventStreamer,
	auth Authenticator,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		service:  service,
		devices:  devices,
		streamer: streamer,
		auth:     auth,
		logger:   logger.With().Str("component", "schedule-http").Logger(),
	}
}

// Router returns a router with every schedule endpoint mounted at the root
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.routes(r)
	return r
}

// RegisterRoutes mounts the schedule API under BasePath
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route(BasePath, h.routes)
}

func (h *Handler) routes(r chi.Router) {
	// Public
	r.With(middleware.Timeout(30*time.Second)).Get("/friendly", h.handleFriendlySchedule)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(h.auth, h.logger))
		h.authenticatedRoutes(r)
	})
}

func (h *Handler) authenticatedRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/shows", func(r chi.Router) {
			r.Get("/", h.handleListShows)
			r.Post("/", h.handleSaveShow)
			r.Get("/last-device", h.handleLastDevice(schedule.ScopeShows))
			r.Put("/last-device", h.handleSetLastDevice(schedule.ScopeShows))
			r.Get("/{id}", h.handleGetShow)
			r.Put("/{id}", h.handleSaveShow)
			r.Delete("/{id}", h.handleDeleteShow)
		})

		r.Route("/permissions", func(r chi.Router) {
			r.Get("/", h.handleListPermissions)
			r.Post("/", h.handleSavePermission)
			r.Get("/last-device", h.handleLastDevice(schedule.ScopePermissions))
			r.Put("/last-device", h.handleSetLastDevice(schedule.ScopePermissions))
			r.Get("/{id}", h.handleGetPermission)
			r.Put("/{id}", h.handleSavePermission)
			r.Delete("/{id}", h.handleDeletePermission)
		})

		r.Get("/devices", h.handleListDevices)
	})

	// Streams are long-lived and stay outside the request timeout
	if h.streamer != nil {
		r.Get("/devices/{id}/events", h.handleDeviceEvents)
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, result v1alpha1.Result) {
	writeJSON(w, h.logger, status, result)
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, status int, result v1alpha1.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

// respondOK writes a successful result carrying data
func (h *Handler) respondOK(w http.ResponseWriter, message string, data interface{}) {
	result := v1alpha1.Result{Success: true, Message: message}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to encode response data")
			h.respondJSON(w, http.StatusInternalServerError, resultError(internalMessage, codeInternal))
			return
		}
		result.Data = raw
	}
	h.respondJSON(w, http.StatusOK, result)
}

func recurringParam(r *http.Request) bool {
	switch r.URL.Query().Get("recurring") {
	case "1", "true", "yes":
		return true
	}
	return false
}
