package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wrale/wrale-scheduler/api/types/v1alpha1"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

const (
	msgInvalidBody   = "The request body is not valid."
	msgScheduleError = "Error getting schedule data."
)

func (h *Handler) handleListShows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	occurrences, err := h.service.Shows(r.Context(), ActorFromContext(r.Context()), schedule.ShowQuery{
		Start:  q.Get("start"),
		End:    q.Get("end"),
		Device: q.Get("device"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, "Schedule data.", toShowOccurrences(occurrences))
}

// handleFriendlySchedule serves the public schedule of a device. Input
// errors keep their reason; anything else reports a generic failure.
func (h *Handler) handleFriendlySchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	occurrences, err := h.service.FriendlySchedule(r.Context(), schedule.ShowQuery{
		Start:  q.Get("start"),
		End:    q.Get("end"),
		Device: q.Get("device"),
	})
	if err != nil {
		if werrors.IsInvalidInput(err) {
			h.respondError(w, r, err)
			return
		}
		h.logger.Error().
			Err(err).
			Str("device", q.Get("device")).
			Msg("friendly schedule failed")
		h.respondJSON(w, http.StatusInternalServerError, resultError(msgScheduleError, codeInternal))
		return
	}
	h.respondOK(w, "Schedule data.", toFriendlySchedule(occurrences))
}

func (h *Handler) handleGetShow(w http.ResponseWriter, r *http.Request) {
	recurring := recurringParam(r)
	show, err := h.service.GetShow(r.Context(), ActorFromContext(r.Context()), chi.URLParam(r, "id"), recurring)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	message := "Scheduled show."
	if recurring {
		message = "Scheduled show (recurring)."
	}
	h.respondOK(w, message, toShow(show))
}

func (h *Handler) handleSaveShow(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.SaveShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, werrors.Invalid(msgInvalidBody, "ScheduleHTTP.SaveShow"))
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		req.ID = id
	}

	show, err := h.service.SaveShow(r.Context(), ActorFromContext(r.Context()), fromSaveShow(req))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	message := "Show added."
	if req.ID != "" {
		message = "Show updated."
	}
	h.respondOK(w, message, toShow(show))
}

func (h *Handler) handleDeleteShow(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteShow(r.Context(), ActorFromContext(r.Context()), chi.URLParam(r, "id"), recurringParam(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, "Show deleted.", nil)
}

func (h *Handler) handleLastDevice(scope schedule.SettingScope) http.HandlerFunc {
	message := "Last schedule device."
	if scope == schedule.ScopePermissions {
		message = "Last schedule permissions device."
	}
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID, err := h.service.LastDevice(r.Context(), ActorFromContext(r.Context()), scope)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		h.respondOK(w, message, v1alpha1.LastDevice{Device: deviceID})
	}
}

func (h *Handler) handleSetLastDevice(scope schedule.SettingScope) http.HandlerFunc {
	message := "Set last schedule device."
	if scope == schedule.ScopePermissions {
		message = "Set last schedule permissions device."
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req v1alpha1.SetLastDeviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, r, werrors.Invalid(msgInvalidBody, "ScheduleHTTP.SetLastDevice"))
			return
		}
		if err := h.service.SetLastDevice(r.Context(), ActorFromContext(r.Context()), scope, req.Device); err != nil {
			h.respondError(w, r, err)
			return
		}
		h.respondOK(w, message, nil)
	}
}
