package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wrale/wrale-scheduler/api/types/v1alpha1"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
	"github.com/wrale/wrale-scheduler/internal/wschedd/schedule"
)

func (h *Handler) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	occurrences, err := h.service.Permissions(r.Context(), ActorFromContext(r.Context()), schedule.PermissionQuery{
		Start:  q.Get("start"),
		End:    q.Get("end"),
		Device: q.Get("device"),
		UserID: q.Get("user_id"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, "Schedule permissions data.", toPermissionOccurrences(occurrences))
}

func (h *Handler) handleGetPermission(w http.ResponseWriter, r *http.Request) {
	recurring := recurringParam(r)
	permission, err := h.service.GetPermission(r.Context(), ActorFromContext(r.Context()), chi.URLParam(r, "id"), recurring)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	message := "Schedule permission."
	if recurring {
		message = "Schedule permission (recurring)."
	}
	h.respondOK(w, message, toPermission(permission))
}

func (h *Handler) handleSavePermission(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.SavePermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, werrors.Invalid(msgInvalidBody, "ScheduleHTTP.SavePermission"))
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		req.ID = id
	}

	permission, err := h.service.SavePermission(r.Context(), ActorFromContext(r.Context()), fromSavePermission(req))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	message := "Permission added."
	if req.ID != "" {
		message = "Permission updated."
	}
	h.respondOK(w, message, toPermission(permission))
}

func (h *Handler) handleDeletePermission(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePermission(r.Context(), ActorFromContext(r.Context()), chi.URLParam(r, "id"), recurringParam(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondOK(w, "Permission deleted.", nil)
}
