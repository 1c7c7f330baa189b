package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wrale/wrale-scheduler/api/types/v1alpha1"
	"github.com/wrale/wrale-scheduler/internal/wschedd/device"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
)

func (h *Handler) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]v1alpha1.Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, toDevice(d))
	}
	h.respondOK(w, "Devices.", out)
}

// handleDeviceEvents upgrades to a websocket streaming the device's
// schedule changes
func (h *Handler) handleDeviceEvents(w http.ResponseWriter, r *http.Request) {
	const op = "ScheduleHTTP.DeviceEvents"

	deviceID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || deviceID <= 0 {
		h.respondError(w, r, werrors.NewError(werrors.CodeInvalidID, "Device ID is invalid.", op, werrors.ErrInvalidInput))
		return
	}

	if _, err := h.devices.FindByID(r.Context(), deviceID); err != nil {
		var notFound device.ErrNotFound
		if errors.As(err, &notFound) {
			h.respondError(w, r, werrors.NewError(werrors.CodeNotFound, "Device not found.", op, werrors.ErrNotFound))
			return
		}
		h.respondError(w, r, err)
		return
	}

	h.logger.Info().
		Int64("deviceID", deviceID).
		Int64("userID", ActorFromContext(r.Context()).UserID).
		Msg("schedule event stream opened")
	h.streamer.Serve(w, r, deviceID)
}
