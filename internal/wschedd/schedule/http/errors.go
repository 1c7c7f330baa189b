package http

import (
	"net/http"

	"github.com/wrale/wrale-scheduler/api/types/v1alpha1"
	werrors "github.com/wrale/wrale-scheduler/internal/wschedd/errors"
)

const (
	internalMessage = "An unexpected error occurred."
	codeInternal    = werrors.CodeInternal
)

// statusFor maps a domain error to its HTTP status
func statusFor(err error) int {
	switch {
	case werrors.IsInvalidInput(err):
		return http.StatusBadRequest
	case werrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case werrors.IsForbidden(err):
		return http.StatusForbidden
	case werrors.IsNotFound(err):
		return http.StatusNotFound
	case werrors.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a failed result. Internal failures are logged
// and reported without detail.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	result := resultError(werrors.Reason(err), werrors.Code(err))

	if status == http.StatusInternalServerError {
		h.logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		result.Message = internalMessage
		result.Code = codeInternal
	} else {
		h.logger.Debug().
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Msg("request rejected")
	}

	h.respondJSON(w, status, result)
}

func resultError(message, code string) v1alpha1.Result {
	return v1alpha1.Result{Message: message, Code: code}
}
