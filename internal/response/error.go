package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/pkg/logger"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	}); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode error response",
			"error", err, "status", status, "code", code)
	}
}

// HandleError maps the error taxonomy to HTTP responses. Every failure is
// surfaced as a failed outcome carrying its kind; nothing here retries.
func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch e := err.(type) {
	case *errs.NotFoundError:
		log.Warn("resource not found", "error", e.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", e.Message)

	case *errs.ValidationError:
		log.Warn("validation failed", "error", e.Message)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_input", e.Message)

	case *errs.PermissionDeniedError:
		log.Warn("permission denied", "error", e.Message)
		h.WriteError(w, r, http.StatusForbidden, "forbidden", e.Message)

	case *errs.UploadError:
		log.Error("upload failed", "error", e.Err)
		h.WriteError(w, r, http.StatusBadGateway, "upload_failed",
			"Image upload failed")

	case *errs.CleanupError:
		// The document is gone; the orphaned blobs are an accepted leak and
		// are not reported distinctly to the user.
		log.Error("cleanup incomplete",
			"orphaned", len(e.Orphaned),
			"error", e.Err)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"Delete did not fully complete")

	case *errs.SubscriptionError:
		log.Error("subscription failed",
			"collection", e.Collection,
			"error", e.Err)
		h.WriteError(w, r, http.StatusInternalServerError, "subscription_failed",
			"Live updates are unavailable")

	case *errs.DatabaseError:
		log.Error("database error",
			"operation", e.Operation,
			"error", e.Err)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	default:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}
