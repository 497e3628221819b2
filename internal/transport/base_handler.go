package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/payment-management/internal"
	"github.com/frahmantamala/payment-management/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response for failures raised by the transport
// itself, such as malformed path parameters.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Warn("http error", "status", status, "message", message)

	var appErr *errors.AppError
	switch status {
	case http.StatusNotFound:
		appErr = errors.NewNotFoundError(message, errors.ErrCodeInvalidRequest)
	case http.StatusInternalServerError:
		appErr = errors.NewInternalError(message, nil)
	default:
		appErr = errors.NewValidationError(message, errors.ErrCodeInvalidRequest)
		appErr.StatusCode = status
	}
	h.writeAppError(w, appErr)
}

// HandleServiceError renders err. AppErrors keep their status; anything else
// is reported as a generic internal error.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	appErr, ok := errors.IsAppError(err)
	if !ok {
		h.Logger.Error("unexpected error", "error", err)
		appErr = errors.NewInternalError("unexpected error", err)
	}
	if appErr.Type == errors.ErrorTypeInternal {
		h.Logger.Error("internal error", "error", appErr)
	}
	h.writeAppError(w, appErr)
}

func (h *BaseHandler) writeAppError(w http.ResponseWriter, appErr *errors.AppError) {
	status, body := appErr.ToHTTPResponse()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	h.WriteJSON(w, status, body)
}
