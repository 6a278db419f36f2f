package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
)

// Is and As forward to the standard library so callers need one import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

// Logger is the subset of logger.Logger the error handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns operation errors into JSON responses.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// ErrorResponse is the body written for a failed operation.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
}

// HTTPStatus maps an error code onto a response status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidArgument, ErrCodeConfiguration, ErrCodeCodeSpaceExhausted,
		ErrCodeInvalidRequest, ErrCodeConfirmationRequired:
		return http.StatusBadRequest
	case ErrCodeBackendRequestFailed, ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed, ErrCodeDatabaseDeleteFailed,
		ErrCodeQueryExecutionFailed, ErrCodeUserProvisioningFailed,
		ErrCodeCodeRegistryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteHTTPError logs err and writes it as JSON.
func (h *ErrorHandler) WriteHTTPError(w http.ResponseWriter, operation string, err error) {
	stdErr := AsStandardError(err)
	status := HTTPStatus(stdErr.Code)

	if h.logger != nil {
		h.logger.Error("operation failed", map[string]interface{}{
			"operation":     operation,
			"errorCode":     string(stdErr.Code),
			"message":       stdErr.Message,
			"details":       stdErr.Details,
			"retryable":     stdErr.Retryable,
			"retries":       GetRetryCount(stdErr.Code),
			"errorCategory": GetErrorCategory(stdErr.Code),
			"status":        status,
		})
	}

	WriteJSONError(w, status, stdErr)
}

// WriteJSONError writes stdErr with the given status.
func WriteJSONError(w http.ResponseWriter, status int, stdErr *StandardError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:     stdErr.Message,
		Code:      stdErr.Code,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
	})
}
