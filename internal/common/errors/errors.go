// Package errors provides the structured error type shared by the generator,
// the backend sinks and the HTTP/CLI surfaces.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Generator errors
const (
	ErrCodeInvalidArgument    ErrorCode = "INVALID_ARGUMENT"
	ErrCodeConfiguration      ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeCodeSpaceExhausted ErrorCode = "CODE_SPACE_EXHAUSTED"
	ErrCodeDatasetInvalid     ErrorCode = "DATASET_VERIFICATION_FAILED"
)

// Backend errors
const (
	ErrCodeBackendRequestFailed     ErrorCode = "BACKEND_REQUEST_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDatabaseDeleteFailed     ErrorCode = "DATABASE_DELETE_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeUserProvisioningFailed   ErrorCode = "USER_PROVISIONING_FAILED"
	ErrCodeCodeRegistryFailed       ErrorCode = "CODE_REGISTRY_FAILED"
	ErrCodeExportFailed             ErrorCode = "EXPORT_FAILED"
)

// Caller errors
const (
	ErrCodeConfirmationRequired ErrorCode = "CONFIRMATION_REQUIRED"
	ErrCodeInvalidRequest       ErrorCode = "INVALID_REQUEST"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Details)
}

// Is matches on the error code, so the package sentinels work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code == e.Code
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is. They carry only a code.
var (
	ErrInvalidArgument      = &StandardError{Code: ErrCodeInvalidArgument}
	ErrConfiguration        = &StandardError{Code: ErrCodeConfiguration}
	ErrCodeSpaceExhausted   = &StandardError{Code: ErrCodeCodeSpaceExhausted}
	ErrDatasetInvalid       = &StandardError{Code: ErrCodeDatasetInvalid}
	ErrBackendRequest       = &StandardError{Code: ErrCodeBackendRequestFailed}
	ErrDatabaseInsert       = &StandardError{Code: ErrCodeDatabaseInsertFailed}
	ErrDatabaseDelete       = &StandardError{Code: ErrCodeDatabaseDeleteFailed}
	ErrUserProvisioning     = &StandardError{Code: ErrCodeUserProvisioningFailed}
	ErrConfirmationRequired = &StandardError{Code: ErrCodeConfirmationRequired}
	ErrExportFailed         = &StandardError{Code: ErrCodeExportFailed}
)

// NewInvalidArgumentError reports a bad argument to a generator primitive.
// An empty pick source is reported with this code too.
func NewInvalidArgumentError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidArgument,
		Message:   "Invalid argument",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyInputError is the InvalidArgument raised when picking from nothing.
func NewEmptyInputError(what string) *StandardError {
	return NewInvalidArgumentError(fmt.Sprintf("cannot pick from empty %s", what)).
		WithMetadata("emptyInput", true)
}

// NewConfigurationError reports an inconsistent build request.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfiguration,
		Message:   "Invalid generator configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCodeSpaceExhaustedError reports that no unused legal-service code was found.
func NewCodeSpaceExhaustedError(digits, attempts, used int) *StandardError {
	return &StandardError{
		Code:      ErrCodeCodeSpaceExhausted,
		Message:   "No unused legal service code available",
		Details:   fmt.Sprintf("digits: %d, attempts: %d, codes in use: %d", digits, attempts, used),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDatasetInvalidError(problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatasetInvalid,
		Message:   "Generated dataset failed verification",
		Details:   strings.Join(problems, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendRequestError wraps a failed REST call.
func NewBackendRequestError(operation string, status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendRequestFailed,
		Message:   fmt.Sprintf("Backend request '%s' failed", operation),
		Details:   fmt.Sprintf("status: %d, body: %s", status, body),
		Retryable: status >= 500 || status == 429,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendUnavailableError wraps a REST call that never got a response.
func NewBackendUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendRequestFailed,
		Message:   fmt.Sprintf("Backend request '%s' failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDatabaseInsertFailedError creates a retryable insert error for table.
func NewDatabaseInsertFailedError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   fmt.Sprintf("Insert into '%s' failed", table),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewDatabaseDeleteFailedError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseDeleteFailed,
		Message:   fmt.Sprintf("Delete from '%s' failed", table),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("table: %s, error: %s", table, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewUserProvisioningFailedError(email string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUserProvisioningFailed,
		Message:   "Auth user provisioning failed",
		Details:   fmt.Sprintf("email: %s, error: %s", email, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewCodeRegistryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCodeRegistryFailed,
		Message:   "Legal service code registry unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewExportFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExportFailed,
		Message:   "Dataset export failed",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewConfirmationRequiredError is returned by destructive operations run without consent.
func NewConfirmationRequiredError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfirmationRequired,
		Message:   fmt.Sprintf("Operation '%s' deletes data and must be confirmed", operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeDatabaseDeleteFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeBackendRequestFailed,
		ErrCodeUserProvisioningFailed:
		return 3

	case ErrCodeCodeRegistryFailed:
		return 1

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeInvalidArgument || code == ErrCodeConfiguration ||
		code == ErrCodeCodeSpaceExhausted || code == ErrCodeDatasetInvalid:
		return "GENERATOR"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "BACKEND") || strings.Contains(codeStr, "USER_PROVISIONING"):
		return "BACKEND"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "CONFIRMATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// AsStandardError normalizes any error into a StandardError.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}
