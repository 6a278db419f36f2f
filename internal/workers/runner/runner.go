// Package runner holds the plumbing every operation handler shares:
// metrics and spans around an execution, the HTTP envelope, and the
// caller's Authorization header.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/common/logger"
	"legalaid-seeder/internal/common/metrics"
	"legalaid-seeder/internal/common/observability"

	"go.opentelemetry.io/otel/codes"
)

const maxBodyBytes = 1 << 20

type authorizationKey struct{}

// WithAuthorization stores the caller's Authorization header in ctx.
func WithAuthorization(ctx context.Context, authorization string) context.Context {
	return context.WithValue(ctx, authorizationKey{}, authorization)
}

// Authorization returns the header stored by WithAuthorization, if any.
func Authorization(ctx context.Context) string {
	v, _ := ctx.Value(authorizationKey{}).(string)
	return v
}

// Track runs fn inside a span and records duration, active count and
// failures for operation.
func Track(ctx context.Context, obs *observability.Observability, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	metrics.OperationsActive.WithLabelValues(operation).Inc()
	defer metrics.OperationsActive.WithLabelValues(operation).Dec()

	ctx, span := obs.StartSpan(ctx, operation)
	defer span.End()

	err := fn(ctx)
	elapsed := time.Since(start)
	metrics.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())

	status := "success"
	if err != nil {
		status = "failure"
		code := apperrors.AsStandardError(err).Code
		metrics.OperationsFailed.WithLabelValues(operation, string(code)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
	}
	obs.RecordOperation(ctx, operation, status, elapsed)
	return err
}

// Serve decodes the request body into input, runs exec with the caller's
// Authorization attached and writes the result as JSON.
func Serve(w http.ResponseWriter, r *http.Request, operation string, timeout time.Duration, log logger.Logger,
	input interface{}, exec func(ctx context.Context) (interface{}, error)) {
	errs := apperrors.NewErrorHandler(log)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		apperrors.WriteJSONError(w, http.StatusMethodNotAllowed,
			apperrors.NewInvalidRequestError("method "+r.Method+" not allowed"))
		return
	}

	// An empty body means every parameter takes its default.
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(input); err != nil && !errors.Is(err, io.EOF) {
		errs.WriteHTTPError(w, operation, apperrors.NewInvalidRequestError("parse body: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	ctx = WithAuthorization(ctx, r.Header.Get("Authorization"))

	output, err := exec(ctx)
	if err != nil {
		errs.WriteHTTPError(w, operation, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(output)
}
