package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/common/logger"
	"legalaid-seeder/internal/common/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Count int `json:"count"`
}

func TestTrack(t *testing.T) {
	before := testutil.ToFloat64(metrics.OperationsFailed.WithLabelValues("track-test", string(apperrors.ErrCodeConfiguration)))

	err := Track(context.Background(), nil, "track-test", func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	err = Track(context.Background(), nil, "track-test", func(ctx context.Context) error {
		return apperrors.NewConfigurationError("nope")
	})
	require.Error(t, err)

	after := testutil.ToFloat64(metrics.OperationsFailed.WithLabelValues("track-test", string(apperrors.ErrCodeConfiguration)))
	assert.Equal(t, before+1, after)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.OperationsActive.WithLabelValues("track-test")))
}

func TestServe(t *testing.T) {
	handler := func(exec func(ctx context.Context, in *echoInput) (interface{}, error)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var in echoInput
			Serve(w, r, "echo", time.Second, logger.NewTestLogger(t), &in, func(ctx context.Context) (interface{}, error) {
				return exec(ctx, &in)
			})
		}
	}

	t.Run("success forwards authorization", func(t *testing.T) {
		h := handler(func(ctx context.Context, in *echoInput) (interface{}, error) {
			return map[string]interface{}{"count": in.Count, "auth": Authorization(ctx)}, nil
		})

		req := httptest.NewRequest(http.MethodPost, "/functions/echo", strings.NewReader(`{"count": 3}`))
		req.Header.Set("Authorization", "Bearer caller")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, float64(3), body["count"])
		assert.Equal(t, "Bearer caller", body["auth"])
	})

	t.Run("empty body uses defaults", func(t *testing.T) {
		h := handler(func(ctx context.Context, in *echoInput) (interface{}, error) {
			return in, nil
		})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/functions/echo", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count": 0}`, rec.Body.String())
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		h := handler(func(ctx context.Context, in *echoInput) (interface{}, error) {
			t.Fatal("exec must not run")
			return nil, nil
		})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/functions/echo", strings.NewReader(`{"counts": 3}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), string(apperrors.ErrCodeInvalidRequest))
	})

	t.Run("method not allowed", func(t *testing.T) {
		h := handler(func(ctx context.Context, in *echoInput) (interface{}, error) { return nil, nil })
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/functions/echo", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("errors map to status", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
		}{
			{apperrors.NewConfigurationError("bad"), http.StatusBadRequest},
			{apperrors.NewBackendRequestError("insert cases", 409, "dup"), http.StatusBadGateway},
			{context.DeadlineExceeded, http.StatusInternalServerError},
		}
		for _, tt := range tests {
			err := tt.err
			h := handler(func(ctx context.Context, in *echoInput) (interface{}, error) { return nil, err })
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/functions/echo", nil))
			assert.Equal(t, tt.status, rec.Code, err.Error())
		}
	})
}
