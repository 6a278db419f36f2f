package observability

import (
	"context"
	"testing"
	"time"

	"legalaid-seeder/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

func TestObservability_SpansAndMetrics(t *testing.T) {
	obs := New("seeder-test", logger.NewTestLogger(t))
	defer obs.Shutdown()

	ctx, span := obs.StartSpan(context.Background(), "data/build-data")
	assert.True(t, span.SpanContext().IsValid())
	obs.RecordOperation(ctx, "data/build-data", "success", 12*time.Millisecond)
	span.End()
}

func TestObservability_ZeroValueIsSafe(t *testing.T) {
	var obs Observability

	ctx, span := obs.StartSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	obs.RecordOperation(ctx, "noop", "success", time.Millisecond)
	span.End()
	obs.Shutdown()
}
