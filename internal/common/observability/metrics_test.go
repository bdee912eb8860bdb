package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"printmatch-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_JobSpan(t *testing.T) {
	ctx := context.Background()
	o := New(Options{
		ServiceName:     "printmatch-workers-test",
		TracingEnabled:  true,
		TraceSampleRate: 1,
	}, logger.NewTestLogger(t))

	spanCtx, span := o.StartJobSpan(ctx, "calculate-match-score", 42, 7)
	assert.True(t, span.IsRecording())
	assert.True(t, span.SpanContext().IsValid())
	assert.NotEqual(t, ctx, spanCtx)

	o.RecordJobProcessed(spanCtx, "calculate-match-score", "completed")
	o.RecordJobDuration(spanCtx, "calculate-match-score", 15*time.Millisecond)
	EndJobSpan(span, errors.New("boom"))

	require.NoError(t, o.Shutdown(ctx))
}

func TestObservability_ZeroValue(t *testing.T) {
	var o Observability
	_, span := o.StartJobSpan(context.Background(), "rising-producers", 1, 1)
	assert.False(t, span.IsRecording())
	EndJobSpan(span, nil)

	o.RecordJobProcessed(context.Background(), "rising-producers", "completed")
	assert.NoError(t, o.Shutdown(context.Background()))
}
