package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jass/bff/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestStartUpstreamSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartUpstreamSpan(context.Background(), "users", "GET", "http://users/api/admin/users")
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	telemetry.EndSpan(span, nil)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "upstream.users GET", spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "users", attrs[telemetry.AttrUpstreamService].AsString())
	assert.Equal(t, "http://users/api/admin/users", attrs["url.full"].AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestStartSpan_EndWithError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "report.render",
		telemetry.AttrReportKind.String("payments"))
	telemetry.EndSpan(span, errors.New("chrome crashed"))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	assert.Equal(t, "payments", attrMap(spans[0].Attributes())[telemetry.AttrReportKind].AsString())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "chrome crashed", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestRecordError_Nil(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.RecordError(nil, errors.New("x"))
		_, span := telemetry.StartSpan(context.Background(), "noop")
		telemetry.RecordError(span, nil)
		span.End()
	})
}
