package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for spans started by this service
const TracerName = "jass-bff"

// Attribute keys shared by the BFF spans
const (
	AttrUpstreamService = attribute.Key("jass.upstream.service")
	AttrReportKind      = attribute.Key("jass.report.kind")
	AttrReportRows      = attribute.Key("jass.report.rows")
)

// StartSpan starts an internal span. The caller ends it, usually through
// EndSpan.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartUpstreamSpan starts the client span of one call to a JASS service,
// named "upstream.<service> <METHOD>"
func StartUpstreamSpan(ctx context.Context, service, method, target string) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, "upstream."+service+" "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			AttrUpstreamService.String(service),
			attribute.String("http.request.method", method),
			attribute.String("url.full", target),
		),
	)
}

// RecordError marks the span as failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// EndSpan records err, if any, and ends the span
func EndSpan(span trace.Span, err error) {
	RecordError(span, err)
	span.End()
}
