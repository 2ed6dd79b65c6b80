package dev

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer name for the dev server. The tracer resolves against the global
// OpenTelemetry tracer provider, so tracing is a no-op unless the embedding
// process installs one.
const tracerName = "urlgen/dev"

// traceRequests wraps an http.Handler so each request gets a span. Upgrade
// requests pass through unwrapped, same as the metrics middleware.
func traceRequests(next http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := tracer.Start(
			r.Context(),
			"urlgen.dev "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	})
}

// traceRebuild runs fn inside a span covering one regeneration pass.
func traceRebuild(ctx context.Context, trigger string, fn func(context.Context) error) error {
	tracer := otel.Tracer(tracerName)

	spanCtx, span := tracer.Start(
		ctx,
		"urlgen.rebuild",
		trace.WithAttributes(attribute.String("urlgen.trigger", trigger)),
	)
	defer span.End()

	err := fn(spanCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}
