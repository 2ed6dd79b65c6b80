// Package dev implements the urlgen development server.
//
// The server watches the route manifest and project config, regenerates
// the JavaScript artifacts whenever they change, and serves the generated
// files over HTTP. Connected browsers hold a WebSocket to the server and
// reload automatically after each successful regeneration; generation
// errors are pushed to an in-page overlay instead.
//
// The server also exposes Prometheus metrics under /metrics and traces
// requests and regeneration passes through the global OpenTelemetry
// tracer provider.
package dev
