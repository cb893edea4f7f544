// Package server exposes the orchestrator over HTTP: a WebSocket endpoint
// for streamed text, a single-shot synthesis endpoint, the voice catalog,
// Prometheus metrics and a health check.
package server
