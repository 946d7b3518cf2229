// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// Option represents an option for configuring the [Server].
type Option func(*Server)

// WithEndpoint sets the listen address of the [Server].
func WithEndpoint(endpoint string) Option {
	return func(s *Server) {
		s.endpoint = endpoint
	}
}

// WithLogger sets the [*slog.Logger] for the [Server].
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTracer sets the [trace.Tracer] for the [Server].
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithCheckOrigin sets the origin check of the WebSocket endpoint. By
// default only same-origin upgrades are accepted.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = check
	}
}
