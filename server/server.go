// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes a [TaskManager] over JSON-RPC.
//
// Requests are accepted as HTTP POSTs on the root path, where the streaming
// methods answer with server-sent events, and over a WebSocket connection on
// /ws. The agent card is published at /.well-known/agent.json.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/internal/telemetry"
	"github.com/go-a2a/a2a-server/server/notification"
)

// Config holds configuration for the A2A server.
type Config struct {
	// AgentCard represents metadata about the agent. Its capabilities are
	// filled in from the task manager.
	AgentCard *a2a.AgentCard
	// TaskManager serves the task methods.
	TaskManager *TaskManager
	// Keys publishes the push notification signing keys at
	// /.well-known/jwks.json when set.
	Keys *notification.KeyManager
}

// Server implements the A2A protocol server.
type Server struct {
	tm        *TaskManager
	agentCard *a2a.AgentCard
	keys      *notification.KeyManager
	mux       *http.ServeMux
	upgrader  websocket.Upgrader

	endpoint string
	logger   *slog.Logger
	tracer   trace.Tracer

	mu   sync.Mutex
	http *http.Server
}

// NewServer creates a new A2A server instance with the provided configuration.
func NewServer(cfg Config, opts ...Option) (*Server, error) {
	if cfg.AgentCard == nil {
		return nil, fmt.Errorf("agent card is required")
	}
	if cfg.TaskManager == nil {
		return nil, fmt.Errorf("task manager is required")
	}

	card := *cfg.AgentCard
	card.Capabilities.Streaming = true
	card.Capabilities.PushNotifications = cfg.TaskManager.PushNotifications()
	if err := card.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		tm:        cfg.TaskManager,
		agentCard: &card,
		keys:      cfg.Keys,
		mux:       http.NewServeMux(),
		endpoint:  ":8080",
		logger:    slog.Default(),
		tracer:    otel.GetTracerProvider().Tracer(telemetry.ScopeName),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerHandlers()

	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// AgentCard returns the agent card served by s.
func (s *Server) AgentCard() a2a.AgentCard {
	return *s.agentCard
}

func (s *Server) registerHandlers() {
	s.mux.HandleFunc("GET /.well-known/agent.json", s.handleAgentCard)
	if s.keys != nil {
		s.mux.Handle("GET /.well-known/jwks.json", s.keys)
	}
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	s.mux.HandleFunc("POST /", s.handleRPC)
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(s.agentCard); err != nil {
		s.logger.ErrorContext(r.Context(), "agent card not written", "error", err)
	}
}

// ListenAndServe listens on the configured endpoint and serves requests,
// including HTTP/2 over cleartext, until [Server.Shutdown] is called.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.endpoint)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.endpoint, err)
	}
	return s.Serve(ln)
}

// Serve serves requests on ln until [Server.Shutdown] is called.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           h2c.NewHandler(s, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.logger.Info("serving", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight requests and
// running tasks to finish, or for ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if err := s.tm.Wait(ctx); err != nil {
		errs = append(errs, fmt.Errorf("wait for running tasks: %w", err))
	}
	return errors.Join(errs...)
}
