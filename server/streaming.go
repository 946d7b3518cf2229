// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"io"
	"net/http"

	"github.com/go-json-experiment/json"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/internal/pool"
)

// serveStream answers a streaming request with server-sent events, one
// JSON-RPC response per event. Errors raised before the subscription exists
// are answered with a plain JSON-RPC error response.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request, req *a2a.JSONRPCRequest) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeResponse(w, r, a2a.NewErrorResponse(req.ID, a2a.UnsupportedOperationError{Operation: "streaming"}))
		return
	}

	sub, err := s.subscribe(ctx, req)
	if err != nil {
		s.writeResponse(w, r, a2a.NewErrorResponse(req.ID, err))
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // For Nginx proxy
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range sub.Events(ctx) {
		if err := writeEvent(w, eventResponse(req.ID, ev)); err != nil {
			s.logger.InfoContext(ctx, "stream client gone", "task_id", sub.TaskID(), "error", err)
			return
		}
		flusher.Flush()
	}

	s.logger.DebugContext(ctx, "stream closed", "task_id", sub.TaskID())
}

// writeEvent writes resp as a single server-sent event.
func writeEvent(w io.Writer, resp *a2a.JSONRPCResponse) error {
	buf := pool.Bytes.Get()
	defer pool.Bytes.Put(buf)

	buf.WriteString("data: ")
	if err := json.MarshalWrite(buf, resp); err != nil {
		return err
	}
	buf.WriteString("\n\n")

	_, err := w.Write(buf.Bytes())
	return err
}
