// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/gorilla/websocket"

	a2a "github.com/go-a2a/a2a-server"
)

const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 1 << 20
)

// wsConn serializes writes to a WebSocket connection.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) write(resp *a2a.JSONRPCResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// handleWebSocket serves JSON-RPC over a WebSocket connection. Each text
// frame carries one request. Streaming methods answer with one frame per
// event; streams of one connection run concurrently.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.InfoContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(wsMaxMessageSize)

	ws := &wsConn{conn: conn}
	ctx, cancel := context.WithCancel(r.Context())
	var streams sync.WaitGroup
	defer func() {
		cancel()
		streams.Wait()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.InfoContext(ctx, "websocket read failed", "error", err)
			}
			return
		}

		var req a2a.JSONRPCRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := ws.write(a2a.NewErrorResponse(a2a.ID{}, a2a.JSONParseError{Err: err})); err != nil {
				return
			}
			continue
		}
		if err := req.Validate(); err != nil {
			if err := ws.write(a2a.NewErrorResponse(req.ID, err)); err != nil {
				return
			}
			continue
		}

		if a2a.IsStreamingMethod(req.Method) {
			sub, err := s.subscribe(ctx, &req)
			if err != nil {
				if err := ws.write(a2a.NewErrorResponse(req.ID, err)); err != nil {
					return
				}
				continue
			}

			streams.Add(1)
			go func() {
				defer streams.Done()
				for ev := range sub.Events(ctx) {
					if err := ws.write(eventResponse(req.ID, ev)); err != nil {
						return
					}
				}
			}()
			continue
		}

		resp := a2a.NewResponse(req.ID, nil)
		result, err := s.call(ctx, &req)
		if err != nil {
			resp = a2a.NewErrorResponse(req.ID, err)
		} else {
			resp.Result = result
		}
		if err := ws.write(resp); err != nil {
			return
		}
	}
}
