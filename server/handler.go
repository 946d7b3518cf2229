// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"net/http"

	"github.com/go-json-experiment/json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/server/event"
)

// handleRPC handles all JSON-RPC requests sent over HTTP.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req a2a.JSONRPCRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		s.writeResponse(w, r, a2a.NewErrorResponse(a2a.ID{}, a2a.JSONParseError{Err: err}))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeResponse(w, r, a2a.NewErrorResponse(req.ID, err))
		return
	}

	ctx, span := s.startSpan(r.Context(), &req)
	defer span.End()
	r = r.WithContext(ctx)

	if a2a.IsStreamingMethod(req.Method) {
		s.serveStream(w, r, &req)
		return
	}

	result, err := s.call(ctx, &req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.writeResponse(w, r, a2a.NewErrorResponse(req.ID, err))
		return
	}
	s.writeResponse(w, r, a2a.NewResponse(req.ID, result))
}

func (s *Server) startSpan(ctx context.Context, req *a2a.JSONRPCRequest) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "a2a.server."+req.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", req.Method),
			attribute.String("rpc.jsonrpc.request_id", req.ID.String()),
		))
}

// call runs a request whose method answers with a single result.
func (s *Server) call(ctx context.Context, req *a2a.JSONRPCRequest) (any, error) {
	switch req.Method {
	case a2a.MethodTasksSend:
		var params a2a.TaskSendParams
		if err := req.DecodeParams(&params); err != nil {
			return nil, err
		}
		return s.tm.OnSendTask(ctx, params)

	case a2a.MethodTasksGet:
		var params a2a.TaskQueryParams
		if err := req.DecodeParams(&params); err != nil {
			return nil, err
		}
		return s.tm.OnGetTask(ctx, params)

	case a2a.MethodTasksCancel:
		var params a2a.TaskIDParams
		if err := req.DecodeParams(&params); err != nil {
			return nil, err
		}
		return s.tm.OnCancelTask(ctx, params)

	case a2a.MethodTasksPushNotificationSet:
		var params a2a.TaskPushNotificationConfig
		if err := req.DecodeParams(&params); err != nil {
			return nil, err
		}
		return s.tm.OnSetTaskPushNotification(ctx, params)

	case a2a.MethodTasksPushNotificationGet:
		var params a2a.TaskIDParams
		if err := req.DecodeParams(&params); err != nil {
			return nil, err
		}
		return s.tm.OnGetTaskPushNotification(ctx, params)

	default:
		return nil, a2a.MethodNotFoundError{Method: req.Method}
	}
}

// subscribe runs a request whose method answers with an event stream.
func (s *Server) subscribe(ctx context.Context, req *a2a.JSONRPCRequest) (*event.Subscription, error) {
	switch req.Method {
	case a2a.MethodTasksSendSubscribe:
		var params a2a.TaskSendParams
		if err := req.DecodeParams(&params); err != nil {
			return nil, err
		}
		return s.tm.OnSendTaskSubscribe(ctx, params)

	case a2a.MethodTasksResubscribe:
		var params a2a.TaskQueryParams
		if err := req.DecodeParams(&params); err != nil {
			return nil, err
		}
		return s.tm.OnResubscribeToTask(ctx, params)

	default:
		return nil, a2a.MethodNotFoundError{Method: req.Method}
	}
}

// eventResponse wraps ev in the response to request id.
func eventResponse(id a2a.ID, ev a2a.Event) *a2a.JSONRPCResponse {
	if e, ok := ev.(*a2a.ErrorEvent); ok {
		return a2a.NewErrorResponse(id, e.Err)
	}
	return a2a.NewResponse(id, ev)
}

func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, resp *a2a.JSONRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.MarshalWrite(w, resp); err != nil {
		s.logger.ErrorContext(r.Context(), "response not written", "id", resp.ID.String(), "error", err)
	}
}
