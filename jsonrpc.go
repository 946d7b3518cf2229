// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// A2A RPC method names.
const (
	// MethodTasksSend is the method name for sending a task.
	MethodTasksSend = "tasks/send"
	// MethodTasksGet is the method name for getting a task.
	MethodTasksGet = "tasks/get"
	// MethodTasksCancel is the method name for canceling a task.
	MethodTasksCancel = "tasks/cancel"
	// MethodTasksPushNotificationSet is the method name for setting push notification configuration.
	MethodTasksPushNotificationSet = "tasks/pushNotification/set"
	// MethodTasksPushNotificationGet is the method name for getting push notification configuration.
	MethodTasksPushNotificationGet = "tasks/pushNotification/get"
	// MethodTasksSendSubscribe is the method name for sending a task and subscribing to updates.
	MethodTasksSendSubscribe = "tasks/sendSubscribe"
	// MethodTasksResubscribe is the method name for resubscribing to task updates.
	MethodTasksResubscribe = "tasks/resubscribe"
)

// IsStreamingMethod reports whether method answers with an event stream.
func IsStreamingMethod(method string) bool {
	return method == MethodTasksSendSubscribe || method == MethodTasksResubscribe
}

// ID represents the unique identifier for JSON-RPC messages.
// It holds a string, a number, or nothing (null).
type ID struct {
	any
}

// NewID returns an ID holding v, which must be a string, an integer or a float64.
func NewID(v any) ID {
	switch v := v.(type) {
	case int:
		return ID{float64(v)}
	case int64:
		return ID{float64(v)}
	default:
		return ID{v}
	}
}

// Raw returns the underlying value of id.
func (id ID) Raw() any { return id.any }

func (id ID) String() string {
	switch id := id.any.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// MarshalJSON implements [json.Marshaler].
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.any)
}

// UnmarshalJSON implements [json.Unmarshaler].
func (id *ID) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.(type) {
	case string, float64, nil:
		id.any = v
		return nil
	default:
		return fmt.Errorf("invalid JSON-RPC id %s", data)
	}
}

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	// JSONRPC version, always "2.0".
	JSONRPC string `json:"jsonrpc"`
	// ID is the request/response correlation id.
	ID ID `json:"id"`
	// Method identifies the operation to perform.
	Method string `json:"method"`
	// Params contains parameters for the method.
	Params jsontext.Value `json:"params,omitzero"`
}

// NewRequest builds a request for method with params encoded as JSON.
func NewRequest(id any, method string, params any) (*JSONRPCRequest, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", method, err)
	}
	return &JSONRPCRequest{
		JSONRPC: ProtocolVersion,
		ID:      NewID(id),
		Method:  method,
		Params:  raw,
	}, nil
}

// Validate checks the envelope of r.
func (r *JSONRPCRequest) Validate() error {
	if r.JSONRPC != ProtocolVersion {
		return InvalidRequestError{Reason: fmt.Sprintf("unsupported jsonrpc version %q", r.JSONRPC)}
	}
	if r.Method == "" {
		return InvalidRequestError{Reason: "missing method"}
	}
	return nil
}

// DecodeParams unmarshals the params of r into v.
func (r *JSONRPCRequest) DecodeParams(v any) error {
	if len(r.Params) == 0 {
		return InvalidParamsError{Reason: "missing params"}
	}
	if err := json.Unmarshal(r.Params, v); err != nil {
		return InvalidParamsError{Reason: err.Error()}
	}
	return nil
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	// Code is the error code.
	Code int `json:"code"`
	// Message is a short description of the error.
	Message string `json:"message"`
	// Data contains optional additional error details.
	Data any `json:"data,omitzero"`
}

// Error implements error.
func (e *JSONRPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	// JSONRPC version, always "2.0".
	JSONRPC string `json:"jsonrpc"`
	// ID echoes the request id.
	ID ID `json:"id"`
	// Result contains the successful result data.
	// Mutually exclusive with Error.
	Result any `json:"result,omitzero"`
	// Error contains an error object if the request failed.
	// Mutually exclusive with Result.
	Error *JSONRPCError `json:"error,omitzero"`
}

// NewResponse returns a successful response for id.
func NewResponse(id ID, result any) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: ProtocolVersion, ID: id, Result: result}
}

// NewErrorResponse returns an error response for id.
func NewErrorResponse(id ID, err error) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: ProtocolVersion, ID: id, Error: ToJSONRPCError(err)}
}
