// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a_test

import (
	"errors"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"

	a2a "github.com/go-a2a/a2a-server"
)

func TestRequestDecode(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantID string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"abc","method":"tasks/get","params":{"id":"t1"}}`, "abc"},
		{"number id", `{"jsonrpc":"2.0","id":7,"method":"tasks/get","params":{"id":"t1"}}`, "7"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"tasks/get","params":{"id":"t1"}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req a2a.JSONRPCRequest
			if err := json.Unmarshal([]byte(tt.input), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if err := req.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if got := req.ID.String(); got != tt.wantID {
				t.Errorf("ID = %q, want %q", got, tt.wantID)
			}
			var params a2a.TaskQueryParams
			if err := req.DecodeParams(&params); err != nil {
				t.Fatalf("DecodeParams() error = %v", err)
			}
			if params.ID != "t1" {
				t.Errorf("params.ID = %q, want t1", params.ID)
			}
		})
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  a2a.JSONRPCRequest
	}{
		{"bad version", a2a.JSONRPCRequest{JSONRPC: "1.0", Method: a2a.MethodTasksGet}},
		{"missing method", a2a.JSONRPCRequest{JSONRPC: "2.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); !errors.Is(err, a2a.ErrInvalidRequest) {
				t.Errorf("Validate() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestDecodeParamsMissing(t *testing.T) {
	req := a2a.JSONRPCRequest{JSONRPC: "2.0", Method: a2a.MethodTasksGet}
	var params a2a.TaskQueryParams
	if err := req.DecodeParams(&params); !errors.Is(err, a2a.ErrInvalidParams) {
		t.Errorf("DecodeParams() error = %v, want ErrInvalidParams", err)
	}
}

func TestNewRequest(t *testing.T) {
	req, err := a2a.NewRequest(1, a2a.MethodTasksCancel, a2a.TaskIDParams{ID: "t1"})
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	const want = `{"jsonrpc":"2.0","id":1,"method":"tasks/cancel","params":{"id":"t1"}}`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Errorf("Marshal() mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorResponse(t *testing.T) {
	resp := a2a.NewErrorResponse(a2a.NewID("r1"), a2a.TaskNotFoundError{TaskID: "t1"})
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	const want = `{"jsonrpc":"2.0","id":"r1","error":{"code":-32001,"message":"task not found: t1"}}`
	if got := string(b); got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}
