// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package anthropic_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/server/agent/anthropic"
	"github.com/go-a2a/a2a-server/server/history"
	"github.com/go-a2a/a2a-server/server/processor"
)

const messageResponse = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-test",
  "content": [{"type": "text", "text": "hi there"}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 3, "output_tokens": 2}
}`

var streamResponse = strings.Join([]string{
	`event: message_start`,
	`data: {"type":"message_start","message":{"id":"msg_01","type":"message","role":"assistant","model":"claude-test","content":[],"stop_reason":null,"usage":{"input_tokens":3,"output_tokens":0}}}`,
	``,
	`event: content_block_start`,
	`data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
	``,
	`event: content_block_delta`,
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hi "}}`,
	``,
	`event: content_block_delta`,
	`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"there"}}`,
	``,
	`event: content_block_stop`,
	`data: {"type":"content_block_stop","index":0}`,
	``,
	`event: message_delta`,
	`data: {"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":2}}`,
	``,
	`event: message_stop`,
	`data: {"type":"message_stop"}`,
	``,
	``,
}, "\n")

type request struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Stream    bool   `json:"stream"`
	Messages  []struct {
		Role string `json:"role"`
	} `json:"messages"`
}

func newServer(t *testing.T, got *request) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if got.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			io.WriteString(w, streamResponse)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, messageResponse)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newAgent(t *testing.T, srv *httptest.Server) *anthropic.Agent {
	t.Helper()

	a, err := anthropic.New(anthropic.Config{
		APIKey:    "test-key",
		BaseURL:   srv.URL + "/",
		Model:     "claude-test",
		MaxTokens: 64,
	}, option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

var conversation = []history.Entry{
	{Role: history.RoleUser, Content: "hello"},
	{Role: history.RoleAssistant, Content: "hey"},
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  anthropic.Config
	}{
		{name: "no key", cfg: anthropic.Config{Model: "m", MaxTokens: 1}},
		{name: "no model", cfg: anthropic.Config{APIKey: "k", MaxTokens: 1}},
		{name: "no max tokens", cfg: anthropic.Config{APIKey: "k", Model: "m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := anthropic.New(tt.cfg); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func TestInvoke(t *testing.T) {
	var got request
	a := newAgent(t, newServer(t, &got))

	resp, err := a.Invoke(t.Context(), "how are you", "s1", conversation)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if resp != "hi there" {
		t.Errorf("Invoke() = %v, want %q", resp, "hi there")
	}

	if got.Model != "claude-test" || got.MaxTokens != 64 || got.Stream {
		t.Errorf("unexpected request %+v", got)
	}
	var roles []string
	for _, m := range got.Messages {
		roles = append(roles, m.Role)
	}
	if diff := cmp.Diff([]string{"user", "assistant", "user"}, roles); diff != "" {
		t.Errorf("message roles mismatch (-want +got):\n%s", diff)
	}
}

func TestStream(t *testing.T) {
	var got request
	a := newAgent(t, newServer(t, &got))

	var chunks []processor.Chunk
	for item, err := range a.Stream(t.Context(), "how are you", "s1", nil) {
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		chunks = append(chunks, item.(processor.Chunk))
	}
	if !got.Stream {
		t.Error("request did not ask for a stream")
	}

	want := []processor.Chunk{
		{Content: "hi ", Artifacts: []a2a.Artifact{{Name: "response", Parts: []a2a.Part{a2a.TextPart{Text: "hi "}}}}},
		{Content: "there", Artifacts: []a2a.Artifact{{Name: "response", Parts: []a2a.Part{a2a.TextPart{Text: "there"}}, Append: true}}},
		{Complete: true, Artifacts: []a2a.Artifact{{Name: "response", Parts: []a2a.Part{}, Append: true, LastChunk: true}}},
	}
	if diff := cmp.Diff(want, chunks); diff != "" {
		t.Errorf("Stream() chunks mismatch (-want +got):\n%s", diff)
	}
}
