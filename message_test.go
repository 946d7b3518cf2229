// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a_test

import (
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"

	a2a "github.com/go-a2a/a2a-server"
)

func TestMessageUnmarshalParts(t *testing.T) {
	const input = `{
		"role": "user",
		"parts": [
			{"type": "text", "text": "hello"},
			{"type": "file", "file": {"name": "a.txt", "mimeType": "text/plain", "uri": "file:///a.txt"}},
			{"type": "data", "data": {"answer": 42}}
		]
	}`

	var got a2a.Message
	if err := json.Unmarshal([]byte(input), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := a2a.Message{
		Role: a2a.RoleUser,
		Parts: []a2a.Part{
			a2a.TextPart{Text: "hello"},
			a2a.FilePart{File: a2a.FileContent{Name: "a.txt", MimeType: "text/plain", URI: "file:///a.txt"}},
			a2a.DataPart{Data: map[string]any{"answer": float64(42)}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
	}
}

func TestMessageUnmarshalUnknownPart(t *testing.T) {
	var m a2a.Message
	err := json.Unmarshal([]byte(`{"role":"user","parts":[{"type":"video"}]}`), &m)
	if err == nil || !strings.Contains(err.Error(), `unknown part type "video"`) {
		t.Fatalf("Unmarshal() error = %v, want unknown part type", err)
	}
}

func TestPartMarshalType(t *testing.T) {
	msg := a2a.Message{
		Role:  a2a.RoleAgent,
		Parts: []a2a.Part{a2a.TextPart{Text: "hi"}, a2a.DataPart{Data: map[string]any{"x": "y"}}},
	}
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	const want = `{"role":"agent","parts":[{"type":"text","text":"hi"},{"type":"data","data":{"x":"y"}}]}`
	if got := string(b); got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestMessageText(t *testing.T) {
	tests := []struct {
		name  string
		parts []a2a.Part
		want  string
	}{
		{"empty", nil, ""},
		{"single", []a2a.Part{a2a.TextPart{Text: "hello"}}, "hello"},
		{"joined", []a2a.Part{a2a.TextPart{Text: "hello"}, a2a.TextPart{Text: "world"}}, "hello world"},
		{"skips non-text", []a2a.Part{a2a.DataPart{}, a2a.TextPart{Text: "only"}}, "only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := a2a.Message{Role: a2a.RoleUser, Parts: tt.parts}
			if got := m.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArtifactUnmarshal(t *testing.T) {
	var got a2a.Artifact
	input := `{"name":"out","parts":[{"type":"text","text":"b"}],"index":1,"append":true,"lastChunk":true}`
	if err := json.Unmarshal([]byte(input), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := a2a.Artifact{Name: "out", Parts: []a2a.Part{a2a.TextPart{Text: "b"}}, Index: 1, Append: true, LastChunk: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
	}
}
