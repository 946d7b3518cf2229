// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package processor_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/server/processor"
)

type stringer string

func (s stringer) String() string { return "S:" + string(s) }

type panicky struct{}

func (panicky) String() string { panic("boom") }

func agentText(s string) *a2a.Message {
	m := a2a.NewTextMessage(a2a.RoleAgent, s)
	return &m
}

func textArtifacts(s string) []a2a.Artifact {
	return []a2a.Artifact{{Parts: []a2a.Part{a2a.TextPart{Text: s}}}}
}

func TestDefaultFinal(t *testing.T) {
	tests := []struct {
		name      string
		response  any
		wantState a2a.TaskState
		wantMsg   *a2a.Message
		wantArts  []a2a.Artifact
	}{
		{
			name:      "string",
			response:  "hi",
			wantState: a2a.TaskStateCompleted,
			wantMsg:   agentText("hi"),
			wantArts:  textArtifacts("hi"),
		},
		{
			name:      "stringer",
			response:  stringer("x"),
			wantState: a2a.TaskStateCompleted,
			wantMsg:   agentText("S:x"),
			wantArts:  textArtifacts("S:x"),
		},
		{
			name:      "error",
			response:  errors.New("bad"),
			wantState: a2a.TaskStateCompleted,
			wantMsg:   agentText("bad"),
			wantArts:  textArtifacts("bad"),
		},
		{
			name:      "number",
			response:  42,
			wantState: a2a.TaskStateCompleted,
			wantMsg:   agentText("42"),
			wantArts:  textArtifacts("42"),
		},
		{
			name:      "message",
			response:  a2a.NewTextMessage(a2a.RoleAgent, "m"),
			wantState: a2a.TaskStateCompleted,
			wantMsg:   agentText("m"),
			wantArts:  textArtifacts("m"),
		},
		{
			name:      "chunk needing input",
			response:  processor.Chunk{Content: "which one?", NeedsInput: true},
			wantState: a2a.TaskStateInputRequired,
			wantMsg:   agentText("which one?"),
		},
		{
			name:      "plain chunk completes",
			response:  processor.Chunk{Content: "done"},
			wantState: a2a.TaskStateCompleted,
			wantMsg:   agentText("done"),
			wantArts:  textArtifacts("done"),
		},
		{
			name:      "panicking stringer",
			response:  panicky{},
			wantState: a2a.TaskStateCompleted,
			wantMsg:   agentText("Unable to process the response type"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, msg, arts := processor.Default{}.Final(tt.response)
			if state != tt.wantState {
				t.Errorf("state = %q, want %q", state, tt.wantState)
			}
			if diff := cmp.Diff(tt.wantMsg, msg); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantArts, arts); diff != "" {
				t.Errorf("artifacts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultChunk(t *testing.T) {
	extra := []a2a.Artifact{a2a.NewTextArtifact(3, "part")}

	tests := []struct {
		name      string
		item      any
		wantState a2a.TaskState
		wantMsg   *a2a.Message
		wantArts  []a2a.Artifact
		wantFinal bool
	}{
		{
			name:      "string",
			item:      "a",
			wantState: a2a.TaskStateWorking,
			wantMsg:   agentText("a"),
		},
		{
			name:      "map in progress",
			item:      map[string]any{"content": "thinking"},
			wantState: a2a.TaskStateWorking,
			wantMsg:   agentText("thinking"),
		},
		{
			name:      "map complete",
			item:      map[string]any{"content": "done", "is_task_complete": true},
			wantState: a2a.TaskStateCompleted,
			wantMsg:   agentText("done"),
			wantArts:  textArtifacts("done"),
			wantFinal: true,
		},
		{
			name:      "map needs input",
			item:      map[string]any{"content": "name?", "require_user_input": true, "is_task_complete": true},
			wantState: a2a.TaskStateInputRequired,
			wantMsg:   agentText("name?"),
			wantFinal: true,
		},
		{
			name:      "map with wrong flag types",
			item:      map[string]any{"content": 7, "is_task_complete": "yes"},
			wantState: a2a.TaskStateWorking,
			wantMsg:   agentText("7"),
		},
		{
			name:      "chunk with artifacts",
			item:      processor.Chunk{Content: "p", Artifacts: extra},
			wantState: a2a.TaskStateWorking,
			wantMsg:   agentText("p"),
			wantArts:  extra,
		},
		{
			name:      "chunk pointer complete",
			item:      &processor.Chunk{Content: "end", Complete: true, Artifacts: extra},
			wantState: a2a.TaskStateCompleted,
			wantMsg:   agentText("end"),
			wantArts:  extra,
			wantFinal: true,
		},
		{
			name:      "empty closing chunk",
			item:      processor.Chunk{Complete: true},
			wantState: a2a.TaskStateCompleted,
			wantFinal: true,
		},
		{
			name:      "nil",
			item:      nil,
			wantState: a2a.TaskStateWorking,
			wantMsg:   agentText(""),
		},
		{
			name:      "panicking stringer",
			item:      panicky{},
			wantState: a2a.TaskStateWorking,
			wantMsg:   agentText("Unable to process the stream response item"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, msg, arts, final := processor.Default{}.Chunk(tt.item)
			if state != tt.wantState {
				t.Errorf("state = %q, want %q", state, tt.wantState)
			}
			if final != tt.wantFinal {
				t.Errorf("final = %v, want %v", final, tt.wantFinal)
			}
			if diff := cmp.Diff(tt.wantMsg, msg); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantArts, arts); diff != "" {
				t.Errorf("artifacts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
