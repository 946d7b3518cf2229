// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package processor translates agent responses into task states, messages
// and artifacts.
package processor

import (
	"fmt"
	"slices"

	a2a "github.com/go-a2a/a2a-server"
)

// Processor normalizes agent output. Implementations must not panic on
// unexpected input; they degrade to a textual message instead.
type Processor interface {
	// Final normalizes the complete response of a synchronous invocation.
	Final(response any) (a2a.TaskState, *a2a.Message, []a2a.Artifact)

	// Chunk normalizes one item of a streamed response and reports whether
	// it ends the stream.
	Chunk(item any) (a2a.TaskState, *a2a.Message, []a2a.Artifact, bool)
}

// Chunk is a structured stream item agents may yield.
type Chunk struct {
	// Content is the text of the chunk. An empty Content yields no message.
	Content string
	// Complete marks the last chunk of a finished task.
	Complete bool
	// NeedsInput marks the last chunk of a task waiting for the user.
	NeedsInput bool
	// Artifacts are published as soon as the chunk is processed.
	Artifacts []a2a.Artifact
}

// Default handles strings, [fmt.Stringer] values, [Chunk] values and maps
// with content, is_task_complete and require_user_input keys. Anything else
// is formatted with [fmt.Sprint].
type Default struct{}

var _ Processor = Default{}

const (
	unprocessableResponse = "Unable to process the response type"
	unprocessableChunk    = "Unable to process the stream response item"
)

// Final implements [Processor].
func (Default) Final(response any) (state a2a.TaskState, msg *a2a.Message, artifacts []a2a.Artifact) {
	defer func() {
		if recover() != nil {
			state, msg, artifacts = a2a.TaskStateCompleted, agentMessage(unprocessableResponse), nil
		}
	}()

	switch r := response.(type) {
	case a2a.Message:
		return a2a.TaskStateCompleted, &r, []a2a.Artifact{artifactOf(&r)}
	case *a2a.Message:
		if r != nil {
			return a2a.TaskStateCompleted, r, []a2a.Artifact{artifactOf(r)}
		}
	case Chunk:
		r.Complete = r.Complete || !r.NeedsInput
		st, m, arts, _ := chunk(r)
		return st, m, arts
	}

	m := agentMessage(text(response))
	return a2a.TaskStateCompleted, m, []a2a.Artifact{artifactOf(m)}
}

// Chunk implements [Processor].
func (Default) Chunk(item any) (state a2a.TaskState, msg *a2a.Message, artifacts []a2a.Artifact, final bool) {
	defer func() {
		if recover() != nil {
			state, msg, artifacts, final = a2a.TaskStateWorking, agentMessage(unprocessableChunk), nil, false
		}
	}()

	switch it := item.(type) {
	case Chunk:
		return chunk(it)
	case *Chunk:
		if it != nil {
			return chunk(*it)
		}
	case map[string]any:
		c := Chunk{}
		if content, ok := it["content"]; ok && content != nil {
			c.Content = text(content)
		}
		c.Complete, _ = it["is_task_complete"].(bool)
		c.NeedsInput, _ = it["require_user_input"].(bool)
		return chunk(c)
	}

	return a2a.TaskStateWorking, agentMessage(text(item)), nil, false
}

func chunk(c Chunk) (a2a.TaskState, *a2a.Message, []a2a.Artifact, bool) {
	var msg *a2a.Message
	if c.Content != "" {
		msg = agentMessage(c.Content)
	}
	switch {
	case c.NeedsInput:
		return a2a.TaskStateInputRequired, msg, c.Artifacts, true
	case c.Complete:
		artifacts := c.Artifacts
		if len(artifacts) == 0 && msg != nil {
			artifacts = []a2a.Artifact{artifactOf(msg)}
		}
		return a2a.TaskStateCompleted, msg, artifacts, true
	default:
		return a2a.TaskStateWorking, msg, c.Artifacts, false
	}
}

func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

func artifactOf(m *a2a.Message) a2a.Artifact {
	return a2a.Artifact{Parts: slices.Clone(m.Parts)}
}

func agentMessage(s string) *a2a.Message {
	m := a2a.NewTextMessage(a2a.RoleAgent, s)
	return &m
}
