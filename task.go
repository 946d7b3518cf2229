// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"slices"
	"time"
)

// TaskState represents the state of a Task.
type TaskState string

const (
	// TaskStateSubmitted indicates the task has been received but not started.
	TaskStateSubmitted TaskState = "submitted"
	// TaskStateWorking indicates the agent is working on the task.
	TaskStateWorking TaskState = "working"
	// TaskStateInputRequired indicates the agent is waiting for more input.
	TaskStateInputRequired TaskState = "input-required"
	// TaskStateCompleted indicates the task finished successfully.
	TaskStateCompleted TaskState = "completed"
	// TaskStateCanceled indicates the task was canceled.
	TaskStateCanceled TaskState = "canceled"
	// TaskStateFailed indicates the task finished with an error.
	TaskStateFailed TaskState = "failed"
	// TaskStateUnknown is reported for states this package does not recognize.
	TaskStateUnknown TaskState = "unknown"
)

var transitions = map[TaskState][]TaskState{
	TaskStateSubmitted:     {TaskStateWorking},
	TaskStateWorking:       {TaskStateWorking, TaskStateInputRequired, TaskStateCompleted, TaskStateFailed, TaskStateCanceled},
	TaskStateInputRequired: {TaskStateWorking, TaskStateFailed, TaskStateCanceled},
}

// CanTransition reports whether a task in state s may move to next.
func (s TaskState) CanTransition(next TaskState) bool {
	return slices.Contains(transitions[s], next)
}

// IsTerminal reports whether s is a state a task never leaves.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCanceled:
		return true
	default:
		return false
	}
}

// IsFinal reports whether s ends the current turn of a task. It is true for
// terminal states and for [TaskStateInputRequired].
func (s TaskState) IsFinal() bool {
	return s.IsTerminal() || s == TaskStateInputRequired
}

// Valid reports whether s is one of the defined states.
func (s TaskState) Valid() bool {
	switch s {
	case TaskStateSubmitted, TaskStateWorking, TaskStateInputRequired,
		TaskStateCompleted, TaskStateCanceled, TaskStateFailed:
		return true
	default:
		return false
	}
}

// TaskStatus represents the status of a task at a point in time.
type TaskStatus struct {
	// State is the current lifecycle state.
	State TaskState `json:"state"`
	// Message is an optional agent message accompanying the status.
	Message *Message `json:"message,omitzero"`
	// Timestamp is when the status was recorded.
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// NewTaskStatus returns a status in state with the current time.
func NewTaskStatus(state TaskState, msg *Message) TaskStatus {
	return TaskStatus{
		State:     state,
		Message:   msg,
		Timestamp: time.Now().UTC(),
	}
}

// Task represents a unit of work tracked by the server.
type Task struct {
	// ID is the caller assigned task identifier.
	ID string `json:"id"`
	// SessionID groups tasks into a conversation.
	SessionID string `json:"sessionId,omitzero"`
	// Status is the current status.
	Status TaskStatus `json:"status"`
	// History holds the messages exchanged for this task, oldest first.
	History []Message `json:"history,omitzero"`
	// Artifacts holds the outputs produced by the agent, in emission order.
	Artifacts []Artifact `json:"artifacts,omitzero"`
	// Metadata is arbitrary caller supplied data.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Clone returns a deep copy of t.
//
// Part values are shared; they are treated as immutable once constructed.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Status = t.Status.clone()
	if t.History != nil {
		c.History = make([]Message, len(t.History))
		for i, m := range t.History {
			c.History[i] = m.Clone()
		}
	}
	if t.Artifacts != nil {
		c.Artifacts = make([]Artifact, len(t.Artifacts))
		for i, a := range t.Artifacts {
			c.Artifacts[i] = a.Clone()
		}
	}
	c.Metadata = cloneMetadata(t.Metadata)
	return &c
}

// LastHistory returns the last n history entries of t, in order.
// A non-positive n yields an empty slice.
func (t *Task) LastHistory(n int) []Message {
	if n <= 0 || len(t.History) == 0 {
		return []Message{}
	}
	if n >= len(t.History) {
		return slices.Clone(t.History)
	}
	return slices.Clone(t.History[len(t.History)-n:])
}

func (s TaskStatus) clone() TaskStatus {
	if s.Message != nil {
		m := s.Message.Clone()
		s.Message = &m
	}
	return s
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
