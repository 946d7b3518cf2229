// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

// Event is an item delivered to task subscribers.
//
// Implementations are [*TaskStatusUpdateEvent], [*TaskArtifactUpdateEvent]
// and [*ErrorEvent].
type Event interface {
	// EventTaskID returns the id of the task the event belongs to.
	EventTaskID() string
	isEvent()
}

// TaskStatusUpdateEvent reports a status change of a task.
type TaskStatusUpdateEvent struct {
	ID       string         `json:"id"`
	Status   TaskStatus     `json:"status"`
	Final    bool           `json:"final"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// EventTaskID implements [Event].
func (e *TaskStatusUpdateEvent) EventTaskID() string { return e.ID }
func (*TaskStatusUpdateEvent) isEvent()              {}

// TaskArtifactUpdateEvent reports a new artifact or artifact chunk.
type TaskArtifactUpdateEvent struct {
	ID       string         `json:"id"`
	Artifact Artifact       `json:"artifact"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// EventTaskID implements [Event].
func (e *TaskArtifactUpdateEvent) EventTaskID() string { return e.ID }
func (*TaskArtifactUpdateEvent) isEvent()              {}

// ErrorEvent terminates a subscription with an error.
type ErrorEvent struct {
	ID  string
	Err error
}

// EventTaskID implements [Event].
func (e *ErrorEvent) EventTaskID() string { return e.ID }
func (*ErrorEvent) isEvent()              {}

// Error implements error.
func (e *ErrorEvent) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error.
func (e *ErrorEvent) Unwrap() error { return e.Err }

var (
	_ Event = (*TaskStatusUpdateEvent)(nil)
	_ Event = (*TaskArtifactUpdateEvent)(nil)
	_ Event = (*ErrorEvent)(nil)
)

// NewStatusEvent returns a status update event for task id.
func NewStatusEvent(id string, status TaskStatus, final bool) *TaskStatusUpdateEvent {
	return &TaskStatusUpdateEvent{ID: id, Status: status, Final: final}
}

// NewArtifactEvent returns an artifact update event for task id.
func NewArtifactEvent(id string, artifact Artifact) *TaskArtifactUpdateEvent {
	return &TaskArtifactUpdateEvent{ID: id, Artifact: artifact}
}

// IsTerminalEvent reports whether ev is the last event a subscription can
// deliver: a final status update or an error.
func IsTerminalEvent(ev Event) bool {
	switch ev := ev.(type) {
	case *TaskStatusUpdateEvent:
		return ev.Final
	case *ErrorEvent:
		return true
	default:
		return false
	}
}
