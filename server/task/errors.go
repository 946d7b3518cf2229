// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"fmt"

	a2a "github.com/go-a2a/a2a-server"
)

// TaskExistsError is returned by [Store.Create] for a duplicate task ID.
type TaskExistsError struct {
	TaskID string
}

// Error returns the error message.
func (e TaskExistsError) Error() string {
	return fmt.Sprintf("task already exists: %s", e.TaskID)
}

// TransitionError is returned when a status change is not permitted by the
// task state machine.
type TransitionError struct {
	TaskID string
	From   a2a.TaskState
	To     a2a.TaskState
}

// Error returns the error message.
func (e TransitionError) Error() string {
	return fmt.Sprintf("task %s cannot move from %s to %s", e.TaskID, e.From, e.To)
}

// Code returns the error code.
func (TransitionError) Code() int { return a2a.ErrorCodeInvalidParams }

// Message returns the canonical error message.
func (TransitionError) Message() string { return a2a.ErrInvalidParams.Error() }

// Is reports whether target is [a2a.ErrInvalidParams].
func (TransitionError) Is(target error) bool { return target == a2a.ErrInvalidParams }

var _ a2a.A2AError = TransitionError{}

// StoreError represents an error from the task store.
type StoreError struct {
	Operation string
	TaskID    string
	Err       error
}

// Error returns the error message.
func (e StoreError) Error() string {
	return fmt.Sprintf("task store %s operation failed for task %s: %v", e.Operation, e.TaskID, e.Err)
}

// Unwrap returns the underlying error.
func (e StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation, taskID string, err error) StoreError {
	return StoreError{
		Operation: operation,
		TaskID:    taskID,
		Err:       err,
	}
}
