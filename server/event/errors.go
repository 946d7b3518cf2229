// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"errors"
	"fmt"

	a2a "github.com/go-a2a/a2a-server"
)

// Standard error definitions for the event system.
var (
	// ErrQueueClosed is returned when attempting to operate on a closed queue.
	ErrQueueClosed = errors.New("queue is closed")
)

// NoTopicError is returned when resuming a subscription to a task whose event
// stream was never opened.
type NoTopicError struct {
	TaskID string
}

// Error returns the error message.
func (e NoTopicError) Error() string {
	return fmt.Sprintf("no event stream for task: %s", e.TaskID)
}

// Code returns the error code.
func (NoTopicError) Code() int { return a2a.ErrorCodeTaskNotFound }

// Message returns the canonical error message.
func (NoTopicError) Message() string { return a2a.ErrTaskNotFound.Error() }

// Is reports whether target is [a2a.ErrTaskNotFound].
func (NoTopicError) Is(target error) bool { return target == a2a.ErrTaskNotFound }

var _ a2a.A2AError = NoTopicError{}
