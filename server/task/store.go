// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package task persists tasks and owns their lifecycle state machine.
package task

import (
	"context"

	a2a "github.com/go-a2a/a2a-server"
)

// Store defines the interface for task persistence operations.
//
// Implementations must be linearizable per task id. They store and return
// copies; callers may mutate what they pass in or get back.
type Store interface {
	// Create persists a new task.
	// Returns TaskExistsError if a task with the same ID is already stored.
	Create(ctx context.Context, task *a2a.Task) error

	// Update replaces a stored task.
	// Returns a2a.TaskNotFoundError if the task doesn't exist.
	Update(ctx context.Context, task *a2a.Task) error

	// Get retrieves a task by its ID.
	// Returns a2a.TaskNotFoundError if the task doesn't exist.
	Get(ctx context.Context, taskID string) (*a2a.Task, error)

	// GetBySession returns the tasks of a session in creation order.
	GetBySession(ctx context.Context, sessionID string) ([]*a2a.Task, error)

	// Delete removes a task and its push notification target.
	// It reports whether the task existed.
	Delete(ctx context.Context, taskID string) (bool, error)

	// SetPushNotification stores the push notification target of a task.
	// It reports false, without storing anything, when the task doesn't exist.
	SetPushNotification(ctx context.Context, taskID string, config a2a.PushNotificationConfig) (bool, error)

	// GetPushNotification returns the push notification target of a task,
	// or nil when none is set.
	GetPushNotification(ctx context.Context, taskID string) (*a2a.PushNotificationConfig, error)

	// HasPushNotification reports whether a task has a push notification target.
	HasPushNotification(ctx context.Context, taskID string) (bool, error)
}
