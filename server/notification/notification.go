// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package notification delivers task state changes to push notification
// targets registered by clients.
package notification

import (
	"context"
	"sync"

	a2a "github.com/go-a2a/a2a-server"
)

// Handler registers push notification targets and notifies them.
type Handler interface {
	// SetTarget registers the target of a task. It reports false when the
	// config has no URL or the URL fails verification.
	SetTarget(ctx context.Context, taskID string, config a2a.PushNotificationConfig) (bool, error)

	// GetTarget returns the target of a task, or nil when none is set.
	GetTarget(ctx context.Context, taskID string) (*a2a.PushNotificationConfig, error)

	// HasTarget reports whether a task has a target.
	HasTarget(ctx context.Context, taskID string) (bool, error)

	// Notify delivers the task to its target on a best-effort basis and
	// reports whether it was delivered.
	Notify(ctx context.Context, task *a2a.Task) bool

	// VerifyTarget reports whether url accepts notifications.
	VerifyTarget(ctx context.Context, url string) bool
}

// Targets persists push notification targets.
// [github.com/go-a2a/a2a-server/server/task.Store] satisfies it.
type Targets interface {
	SetPushNotification(ctx context.Context, taskID string, config a2a.PushNotificationConfig) (bool, error)
	GetPushNotification(ctx context.Context, taskID string) (*a2a.PushNotificationConfig, error)
	HasPushNotification(ctx context.Context, taskID string) (bool, error)
}

// MemoryTargets keeps targets in a map.
type MemoryTargets struct {
	mu      sync.RWMutex
	configs map[string]a2a.PushNotificationConfig
}

var _ Targets = (*MemoryTargets)(nil)

// NewMemoryTargets returns an empty [MemoryTargets].
func NewMemoryTargets() *MemoryTargets {
	return &MemoryTargets{configs: make(map[string]a2a.PushNotificationConfig)}
}

// SetPushNotification implements [Targets].
func (m *MemoryTargets) SetPushNotification(_ context.Context, taskID string, config a2a.PushNotificationConfig) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.configs[taskID] = config
	return true, nil
}

// GetPushNotification implements [Targets].
func (m *MemoryTargets) GetPushNotification(_ context.Context, taskID string) (*a2a.PushNotificationConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	config, ok := m.configs[taskID]
	if !ok {
		return nil, nil
	}
	return &config, nil
}

// HasPushNotification implements [Targets].
func (m *MemoryTargets) HasPushNotification(_ context.Context, taskID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.configs[taskID]
	return ok, nil
}

// registry implements the target half of [Handler] on top of [Targets].
type registry struct {
	targets Targets
	verify  func(ctx context.Context, url string) bool
}

func (r *registry) SetTarget(ctx context.Context, taskID string, config a2a.PushNotificationConfig) (bool, error) {
	if config.URL == "" {
		return false, nil
	}
	if !r.verify(ctx, config.URL) {
		return false, nil
	}
	return r.targets.SetPushNotification(ctx, taskID, config)
}

func (r *registry) GetTarget(ctx context.Context, taskID string) (*a2a.PushNotificationConfig, error) {
	return r.targets.GetPushNotification(ctx, taskID)
}

func (r *registry) HasTarget(ctx context.Context, taskID string) (bool, error) {
	return r.targets.HasPushNotification(ctx, taskID)
}
