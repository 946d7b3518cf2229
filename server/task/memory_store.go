// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"slices"
	"sync"

	a2a "github.com/go-a2a/a2a-server"
)

// InMemoryStore is an in-memory implementation of Store.
// Task data is lost when the server process stops.
// All operations are thread-safe using sync.RWMutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	tasks    map[string]*a2a.Task
	sessions map[string][]string
	push     map[string]a2a.PushNotificationConfig
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tasks:    make(map[string]*a2a.Task),
		sessions: make(map[string][]string),
		push:     make(map[string]a2a.PushNotificationConfig),
	}
}

// Create persists a new task.
func (s *InMemoryStore) Create(ctx context.Context, task *a2a.Task) error {
	if task == nil || task.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return TaskExistsError{TaskID: task.ID}
	}
	s.tasks[task.ID] = task.Clone()
	s.sessions[task.SessionID] = append(s.sessions[task.SessionID], task.ID)

	return nil
}

// Update replaces a stored task.
func (s *InMemoryStore) Update(ctx context.Context, task *a2a.Task) error {
	if task == nil || task.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.tasks[task.ID]
	if !exists {
		return a2a.TaskNotFoundError{TaskID: task.ID}
	}
	if old.SessionID != task.SessionID {
		s.removeFromSession(old.SessionID, task.ID)
		s.sessions[task.SessionID] = append(s.sessions[task.SessionID], task.ID)
	}
	s.tasks[task.ID] = task.Clone()

	return nil
}

// Get retrieves a task by its ID.
func (s *InMemoryStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil, a2a.TaskNotFoundError{TaskID: taskID}
	}

	return task.Clone(), nil
}

// GetBySession returns the tasks of a session in creation order.
func (s *InMemoryStore) GetBySession(ctx context.Context, sessionID string) ([]*a2a.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sessions[sessionID]
	tasks := make([]*a2a.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, s.tasks[id].Clone())
	}

	return tasks, nil
}

// Delete removes a task and its push notification target.
func (s *InMemoryStore) Delete(ctx context.Context, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return false, nil
	}
	delete(s.tasks, taskID)
	delete(s.push, taskID)
	s.removeFromSession(task.SessionID, taskID)

	return true, nil
}

// SetPushNotification stores the push notification target of a task.
func (s *InMemoryStore) SetPushNotification(ctx context.Context, taskID string, config a2a.PushNotificationConfig) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[taskID]; !exists {
		return false, nil
	}
	s.push[taskID] = clonePushConfig(config)

	return true, nil
}

// GetPushNotification returns the push notification target of a task.
func (s *InMemoryStore) GetPushNotification(ctx context.Context, taskID string) (*a2a.PushNotificationConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, exists := s.push[taskID]
	if !exists {
		return nil, nil
	}
	config = clonePushConfig(config)

	return &config, nil
}

// HasPushNotification reports whether a task has a push notification target.
func (s *InMemoryStore) HasPushNotification(ctx context.Context, taskID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.push[taskID]
	return exists, nil
}

// removeFromSession must be called with s.mu held.
func (s *InMemoryStore) removeFromSession(sessionID, taskID string) {
	ids := slices.DeleteFunc(s.sessions[sessionID], func(id string) bool { return id == taskID })
	if len(ids) == 0 {
		delete(s.sessions, sessionID)
		return
	}
	s.sessions[sessionID] = ids
}

func clonePushConfig(c a2a.PushNotificationConfig) a2a.PushNotificationConfig {
	if c.Authentication != nil {
		auth := *c.Authentication
		auth.Schemes = slices.Clone(auth.Schemes)
		c.Authentication = &auth
	}
	return c
}
