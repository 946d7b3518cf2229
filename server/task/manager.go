// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/internal/keymutex"
)

// Manager owns the lifecycle of tasks. It is the only writer of tasks to its
// [Store]; writes to the same task are serialized, writes to different tasks
// proceed in parallel.
type Manager struct {
	store  Store
	locks  keymutex.KeyMutex
	policy CancelPolicy
	logger *slog.Logger
	now    func() time.Time
}

// ManagerOption configures a [Manager].
type ManagerOption func(*Manager)

// WithLogger sets the logger of the manager.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithCancelPolicy replaces the default [RejectCancel] policy.
func WithCancelPolicy(policy CancelPolicy) ManagerOption {
	return func(m *Manager) {
		m.policy = policy
	}
}

// WithClock sets the time source used for status timestamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager returns a Manager persisting tasks in store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		policy: RejectCancel{},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the store the manager writes to.
func (m *Manager) Store() Store {
	return m.store
}

// SetCancelPolicy replaces the cancellation policy. It must be called before
// the manager is shared between goroutines.
func (m *Manager) SetCancelPolicy(policy CancelPolicy) {
	m.policy = policy
}

// Upsert creates the task named by params in the submitted state with the
// message as its only history entry, or appends the message to the history of
// the existing task. Status and artifacts of an existing task are left alone.
func (m *Manager) Upsert(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, error) {
	if params.ID == "" {
		return nil, a2a.InvalidParamsError{Reason: "task id is required"}
	}
	if params.Message == nil {
		return nil, a2a.InvalidParamsError{Reason: "message is required"}
	}

	unlock := m.locks.Lock(params.ID)
	defer unlock()

	task, err := m.store.Get(ctx, params.ID)
	switch {
	case errors.Is(err, a2a.ErrTaskNotFound):
		task = &a2a.Task{
			ID:        params.ID,
			SessionID: params.SessionID,
			Status:    a2a.TaskStatus{State: a2a.TaskStateSubmitted, Timestamp: m.now().UTC()},
			History:   []a2a.Message{params.Message.Clone()},
			Metadata:  params.Metadata,
		}
		if err := m.store.Create(ctx, task); err != nil {
			return nil, err
		}
		m.logger.DebugContext(ctx, "task created", "task_id", task.ID, "session_id", task.SessionID)
		return task, nil

	case err != nil:
		return nil, err
	}

	task.History = append(task.History, params.Message.Clone())
	if err := m.store.Update(ctx, task); err != nil {
		return nil, err
	}
	m.logger.DebugContext(ctx, "task message appended", "task_id", task.ID, "history", len(task.History))

	return task, nil
}

// Advance sets the status of a task, appends the status message (if any) to
// its history and appends artifacts to its artifacts. The change is persisted
// before Advance returns.
//
// Advance fails with [a2a.TaskNotFoundError] for unknown tasks and with
// [TransitionError] when the state machine forbids the change; neither
// writes anything.
func (m *Manager) Advance(ctx context.Context, taskID string, status a2a.TaskStatus, artifacts []a2a.Artifact) (*a2a.Task, error) {
	unlock := m.locks.Lock(taskID)
	defer unlock()

	task, err := m.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Status.State.CanTransition(status.State) {
		return nil, TransitionError{TaskID: taskID, From: task.Status.State, To: status.State}
	}

	if status.Timestamp.IsZero() {
		status.Timestamp = m.now().UTC()
	}
	if status.Message != nil {
		msg := status.Message.Clone()
		status.Message = &msg
		task.History = append(task.History, msg.Clone())
	}
	task.Status = status
	for _, a := range artifacts {
		task.Artifacts = append(task.Artifacts, a.Clone())
	}

	if err := m.store.Update(ctx, task); err != nil {
		return nil, err
	}
	m.logger.DebugContext(ctx, "task advanced", "task_id", taskID, "state", status.State, "artifacts", len(artifacts))

	return task, nil
}

// Snapshot returns a copy of a task whose history holds only the last
// historyLength entries. A nil or non-positive historyLength yields an empty
// history.
func (m *Manager) Snapshot(ctx context.Context, taskID string, historyLength *int) (*a2a.Task, error) {
	task, err := m.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	n := 0
	if historyLength != nil {
		n = *historyLength
	}
	task.History = task.LastHistory(n)

	return task, nil
}

// Get returns a copy of a task with its full history.
func (m *Manager) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	return m.store.Get(ctx, taskID)
}

// SessionTasks returns the tasks of a session in creation order.
func (m *Manager) SessionTasks(ctx context.Context, sessionID string) ([]*a2a.Task, error) {
	return m.store.GetBySession(ctx, sessionID)
}

// Cancel asks the cancellation policy to cancel a task and returns the task
// as it is afterwards.
func (m *Manager) Cancel(ctx context.Context, taskID string) (*a2a.Task, error) {
	task, err := m.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := m.policy.Cancel(ctx, task); err != nil {
		return nil, err
	}
	return m.store.Get(ctx, taskID)
}
