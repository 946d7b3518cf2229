// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"log/slog"

	a2a "github.com/go-a2a/a2a-server"
)

// SessionTasks lists the tasks of a session in creation order.
// [github.com/go-a2a/a2a-server/server/task.Store] satisfies it.
type SessionTasks interface {
	GetBySession(ctx context.Context, sessionID string) ([]*a2a.Task, error)
}

// TaskBased derives history from the most recent task of a session.
// Append and Clear do nothing: the task history is written by the task
// lifecycle itself.
type TaskBased struct {
	tasks  SessionTasks
	logger *slog.Logger
}

var _ Provider = (*TaskBased)(nil)

// NewTaskBased returns a provider reading history from tasks.
func NewTaskBased(tasks SessionTasks, logger *slog.Logger) *TaskBased {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskBased{tasks: tasks, logger: logger}
}

// Get implements [Provider].
func (p *TaskBased) Get(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	tasks, err := p.tasks.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return []Entry{}, nil
	}

	latest := tasks[len(tasks)-1]
	entries := make([]Entry, 0, len(latest.History))
	for _, msg := range latest.History {
		if e := FromMessage(msg); e.Content != "" {
			entries = append(entries, e)
		}
	}
	return tail(entries, limit), nil
}

// Append implements [Provider].
func (p *TaskBased) Append(context.Context, string, Entry) error {
	return nil
}

// Clear implements [Provider].
func (p *TaskBased) Clear(ctx context.Context, sessionID string) error {
	p.logger.WarnContext(ctx, "task based history cannot be cleared", "session_id", sessionID)
	return nil
}
