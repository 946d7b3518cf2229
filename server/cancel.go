// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/server/task"
)

// interruptible is the cancellation policy installed by
// [TaskManagerConfig.Interruptible]. A task with a run in flight is canceled
// by interrupting the run; an idle task waiting for input is canceled
// directly.
type interruptible struct {
	tm *TaskManager
}

var _ task.CancelPolicy = interruptible{}

// Cancel implements [task.CancelPolicy].
func (p interruptible) Cancel(ctx context.Context, t *a2a.Task) error {
	notCancelable := a2a.TaskNotCancelableError{TaskID: t.ID, State: t.Status.State}
	if t.Status.State.IsTerminal() {
		return notCancelable
	}

	interrupted, err := p.tm.drivers.interrupt(ctx, t.ID)
	if err != nil {
		return err
	}
	if interrupted {
		after, err := p.tm.tasks.Get(ctx, t.ID)
		if err != nil {
			return err
		}
		if after.Status.State != a2a.TaskStateCanceled {
			// the run reached a final state before it saw the interruption
			return a2a.TaskNotCancelableError{TaskID: t.ID, State: after.Status.State}
		}
		return nil
	}

	msg := a2a.NewTextMessage(a2a.RoleAgent, "Task canceled")
	canceled, err := p.tm.tasks.Advance(ctx, t.ID, a2a.TaskStatus{State: a2a.TaskStateCanceled, Message: &msg}, nil)
	if err != nil {
		var terr task.TransitionError
		if errors.As(err, &terr) {
			return notCancelable
		}
		return err
	}
	p.tm.notifier.Notify(ctx, canceled)
	p.tm.hub.Publish(ctx, t.ID, a2a.NewStatusEvent(t.ID, canceled.Status, true))

	return nil
}
