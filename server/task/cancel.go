// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"

	a2a "github.com/go-a2a/a2a-server"
)

// CancelPolicy decides whether and how a task can be canceled.
type CancelPolicy interface {
	// Cancel cancels task or returns why it cannot. Implementations that
	// cancel must leave the task in the canceled state before returning.
	Cancel(ctx context.Context, task *a2a.Task) error
}

// CancelPolicyFunc adapts a function to [CancelPolicy].
type CancelPolicyFunc func(ctx context.Context, task *a2a.Task) error

// Cancel implements [CancelPolicy].
func (f CancelPolicyFunc) Cancel(ctx context.Context, task *a2a.Task) error {
	return f(ctx, task)
}

// RejectCancel refuses every cancellation.
type RejectCancel struct{}

// Cancel implements [CancelPolicy].
func (RejectCancel) Cancel(_ context.Context, task *a2a.Task) error {
	return a2a.TaskNotCancelableError{TaskID: task.ID, State: task.Status.State}
}

var (
	_ CancelPolicy = RejectCancel{}
	_ CancelPolicy = CancelPolicyFunc(nil)
)
