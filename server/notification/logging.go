// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package notification

import (
	"context"
	"log/slog"

	a2a "github.com/go-a2a/a2a-server"
)

// Logging records notifications in the log instead of sending them.
type Logging struct {
	registry
	logger *slog.Logger
}

var _ Handler = (*Logging)(nil)

// NewLogging returns a [Logging] handler. A nil targets keeps targets in
// memory and a nil logger uses [slog.Default].
func NewLogging(targets Targets, logger *slog.Logger) *Logging {
	if targets == nil {
		targets = NewMemoryTargets()
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Logging{logger: logger}
	h.registry = registry{targets: targets, verify: h.VerifyTarget}
	return h
}

// Notify implements [Handler].
func (h *Logging) Notify(ctx context.Context, task *a2a.Task) bool {
	config, err := h.GetTarget(ctx, task.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "lookup push notification target", "task_id", task.ID, "error", err)
		return false
	}
	if config == nil {
		return false
	}

	h.logger.InfoContext(ctx, "would send notification",
		"task_id", task.ID,
		"state", task.Status.State,
		"url", config.URL,
	)
	return true
}

// VerifyTarget implements [Handler]. Any non-empty URL is accepted.
func (h *Logging) VerifyTarget(_ context.Context, url string) bool {
	return url != ""
}
