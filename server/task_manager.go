// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/internal/telemetry"
	"github.com/go-a2a/a2a-server/server/agent"
	"github.com/go-a2a/a2a-server/server/event"
	"github.com/go-a2a/a2a-server/server/history"
	"github.com/go-a2a/a2a-server/server/notification"
	"github.com/go-a2a/a2a-server/server/processor"
	"github.com/go-a2a/a2a-server/server/task"
)

// TaskManagerConfig holds the collaborators of a [TaskManager]. Only Tasks
// is required; the others default to in-memory or logging implementations.
type TaskManagerConfig struct {
	// Tasks owns task state.
	Tasks *task.Manager
	// Hub fans task events out to subscribers.
	Hub *event.Hub
	// Agent does the work. Submissions fail while it is nil.
	Agent agent.Agent
	// Processor normalizes agent output.
	Processor processor.Processor
	// History stores conversation history per session.
	History history.Provider
	// Notifier delivers push notifications.
	Notifier notification.Handler
	// PushNotifications enables the push notification methods.
	PushNotifications bool
	// Interruptible lets tasks/cancel stop running tasks. Without it every
	// cancellation is rejected.
	Interruptible bool

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *telemetry.Metrics
}

// TaskManager implements the A2A task methods on top of the task lifecycle,
// the subscriber hub and the agent.
type TaskManager struct {
	tasks     *task.Manager
	hub       *event.Hub
	agent     agent.Agent
	processor processor.Processor
	history   history.Provider
	notifier  notification.Handler
	push      bool

	drivers *driverSet

	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *telemetry.Metrics
}

// NewTaskManager returns a TaskManager for cfg.
func NewTaskManager(cfg TaskManagerConfig) (*TaskManager, error) {
	if cfg.Tasks == nil {
		return nil, fmt.Errorf("task manager requires a task lifecycle manager")
	}

	tm := &TaskManager{
		tasks:     cfg.Tasks,
		hub:       cfg.Hub,
		agent:     cfg.Agent,
		processor: cfg.Processor,
		history:   cfg.History,
		notifier:  cfg.Notifier,
		push:      cfg.PushNotifications,
		drivers:   newDriverSet(),
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
		metrics:   cfg.Metrics,
	}
	if tm.logger == nil {
		tm.logger = slog.Default()
	}
	if tm.tracer == nil {
		tm.tracer = otel.GetTracerProvider().Tracer(telemetry.ScopeName)
	}
	if tm.metrics == nil {
		tm.metrics = telemetry.Default()
	}
	if tm.hub == nil {
		tm.hub = event.NewHub(event.WithLogger(tm.logger), event.WithMetrics(tm.metrics))
	}
	if tm.processor == nil {
		tm.processor = processor.Default{}
	}
	if tm.history == nil {
		tm.history = history.NewInMemory()
	}
	if tm.notifier == nil {
		tm.notifier = notification.NewLogging(tm.tasks.Store(), tm.logger)
	}
	if cfg.Interruptible {
		tm.tasks.SetCancelPolicy(interruptible{tm: tm})
	}

	return tm, nil
}

// Hub returns the subscriber hub of the manager.
func (tm *TaskManager) Hub() *event.Hub {
	return tm.hub
}

// PushNotifications reports whether the push notification methods are enabled.
func (tm *TaskManager) PushNotifications() bool {
	return tm.push
}

// Wait blocks until every running task has finished or ctx ends.
func (tm *TaskManager) Wait(ctx context.Context) error {
	return tm.drivers.wait(ctx)
}

func (tm *TaskManager) startSpan(ctx context.Context, name, taskID string) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, "a2a.task_manager."+name,
		trace.WithAttributes(attribute.String("a2a.task_id", taskID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// validate checks a submission before anything is written.
func (tm *TaskManager) validate(ctx context.Context, params a2a.TaskSendParams) error {
	if tm.agent == nil {
		return a2a.DependencyUnavailableError{Dependency: "agent"}
	}
	if params.ID == "" {
		return a2a.InvalidParamsError{Reason: "task id is required"}
	}
	if params.Message == nil || len(params.Message.Parts) == 0 {
		return a2a.InvalidParamsError{Reason: "request message is empty or invalid"}
	}
	if supported := tm.agent.SupportedContentTypes(); !a2a.AreModalitiesCompatible(params.AcceptedOutputModes, supported) {
		return a2a.ContentTypeNotSupportedError{Accepted: params.AcceptedOutputModes, Supported: supported}
	}
	if params.PushNotification != nil {
		if !tm.push {
			return a2a.PushNotificationNotSupportedError{}
		}
		if params.PushNotification.URL == "" {
			return a2a.InvalidParamsError{Reason: "push notification url is required"}
		}
	}

	existing, err := tm.tasks.Get(ctx, params.ID)
	switch {
	case errors.Is(err, a2a.ErrTaskNotFound):
		return nil
	case err != nil:
		return err
	case existing.Status.State.IsTerminal():
		return a2a.InvalidParamsError{Reason: fmt.Sprintf("task %s is already %s", params.ID, existing.Status.State)}
	case tm.drivers.busy(params.ID):
		return a2a.InvalidParamsError{Reason: fmt.Sprintf("task %s is still being processed", params.ID)}
	}
	return nil
}

// begin stores the submission and moves the task to the working state.
func (tm *TaskManager) begin(ctx context.Context, params a2a.TaskSendParams) (*a2a.Task, error) {
	if _, err := tm.tasks.Upsert(ctx, params); err != nil {
		return nil, err
	}
	t, err := tm.tasks.Advance(ctx, params.ID, a2a.TaskStatus{State: a2a.TaskStateWorking}, nil)
	if err != nil {
		return nil, err
	}

	if params.PushNotification != nil {
		ok, err := tm.notifier.SetTarget(ctx, params.ID, *params.PushNotification)
		switch {
		case err != nil:
			tm.logger.WarnContext(ctx, "push notification target not stored", "task_id", params.ID, "error", err)
		case !ok:
			tm.logger.WarnContext(ctx, "push notification target rejected", "task_id", params.ID, "url", params.PushNotification.URL)
		}
	}
	tm.notifier.Notify(ctx, t)

	return t, nil
}

// conversation returns the history of a session and records input in it.
func (tm *TaskManager) conversation(ctx context.Context, sessionID, input string) ([]history.Entry, error) {
	hist, err := tm.history.Get(ctx, sessionID, 0)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	if err := tm.history.Append(ctx, sessionID, history.Entry{Role: history.RoleUser, Content: input}); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}
	return hist, nil
}

// OnSendTask runs a task to completion and returns it with the requested
// amount of history.
func (tm *TaskManager) OnSendTask(ctx context.Context, params a2a.TaskSendParams) (_ *a2a.Task, err error) {
	ctx, span := tm.startSpan(ctx, "OnSendTask", params.ID)
	defer func() { endSpan(span, err) }()

	tm.logger.InfoContext(ctx, "send task", "task_id", params.ID, "session_id", params.SessionID)

	if err := tm.validate(ctx, params); err != nil {
		return nil, err
	}

	runCtx, done, ok := tm.drivers.start(ctx, params.ID)
	if !ok {
		return nil, a2a.InvalidParamsError{Reason: fmt.Sprintf("task %s is still being processed", params.ID)}
	}
	defer done()

	t, err := tm.begin(ctx, params)
	if err != nil {
		return nil, err
	}
	tm.hub.Publish(ctx, t.ID, a2a.NewStatusEvent(t.ID, t.Status, false))

	input := params.Message.Text()
	resp, err := tm.invoke(runCtx, t.SessionID, input)
	if err != nil {
		state := tm.endRun(runCtx, t.ID, err)
		if state == a2a.TaskStateCanceled {
			return tm.tasks.Snapshot(ctx, t.ID, params.HistoryLength)
		}
		return nil, a2a.InternalError{Err: fmt.Errorf("error processing task: %w", err)}
	}

	state, reply, artifacts := tm.processor.Final(resp)
	if reply != nil {
		if text := reply.Text(); text != "" {
			if err := tm.history.Append(ctx, t.SessionID, history.Entry{Role: history.RoleAssistant, Content: text}); err != nil {
				tm.logger.WarnContext(ctx, "assistant reply not recorded", "task_id", t.ID, "error", err)
			}
		}
	}

	updated, err := tm.tasks.Advance(ctx, t.ID, a2a.TaskStatus{State: state, Message: reply}, artifacts)
	if err != nil {
		tm.endRun(runCtx, t.ID, err)
		return nil, a2a.InternalError{Err: fmt.Errorf("error processing task: %w", err)}
	}
	t = updated
	tm.notifier.Notify(ctx, t)
	for _, a := range artifacts {
		tm.hub.Publish(ctx, t.ID, a2a.NewArtifactEvent(t.ID, a))
	}
	tm.hub.Publish(ctx, t.ID, a2a.NewStatusEvent(t.ID, t.Status, state.IsFinal()))

	tm.logger.InfoContext(ctx, "task processed", "task_id", t.ID, "state", state)
	return tm.tasks.Snapshot(ctx, t.ID, params.HistoryLength)
}

func (tm *TaskManager) invoke(ctx context.Context, sessionID, input string) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panic: %v", r)
		}
	}()

	hist, err := tm.conversation(ctx, sessionID, input)
	if err != nil {
		return nil, err
	}
	resp, err = tm.agent.Invoke(ctx, input, sessionID, hist)
	if err == nil {
		err = context.Cause(ctx)
	}
	return resp, err
}

// OnSendTaskSubscribe starts a task in the background and returns a
// subscription to its events. The task keeps running when the subscription
// is closed.
func (tm *TaskManager) OnSendTaskSubscribe(ctx context.Context, params a2a.TaskSendParams) (_ *event.Subscription, err error) {
	ctx, span := tm.startSpan(ctx, "OnSendTaskSubscribe", params.ID)
	defer func() { endSpan(span, err) }()

	tm.logger.InfoContext(ctx, "send streaming task", "task_id", params.ID, "session_id", params.SessionID)

	if err := tm.validate(ctx, params); err != nil {
		return nil, err
	}

	runCtx, done, ok := tm.drivers.start(context.WithoutCancel(ctx), params.ID)
	if !ok {
		return nil, a2a.InvalidParamsError{Reason: fmt.Sprintf("task %s is still being processed", params.ID)}
	}

	if _, err := tm.begin(ctx, params); err != nil {
		done()
		return nil, err
	}

	sub, err := tm.hub.Subscribe(ctx, params.ID, false)
	if err != nil {
		done()
		return nil, err
	}

	msg := params.Message.Clone()
	go func() {
		defer done()
		tm.drive(runCtx, params.ID, msg)
	}()

	return sub, nil
}

// OnGetTask returns a task with the requested amount of history.
func (tm *TaskManager) OnGetTask(ctx context.Context, params a2a.TaskQueryParams) (_ *a2a.Task, err error) {
	ctx, span := tm.startSpan(ctx, "OnGetTask", params.ID)
	defer func() { endSpan(span, err) }()

	t, err := tm.tasks.Snapshot(ctx, params.ID, params.HistoryLength)
	if err != nil {
		tm.logger.InfoContext(ctx, "task not retrieved", "task_id", params.ID, "error", err)
		return nil, err
	}

	tm.logger.DebugContext(ctx, "task retrieved", "task_id", params.ID, "state", t.Status.State)
	return t, nil
}

// OnCancelTask cancels a task through the cancellation policy.
func (tm *TaskManager) OnCancelTask(ctx context.Context, params a2a.TaskIDParams) (_ *a2a.Task, err error) {
	ctx, span := tm.startSpan(ctx, "OnCancelTask", params.ID)
	defer func() { endSpan(span, err) }()

	t, err := tm.tasks.Cancel(ctx, params.ID)
	if err != nil {
		tm.logger.InfoContext(ctx, "task not canceled", "task_id", params.ID, "error", err)
		return nil, err
	}

	tm.logger.InfoContext(ctx, "task canceled", "task_id", params.ID)
	t.History = t.LastHistory(0)
	return t, nil
}

// OnSetTaskPushNotification registers the push notification target of an
// existing task.
func (tm *TaskManager) OnSetTaskPushNotification(ctx context.Context, params a2a.TaskPushNotificationConfig) (_ *a2a.TaskPushNotificationConfig, err error) {
	ctx, span := tm.startSpan(ctx, "OnSetTaskPushNotification", params.ID)
	defer func() { endSpan(span, err) }()

	if !tm.push {
		return nil, a2a.PushNotificationNotSupportedError{}
	}
	if params.PushNotificationConfig.URL == "" {
		return nil, a2a.InvalidParamsError{Reason: "push notification url is required"}
	}
	if _, err := tm.tasks.Get(ctx, params.ID); err != nil {
		return nil, err
	}

	ok, err := tm.notifier.SetTarget(ctx, params.ID, params.PushNotificationConfig)
	if err != nil {
		return nil, a2a.InternalError{Err: err}
	}
	if !ok {
		return nil, a2a.InvalidParamsError{Reason: "push notification url could not be verified"}
	}

	tm.logger.InfoContext(ctx, "push notification configured", "task_id", params.ID)
	return &params, nil
}

// OnGetTaskPushNotification returns the push notification target of a task.
func (tm *TaskManager) OnGetTaskPushNotification(ctx context.Context, params a2a.TaskIDParams) (_ *a2a.TaskPushNotificationConfig, err error) {
	ctx, span := tm.startSpan(ctx, "OnGetTaskPushNotification", params.ID)
	defer func() { endSpan(span, err) }()

	if !tm.push {
		return nil, a2a.PushNotificationNotSupportedError{}
	}
	if _, err := tm.tasks.Get(ctx, params.ID); err != nil {
		return nil, err
	}

	config, err := tm.notifier.GetTarget(ctx, params.ID)
	if err != nil {
		return nil, a2a.InternalError{Err: err}
	}
	if config == nil {
		return nil, a2a.InvalidParamsError{Reason: "push notification not configured"}
	}

	return &a2a.TaskPushNotificationConfig{ID: params.ID, PushNotificationConfig: *config}, nil
}

// OnResubscribeToTask returns a new subscription to a task that was
// streamed before. For a task that already ended, the subscription yields
// its final status and nothing else.
func (tm *TaskManager) OnResubscribeToTask(ctx context.Context, params a2a.TaskQueryParams) (_ *event.Subscription, err error) {
	ctx, span := tm.startSpan(ctx, "OnResubscribeToTask", params.ID)
	defer func() { endSpan(span, err) }()

	if _, err := tm.tasks.Get(ctx, params.ID); err != nil {
		return nil, err
	}

	sub, err := tm.hub.Subscribe(ctx, params.ID, true)
	if err != nil {
		return nil, err
	}

	// re-read after subscribing so a final event published in between is not lost
	t, err := tm.tasks.Get(ctx, params.ID)
	if err != nil {
		sub.Close()
		return nil, err
	}
	if t.Status.State.IsTerminal() {
		tm.hub.Publish(ctx, t.ID, a2a.NewStatusEvent(t.ID, t.Status, true))
	}

	tm.logger.InfoContext(ctx, "task resubscribed", "task_id", params.ID, "state", t.Status.State)
	return sub, nil
}
