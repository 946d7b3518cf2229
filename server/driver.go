// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/internal/pool"
	"github.com/go-a2a/a2a-server/server/history"
)

// errCanceled is the cancellation cause of runs stopped by tasks/cancel.
var errCanceled = errors.New("task canceled")

// errNoFinal fails streams that end before the agent reported a final state.
var errNoFinal = errors.New("agent stream ended without a final response")

type driverRun struct {
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// driverSet tracks the runs in flight, at most one per task.
type driverSet struct {
	mu      sync.Mutex
	running map[string]*driverRun
	wg      sync.WaitGroup
}

func newDriverSet() *driverSet {
	return &driverSet{running: make(map[string]*driverRun)}
}

// start registers a run for taskID. The returned done func must be called
// once the run is over. ok is false when the task already has a run.
func (d *driverSet) start(parent context.Context, taskID string) (ctx context.Context, done func(), ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.running[taskID]; busy {
		return nil, nil, false
	}

	ctx, cancel := context.WithCancelCause(parent)
	run := &driverRun{cancel: cancel, done: make(chan struct{})}
	d.running[taskID] = run
	d.wg.Add(1)

	var once sync.Once
	done = func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.running, taskID)
			d.mu.Unlock()

			cancel(nil)
			close(run.done)
			d.wg.Done()
		})
	}
	return ctx, done, true
}

func (d *driverSet) busy(taskID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.running[taskID]
	return ok
}

// interrupt stops the run of taskID and waits for it to finish. It reports
// whether there was a run to stop.
func (d *driverSet) interrupt(ctx context.Context, taskID string) (bool, error) {
	d.mu.Lock()
	run, ok := d.running[taskID]
	d.mu.Unlock()
	if !ok {
		return false, nil
	}

	run.cancel(errCanceled)
	select {
	case <-run.done:
		return true, nil
	case <-ctx.Done():
		return true, ctx.Err()
	}
}

func (d *driverSet) wait(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drive runs the agent stream of a task and turns its items into task
// updates and events. It always leaves the task with a final event published.
func (tm *TaskManager) drive(ctx context.Context, taskID string, msg a2a.Message) {
	started := time.Now()
	tm.metrics.DriversStarted.Add(ctx, 1)

	state := a2a.TaskStateWorking
	defer func() {
		if r := recover(); r != nil {
			state = tm.endRun(ctx, taskID, fmt.Errorf("agent panic: %v", r))
		}
		if state == a2a.TaskStateFailed {
			tm.metrics.DriversFailed.Add(context.WithoutCancel(ctx), 1)
		}
		tm.metrics.DriverDuration.Record(context.WithoutCancel(ctx), time.Since(started).Seconds(),
			metric.WithAttributes(attribute.String("a2a.task_state", string(state))))
	}()

	var err error
	state, err = tm.stream(ctx, taskID, msg)
	if err != nil {
		state = tm.endRun(ctx, taskID, err)
	}

	tm.logger.InfoContext(context.WithoutCancel(ctx), "stream finished", "task_id", taskID, "state", state)
}

// stream consumes the agent stream. It returns the state the task was left
// in, or an error when the run must be ended by [TaskManager.endRun].
func (tm *TaskManager) stream(ctx context.Context, taskID string, msg a2a.Message) (a2a.TaskState, error) {
	t, err := tm.tasks.Get(ctx, taskID)
	if err != nil {
		return a2a.TaskStateWorking, err
	}
	tm.hub.Publish(ctx, taskID, a2a.NewStatusEvent(taskID, t.Status, false))

	input := msg.Text()
	hist, err := tm.conversation(ctx, t.SessionID, input)
	if err != nil {
		return a2a.TaskStateWorking, err
	}

	text := pool.String.Get()
	defer pool.String.Put(text)

	last := a2a.TaskStateWorking
	for item, err := range tm.agent.Stream(ctx, input, t.SessionID, hist) {
		if err != nil {
			return last, err
		}
		if err := context.Cause(ctx); err != nil {
			return last, err
		}

		state, reply, artifacts, final := tm.processor.Chunk(item)

		if reply != nil {
			text.WriteString(reply.Text())
		}
		for _, a := range artifacts {
			tm.hub.Publish(ctx, taskID, a2a.NewArtifactEvent(taskID, a))
		}

		if state == a2a.TaskStateWorking && !final {
			if len(artifacts) > 0 {
				if _, err := tm.tasks.Advance(ctx, taskID, a2a.TaskStatus{State: state}, artifacts); err != nil {
					return last, err
				}
			}
			continue
		}

		if final && text.Len() > 0 {
			entry := history.Entry{Role: history.RoleAssistant, Content: text.String()}
			if err := tm.history.Append(ctx, t.SessionID, entry); err != nil {
				tm.logger.WarnContext(ctx, "assistant reply not recorded", "task_id", taskID, "error", err)
			}
		}

		updated, err := tm.tasks.Advance(ctx, taskID, a2a.TaskStatus{State: state, Message: reply}, artifacts)
		if err != nil {
			return last, err
		}
		last = state
		tm.notifier.Notify(ctx, updated)
		tm.hub.Publish(ctx, taskID, a2a.NewStatusEvent(taskID, updated.Status, final))

		if final {
			return state, nil
		}
	}

	if err := context.Cause(ctx); err != nil {
		return last, err
	}
	if last == a2a.TaskStateInputRequired {
		t, err := tm.tasks.Get(ctx, taskID)
		if err != nil {
			return last, err
		}
		tm.hub.Publish(ctx, taskID, a2a.NewStatusEvent(taskID, t.Status, true))
		return last, nil
	}
	return last, errNoFinal
}

// endRun moves a task whose run ended with err to the failed state, or to
// the canceled state when the run was interrupted by tasks/cancel, and
// publishes the final event. It returns the state the task ended in.
func (tm *TaskManager) endRun(ctx context.Context, taskID string, err error) a2a.TaskState {
	state, text := a2a.TaskStateFailed, fmt.Sprintf("Error processing task: %v", err)
	if errors.Is(context.Cause(ctx), errCanceled) {
		state, text = a2a.TaskStateCanceled, "Task canceled"
	}
	ctx = context.WithoutCancel(ctx)

	msg := a2a.NewTextMessage(a2a.RoleAgent, text)
	status := a2a.TaskStatus{State: state, Message: &msg}

	t, advErr := tm.tasks.Advance(ctx, taskID, status, nil)
	if advErr != nil {
		tm.logger.ErrorContext(ctx, "task not ended", "task_id", taskID, "state", state, "error", advErr)
		tm.hub.Publish(ctx, taskID, a2a.NewStatusEvent(taskID, status, true))
		return state
	}

	if state == a2a.TaskStateFailed {
		tm.logger.ErrorContext(ctx, "task failed", "task_id", taskID, "error", err)
	}
	tm.notifier.Notify(ctx, t)
	tm.hub.Publish(ctx, taskID, a2a.NewStatusEvent(taskID, t.Status, true))
	return state
}
