// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"errors"
	"io"
	"iter"

	a2a "github.com/go-a2a/a2a-server"
)

// Subscription is one observer's ordered view of a task's events.
// It is not safe for concurrent use by multiple readers.
type Subscription struct {
	hub    *Hub
	taskID string
	queue  *Queue
	ended  bool
}

// TaskID returns the id of the observed task.
func (s *Subscription) TaskID() string {
	return s.taskID
}

// Next returns the next event, blocking until one is published.
//
// After the terminal event has been returned, or once the subscription is
// closed and drained, Next returns [io.EOF]. If ctx ends first Next returns
// the context error; the subscription stays registered until [Subscription.Close].
func (s *Subscription) Next(ctx context.Context) (a2a.Event, error) {
	if s.ended {
		return nil, io.EOF
	}

	ev, err := s.queue.Next(ctx)
	if err != nil {
		if errors.Is(err, ErrQueueClosed) {
			s.ended = true
			return nil, io.EOF
		}
		return nil, err
	}

	if a2a.IsTerminalEvent(ev) {
		s.ended = true
		s.hub.Unsubscribe(ctx, s.taskID, s)
	}
	return ev, nil
}

// Close detaches the subscription from its task. It is idempotent.
func (s *Subscription) Close() {
	s.hub.Unsubscribe(context.Background(), s.taskID, s)
}

// Events returns an iterator over the events of the subscription. The
// iteration stops after the terminal event, when ctx ends, or when the
// consumer breaks out of the loop; in every case the subscription is closed.
func (s *Subscription) Events(ctx context.Context) iter.Seq[a2a.Event] {
	return func(yield func(a2a.Event) bool) {
		defer s.Close()

		for {
			ev, err := s.Next(ctx)
			if err != nil {
				return
			}
			if !yield(ev) {
				return
			}
		}
	}
}
