// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"sync"

	a2a "github.com/go-a2a/a2a-server"
)

// Queue is an unbounded FIFO of events with a single blocking consumer.
//
// Closing a queue stops further pushes; events already queued can still be
// received.
type Queue struct {
	mu     sync.Mutex
	items  []a2a.Event
	closed bool
	notify chan struct{}
	done   chan struct{}
}

// NewQueue returns an empty open queue.
func NewQueue() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends ev to the queue. It never blocks.
func (q *Queue) Push(ev a2a.Event) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Next removes and returns the oldest event, blocking until one is available.
// It returns [ErrQueueClosed] once the queue is closed and drained, or the
// context error if ctx ends first.
func (q *Queue) Next(ctx context.Context) (a2a.Event, error) {
	for {
		if ev, ok, closed := q.pop(); ok {
			return ev, nil
		} else if closed {
			return nil, ErrQueueClosed
		}

		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *Queue) pop() (ev a2a.Event, ok, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false, q.closed
	}
	ev = q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return ev, true, q.closed
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close closes the queue. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}
