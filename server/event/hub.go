// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package event fans task events out to subscribers.
//
// A [Hub] keeps one topic per task. Each topic holds the subscriptions
// currently observing the task, each with its own unbounded [Queue].
// Operations on one topic are serialized; different topics never contend.
package event

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/internal/telemetry"
)

type topic struct {
	mu   sync.Mutex
	subs []*Subscription
}

// Hub is the per-task registry of live subscriptions.
type Hub struct {
	topics  sync.Map // task ID -> *topic
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// HubOption configures a [Hub].
type HubOption func(*Hub)

// WithLogger sets the logger of the hub.
func WithLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithMetrics sets the metric instruments of the hub.
func WithMetrics(m *telemetry.Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

// NewHub returns an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger:  slog.Default(),
		metrics: telemetry.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new subscription for taskID. The subscription
// receives every event published for the task from now on.
//
// With resuming set, Subscribe fails with [NoTopicError] when no
// subscription was ever opened for the task.
func (h *Hub) Subscribe(ctx context.Context, taskID string, resuming bool) (*Subscription, error) {
	var t *topic
	if resuming {
		v, ok := h.topics.Load(taskID)
		if !ok {
			return nil, NoTopicError{TaskID: taskID}
		}
		t = v.(*topic)
	} else {
		v, _ := h.topics.LoadOrStore(taskID, &topic{})
		t = v.(*topic)
	}

	sub := &Subscription{hub: h, taskID: taskID, queue: NewQueue()}
	t.mu.Lock()
	t.subs = append(t.subs, sub)
	t.mu.Unlock()

	h.metrics.Subscribers.Add(ctx, 1)
	h.logger.DebugContext(ctx, "subscribed", "task_id", taskID, "resuming", resuming)
	return sub, nil
}

// Publish delivers ev to every subscription of taskID in call order.
// Events published while nobody is subscribed are dropped.
//
// A terminal event ([a2a.IsTerminalEvent]) is the last event its recipients
// get: they are detached from the topic as part of the delivery.
func (h *Hub) Publish(ctx context.Context, taskID string, ev a2a.Event) {
	v, ok := h.topics.Load(taskID)
	if !ok {
		h.metrics.Dropped.Add(ctx, 1)
		return
	}
	t := v.(*topic)

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.subs) == 0 {
		h.metrics.Dropped.Add(ctx, 1)
		return
	}

	terminal := a2a.IsTerminalEvent(ev)
	for _, sub := range t.subs {
		if err := sub.queue.Push(ev); err != nil {
			h.logger.WarnContext(ctx, "event not queued", "task_id", taskID, "error", err)
			continue
		}
		if terminal {
			sub.queue.Close()
		}
	}
	h.metrics.Published.Add(ctx, 1)

	if terminal {
		h.metrics.Subscribers.Add(ctx, -int64(len(t.subs)))
		t.subs = nil
	}
}

// Unsubscribe detaches sub from taskID and closes its queue.
// Unsubscribing twice is harmless.
func (h *Hub) Unsubscribe(ctx context.Context, taskID string, sub *Subscription) {
	sub.queue.Close()

	v, ok := h.topics.Load(taskID)
	if !ok {
		return
	}
	t := v.(*topic)

	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.Index(t.subs, sub)
	if i < 0 {
		return
	}
	t.subs = slices.Delete(t.subs, i, i+1)
	h.metrics.Subscribers.Add(ctx, -1)
}

// Subscribers returns the number of live subscriptions of taskID.
func (h *Hub) Subscribers(taskID string) int {
	v, ok := h.topics.Load(taskID)
	if !ok {
		return 0
	}
	t := v.(*topic)

	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}
