// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry holds the OpenTelemetry metric instruments of the server.
package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// ScopeName is the instrumentation scope used for tracers and meters.
const ScopeName = "github.com/go-a2a/a2a-server"

// Metrics groups the instruments recorded by the subscriber hub and the
// streaming driver.
type Metrics struct {
	// Published counts events delivered to at least one subscriber.
	Published metric.Int64Counter
	// Dropped counts events published while nobody was subscribed.
	Dropped metric.Int64Counter
	// Subscribers tracks live subscriptions.
	Subscribers metric.Int64UpDownCounter
	// DriversStarted counts streaming drivers launched.
	DriversStarted metric.Int64Counter
	// DriversFailed counts streaming drivers that ended in the failed state.
	DriversFailed metric.Int64Counter
	// DriverDuration records driver run time in seconds.
	DriverDuration metric.Float64Histogram
}

// New builds the instruments from m. Instruments that cannot be created are
// reported through [otel.Handle] and replaced by no-op instruments.
func New(m metric.Meter) *Metrics {
	var (
		ms  Metrics
		err error
	)

	ms.Published, err = m.Int64Counter("a2a.hub.published",
		metric.WithDescription("Count of events delivered to subscribers"),
	)
	if err != nil {
		otel.Handle(err)
		ms.Published = noop.Int64Counter{}
	}

	ms.Dropped, err = m.Int64Counter("a2a.hub.dropped",
		metric.WithDescription("Count of events published without subscribers"),
	)
	if err != nil {
		otel.Handle(err)
		ms.Dropped = noop.Int64Counter{}
	}

	ms.Subscribers, err = m.Int64UpDownCounter("a2a.hub.subscribers",
		metric.WithDescription("Number of live subscriptions"),
	)
	if err != nil {
		otel.Handle(err)
		ms.Subscribers = noop.Int64UpDownCounter{}
	}

	ms.DriversStarted, err = m.Int64Counter("a2a.driver.started",
		metric.WithDescription("Count of started streaming drivers"),
	)
	if err != nil {
		otel.Handle(err)
		ms.DriversStarted = noop.Int64Counter{}
	}

	ms.DriversFailed, err = m.Int64Counter("a2a.driver.failed",
		metric.WithDescription("Count of streaming drivers that failed their task"),
	)
	if err != nil {
		otel.Handle(err)
		ms.DriversFailed = noop.Int64Counter{}
	}

	ms.DriverDuration, err = m.Float64Histogram("a2a.driver.duration",
		metric.WithDescription("Streaming driver run time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
		ms.DriverDuration = noop.Float64Histogram{}
	}

	return &ms
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns instruments built from the global meter provider.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(otel.Meter(ScopeName))
	})
	return defaultMetrics
}

// Noop returns instruments that record nothing.
func Noop() *Metrics {
	return New(noop.NewMeterProvider().Meter(ScopeName))
}
