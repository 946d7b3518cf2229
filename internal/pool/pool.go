// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool provides generic type pooling, and provides [*bytes.Buffer] and [*strings.Builder] pooling objects.
package pool

import (
	"bytes"
	"strings"
	"sync"
)

// Pool is a generics wrapper around [sync.Pool] to provide strongly-typed object pooling.
type Pool[T any] struct {
	p sync.Pool
}

// Reseter is implemented by pooled values that can be cleared before reuse.
type Reseter interface {
	Reset()
}

// New returns a new [Pool] for T, and will use fn to construct new T's when the pool is empty.
func New[T any](fn func() T) *Pool[T] {
	return &Pool[T]{
		p: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

// Get gets a T from the pool, or creates a new one if the pool is empty.
func (p *Pool[T]) Get() T {
	return p.p.Get().(T)
}

// Put resets x when it implements [Reseter] and returns it into the pool.
func (p *Pool[T]) Put(x T) {
	if xx, ok := any(x).(Reseter); ok {
		xx.Reset()
	}
	p.p.Put(x)
}

// Bytes provides the [*bytes.Buffer] pooling objects used to frame
// server-sent events.
var Bytes = New(func() *bytes.Buffer {
	return &bytes.Buffer{}
})

// String provides the [*strings.Builder] pooling objects used to accumulate
// streamed agent text.
var String = New(func() *strings.Builder {
	return &strings.Builder{}
})
