// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package keymutex provides mutual exclusion scoped to a string key.
package keymutex

import "sync"

// KeyMutex serializes callers that use the same key. Callers using different
// keys never block each other. The zero value is ready to use.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// Lock acquires the lock for key and returns the function that releases it.
func (km *KeyMutex) Lock(key string) (unlock func()) {
	km.mu.Lock()
	if km.locks == nil {
		km.locks = make(map[string]*entry)
	}
	e, ok := km.locks[key]
	if !ok {
		e = &entry{}
		km.locks[key] = e
	}
	e.refs++
	km.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			km.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(km.locks, key)
			}
			km.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently held or waited on.
func (km *KeyMutex) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}
