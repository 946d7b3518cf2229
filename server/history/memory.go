// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"slices"
	"sync"
)

// InMemory keeps history in process memory.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[string][]Entry
}

var _ Provider = (*InMemory)(nil)

// NewInMemory returns an empty in-memory provider.
func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[string][]Entry)}
}

// Get implements [Provider].
func (p *InMemory) Get(_ context.Context, sessionID string, limit int) ([]Entry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Clone(tail(p.sessions[sessionID], limit)), nil
}

// Append implements [Provider].
func (p *InMemory) Append(_ context.Context, sessionID string, entry Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sessions[sessionID] = append(p.sessions[sessionID], entry)
	return nil
}

// Clear implements [Provider].
func (p *InMemory) Clear(_ context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.sessions, sessionID)
	return nil
}
