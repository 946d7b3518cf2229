// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package history stores the conversation history of sessions.
package history

import (
	"context"

	a2a "github.com/go-a2a/a2a-server"
)

// Roles of history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is one message of a conversation.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is an append-only per-session message log.
type Provider interface {
	// Get returns the entries of a session, oldest first. A positive limit
	// returns only the last limit entries.
	Get(ctx context.Context, sessionID string, limit int) ([]Entry, error)

	// Append adds an entry to the end of a session.
	Append(ctx context.Context, sessionID string, entry Entry) error

	// Clear removes every entry of a session.
	Clear(ctx context.Context, sessionID string) error
}

// FromMessage returns the entry for msg: agent messages become assistant
// entries and the content is the text of the message.
func FromMessage(msg a2a.Message) Entry {
	role := RoleUser
	if msg.Role == a2a.RoleAgent {
		role = RoleAssistant
	}
	return Entry{Role: role, Content: msg.Text()}
}

func tail(entries []Entry, limit int) []Entry {
	if limit > 0 && len(entries) > limit {
		return entries[len(entries)-limit:]
	}
	return entries
}
