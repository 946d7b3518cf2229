// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"
	"slices"

	"github.com/go-json-experiment/json"
)

// Artifact is an output produced by an agent for a task.
//
// Streaming agents may emit one artifact in chunks: each chunk carries the
// same Index, every chunk after the first sets Append, and the last one sets
// LastChunk.
type Artifact struct {
	Name        string         `json:"name,omitzero"`
	Description string         `json:"description,omitzero"`
	Parts       []Part         `json:"parts"`
	Index       int            `json:"index"`
	Append      bool           `json:"append,omitzero"`
	LastChunk   bool           `json:"lastChunk,omitzero"`
	Metadata    map[string]any `json:"metadata,omitzero"`
}

// NewTextArtifact returns an artifact holding a single [TextPart].
func NewTextArtifact(index int, text string) Artifact {
	return Artifact{Parts: []Part{TextPart{Text: text}}, Index: index}
}

// UnmarshalJSON implements [json.Unmarshaler].
func (a *Artifact) UnmarshalJSON(data []byte) error {
	var w struct {
		Name        string         `json:"name,omitzero"`
		Description string         `json:"description,omitzero"`
		Parts       []partJSON     `json:"parts"`
		Index       int            `json:"index"`
		Append      bool           `json:"append,omitzero"`
		LastChunk   bool           `json:"lastChunk,omitzero"`
		Metadata    map[string]any `json:"metadata,omitzero"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parts, err := decodeParts(w.Parts)
	if err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	*a = Artifact{
		Name:        w.Name,
		Description: w.Description,
		Parts:       parts,
		Index:       w.Index,
		Append:      w.Append,
		LastChunk:   w.LastChunk,
		Metadata:    w.Metadata,
	}
	return nil
}

// Clone returns a copy of a with its own parts slice and metadata.
func (a Artifact) Clone() Artifact {
	a.Parts = slices.Clone(a.Parts)
	a.Metadata = cloneMetadata(a.Metadata)
	return a
}
