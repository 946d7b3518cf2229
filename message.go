// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-json-experiment/json"
)

// Role represents the role of a message sender.
type Role string

// Role constants for message senders.
const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Part types as they appear in the "type" member on the wire.
const (
	PartTypeText = "text"
	PartTypeFile = "file"
	PartTypeData = "data"
)

// Part is one piece of content in a [Message] or [Artifact].
//
// Implementations are [TextPart], [FilePart] and [DataPart].
type Part interface {
	// PartType returns the wire discriminator of the part.
	PartType() string
}

// TextPart is a plain text segment.
type TextPart struct {
	Text     string
	Metadata map[string]any
}

// PartType implements [Part].
func (TextPart) PartType() string { return PartTypeText }

// MarshalJSON implements [json.Marshaler].
func (p TextPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(partJSON{Type: PartTypeText, Text: p.Text, Metadata: p.Metadata})
}

// FileContent describes a file either inline (Bytes, base64) or by URI.
type FileContent struct {
	Name     string `json:"name,omitzero"`
	MimeType string `json:"mimeType,omitzero"`
	Bytes    string `json:"bytes,omitzero"`
	URI      string `json:"uri,omitzero"`
}

// FilePart carries a file.
type FilePart struct {
	File     FileContent
	Metadata map[string]any
}

// PartType implements [Part].
func (FilePart) PartType() string { return PartTypeFile }

// MarshalJSON implements [json.Marshaler].
func (p FilePart) MarshalJSON() ([]byte, error) {
	return json.Marshal(partJSON{Type: PartTypeFile, File: &p.File, Metadata: p.Metadata})
}

// DataPart carries structured data.
type DataPart struct {
	Data     map[string]any
	Metadata map[string]any
}

// PartType implements [Part].
func (DataPart) PartType() string { return PartTypeData }

// MarshalJSON implements [json.Marshaler].
func (p DataPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(partJSON{Type: PartTypeData, Data: p.Data, Metadata: p.Metadata})
}

var (
	_ Part = TextPart{}
	_ Part = FilePart{}
	_ Part = DataPart{}
)

// partJSON is the union wire form of every Part.
type partJSON struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitzero"`
	File     *FileContent   `json:"file,omitzero"`
	Data     map[string]any `json:"data,omitzero"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

func (w partJSON) part() (Part, error) {
	switch w.Type {
	case PartTypeText:
		return TextPart{Text: w.Text, Metadata: w.Metadata}, nil
	case PartTypeFile:
		if w.File == nil {
			return nil, fmt.Errorf("file part without file content")
		}
		return FilePart{File: *w.File, Metadata: w.Metadata}, nil
	case PartTypeData:
		return DataPart{Data: w.Data, Metadata: w.Metadata}, nil
	default:
		return nil, fmt.Errorf("unknown part type %q", w.Type)
	}
}

func decodeParts(raw []partJSON) ([]Part, error) {
	if raw == nil {
		return nil, nil
	}
	parts := make([]Part, len(raw))
	for i, w := range raw {
		p, err := w.part()
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		parts[i] = p
	}
	return parts, nil
}

// Message is a single turn of communication between user and agent.
type Message struct {
	Role     Role           `json:"role"`
	Parts    []Part         `json:"parts"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// NewTextMessage returns a message from role holding a single [TextPart].
func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{TextPart{Text: text}}}
}

// UnmarshalJSON implements [json.Unmarshaler].
func (m *Message) UnmarshalJSON(data []byte) error {
	var w struct {
		Role     Role           `json:"role"`
		Parts    []partJSON     `json:"parts"`
		Metadata map[string]any `json:"metadata,omitzero"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parts, err := decodeParts(w.Parts)
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}
	*m = Message{Role: w.Role, Parts: parts, Metadata: w.Metadata}
	return nil
}

// Text returns the text of all text parts of m joined by a single space.
// Non-text parts are skipped.
func (m Message) Text() string {
	var texts []string
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok && tp.Text != "" {
			texts = append(texts, tp.Text)
		}
	}
	return strings.Join(texts, " ")
}

// Clone returns a copy of m with its own parts slice and metadata.
func (m Message) Clone() Message {
	m.Parts = slices.Clone(m.Parts)
	m.Metadata = cloneMetadata(m.Metadata)
	return m
}
