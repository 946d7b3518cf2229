// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent defines the agents that do the work behind tasks.
package agent

import (
	"context"
	"fmt"
	"iter"
	"strings"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/server/history"
	"github.com/go-a2a/a2a-server/server/processor"
)

// Agent answers user input.
//
// Responses and stream items may be of any type understood by the
// configured [processor.Processor].
type Agent interface {
	// Invoke returns the complete response to input.
	Invoke(ctx context.Context, input, sessionID string, hist []history.Entry) (any, error)

	// Stream returns the response to input incrementally. A non-nil error
	// ends the stream.
	Stream(ctx context.Context, input, sessionID string, hist []history.Entry) iter.Seq2[any, error]

	// SupportedContentTypes lists the output MIME types of the agent.
	SupportedContentTypes() []string
}

// DefaultContentTypes are the content types of text agents.
var DefaultContentTypes = []string{"text", "text/plain"}

// Func adapts plain functions to [Agent].
type Func struct {
	InvokeFunc   func(ctx context.Context, input, sessionID string, hist []history.Entry) (any, error)
	StreamFunc   func(ctx context.Context, input, sessionID string, hist []history.Entry) iter.Seq2[any, error]
	ContentTypes []string
}

var _ Agent = (*Func)(nil)

// Invoke implements [Agent].
func (f *Func) Invoke(ctx context.Context, input, sessionID string, hist []history.Entry) (any, error) {
	if f.InvokeFunc == nil {
		return nil, fmt.Errorf("agent does not support invoke")
	}
	return f.InvokeFunc(ctx, input, sessionID, hist)
}

// Stream implements [Agent]. Without a StreamFunc the response of
// InvokeFunc is streamed as a single closing chunk.
func (f *Func) Stream(ctx context.Context, input, sessionID string, hist []history.Entry) iter.Seq2[any, error] {
	if f.StreamFunc != nil {
		return f.StreamFunc(ctx, input, sessionID, hist)
	}
	return func(yield func(any, error) bool) {
		resp, err := f.Invoke(ctx, input, sessionID, hist)
		if err != nil {
			yield(nil, err)
			return
		}
		yield(processor.Chunk{Content: fmt.Sprint(resp), Complete: true}, nil)
	}
}

// SupportedContentTypes implements [Agent].
func (f *Func) SupportedContentTypes() []string {
	if len(f.ContentTypes) == 0 {
		return DefaultContentTypes
	}
	return f.ContentTypes
}

// Echo replies with the user input.
type Echo struct{}

var _ Agent = Echo{}

// Invoke implements [Agent].
func (Echo) Invoke(_ context.Context, input, _ string, _ []history.Entry) (any, error) {
	return input, nil
}

// Stream implements [Agent]. Each word of input is streamed as a chunk of
// one artifact.
func (Echo) Stream(ctx context.Context, input, _ string, _ []history.Entry) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for i, word := range strings.SplitAfter(input, " ") {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(TextDelta("echo", i, word), nil) {
				return
			}
		}
		yield(Closing("echo"), nil)
	}
}

// SupportedContentTypes implements [Agent].
func (Echo) SupportedContentTypes() []string {
	return DefaultContentTypes
}

// TextDelta returns the stream chunk of the n-th text delta of an artifact
// built up incrementally.
func TextDelta(name string, n int, text string) processor.Chunk {
	return processor.Chunk{
		Content: text,
		Artifacts: []a2a.Artifact{{
			Name:   name,
			Parts:  []a2a.Part{a2a.TextPart{Text: text}},
			Append: n > 0,
		}},
	}
}

// Closing returns the chunk that completes an artifact built with
// [TextDelta] and ends the stream.
func Closing(name string) processor.Chunk {
	return processor.Chunk{
		Complete: true,
		Artifacts: []a2a.Artifact{{
			Name:      name,
			Parts:     []a2a.Part{},
			Append:    true,
			LastChunk: true,
		}},
	}
}
