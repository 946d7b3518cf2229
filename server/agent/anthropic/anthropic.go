// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package anthropic implements an [agent.Agent] backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/go-a2a/a2a-server/server/agent"
	"github.com/go-a2a/a2a-server/server/history"
)

// artifactName names the artifact streamed responses are built into.
const artifactName = "response"

// Config configures an [Agent].
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	System    string
}

// Agent answers through Claude models.
type Agent struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	system    string
}

var _ agent.Agent = (*Agent)(nil)

// New returns an [Agent] for cfg.
func New(cfg Config, opts ...option.RequestOption) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required for anthropic")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required for anthropic")
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be positive")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &Agent{
		client:    anthropic.NewClient(reqOpts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		system:    cfg.System,
	}, nil
}

func (a *Agent) params(input string, hist []history.Entry) anthropic.MessageNewParams {
	messages := make([]anthropic.MessageParam, 0, len(hist)+1)
	for _, e := range hist {
		switch e.Role {
		case history.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(e.Content)))
		case history.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(e.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(input)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  messages,
	}
	if a.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: a.system}}
	}
	return params
}

// Invoke implements [agent.Agent]. It returns the text of the reply.
func (a *Agent) Invoke(ctx context.Context, input, _ string, hist []history.Entry) (any, error) {
	resp, err := a.client.Messages.New(ctx, a.params(input, hist))
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// Stream implements [agent.Agent]. Text deltas are streamed as chunks of a
// single artifact.
func (a *Agent) Stream(ctx context.Context, input, _ string, hist []history.Entry) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		stream := a.client.Messages.NewStreaming(ctx, a.params(input, hist))
		defer stream.Close()

		n := 0
		for stream.Next() {
			ev, ok := stream.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			delta, ok := ev.Delta.AsAny().(anthropic.TextDelta)
			if !ok || delta.Text == "" {
				continue
			}
			if !yield(agent.TextDelta(artifactName, n, delta.Text), nil) {
				return
			}
			n++
		}
		if err := stream.Err(); err != nil {
			yield(nil, fmt.Errorf("anthropic stream failed: %w", err))
			return
		}
		yield(agent.Closing(artifactName), nil)
	}
}

// SupportedContentTypes implements [agent.Agent].
func (a *Agent) SupportedContentTypes() []string {
	return agent.DefaultContentTypes
}
