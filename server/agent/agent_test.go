// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package agent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-a2a/a2a-server/server/agent"
	"github.com/go-a2a/a2a-server/server/history"
	"github.com/go-a2a/a2a-server/server/processor"
)

func collect(t *testing.T, a agent.Agent, input string) ([]any, error) {
	t.Helper()

	var items []any
	for item, err := range a.Stream(t.Context(), input, "s1", nil) {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

func TestEcho(t *testing.T) {
	a := agent.Echo{}

	resp, err := a.Invoke(t.Context(), "hello world", "s1", nil)
	if err != nil || resp != "hello world" {
		t.Errorf("Invoke() = %v, %v, want %q, nil", resp, err, "hello world")
	}

	items, err := collect(t, a, "hello world")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	want := []any{
		agent.TextDelta("echo", 0, "hello "),
		agent.TextDelta("echo", 1, "world"),
		agent.Closing("echo"),
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("Stream() mismatch (-want +got):\n%s", diff)
	}

	var text string
	for _, it := range items {
		_, msg, _, _ := processor.Default{}.Chunk(it)
		if msg != nil {
			text += msg.Text()
		}
	}
	if text != "hello world" {
		t.Errorf("accumulated text = %q, want %q", text, "hello world")
	}
}

func TestEchoStreamStopsEarly(t *testing.T) {
	n := 0
	for range agent.Echo{}.Stream(t.Context(), "a b c d", "s1", nil) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("consumed %d items, want 2", n)
	}
}

func TestFunc(t *testing.T) {
	var gotHist []history.Entry
	hist := []history.Entry{{Role: history.RoleUser, Content: "earlier"}}

	a := &agent.Func{
		InvokeFunc: func(_ context.Context, input, _ string, h []history.Entry) (any, error) {
			gotHist = h
			return "re: " + input, nil
		},
	}

	resp, err := a.Invoke(t.Context(), "ping", "s1", hist)
	if err != nil || resp != "re: ping" {
		t.Errorf("Invoke() = %v, %v", resp, err)
	}
	if diff := cmp.Diff(hist, gotHist); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	items, err := collect(t, a, "ping")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if diff := cmp.Diff([]any{processor.Chunk{Content: "re: ping", Complete: true}}, items); diff != "" {
		t.Errorf("Stream() fallback mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(agent.DefaultContentTypes, a.SupportedContentTypes()); diff != "" {
		t.Errorf("SupportedContentTypes() mismatch (-want +got):\n%s", diff)
	}
}

func TestFuncErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &agent.Func{
		InvokeFunc: func(context.Context, string, string, []history.Entry) (any, error) {
			return nil, boom
		},
		ContentTypes: []string{"application/json"},
	}

	if _, err := collect(t, a, "x"); !errors.Is(err, boom) {
		t.Errorf("Stream() error = %v, want %v", err, boom)
	}
	if got := a.SupportedContentTypes(); len(got) != 1 || got[0] != "application/json" {
		t.Errorf("SupportedContentTypes() = %v", got)
	}

	if _, err := (&agent.Func{}).Invoke(t.Context(), "x", "s1", nil); err == nil {
		t.Error("Invoke() without InvokeFunc error = nil, want error")
	}
}
