// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	want := Default()
	want.Addr = ":9090"
	want.ShutdownTimeout = 5 * time.Second
	want.Store = StoreConfig{Driver: "sqlite", DSN: "/tmp/tasks.db"}
	want.Agent.Kind = "anthropic"
	want.Agent.MaxTokens = 2048
	want.Cancel.Interruptible = true

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "server.yaml",
			content: `
addr: ":9090"
shutdown_timeout: 5s
store:
  driver: sqlite
  dsn: /tmp/tasks.db
agent:
  kind: anthropic
  max_tokens: 2048
cancel:
  interruptible: true
`,
		},
		{
			name: "toml",
			file: "server.toml",
			content: `
addr = ":9090"
shutdown_timeout = "5s"

[store]
driver = "sqlite"
dsn = "/tmp/tasks.db"

[agent]
kind = "anthropic"
max_tokens = 2048

[cancel]
interruptible = true
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(writeFile(t, "server.json", "{}"))
	if err == nil || !strings.Contains(err.Error(), "unsupported config format") {
		t.Fatalf("Load() error = %v, want unsupported format", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default", func(*Config) {}, ""},
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr is required"},
		{"unknown store", func(c *Config) { c.Store.Driver = "redis" }, `unknown driver "redis"`},
		{"sqlite history without sqlite store", func(c *Config) { c.History.Driver = "sqlite" }, "requires the sqlite task store"},
		{"unknown agent", func(c *Config) { c.Agent.Kind = "gpt" }, `unknown kind "gpt"`},
		{"anthropic without tokens", func(c *Config) { c.Agent.Kind = "anthropic"; c.Agent.MaxTokens = 0 }, "max_tokens"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "unknown format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	c := Default()
	if got, want := c.PublicURL(), "http://localhost:8080"; got != want {
		t.Errorf("PublicURL() = %q, want %q", got, want)
	}
	c.BaseURL = "https://agent.example.com"
	if got, want := c.PublicURL(), "https://agent.example.com"; got != want {
		t.Errorf("PublicURL() = %q, want %q", got, want)
	}
}
