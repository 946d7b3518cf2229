// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the server configuration from YAML or TOML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration of the A2A server.
type Config struct {
	// Addr is the TCP address the server listens on.
	// Defaults to ":8080".
	Addr string `yaml:"addr" toml:"addr"`

	// BaseURL is the public URL advertised in the agent card.
	// Defaults to "http://localhost" plus the port of Addr.
	BaseURL string `yaml:"base_url" toml:"base_url"`

	// ShutdownTimeout bounds graceful shutdown, including running drivers.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`

	Store   StoreConfig   `yaml:"store" toml:"store"`
	History HistoryConfig `yaml:"history" toml:"history"`
	Agent   AgentConfig   `yaml:"agent" toml:"agent"`
	Push    PushConfig    `yaml:"push" toml:"push"`
	Cancel  CancelConfig  `yaml:"cancel" toml:"cancel"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

// StoreConfig selects the task store.
type StoreConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `yaml:"driver" toml:"driver"`
	// DSN is the database file for the sqlite driver.
	DSN string `yaml:"dsn" toml:"dsn"`
}

// HistoryConfig selects the conversation history provider.
type HistoryConfig struct {
	// Driver is "memory", "sqlite" or "task". The sqlite driver shares the
	// database of the task store.
	Driver string `yaml:"driver" toml:"driver"`
}

// AgentConfig selects and configures the agent.
type AgentConfig struct {
	// Kind is "echo" or "anthropic".
	Kind string `yaml:"kind" toml:"kind"`
	// Name is advertised in the agent card.
	Name string `yaml:"name" toml:"name"`
	// Description is advertised in the agent card.
	Description string `yaml:"description" toml:"description"`
	// Model is the model used by the anthropic agent.
	Model string `yaml:"model" toml:"model"`
	// MaxTokens caps the length of each anthropic response.
	MaxTokens int `yaml:"max_tokens" toml:"max_tokens"`
	// System is an optional system prompt for the anthropic agent.
	System string `yaml:"system" toml:"system"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env" toml:"api_key_env"`
	// BaseURL overrides the anthropic API endpoint.
	BaseURL string `yaml:"base_url" toml:"base_url"`
}

// PushConfig configures outbound push notifications.
type PushConfig struct {
	// Enabled turns on the HTTP notification sender. When false push
	// notification requests are rejected.
	Enabled bool `yaml:"enabled" toml:"enabled"`
	// KeyID is the "kid" of the signing key published in the JWKS document.
	KeyID string `yaml:"key_id" toml:"key_id"`
	// Timeout bounds each notification request.
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
}

// CancelConfig configures task cancellation.
type CancelConfig struct {
	// Interruptible allows tasks/cancel to stop running streaming tasks.
	// When false every cancellation is rejected.
	Interruptible bool `yaml:"interruptible" toml:"interruptible"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" toml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Store:           StoreConfig{Driver: "memory", DSN: "a2a.db"},
		History:         HistoryConfig{Driver: "memory"},
		Agent: AgentConfig{
			Kind:        "echo",
			Name:        "a2a-server",
			Description: "A2A task server",
			Model:       "claude-sonnet-4-5",
			MaxTokens:   1024,
			APIKeyEnv:   "ANTHROPIC_API_KEY",
		},
		Push: PushConfig{KeyID: "a2a-server", Timeout: 10 * time.Second},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the configuration at path on top of [Default]. The format is
// chosen by extension: .yaml and .yml for YAML, .toml for TOML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.DSN == "" {
			return fmt.Errorf("store: dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("store: unknown driver %q (supported: memory, sqlite)", c.Store.Driver)
	}

	switch c.History.Driver {
	case "memory", "task":
	case "sqlite":
		if c.Store.Driver != "sqlite" {
			return fmt.Errorf("history: the sqlite driver requires the sqlite task store")
		}
	default:
		return fmt.Errorf("history: unknown driver %q (supported: memory, sqlite, task)", c.History.Driver)
	}

	switch c.Agent.Kind {
	case "echo":
	case "anthropic":
		if c.Agent.Model == "" {
			return fmt.Errorf("agent: model is required for anthropic")
		}
		if c.Agent.MaxTokens <= 0 {
			return fmt.Errorf("agent: max_tokens must be positive for anthropic")
		}
		if c.Agent.APIKeyEnv == "" {
			return fmt.Errorf("agent: api_key_env is required for anthropic")
		}
	default:
		return fmt.Errorf("agent: unknown kind %q (supported: echo, anthropic)", c.Agent.Kind)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q (supported: text, json)", c.Log.Format)
	}

	return nil
}

// PublicURL returns BaseURL, or a localhost URL derived from Addr.
func (c *Config) PublicURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	addr := c.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
