// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"
	"net/url"
)

// AgentProvider identifies the organization behind an agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url,omitzero"`
}

// AgentCapabilities lists the optional protocol features an agent supports.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming,omitzero"`
	PushNotifications      bool `json:"pushNotifications,omitzero"`
	StateTransitionHistory bool `json:"stateTransitionHistory,omitzero"`
}

// AgentAuthentication describes how clients authenticate with the agent.
type AgentAuthentication struct {
	Schemes     []string `json:"schemes"`
	Credentials string   `json:"credentials,omitzero"`
}

// AgentSkill describes a unit of capability an agent can perform.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitzero"`
	Tags        []string `json:"tags,omitzero"`
	Examples    []string `json:"examples,omitzero"`
	InputModes  []string `json:"inputModes,omitzero"`
	OutputModes []string `json:"outputModes,omitzero"`
}

// AgentCard is the self-description an agent publishes at
// /.well-known/agent.json.
type AgentCard struct {
	Name               string               `json:"name"`
	Description        string               `json:"description,omitzero"`
	URL                string               `json:"url"`
	Provider           *AgentProvider       `json:"provider,omitzero"`
	Version            string               `json:"version"`
	DocumentationURL   string               `json:"documentationUrl,omitzero"`
	Capabilities       AgentCapabilities    `json:"capabilities"`
	Authentication     *AgentAuthentication `json:"authentication,omitzero"`
	DefaultInputModes  []string             `json:"defaultInputModes,omitzero"`
	DefaultOutputModes []string             `json:"defaultOutputModes,omitzero"`
	Skills             []AgentSkill         `json:"skills"`
}

// Validate ensures the AgentCard is usable.
func (c AgentCard) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("agent card name cannot be empty")
	}
	if c.URL == "" {
		return fmt.Errorf("agent card url cannot be empty")
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("agent card url: %w", err)
	}
	for i, s := range c.Skills {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("agent skill %d: id and name are required", i)
		}
	}
	return nil
}

// AuthenticationInfo carries the credentials a push endpoint expects.
type AuthenticationInfo struct {
	Schemes     []string `json:"schemes"`
	Credentials string   `json:"credentials,omitzero"`
}

// PushNotificationConfig is the target of out-of-band task notifications.
type PushNotificationConfig struct {
	URL            string              `json:"url"`
	Token          string              `json:"token,omitzero"`
	Authentication *AuthenticationInfo `json:"authentication,omitzero"`
}

// TaskPushNotificationConfig binds a [PushNotificationConfig] to a task.
type TaskPushNotificationConfig struct {
	ID                     string                 `json:"id"`
	PushNotificationConfig PushNotificationConfig `json:"pushNotificationConfig"`
}

// TaskSendParams are the params of tasks/send and tasks/sendSubscribe.
type TaskSendParams struct {
	ID                  string                  `json:"id"`
	SessionID           string                  `json:"sessionId,omitzero"`
	Message             *Message                `json:"message"`
	AcceptedOutputModes []string                `json:"acceptedOutputModes,omitzero"`
	PushNotification    *PushNotificationConfig `json:"pushNotification,omitzero"`
	HistoryLength       *int                    `json:"historyLength,omitzero"`
	Metadata            map[string]any          `json:"metadata,omitzero"`
}

// TaskQueryParams are the params of tasks/get and tasks/resubscribe.
type TaskQueryParams struct {
	ID            string         `json:"id"`
	HistoryLength *int           `json:"historyLength,omitzero"`
	Metadata      map[string]any `json:"metadata,omitzero"`
}

// TaskIDParams are the params of tasks/cancel and tasks/pushNotification/get.
type TaskIDParams struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitzero"`
}
