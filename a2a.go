// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package a2a defines the wire vocabulary of the Agent-to-Agent (A2A) task
// protocol: tasks and their lifecycle states, messages, artifacts, streaming
// events, agent cards, push notification configuration, and the JSON-RPC
// envelopes that carry them.
//
// The server side of the protocol lives in the [github.com/go-a2a/a2a-server/server]
// package tree.
package a2a

// Version is the A2A protocol version implemented by this module.
const Version = "0.1.0"

// ProtocolVersion is the JSON-RPC version carried in every envelope.
const ProtocolVersion = "2.0"
