// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package notification

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	a2a "github.com/go-a2a/a2a-server"
)

const (
	// MethodTaskStatus is the JSON-RPC method of notification payloads.
	MethodTaskStatus = "tasks/status"

	// TokenHeader carries the client supplied token of the target.
	TokenHeader = "X-A2A-Notification-Token"

	// ValidationTokenParam is the query parameter of verification challenges.
	ValidationTokenParam = "validationToken"

	tokenLifetime = 5 * time.Minute
)

// Payload is the body of a notification.
type Payload struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  *a2a.Task `json:"params"`
}

// HTTP posts notifications to their targets.
//
// When a [KeyManager] is configured each request carries an ES256 JWT in the
// Authorization header. Its request_body_sha256 claim binds the token to the
// body.
type HTTP struct {
	registry
	keys   *KeyManager
	client *http.Client
	issuer string
	logger *slog.Logger
}

var _ Handler = (*HTTP)(nil)

// HTTPOption configures an [HTTP] handler.
type HTTPOption func(*HTTP)

// WithKeyManager signs notifications with keys.
func WithKeyManager(keys *KeyManager) HTTPOption {
	return func(h *HTTP) {
		h.keys = keys
	}
}

// WithHTTPClient sets the client used for delivery and verification.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.client = client
	}
}

// WithIssuer sets the iss claim of signed notifications.
func WithIssuer(issuer string) HTTPOption {
	return func(h *HTTP) {
		h.issuer = issuer
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(h *HTTP) {
		h.logger = logger
	}
}

// NewHTTP returns an [HTTP] handler storing targets in targets.
func NewHTTP(targets Targets, opts ...HTTPOption) *HTTP {
	if targets == nil {
		targets = NewMemoryTargets()
	}
	h := &HTTP{
		client: &http.Client{Timeout: 10 * time.Second},
		issuer: "a2a-server",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registry = registry{targets: targets, verify: h.VerifyTarget}
	return h
}

// Notify implements [Handler].
func (h *HTTP) Notify(ctx context.Context, task *a2a.Task) bool {
	config, err := h.GetTarget(ctx, task.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "lookup push notification target", "task_id", task.ID, "error", err)
		return false
	}
	if config == nil {
		return false
	}

	if err := h.send(ctx, config, task); err != nil {
		h.logger.WarnContext(ctx, "push notification failed", "task_id", task.ID, "url", config.URL, "error", err)
		return false
	}

	h.logger.DebugContext(ctx, "push notification sent", "task_id", task.ID, "state", task.Status.State)
	return true
}

func (h *HTTP) send(ctx context.Context, config *a2a.PushNotificationConfig, task *a2a.Task) error {
	body, err := sonic.ConfigDefault.Marshal(&Payload{
		JSONRPC: "2.0",
		Method:  MethodTaskStatus,
		Params:  task,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if config.Token != "" {
		req.Header.Set(TokenHeader, config.Token)
	}

	switch {
	case h.keys != nil:
		token, err := h.sign(config.URL, body)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	case config.Authentication != nil && config.Authentication.Credentials != "" &&
		slices.ContainsFunc(config.Authentication.Schemes, isBearer):
		req.Header.Set("Authorization", "Bearer "+config.Authentication.Credentials)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notification rejected with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

func (h *HTTP) sign(audience string, body []byte) (string, error) {
	sum := sha256.Sum256(body)
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":                 h.issuer,
		"sub":                 "push-notification",
		"aud":                 audience,
		"iat":                 now.Unix(),
		"exp":                 now.Add(tokenLifetime).Unix(),
		"jti":                 uuid.NewString(),
		"request_body_sha256": hex.EncodeToString(sum[:]),
	}
	return h.keys.Sign(claims)
}

// VerifyTarget implements [Handler]. It sends a GET challenge carrying a
// random validation token and expects the target to echo it back.
func (h *HTTP) VerifyTarget(ctx context.Context, target string) bool {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}

	challenge := uuid.NewString()
	q := u.Query()
	q.Set(ValidationTokenParam, challenge)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false
	}
	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.WarnContext(ctx, "push notification target unreachable", "url", target, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	echo, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(echo)) == challenge
}

func isBearer(scheme string) bool {
	return strings.EqualFold(scheme, "bearer")
}
