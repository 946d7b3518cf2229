// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package notification_test

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/server/notification"
	"github.com/go-a2a/a2a-server/server/task"
)

type received struct {
	header http.Header
	body   []byte
}

// receiver is a push notification endpoint that answers verification
// challenges and records deliveries.
type receiver struct {
	*httptest.Server

	mu        sync.Mutex
	got       []received
	challenge bool
}

func newReceiver(t *testing.T, answerChallenge bool) *receiver {
	t.Helper()

	r := &receiver{challenge: answerChallenge}
	r.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			if !r.challenge {
				w.Write([]byte("nope"))
				return
			}
			w.Write([]byte(req.URL.Query().Get(notification.ValidationTokenParam)))
		case http.MethodPost:
			body, _ := io.ReadAll(req.Body)
			r.mu.Lock()
			r.got = append(r.got, received{header: req.Header.Clone(), body: body})
			r.mu.Unlock()
			w.WriteHeader(http.StatusAccepted)
		}
	}))
	t.Cleanup(r.Close)
	return r
}

func (r *receiver) deliveries() []received {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]received(nil), r.got...)
}

func testTask(id string, state a2a.TaskState) *a2a.Task {
	return &a2a.Task{
		ID:        id,
		SessionID: "s1",
		Status:    a2a.NewTaskStatus(state, nil),
		History:   []a2a.Message{a2a.NewTextMessage(a2a.RoleUser, "hi")},
	}
}

func TestLogging(t *testing.T) {
	ctx := t.Context()
	h := notification.NewLogging(nil, nil)

	if ok, err := h.SetTarget(ctx, "t1", a2a.PushNotificationConfig{}); err != nil || ok {
		t.Errorf("SetTarget(empty URL) = %v, %v, want false, nil", ok, err)
	}
	if h.Notify(ctx, testTask("t1", a2a.TaskStateWorking)) {
		t.Error("Notify() without target = true, want false")
	}

	cfg := a2a.PushNotificationConfig{URL: "https://example.com/hook", Token: "tok"}
	if ok, err := h.SetTarget(ctx, "t1", cfg); err != nil || !ok {
		t.Fatalf("SetTarget() = %v, %v, want true, nil", ok, err)
	}
	has, err := h.HasTarget(ctx, "t1")
	if err != nil || !has {
		t.Errorf("HasTarget() = %v, %v, want true, nil", has, err)
	}
	got, err := h.GetTarget(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTarget() error = %v", err)
	}
	if diff := cmp.Diff(&cfg, got); diff != "" {
		t.Errorf("GetTarget() mismatch (-want +got):\n%s", diff)
	}
	if !h.Notify(ctx, testTask("t1", a2a.TaskStateWorking)) {
		t.Error("Notify() with target = false, want true")
	}
}

func TestLoggingTaskStoreTargets(t *testing.T) {
	ctx := t.Context()
	store := task.NewInMemoryStore()
	h := notification.NewLogging(store, nil)

	cfg := a2a.PushNotificationConfig{URL: "https://example.com/hook"}
	if ok, err := h.SetTarget(ctx, "missing", cfg); err != nil || ok {
		t.Errorf("SetTarget(missing task) = %v, %v, want false, nil", ok, err)
	}

	if err := store.Create(ctx, testTask("t1", a2a.TaskStateSubmitted)); err != nil {
		t.Fatal(err)
	}
	if ok, err := h.SetTarget(ctx, "t1", cfg); err != nil || !ok {
		t.Fatalf("SetTarget() = %v, %v, want true, nil", ok, err)
	}
	if has, _ := store.HasPushNotification(ctx, "t1"); !has {
		t.Error("target not persisted in the task store")
	}
}

func TestHTTPVerifyTarget(t *testing.T) {
	ctx := t.Context()
	echo := newReceiver(t, true)
	silent := newReceiver(t, false)
	h := notification.NewHTTP(nil)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "echoes challenge", url: echo.URL + "/hook", want: true},
		{name: "wrong echo", url: silent.URL, want: false},
		{name: "not http", url: "ftp://example.com", want: false},
		{name: "empty", url: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.VerifyTarget(ctx, tt.url); got != tt.want {
				t.Errorf("VerifyTarget(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}

	if ok, err := h.SetTarget(ctx, "t1", a2a.PushNotificationConfig{URL: silent.URL}); err != nil || ok {
		t.Errorf("SetTarget(unverified) = %v, %v, want false, nil", ok, err)
	}
}

func TestHTTPNotifySigned(t *testing.T) {
	ctx := t.Context()
	rcv := newReceiver(t, true)

	keys, err := notification.NewKeyManager("k1")
	if err != nil {
		t.Fatalf("NewKeyManager() error = %v", err)
	}
	h := notification.NewHTTP(nil, notification.WithKeyManager(keys), notification.WithIssuer("test-agent"))

	target := rcv.URL + "/hook"
	if ok, err := h.SetTarget(ctx, "t1", a2a.PushNotificationConfig{URL: target, Token: "client-token"}); err != nil || !ok {
		t.Fatalf("SetTarget() = %v, %v, want true, nil", ok, err)
	}
	if !h.Notify(ctx, testTask("t1", a2a.TaskStateCompleted)) {
		t.Fatal("Notify() = false, want true")
	}

	deliveries := rcv.deliveries()
	if len(deliveries) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(deliveries))
	}
	d := deliveries[0]

	if got := d.header.Get(notification.TokenHeader); got != "client-token" {
		t.Errorf("%s = %q, want %q", notification.TokenHeader, got, "client-token")
	}

	var payload notification.Payload
	if err := json.Unmarshal(d.body, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Method != notification.MethodTaskStatus || payload.Params == nil ||
		payload.Params.ID != "t1" || payload.Params.Status.State != a2a.TaskStateCompleted {
		t.Errorf("unexpected payload %s", d.body)
	}

	auth := d.header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		t.Fatalf("Authorization = %q, want bearer token", auth)
	}

	// Verify the way a receiver would: through the published key set.
	jwks, err := json.Marshal(keys.JWKS())
	if err != nil {
		t.Fatalf("marshal jwks: %v", err)
	}
	set, err := jwk.Parse(jwks)
	if err != nil {
		t.Fatalf("jwk.Parse() error = %v", err)
	}
	tok, err := jwt.Parse([]byte(auth[len(prefix):]), jwt.WithKeySet(set), jwt.WithAudience(target), jwt.WithIssuer("test-agent"))
	if err != nil {
		t.Fatalf("jwt.Parse() error = %v", err)
	}

	var bodyHash string
	if err := tok.Get("request_body_sha256", &bodyHash); err != nil {
		t.Fatalf("request_body_sha256 claim: %v", err)
	}
	sum := sha256.Sum256(d.body)
	if want := hex.EncodeToString(sum[:]); bodyHash != want {
		t.Errorf("request_body_sha256 = %q, want %q", bodyHash, want)
	}
}

func TestHTTPNotifyWithoutTarget(t *testing.T) {
	h := notification.NewHTTP(nil)
	if h.Notify(t.Context(), testTask("t1", a2a.TaskStateWorking)) {
		t.Error("Notify() without target = true, want false")
	}
}

func TestKeyManagerRotate(t *testing.T) {
	keys, err := notification.NewKeyManager("k1")
	if err != nil {
		t.Fatalf("NewKeyManager() error = %v", err)
	}
	if err := keys.Rotate("k2"); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if err := keys.Rotate("k1"); err == nil {
		t.Error("Rotate(reused id) error = nil, want error")
	}
	if got := keys.KeyID(); got != "k2" {
		t.Errorf("KeyID() = %q, want %q", got, "k2")
	}
	if got := keys.JWKS().Len(); got != 2 {
		t.Errorf("JWKS().Len() = %d, want 2", got)
	}

	rec := httptest.NewRecorder()
	keys.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %d, want 200", rec.Code)
	}
	set, err := jwk.Parse(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("jwk.Parse() error = %v", err)
	}
	for _, kid := range []string{"k1", "k2"} {
		if _, ok := set.LookupKeyID(kid); !ok {
			t.Errorf("served set lacks key %q", kid)
		}
	}
}
