// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package notification

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// KeyManager holds the ES256 keys that sign outbound notifications and
// publishes their public halves as a JSON Web Key Set.
type KeyManager struct {
	mu      sync.RWMutex
	current string
	keys    map[string]*ecdsa.PrivateKey
	set     jwk.Set
}

// NewKeyManager returns a manager holding a freshly generated key with the
// given key id.
func NewKeyManager(kid string) (*KeyManager, error) {
	m := &KeyManager{
		keys: make(map[string]*ecdsa.PrivateKey),
		set:  jwk.NewSet(),
	}
	if err := m.Rotate(kid); err != nil {
		return nil, err
	}
	return m, nil
}

// Rotate generates a new P-256 key, publishes it and makes it the signing
// key. Previously published keys stay in the set so that receivers can
// still verify notifications signed before the rotation.
func (m *KeyManager) Rotate(kid string) error {
	if kid == "" {
		return fmt.Errorf("key id cannot be empty")
	}

	private, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate signing key: %w", err)
	}

	public, err := jwk.Import(&private.PublicKey)
	if err != nil {
		return fmt.Errorf("import public key: %w", err)
	}
	if err := public.Set(jwk.KeyIDKey, kid); err != nil {
		return fmt.Errorf("set key id: %w", err)
	}
	if err := public.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return fmt.Errorf("set key algorithm: %w", err)
	}
	if err := public.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return fmt.Errorf("set key usage: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.keys[kid]; exists {
		return fmt.Errorf("key id %q already in use", kid)
	}
	if err := m.set.AddKey(public); err != nil {
		return fmt.Errorf("publish key: %w", err)
	}
	m.keys[kid] = private
	m.current = kid

	return nil
}

// KeyID returns the id of the signing key.
func (m *KeyManager) KeyID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current
}

// Sign returns a compact ES256 JWT over claims, signed by the current key.
func (m *KeyManager) Sign(claims jwt.Claims) (string, error) {
	m.mu.RLock()
	kid, key := m.current, m.keys[m.current]
	m.mu.RUnlock()

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// JWKS returns the public key set.
func (m *KeyManager) JWKS() jwk.Set {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.set
}

// ServeHTTP serves the public key set.
func (m *KeyManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := json.Marshal(m.JWKS())
	if err != nil {
		http.Error(w, "encode key set", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
