package auth

import (
	"crypto"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-jose/go-jose/v4"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// PublicJWK derives the published JWK for pub. The kid is the base64url
// RFC 7638 SHA-256 thumbprint, so it is stable for an unchanged key.
func PublicJWK(pub crypto.PublicKey, alg string) (jose.JSONWebKey, error) {
	jwk := jose.JSONWebKey{Key: pub, Algorithm: alg, Use: "sig"}
	tp, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return jose.JSONWebKey{}, fmt.Errorf("thumbprint: %w", err)
	}
	jwk.KeyID = base64.RawURLEncoding.EncodeToString(tp)
	return jwk, nil
}

// JWKSStore is the append-only jwks.json document.
type JWKSStore struct {
	path string
	mu   *sync.Mutex
}

// NewJWKSStore returns a store at path with its own lock.
func NewJWKSStore(path string) *JWKSStore {
	return &JWKSStore{path: path, mu: &sync.Mutex{}}
}

// Load reads the document, creating an empty one when the file is missing.
func (s *JWKSStore) Load() (*jose.JSONWebKeySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Ensure appends jwk unless an entry with the same kid is already
// published. It reports whether the document changed.
func (s *JWKSStore) Ensure(jwk jose.JSONWebKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.loadLocked()
	if err != nil {
		return false, err
	}
	if len(set.Key(jwk.KeyID)) > 0 {
		return false, nil
	}

	set.Keys = append(set.Keys, jwk)
	if err := s.writeLocked(set); err != nil {
		return false, err
	}
	return true, nil
}

// Lookup returns the published entry for kid.
func (s *JWKSStore) Lookup(kid string) (jose.JSONWebKey, bool, error) {
	set, err := s.Load()
	if err != nil {
		return jose.JSONWebKey{}, false, err
	}
	keys := set.Key(kid)
	if len(keys) == 0 {
		return jose.JSONWebKey{}, false, nil
	}
	return keys[0], true, nil
}

// Document returns the serialized key set.
func (s *JWKSStore) Document() (json.RawMessage, error) {
	set, err := s.Load()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(set)
	if err != nil {
		return nil, domain.NewServerError("encode jwks", err)
	}
	return b, nil
}

func (s *JWKSStore) loadLocked() (*jose.JSONWebKeySet, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(raw) == 0) {
		set := &jose.JSONWebKeySet{Keys: []jose.JSONWebKey{}}
		if err := s.writeLocked(set); err != nil {
			return nil, err
		}
		return set, nil
	}
	if err != nil {
		return nil, domain.NewServerError("read jwks", err)
	}

	var set jose.JSONWebKeySet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, domain.NewServerError("parse jwks", err)
	}
	if set.Keys == nil {
		set.Keys = []jose.JSONWebKey{}
	}
	return &set, nil
}

func (s *JWKSStore) writeLocked(set *jose.JSONWebKeySet) error {
	b, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return domain.NewServerError("encode jwks", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return domain.NewServerError("create key dir", err)
	}
	if err := writeFileAtomic(s.path, b, 0o644); err != nil {
		return domain.NewServerError("write jwks", err)
	}
	return nil
}
