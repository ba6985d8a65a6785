package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicJWK_DeterministicKid(t *testing.T) {
	km, err := NewKeyManager(t.TempDir(), "ES256")
	require.NoError(t, err)
	pair, err := km.EnsureKeyPair(context.Background())
	require.NoError(t, err)

	a, err := PublicJWK(pair.Public, "ES256")
	require.NoError(t, err)
	b, err := PublicJWK(pair.Public, "ES256")
	require.NoError(t, err)

	assert.Equal(t, a.KeyID, b.KeyID)
	assert.Equal(t, "sig", a.Use)
	assert.Equal(t, "ES256", a.Algorithm)

	raw, err := base64.RawURLEncoding.DecodeString(a.KeyID)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestJWKSStore_MissingFileCreatedEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), JWKSFile)
	store := NewJWKSStore(path)

	doc, err := store.Document()
	require.NoError(t, err)
	assert.JSONEq(t, `{"keys":[]}`, string(doc))
	assert.FileExists(t, path)
}

func TestJWKSStore_EnsureIsAppendOnly(t *testing.T) {
	dir := t.TempDir()
	km, err := NewKeyManager(dir, "EdDSA")
	require.NoError(t, err)
	pair, err := km.EnsureKeyPair(context.Background())
	require.NoError(t, err)
	jwk, err := PublicJWK(pair.Public, "EdDSA")
	require.NoError(t, err)

	store := km.JWKS()
	added, err := store.Ensure(jwk)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.Ensure(jwk)
	require.NoError(t, err)
	assert.False(t, added)

	got, found, err := store.Lookup(jwk.KeyID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, jwk.KeyID, got.KeyID)

	_, found, err = store.Lookup("nope")
	require.NoError(t, err)
	assert.False(t, found)

	raw, err := os.ReadFile(filepath.Join(dir, JWKSFile))
	require.NoError(t, err)
	var doc struct {
		Keys []map[string]interface{} `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Keys, 1)
	assert.Equal(t, "OKP", doc.Keys[0]["kty"])
	assert.NotContains(t, doc.Keys[0], "d")
}

func TestJWKSStore_CorruptFileIsServerError(t *testing.T) {
	path := filepath.Join(t.TempDir(), JWKSFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJWKSStore(path).Load()
	require.Error(t, err)
}
