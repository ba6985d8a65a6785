package auth

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyManager_RejectsUnsupportedAlg(t *testing.T) {
	for _, alg := range []string{"HS256", "none", "", "ES256K"} {
		_, err := NewKeyManager(t.TempDir(), alg)
		assert.Error(t, err, alg)
	}
}

func TestEnsureKeyPair_GeneratesOnceAndReuses(t *testing.T) {
	dir := t.TempDir()
	km, err := NewKeyManager(dir, "ES256")
	require.NoError(t, err)

	first, err := km.EnsureKeyPair(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, PrivateKeyFile))
	assert.FileExists(t, filepath.Join(dir, PublicKeyFile))

	// A fresh manager reads what the first one wrote.
	km2, err := NewKeyManager(dir, "ES256")
	require.NoError(t, err)
	second, err := km2.EnsureKeyPair(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.PublicPEM, second.PublicPEM)
	assert.Equal(t, first.PrivatePEM, second.PrivatePEM)
}

func TestEnsureKeyPair_RegeneratesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	km, err := NewKeyManager(dir, "EdDSA")
	require.NoError(t, err)

	first, err := km.EnsureKeyPair(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, PublicKeyFile), nil, 0o644))

	second, err := km.EnsureKeyPair(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.PublicPEM, second.PublicPEM)

	onDisk, err := os.ReadFile(filepath.Join(dir, PublicKeyFile))
	require.NoError(t, err)
	assert.Equal(t, second.PublicPEM, onDisk)
}

func TestEnsureKeyPair_MismatchedAlgIsServerError(t *testing.T) {
	dir := t.TempDir()
	km, err := NewKeyManager(dir, "ES256")
	require.NoError(t, err)
	_, err = km.EnsureKeyPair(context.Background())
	require.NoError(t, err)

	other, err := NewKeyManager(dir, "RS256")
	require.NoError(t, err)
	_, err = other.EnsureKeyPair(context.Background())
	require.Error(t, err)
}

func TestEnsureKeyPair_ConcurrentCallersSeeOnePair(t *testing.T) {
	dir := t.TempDir()
	km, err := NewKeyManager(dir, "ES384")
	require.NoError(t, err)

	const n = 8
	pems := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pair, err := km.EnsureKeyPair(context.Background())
			if err == nil {
				pems[i] = pair.PublicPEM
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, pems[0], pems[i])
	}
}

func TestRotate_AppendsToJWKS(t *testing.T) {
	dir := t.TempDir()
	km, err := NewKeyManager(dir, "ES256")
	require.NoError(t, err)
	ctx := context.Background()

	first, err := km.EnsureKeyPair(ctx)
	require.NoError(t, err)
	firstJWK, err := PublicJWK(first.Public, "ES256")
	require.NoError(t, err)
	_, err = km.JWKS().Ensure(firstJWK)
	require.NoError(t, err)

	rotated, err := km.Rotate(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.PublicPEM, rotated.PublicPEM)

	set, err := km.JWKS().Load()
	require.NoError(t, err)
	assert.Len(t, set.Keys, 2)
	assert.Len(t, set.Key(firstJWK.KeyID), 1)

	active, err := km.EnsureKeyPair(ctx)
	require.NoError(t, err)
	assert.Equal(t, rotated.PublicPEM, active.PublicPEM)
}
