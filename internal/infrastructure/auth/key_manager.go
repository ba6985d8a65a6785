package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/temptedwithouta/eazy-career-backend/domain"
	"github.com/temptedwithouta/eazy-career-backend/internal/config"
)

const (
	PrivateKeyFile = "PrivateKey.pem"
	PublicKeyFile  = "PublicKey.pem"
	JWKSFile       = "jwks.json"

	rsaBits = 2048
)

// KeyPair is the active signing key and its public half.
type KeyPair struct {
	Private    crypto.Signer
	Public     crypto.PublicKey
	PrivatePEM []byte
	PublicPEM  []byte
}

type keyStamp struct {
	privMod, pubMod   time.Time
	privSize, pubSize int64
}

// KeyManager owns the PEM files in a key directory. Generation, rotation
// and JWKS writes share one mutex.
type KeyManager struct {
	dir string
	alg string

	mu     sync.Mutex
	cached *KeyPair
	stamp  keyStamp
}

// NewKeyManager validates alg and returns a manager for dir.
func NewKeyManager(dir, alg string) (*KeyManager, error) {
	if !config.IsSupportedAlg(alg) {
		return nil, fmt.Errorf("unsupported JWT algorithm %q", alg)
	}
	return &KeyManager{dir: dir, alg: alg}, nil
}

// Alg is the configured JWS algorithm.
func (m *KeyManager) Alg() string { return m.alg }

// JWKS returns the JWKS store kept next to the PEM files.
func (m *KeyManager) JWKS() *JWKSStore {
	return &JWKSStore{path: filepath.Join(m.dir, JWKSFile), mu: &m.mu}
}

// EnsureKeyPair loads the key pair, generating and persisting a fresh one
// when either PEM file is missing or empty.
func (m *KeyManager) EnsureKeyPair(ctx context.Context) (*KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	privPath := filepath.Join(m.dir, PrivateKeyFile)
	pubPath := filepath.Join(m.dir, PublicKeyFile)

	stamp, complete, err := statPair(privPath, pubPath)
	if err != nil {
		return nil, domain.NewServerError("stat key files", err)
	}
	if complete && m.cached != nil && stamp == m.stamp {
		return m.cached, nil
	}

	if !complete {
		return m.generateLocked()
	}

	privPEM, err := os.ReadFile(privPath)
	if err != nil {
		return nil, domain.NewServerError("read private key", err)
	}
	pubPEM, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, domain.NewServerError("read public key", err)
	}

	pair, err := parsePair(privPEM, pubPEM, m.alg)
	if err != nil {
		return nil, domain.NewServerError("parse key pair", err)
	}
	m.cached, m.stamp = pair, stamp
	return pair, nil
}

// Rotate replaces the active key pair with a fresh one and publishes its
// JWK. Earlier JWKS entries stay published and keep verifying.
func (m *KeyManager) Rotate(ctx context.Context) (*KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	pair, err := m.generateLocked()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	jwk, err := PublicJWK(pair.Public, m.alg)
	if err != nil {
		return nil, domain.NewServerError("derive jwk", err)
	}
	if _, err := m.JWKS().Ensure(jwk); err != nil {
		return nil, err
	}
	return pair, nil
}

func (m *KeyManager) generateLocked() (*KeyPair, error) {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return nil, domain.NewServerError("create key dir", err)
	}

	priv, err := generateKey(m.alg)
	if err != nil {
		return nil, domain.NewServerError("generate key", err)
	}
	pair, err := encodePair(priv)
	if err != nil {
		return nil, domain.NewServerError("encode key pair", err)
	}

	privPath := filepath.Join(m.dir, PrivateKeyFile)
	pubPath := filepath.Join(m.dir, PublicKeyFile)
	if err := writeFileAtomic(privPath, pair.PrivatePEM, 0o600); err != nil {
		return nil, domain.NewServerError("write private key", err)
	}
	if err := writeFileAtomic(pubPath, pair.PublicPEM, 0o644); err != nil {
		return nil, domain.NewServerError("write public key", err)
	}

	stamp, _, err := statPair(privPath, pubPath)
	if err != nil {
		return nil, domain.NewServerError("stat key files", err)
	}
	m.cached, m.stamp = pair, stamp
	return pair, nil
}

// statPair reports the files' stamps and whether both exist and are non-empty.
func statPair(privPath, pubPath string) (keyStamp, bool, error) {
	var st keyStamp
	pi, err := os.Stat(privPath)
	if errors.Is(err, os.ErrNotExist) {
		return st, false, nil
	} else if err != nil {
		return st, false, err
	}
	qi, err := os.Stat(pubPath)
	if errors.Is(err, os.ErrNotExist) {
		return st, false, nil
	} else if err != nil {
		return st, false, err
	}
	st = keyStamp{privMod: pi.ModTime(), pubMod: qi.ModTime(), privSize: pi.Size(), pubSize: qi.Size()}
	return st, pi.Size() > 0 && qi.Size() > 0, nil
}

func generateKey(alg string) (crypto.Signer, error) {
	switch alg {
	case "RS256", "RS384", "RS512", "PS256", "PS384", "PS512":
		return rsa.GenerateKey(rand.Reader, rsaBits)
	case "ES256":
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case "ES384":
		return ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	case "ES512":
		return ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	case "EdDSA":
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		return priv, err
	}
	return nil, fmt.Errorf("unsupported algorithm %q", alg)
}

func encodePair(priv crypto.Signer) (*KeyPair, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(priv.Public())
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		Private:    priv,
		Public:     priv.Public(),
		PrivatePEM: pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}),
		PublicPEM:  pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}),
	}, nil
}

func parsePair(privPEM, pubPEM []byte, alg string) (*KeyPair, error) {
	block, _ := pem.Decode(privPEM)
	if block == nil {
		return nil, errors.New("private key is not PEM")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse pkcs8: %w", err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, errors.New("private key cannot sign")
	}

	block, _ = pem.Decode(pubPEM)
	if block == nil {
		return nil, errors.New("public key is not PEM")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse pkix: %w", err)
	}

	if err := checkKeyType(pub, alg); err != nil {
		return nil, err
	}
	if !publicKeyEqual(signer.Public(), pub) {
		return nil, errors.New("public key does not match private key")
	}

	return &KeyPair{Private: signer, Public: pub, PrivatePEM: privPEM, PublicPEM: pubPEM}, nil
}

func checkKeyType(pub crypto.PublicKey, alg string) error {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		if alg[0] == 'R' || alg[0] == 'P' {
			return nil
		}
	case *ecdsa.PublicKey:
		want := map[string]elliptic.Curve{"ES256": elliptic.P256(), "ES384": elliptic.P384(), "ES512": elliptic.P521()}[alg]
		if want != nil && k.Curve == want {
			return nil
		}
	case ed25519.PublicKey:
		if alg == "EdDSA" {
			return nil
		}
	}
	return fmt.Errorf("key type %T does not fit %s", pub, alg)
}

func publicKeyEqual(a, b crypto.PublicKey) bool {
	ea, ok := a.(interface{ Equal(crypto.PublicKey) bool })
	return ok && ea.Equal(b)
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
