package testutil

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Signer is an Arweave-style RSA-4096 wallet for tests.
type Signer struct {
	Key *rsa.PrivateKey
}

var (
	signerMu    sync.Mutex
	signerCache []*Signer
)

// NewSigner returns the i-th test wallet. Keys are generated once per test
// binary because RSA-4096 generation is slow.
func NewSigner(t testing.TB, i int) *Signer {
	t.Helper()
	signerMu.Lock()
	defer signerMu.Unlock()
	for len(signerCache) <= i {
		key, err := rsa.GenerateKey(rand.Reader, 4096)
		require.NoError(t, err, "generate test wallet")
		signerCache = append(signerCache, &Signer{Key: key})
	}
	return signerCache[i]
}

// JWKN returns the public modulus as the 683-character JWK "n" value.
func (s *Signer) JWKN() string {
	return base64.RawURLEncoding.EncodeToString(s.Key.N.Bytes())
}

// Address returns the wallet address: base64url(sha256(n)).
func (s *Signer) Address() string {
	sum := sha256.Sum256(s.Key.N.Bytes())
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Sign signs message with RSA-PSS/SHA-256 and returns standard base64. Every
// call produces a fresh signature because the salt is random.
func (s *Signer) Sign(t testing.TB, message string) string {
	t.Helper()
	digest := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPSS(rand.Reader, s.Key, crypto.SHA256, digest[:], &rsa.PSSOptions{SaltLength: 32})
	require.NoError(t, err, "sign message")
	return base64.StdEncoding.EncodeToString(sig)
}
