package auth

import (
	"crypto/rsa"

	"github.com/golang-jwt/jwt/v5"
)

// PSSVerifier verifies RSA-PSS signatures over SHA-256 digests. Salt length
// is detected from the signature, which accepts both the 32-byte salt of
// browser wallets and the maximal salt of node signers.
type PSSVerifier struct {
	method *jwt.SigningMethodRSAPSS
}

// NewPSSVerifier returns a verifier for the RSA-PSS scheme of Arweave keys.
func NewPSSVerifier() *PSSVerifier {
	return &PSSVerifier{method: jwt.SigningMethodPS256}
}

// Verify returns nil when signature is a valid signature of message by key.
func (v *PSSVerifier) Verify(key *rsa.PublicKey, message, signature []byte) error {
	return v.method.Verify(string(message), signature, key)
}
