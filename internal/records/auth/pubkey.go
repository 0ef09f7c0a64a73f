package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"math/big"

	dErrors "ansdns/pkg/domain-errors"
)

// JWKNLength is the encoded length of an RSA-4096 modulus in unpadded
// base64url, the only key size the registry accepts.
const JWKNLength = 683

// publicExponent is the exponent every Arweave wallet key uses.
const publicExponent = 65537

// ParsePublicKey turns a JWK "n" value into an RSA public key.
func ParsePublicKey(jwkN string) (*rsa.PublicKey, error) {
	if len(jwkN) != JWKNLength {
		return nil, dErrors.New(dErrors.CodeInvalidJWKNSyntax, "jwk_n has the wrong length")
	}
	modulus, err := base64.RawURLEncoding.DecodeString(jwkN)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidJWKNSyntax, "jwk_n is not base64url")
	}
	n := new(big.Int).SetBytes(modulus)
	if n.Sign() == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidJWKNSyntax, "jwk_n is zero")
	}
	return &rsa.PublicKey{N: n, E: publicExponent}, nil
}
