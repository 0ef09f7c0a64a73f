// Package auth authenticates the caller of a mutating action: it proves
// possession of the key that signed the contract's fixed message, refuses
// replayed signatures, and derives the caller's account address.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"ansdns/internal/records/models"
	"ansdns/internal/records/ports"
	dErrors "ansdns/pkg/domain-errors"
)

var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{43}$`)

var tracer = otel.Tracer("ansdns/internal/records/auth")

// Authenticator runs the signature and address-resolution steps of an action.
type Authenticator struct {
	verifier ports.SignatureVerifier
	resolver ports.AddressResolver
}

// New constructs an Authenticator.
func New(verifier ports.SignatureVerifier, resolver ports.AddressResolver) (*Authenticator, error) {
	if verifier == nil {
		return nil, errors.New("signature verifier is required")
	}
	if resolver == nil {
		return nil, errors.New("address resolver is required")
	}
	return &Authenticator{verifier: verifier, resolver: resolver}, nil
}

// Authenticate verifies the caller's signature, consumes it in the staged
// state and resolves the caller address. staged must be a private copy: the
// consumed signature only becomes durable if the host commits that copy.
func (a *Authenticator) Authenticate(ctx context.Context, staged *models.ContractState, jwkN, sig string) (string, error) {
	if err := a.VerifySignature(staged, jwkN, sig); err != nil {
		return "", err
	}
	return a.ResolveAddress(ctx, staged.ARMolecule, jwkN)
}

// VerifySignature checks the key syntax, the signature over the state's
// fixed message and the replay log, then records sig as consumed in staged.
// Every failure is reported as ERROR_INVALID_CALLER_SIGNATURE; the precise
// cause is kept in the error chain for logs.
func (a *Authenticator) VerifySignature(staged *models.ContractState, jwkN, sig string) error {
	if err := a.verifySignature(staged, jwkN, sig); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidCallerSig, "caller signature rejected")
	}
	return nil
}

func (a *Authenticator) verifySignature(staged *models.ContractState, jwkN, sig string) error {
	key, err := ParsePublicKey(jwkN)
	if err != nil {
		return err
	}
	message := []byte(staged.SigMessage)
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(sig, "="))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidCallerSig, "signature is not base64")
	}
	if err := a.verifier.Verify(key, message, raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidCallerSig, "signature does not verify")
	}
	if !staged.Signatures.Add(sig) {
		return dErrors.New(dErrors.CodeSignatureAlreadyUsed, "signature already consumed")
	}
	return nil
}

// ResolveAddress asks the molecule service for the address of jwkN. Any
// transport, shape or syntax failure is ERROR_MOLECULE_SERVER_ERROR.
func (a *Authenticator) ResolveAddress(ctx context.Context, molecule, jwkN string) (string, error) {
	ctx, span := tracer.Start(ctx, "auth.ResolveAddress")
	defer span.End()

	address, err := a.resolver.ResolveAddress(ctx, molecule, jwkN)
	if err != nil {
		span.RecordError(err)
		return "", dErrors.Wrap(err, dErrors.CodeMoleculeServerError, "address resolution failed")
	}
	if !addressPattern.MatchString(address) {
		cause := dErrors.New(dErrors.CodeInvalidArweaveAddress, "resolver returned a malformed address")
		span.RecordError(cause)
		return "", dErrors.Wrap(cause, dErrors.CodeMoleculeServerError, "address resolution failed")
	}
	span.SetAttributes(attribute.String("caller", address))
	return address, nil
}
