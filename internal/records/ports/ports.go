// Package ports defines the collaborators the record handler consumes.
// Implementations live in adapters/ and store/; tests use the gomock doubles
// in ports/mocks.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"crypto/rsa"

	"ansdns/internal/records/models"
)

// AddressResolver derives an account address from a public key through the
// molecule service rooted at base.
type AddressResolver interface {
	ResolveAddress(ctx context.Context, base, jwkN string) (string, error)
}

// BalancesReader fetches the ANS ownership snapshot of a registry contract.
type BalancesReader interface {
	Balances(ctx context.Context, ansContract string) ([]models.Balance, error)
}

// SignatureVerifier checks a signature over message with key. A nil error
// means the signature is valid.
type SignatureVerifier interface {
	Verify(key *rsa.PublicKey, message, signature []byte) error
}

// StateStore persists the contract state. Update runs fn against the current
// state and persists its result atomically; if fn fails nothing is written.
type StateStore interface {
	Load(ctx context.Context) (*models.ContractState, error)
	Save(ctx context.Context, state *models.ContractState) error
	Update(ctx context.Context, fn func(current *models.ContractState) (*models.ContractState, error)) error
}

// EventPublisher forwards committed record changes to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events []models.Event) error
}
