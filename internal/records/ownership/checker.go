// Package ownership gates mutations on the ANS registry: the caller must hold
// the target domain in the registry snapshot fetched for every action.
package ownership

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"ansdns/internal/records/models"
	"ansdns/internal/records/ports"
	dErrors "ansdns/pkg/domain-errors"
)

var tracer = otel.Tracer("ansdns/internal/records/ownership")

// Checker confirms domain ownership against a point-in-time balances
// snapshot. Snapshots are never cached between calls.
type Checker struct {
	balances ports.BalancesReader
}

// New constructs a Checker.
func New(balances ports.BalancesReader) (*Checker, error) {
	if balances == nil {
		return nil, errors.New("balances reader is required")
	}
	return &Checker{balances: balances}, nil
}

// Check returns nil when caller owns the normalized domain according to the
// registry at ansContract.
func (c *Checker) Check(ctx context.Context, ansContract, caller, domain string) error {
	ctx, span := tracer.Start(ctx, "ownership.Check")
	defer span.End()
	span.SetAttributes(attribute.String("domain", domain))

	balances, err := c.balances.Balances(ctx, ansContract)
	if err != nil {
		span.RecordError(err)
		return dErrors.Wrap(err, dErrors.CodeEXMFetchRequest, "fetch ANS balances")
	}

	holder, ok := findHolder(balances, caller)
	if !ok {
		return dErrors.New(dErrors.CodeCallerNotFound, "caller holds no ANS domains")
	}
	if !holder.Owns(domain) {
		return dErrors.New(dErrors.CodeNotDomainOwner, "caller does not own domain")
	}
	return nil
}

func findHolder(balances []models.Balance, caller string) (models.Balance, bool) {
	for _, b := range balances {
		if b.Address == caller {
			return b, true
		}
	}
	return models.Balance{}, false
}
