// Package service evaluates record actions against the contract state and
// hosts them over a persistent StateStore.
package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"ansdns/internal/records/models"
	"ansdns/internal/records/validation"
	dErrors "ansdns/pkg/domain-errors"
)

var tracer = otel.Tracer("ansdns/internal/records/service")

// Authenticator verifies and consumes the caller's signature in the staged
// state and returns the caller address.
type Authenticator interface {
	Authenticate(ctx context.Context, staged *models.ContractState, jwkN, sig string) (string, error)
}

// OwnershipChecker confirms the caller owns a normalized domain.
type OwnershipChecker interface {
	Check(ctx context.Context, ansContract, caller, domain string) error
}

// Contract is the state transition of the DNS record registry. Handle is
// deterministic given the external lookups and never mutates its input.
type Contract struct {
	auth   Authenticator
	owners OwnershipChecker
}

// NewContract constructs a Contract.
func NewContract(auth Authenticator, owners OwnershipChecker) (*Contract, error) {
	if auth == nil {
		return nil, errors.New("authenticator is required")
	}
	if owners == nil {
		return nil, errors.New("ownership checker is required")
	}
	return &Contract{auth: auth, owners: owners}, nil
}

// Handle evaluates one action. Mutations run against a staged copy of state:
// the consumed signature and the record change are returned together in
// Result.State, or not at all.
func (c *Contract) Handle(ctx context.Context, state *models.ContractState, action models.Action) (*models.Result, error) {
	ctx, span := tracer.Start(ctx, "contract.Handle")
	defer span.End()
	span.SetAttributes(attribute.String("function", string(action.Input.Function)))

	if state == nil {
		return nil, dErrors.New(dErrors.CodeStateUnavailable, "no contract state")
	}

	var (
		result *models.Result
		err    error
	)
	switch action.Input.Function {
	case models.FunctionGetDomainRecords:
		result, err = c.getDomainRecords(state, action.Input)
	case models.FunctionSetRecord:
		result, err = c.setRecord(ctx, state, action)
	case models.FunctionDelRecord:
		result, err = c.delRecord(ctx, state, action)
	default:
		err = dErrors.New(dErrors.CodeInvalidFunction, "unknown function")
	}
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.code", string(dErrors.CodeOf(err))))
		return nil, err
	}
	return result, nil
}

func (c *Contract) getDomainRecords(state *models.ContractState, in models.Input) (*models.Result, error) {
	domain, err := models.NormalizeDomain(in.Domain)
	if err != nil {
		return nil, err
	}
	idx := state.DomainIndex(domain)
	if idx < 0 {
		return &models.Result{}, nil
	}
	set := state.Records[idx].Clone()
	return &models.Result{Records: &set}, nil
}

func (c *Contract) setRecord(ctx context.Context, state *models.ContractState, action models.Action) (*models.Result, error) {
	in := action.Input
	records, err := validation.SetRecords(in)
	if err != nil {
		return nil, err
	}
	domain, err := models.NormalizeDomain(in.Domain)
	if err != nil {
		return nil, err
	}
	if action.TransactionID == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "transaction identity missing")
	}
	// Records of one action share its id, so an id may only ever be stamped once.
	if state.HasRecordID(action.TransactionID) {
		return nil, dErrors.New(dErrors.CodeTransactionReused, "transaction id already stamps stored records")
	}

	staged, caller, err := c.authorize(ctx, state, in, domain)
	if err != nil {
		return nil, err
	}

	changes := make([]models.Change, 0, len(records))
	for i := range records {
		records[i].ID = action.TransactionID
		changes = append(changes, models.Change{Kind: models.ChangeRecordSet, Domain: domain, Record: records[i]})
	}
	if idx := staged.DomainIndex(domain); idx >= 0 {
		staged.Records[idx].Records = append(staged.Records[idx].Records, records...)
	} else {
		staged.Records = append(staged.Records, models.DomainRecordSet{Domain: domain, Records: records})
	}

	return &models.Result{State: staged, Caller: caller, Changes: changes}, nil
}

func (c *Contract) delRecord(ctx context.Context, state *models.ContractState, action models.Action) (*models.Result, error) {
	in := action.Input
	targets, err := validation.DeleteTargets(in)
	if err != nil {
		return nil, err
	}
	domain, err := models.NormalizeDomain(in.Domain)
	if err != nil {
		return nil, err
	}

	staged, caller, err := c.authorize(ctx, state, in, domain)
	if err != nil {
		return nil, err
	}

	idx := staged.DomainIndex(domain)
	if idx < 0 {
		return nil, dErrors.New(dErrors.CodeDomainNotFound, "domain has no records")
	}
	set := &staged.Records[idx]
	changes := make([]models.Change, 0, len(targets))
	for _, target := range targets {
		pos := set.IndexOf(target.ID, target.Type)
		if pos < 0 {
			return nil, dErrors.New(dErrors.CodeRecordNotFound, "no "+target.Type.String()+" record with that id")
		}
		changes = append(changes, models.Change{Kind: models.ChangeRecordDeleted, Domain: domain, Record: set.Records[pos]})
		set.Records = append(set.Records[:pos], set.Records[pos+1:]...)
	}

	return &models.Result{State: staged, Caller: caller, Changes: changes}, nil
}

// authorize stages a copy of state, authenticates the caller against it and
// checks domain ownership. The returned copy holds the consumed signature.
func (c *Contract) authorize(ctx context.Context, state *models.ContractState, in models.Input, domain string) (*models.ContractState, string, error) {
	staged := state.Clone()
	caller, err := c.auth.Authenticate(ctx, staged, in.JWKN, in.Sig)
	if err != nil {
		return nil, "", err
	}
	if err := c.owners.Check(ctx, staged.ANSContractAddress, caller, domain); err != nil {
		return nil, "", err
	}
	return staged, caller, nil
}
