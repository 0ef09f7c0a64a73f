package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ansdns/internal/records/metrics"
	"ansdns/internal/records/models"
	"ansdns/internal/records/ports"
	dErrors "ansdns/pkg/domain-errors"
	"ansdns/pkg/platform/sentinel"
	"ansdns/pkg/requestcontext"
)

// Executor is the host of the contract: it loads the persisted state, runs
// one mutating action at a time, persists the staged result and announces
// the committed changes.
type Executor struct {
	contract  *Contract
	store     ports.StateStore
	publisher ports.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tx        *writeTx
}

// Option configures an Executor.
type Option func(*Executor)

// WithPublisher forwards committed changes to p.
func WithPublisher(p ports.EventPublisher) Option {
	return func(e *Executor) {
		e.publisher = p
	}
}

// WithMetrics records action outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// WithLogger sets the executor's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTxTimeout bounds each mutating action.
func WithTxTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.tx.timeout = d
	}
}

// NewExecutor constructs an Executor.
func NewExecutor(contract *Contract, store ports.StateStore, opts ...Option) (*Executor, error) {
	if contract == nil {
		return nil, errors.New("contract is required")
	}
	if store == nil {
		return nil, errors.New("state store is required")
	}
	e := &Executor{
		contract: contract,
		store:    store,
		logger:   slog.Default(),
		tx:       &writeTx{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Bootstrap persists genesis when no state exists yet, and otherwise
// rewrites the stored state in the current schema so legacy record sets get
// stable identifiers before the first action. It reports whether genesis was
// written. An empty store with no genesis is left empty.
func (e *Executor) Bootstrap(ctx context.Context, genesis *models.ContractState) (bool, error) {
	var created bool
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		err := e.store.Update(ctx, func(current *models.ContractState) (*models.ContractState, error) {
			return current, nil
		})
		if !errors.Is(err, sentinel.ErrNotFound) || genesis == nil {
			return err
		}
		created = true
		return e.store.Save(ctx, genesis)
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeError(err)
	}
	return created, nil
}

// State returns the current persisted state.
func (e *Executor) State(ctx context.Context) (*models.ContractState, error) {
	state, err := e.store.Load(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return state, nil
}

// Execute evaluates one action. Queries read the latest committed state
// without taking the write lock. Mutations take the lock, and their staged
// state is persisted only if every stage succeeds.
func (e *Executor) Execute(ctx context.Context, action models.Action) (*models.Result, error) {
	start := time.Now()
	function := string(action.Input.Function)

	if !action.Input.Function.IsMutating() {
		result, err := e.query(ctx, action)
		e.observe(ctx, function, start, err, metrics.OutcomeQueried)
		return result, err
	}

	if action.TransactionID == "" {
		action.TransactionID = requestcontext.TransactionID(ctx)
	}
	if action.TransactionID == "" {
		action.TransactionID = uuid.NewString()
	}

	var result *models.Result
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		return e.store.Update(ctx, func(current *models.ContractState) (*models.ContractState, error) {
			r, err := e.contract.Handle(ctx, current, action)
			if err != nil {
				return nil, err
			}
			result = r
			return r.State, nil
		})
	})
	if err != nil {
		err = storeError(err)
		e.observe(ctx, function, start, err, metrics.OutcomeCommitted)
		return nil, err
	}

	e.observe(ctx, function, start, nil, metrics.OutcomeCommitted)
	e.metrics.IncrementSignaturesConsumed()
	e.logger.InfoContext(ctx, "action committed",
		"request_id", requestcontext.RequestID(ctx),
		"transaction_id", action.TransactionID,
		"function", function,
		"caller", result.Caller,
		"changes", len(result.Changes),
	)
	e.publish(ctx, action.TransactionID, result)
	return result, nil
}

func (e *Executor) query(ctx context.Context, action models.Action) (*models.Result, error) {
	state, err := e.store.Load(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return e.contract.Handle(ctx, state, action)
}

func (e *Executor) observe(ctx context.Context, function string, start time.Time, err error, success string) {
	if err == nil {
		e.metrics.ObserveAction(function, success, start)
		return
	}
	e.metrics.ObserveAction(function, metrics.OutcomeRejected, start)
	code := dErrors.CodeOf(err)
	level := slog.LevelInfo
	if code == dErrors.CodeInternal || code == dErrors.CodeStateUnavailable {
		level = slog.LevelError
	}
	e.logger.Log(ctx, level, "action rejected",
		"request_id", requestcontext.RequestID(ctx),
		"function", function,
		"code", string(code),
		"error", err,
	)
}

// publish is best effort: the state is already committed and a delivery
// failure must not turn a successful action into an error.
func (e *Executor) publish(ctx context.Context, txID string, result *models.Result) {
	if e.publisher == nil || len(result.Changes) == 0 {
		return
	}
	committedAt := requestcontext.Now(ctx)
	events := make([]models.Event, 0, len(result.Changes))
	for _, ch := range result.Changes {
		events = append(events, models.Event{
			Kind:          ch.Kind,
			Domain:        ch.Domain,
			Record:        ch.Record,
			Caller:        result.Caller,
			TransactionID: txID,
			CommittedAt:   committedAt,
		})
	}
	if err := e.publisher.Publish(ctx, events); err != nil {
		e.metrics.IncrementEventPublishFailures()
		e.logger.WarnContext(ctx, "failed to publish record events",
			"transaction_id", txID,
			"error", err,
		)
	}
}

// storeError translates store sentinels into coded errors. Coded errors from
// the contract pass through unchanged.
func storeError(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeStateUnavailable, "contract state not initialized")
	case errors.Is(err, sentinel.ErrConflict), errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeStateUnavailable, "contract state busy")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "state store failure")
	}
}
