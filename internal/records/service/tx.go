package service

import (
	"context"
	"sync"
	"time"

	dErrors "ansdns/pkg/domain-errors"
)

// defaultTxTimeout is the maximum duration of one mutating action, external
// lookups included.
const defaultTxTimeout = 30 * time.Second

// writeTx serializes mutating actions. The contract assumes one action runs
// to completion before the next is evaluated against the same state; stores
// with optimistic commits still reject writers from other processes.
type writeTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

func (t *writeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStateUnavailable, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStateUnavailable, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}
