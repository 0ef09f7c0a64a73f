package testutil

import (
	"context"
	"time"

	"ansdns/pkg/requestcontext"
)

// HostContext returns a context carrying what the HTTP middleware would set
// for a mutating request: a transaction id and a fixed request time.
func HostContext(txID string, now time.Time) context.Context {
	ctx := requestcontext.WithTransactionID(context.Background(), txID)
	return requestcontext.WithTime(ctx, now)
}
