// Package events forwards committed record changes to downstream consumers
// such as zone publishers and indexers.
package events

import (
	"context"
	"log/slog"

	"ansdns/internal/records/models"
)

// LogPublisher writes each event to a structured log. It is the fallback when
// no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events []models.Event) error {
	for _, e := range events {
		p.logger.InfoContext(ctx, "record event",
			"kind", string(e.Kind),
			"domain", e.Domain,
			"record_id", e.Record.ID,
			"record_type", string(e.Record.Type),
			"record_name", e.Record.Name,
			"caller", e.Caller,
			"transaction_id", e.TransactionID,
		)
	}
	return nil
}
