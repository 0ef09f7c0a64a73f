package models

import "time"

// Event is a committed record change as seen by downstream consumers.
type Event struct {
	Kind          ChangeKind `json:"kind"`
	Domain        string     `json:"domain"`
	Record        DnsRecord  `json:"record"`
	Caller        string     `json:"caller"`
	TransactionID string     `json:"transaction_id"`
	CommittedAt   time.Time  `json:"committed_at"`
}
