package models

// ChangeKind distinguishes the record mutations an action can commit.
type ChangeKind string

const (
	ChangeRecordSet     ChangeKind = "record_set"
	ChangeRecordDeleted ChangeKind = "record_deleted"
)

// Change describes one committed record mutation.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Domain string     `json:"domain"`
	Record DnsRecord  `json:"record"`
}
