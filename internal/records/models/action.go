package models

import (
	"bytes"
	"encoding/json"
)

// Function names the operation an action invokes.
type Function string

const (
	FunctionSetRecord        Function = "setRecord"
	FunctionDelRecord        Function = "delRecord"
	FunctionGetDomainRecords Function = "getDomainRecords"
)

// IsMutating reports whether f changes state and therefore needs the full
// authentication and ownership chain.
func (f Function) IsMutating() bool {
	return f == FunctionSetRecord || f == FunctionDelRecord
}

// Input is the caller-submitted action payload. Record slots stay raw until
// the validator inspects them so shape errors map to wire error codes.
type Input struct {
	Function Function        `json:"function"`
	Domain   string          `json:"domain"`
	JWKN     string          `json:"jwk_n,omitempty"`
	Sig      string          `json:"sig,omitempty"`
	CNAME    json.RawMessage `json:"CNAME,omitempty"`
	A        json.RawMessage `json:"A,omitempty"`
	AAAA     json.RawMessage `json:"AAAA,omitempty"`
	TXT      json.RawMessage `json:"TXT,omitempty"`
	MX       json.RawMessage `json:"MX,omitempty"`
}

// Slot returns the raw payload for t, or nil when the slot is absent or null.
func (in Input) Slot(t RecordType) json.RawMessage {
	var raw json.RawMessage
	switch t {
	case RecordTypeCNAME:
		raw = in.CNAME
	case RecordTypeA:
		raw = in.A
	case RecordTypeAAAA:
		raw = in.AAAA
	case RecordTypeTXT:
		raw = in.TXT
	case RecordTypeMX:
		raw = in.MX
	}
	if isAbsent(raw) {
		return nil
	}
	return raw
}

// SetSlot stores a raw payload for t.
func (in *Input) SetSlot(t RecordType, raw json.RawMessage) {
	switch t {
	case RecordTypeCNAME:
		in.CNAME = raw
	case RecordTypeA:
		in.A = raw
	case RecordTypeAAAA:
		in.AAAA = raw
	case RecordTypeTXT:
		in.TXT = raw
	case RecordTypeMX:
		in.MX = raw
	}
}

// isAbsent treats missing, null and JSON falsy payloads as an empty slot.
func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	switch string(trimmed) {
	case "null", "false", "0", `""`:
		return true
	}
	return false
}

// Action is one evaluation request. TransactionID is the host-supplied
// identity of the operation; records created by the action carry it.
type Action struct {
	Input         Input  `json:"input"`
	TransactionID string `json:"transaction_id"`
}

// Result is what the handler returns: the whole new state for mutations, or
// a query result for reads. Caller and Changes describe a mutation for the
// host and are not part of the wire shape.
type Result struct {
	State   *ContractState
	Records *DomainRecordSet

	Caller  string
	Changes []Change
}

// MarshalJSON renders {"state": ...} for mutations and {"result": ...} for
// queries, with an empty object when the domain has no records.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.State != nil {
		return json.Marshal(struct {
			State *ContractState `json:"state"`
		}{r.State})
	}
	if r.Records == nil {
		return []byte(`{"result":{}}`), nil
	}
	return json.Marshal(struct {
		Result *DomainRecordSet `json:"result"`
	}{r.Records})
}
