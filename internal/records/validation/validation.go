// Package validation checks the record payloads of mutating actions. It is a
// pure function of the input: no state access, no network.
package validation

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"ansdns/internal/records/models"
	dErrors "ansdns/pkg/domain-errors"
)

// DeleteTarget names one record to remove by its creation identity.
type DeleteTarget struct {
	Type models.RecordType
	ID   string
}

type slot struct {
	typ models.RecordType
	raw json.RawMessage
}

// presentSlots returns the non-empty record slots in canonical order.
func presentSlots(in models.Input) ([]slot, error) {
	var slots []slot
	for _, t := range models.RecordTypes {
		if raw := in.Slot(t); raw != nil {
			slots = append(slots, slot{typ: t, raw: raw})
		}
	}
	if len(slots) == 0 {
		return nil, dErrors.New(dErrors.CodeMissingArguments, "at least one record is required")
	}
	return slots, nil
}

// SetRecords validates every present slot of a setRecord action and returns
// the records to store. IDs are left empty; they are stamped when the record
// is created.
func SetRecords(in models.Input) ([]models.DnsRecord, error) {
	slots, err := presentSlots(in)
	if err != nil {
		return nil, err
	}
	records := make([]models.DnsRecord, 0, len(slots))
	for _, s := range slots {
		rec, err := Record(s.typ, s.raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Record validates one {type, name, value} payload against the slot it was
// supplied in.
func Record(t models.RecordType, raw json.RawMessage) (models.DnsRecord, error) {
	fields, err := object(raw)
	if err != nil {
		return models.DnsRecord{}, err
	}
	name, err := String(fields["name"])
	if err != nil {
		return models.DnsRecord{}, err
	}
	if !isStructured(fields["value"]) {
		return models.DnsRecord{}, dErrors.New(dErrors.CodeInvalidType, "record value must be an object or array")
	}
	if err := recordType(fields["type"], t, true); err != nil {
		return models.DnsRecord{}, err
	}
	return models.DnsRecord{
		Type:  t,
		Name:  name,
		Value: append(json.RawMessage(nil), bytes.TrimSpace(fields["value"])...),
	}, nil
}

// DeleteTargets validates every present slot of a delRecord action.
func DeleteTargets(in models.Input) ([]DeleteTarget, error) {
	slots, err := presentSlots(in)
	if err != nil {
		return nil, err
	}
	targets := make([]DeleteTarget, 0, len(slots))
	for _, s := range slots {
		fields, err := object(s.raw)
		if err != nil {
			return nil, err
		}
		id, err := String(fields["id"])
		if err != nil {
			return nil, err
		}
		if err := recordType(fields["type"], s.typ, false); err != nil {
			return nil, err
		}
		targets = append(targets, DeleteTarget{Type: s.typ, ID: id})
	}
	return targets, nil
}

// String applies the record string rule: a JSON string, non-empty once
// trimmed, and with no surrounding whitespace.
func String(raw json.RawMessage) (string, error) {
	var s string
	if len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null" || json.Unmarshal(raw, &s) != nil {
		return "", dErrors.New(dErrors.CodeInvalidType, "expected a string")
	}
	trimmed := strings.TrimFunc(s, isSpace)
	if len(trimmed) == 0 {
		return "", dErrors.New(dErrors.CodeInvalidStringLength, "string must not be empty")
	}
	if len(trimmed) != len(s) {
		return "", dErrors.New(dErrors.CodeInvalidRecordName, "string must not have surrounding whitespace")
	}
	return s, nil
}

func object(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &fields) != nil {
		return nil, dErrors.New(dErrors.CodeInvalidType, "record payload must be an object")
	}
	return fields, nil
}

func recordType(raw json.RawMessage, want models.RecordType, required bool) error {
	trimmed := bytes.TrimSpace(raw)
	if !required && (len(trimmed) == 0 || string(trimmed) == "null") {
		return nil
	}
	var got string
	if json.Unmarshal(raw, &got) != nil || models.RecordType(got) != want {
		return dErrors.New(dErrors.CodeInvalidDNSType, "record type must be "+want.String())
	}
	return nil
}

func isStructured(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid(trimmed)
}

// isSpace matches the whitespace and line terminator set of ECMAScript trim:
// the Zs category, the byte order mark and the ASCII and Unicode line breaks.
// U+0085 (NEL) is not part of it.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
