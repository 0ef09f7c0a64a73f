package models

import "encoding/json"

// RecordType tags a DNS record. It is the single sum type shared by every
// record slot of an action.
type RecordType string

const (
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeTXT   RecordType = "TXT"
	RecordTypeMX    RecordType = "MX"
)

// RecordTypes lists every supported type in canonical slot order.
var RecordTypes = []RecordType{
	RecordTypeCNAME,
	RecordTypeA,
	RecordTypeAAAA,
	RecordTypeTXT,
	RecordTypeMX,
}

// IsValid reports whether t is one of the supported record types.
func (t RecordType) IsValid() bool {
	switch t {
	case RecordTypeCNAME, RecordTypeA, RecordTypeAAAA, RecordTypeTXT, RecordTypeMX:
		return true
	}
	return false
}

func (t RecordType) String() string {
	return string(t)
}

// DnsRecord is one typed name/value entry of a domain. ID is stamped from the
// transaction that created it and, together with Type, identifies the record
// for deletion.
type DnsRecord struct {
	ID    string          `json:"id"`
	Type  RecordType      `json:"type"`
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

func (r DnsRecord) clone() DnsRecord {
	out := r
	if r.Value != nil {
		out.Value = append(json.RawMessage(nil), r.Value...)
	}
	return out
}

// DomainRecordSet holds every record of one normalized domain, in insertion
// order.
type DomainRecordSet struct {
	Domain  string      `json:"domain"`
	Records []DnsRecord `json:"records"`
}

// Clone returns a deep copy of the set.
func (s DomainRecordSet) Clone() DomainRecordSet {
	out := DomainRecordSet{Domain: s.Domain, Records: make([]DnsRecord, len(s.Records))}
	for i, r := range s.Records {
		out.Records[i] = r.clone()
	}
	return out
}

// IndexOf returns the position of the record matching id and type, or -1.
func (s DomainRecordSet) IndexOf(id string, t RecordType) int {
	for i, r := range s.Records {
		if r.ID == id && r.Type == t {
			return i
		}
	}
	return -1
}

// MarshalJSON keeps an empty collection rendered as [] rather than null.
func (s DomainRecordSet) MarshalJSON() ([]byte, error) {
	type plain DomainRecordSet
	p := plain(s)
	if p.Records == nil {
		p.Records = []DnsRecord{}
	}
	return json.Marshal(p)
}
