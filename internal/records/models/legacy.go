package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// legacyNamespace scopes the name-based identifiers of upgraded records.
var legacyNamespace = uuid.MustParse("6f0c1a52-3b7e-4d0a-9c61-2f5b8e7d4a90")

// LegacyRecord is an entry of the original flat per-type arrays.
type LegacyRecord struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// LegacyDomainRecordSet is the first persisted schema: five typed arrays per
// domain and no record identifiers.
type LegacyDomainRecordSet struct {
	Domain string         `json:"domain"`
	CNAME  []LegacyRecord `json:"CNAME"`
	A      []LegacyRecord `json:"A"`
	AAAA   []LegacyRecord `json:"AAAA"`
	TXT    []LegacyRecord `json:"TXT"`
	MX     []LegacyRecord `json:"MX"`
}

func (l LegacyDomainRecordSet) byType(t RecordType) []LegacyRecord {
	switch t {
	case RecordTypeCNAME:
		return l.CNAME
	case RecordTypeA:
		return l.A
	case RecordTypeAAAA:
		return l.AAAA
	case RecordTypeTXT:
		return l.TXT
	case RecordTypeMX:
		return l.MX
	}
	return nil
}

// LegacyID derives the identifier of the i-th record of type t in a legacy
// domain set. The same document always upgrades to the same identifiers.
func LegacyID(domain string, t RecordType, i int) string {
	return uuid.NewSHA1(legacyNamespace, []byte(domain+"/"+string(t)+"/"+strconv.Itoa(i))).String()
}

// UpgradeLegacy flattens the typed arrays into one tagged list, in canonical
// type order, giving every record its LegacyID.
func UpgradeLegacy(l LegacyDomainRecordSet) DomainRecordSet {
	out := DomainRecordSet{Domain: l.Domain, Records: []DnsRecord{}}
	for _, t := range RecordTypes {
		for i, r := range l.byType(t) {
			out.Records = append(out.Records, DnsRecord{
				ID:    LegacyID(l.Domain, t, i),
				Type:  t,
				Name:  r.Name,
				Value: r.Value,
			})
		}
	}
	return out
}

type rawState struct {
	Records            []json.RawMessage `json:"records"`
	Signatures         SignatureSet      `json:"signatures"`
	ANSContractAddress string            `json:"ans_contract_address"`
	ARMolecule         string            `json:"ar_molecule"`
	SigMessage         string            `json:"sig_message"`
}

// DecodeState parses a persisted state document in either schema. Legacy
// record sets are upgraded with LegacyID identifiers; upgraded reports
// whether that happened so the caller can persist the new shape.
func DecodeState(data []byte) (state *ContractState, upgraded bool, err error) {
	var raw rawState
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("decode state: %w", err)
	}
	state = &ContractState{
		Records:            make([]DomainRecordSet, 0, len(raw.Records)),
		Signatures:         raw.Signatures,
		ANSContractAddress: raw.ANSContractAddress,
		ARMolecule:         raw.ARMolecule,
		SigMessage:         raw.SigMessage,
	}
	for i, entry := range raw.Records {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(entry, &probe); err != nil {
			return nil, false, fmt.Errorf("decode record set %d: %w", i, err)
		}
		if _, unified := probe["records"]; unified || !hasLegacyKeys(probe) {
			var set DomainRecordSet
			if err := json.Unmarshal(entry, &set); err != nil {
				return nil, false, fmt.Errorf("decode record set %d: %w", i, err)
			}
			state.Records = append(state.Records, set)
			continue
		}
		var legacy LegacyDomainRecordSet
		if err := json.Unmarshal(entry, &legacy); err != nil {
			return nil, false, fmt.Errorf("decode legacy record set %d: %w", i, err)
		}
		state.Records = append(state.Records, UpgradeLegacy(legacy))
		upgraded = true
	}
	return state, upgraded, nil
}

func hasLegacyKeys(probe map[string]json.RawMessage) bool {
	for _, t := range RecordTypes {
		if _, ok := probe[string(t)]; ok {
			return true
		}
	}
	return false
}
