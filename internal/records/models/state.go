package models

import "encoding/json"

// ContractState is the whole persisted state of the registry. The host hands
// it in with every action and persists whatever the handler returns.
type ContractState struct {
	Records            []DomainRecordSet `json:"records"`
	Signatures         SignatureSet      `json:"signatures"`
	ANSContractAddress string            `json:"ans_contract_address"`
	ARMolecule         string            `json:"ar_molecule"`
	SigMessage         string            `json:"sig_message"`
}

// Clone returns a deep copy so a staged action can never leak partial
// mutations into the caller's state.
func (s *ContractState) Clone() *ContractState {
	if s == nil {
		return nil
	}
	out := &ContractState{
		Records:            make([]DomainRecordSet, len(s.Records)),
		Signatures:         s.Signatures.Clone(),
		ANSContractAddress: s.ANSContractAddress,
		ARMolecule:         s.ARMolecule,
		SigMessage:         s.SigMessage,
	}
	for i, set := range s.Records {
		out.Records[i] = set.Clone()
	}
	return out
}

// DomainIndex returns the position of the record set for a normalized domain,
// or -1.
func (s *ContractState) DomainIndex(domain string) int {
	for i := range s.Records {
		if s.Records[i].Domain == domain {
			return i
		}
	}
	return -1
}

// HasRecordID reports whether any record of any domain carries id.
func (s *ContractState) HasRecordID(id string) bool {
	for i := range s.Records {
		for _, r := range s.Records[i].Records {
			if r.ID == id {
				return true
			}
		}
	}
	return false
}

// MarshalJSON keeps an empty record list rendered as [].
func (s ContractState) MarshalJSON() ([]byte, error) {
	type plain ContractState
	p := plain(s)
	if p.Records == nil {
		p.Records = []DomainRecordSet{}
	}
	return json.Marshal(p)
}

// SignatureSet is the append-only log of consumed signatures. It encodes as
// an ordered JSON array and keeps an index for constant-time membership.
// Entries are never evicted; the log grows with every mutating action.
type SignatureSet struct {
	list  []string
	index map[string]struct{}
}

// NewSignatureSet builds a set from previously consumed signatures.
func NewSignatureSet(sigs ...string) SignatureSet {
	var s SignatureSet
	for _, sig := range sigs {
		s.Add(sig)
	}
	return s
}

// Contains reports whether sig has been consumed.
func (s *SignatureSet) Contains(sig string) bool {
	_, ok := s.index[sig]
	return ok
}

// Add records sig as consumed. It returns false if sig was already present.
func (s *SignatureSet) Add(sig string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{}, len(s.list)+1)
	}
	if _, ok := s.index[sig]; ok {
		return false
	}
	s.index[sig] = struct{}{}
	s.list = append(s.list, sig)
	return true
}

// Len returns the number of consumed signatures.
func (s *SignatureSet) Len() int {
	return len(s.list)
}

// Values returns the consumed signatures in consumption order.
func (s *SignatureSet) Values() []string {
	return append([]string(nil), s.list...)
}

// Clone returns an independent copy.
func (s SignatureSet) Clone() SignatureSet {
	return NewSignatureSet(s.list...)
}

func (s SignatureSet) MarshalJSON() ([]byte, error) {
	if s.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.list)
}

func (s *SignatureSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = NewSignatureSet(list...)
	return nil
}
