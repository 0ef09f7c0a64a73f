package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ansdns/internal/records/models"
	"ansdns/internal/records/validation"
)

// DefaultSigMessage is the message wallets sign to authorize record changes.
const DefaultSigMessage = "hello world"

// Genesis is the initial contract state, written once when the configured
// backend holds no state.
type Genesis struct {
	ANSContractAddress string          `yaml:"ans_contract_address"`
	ARMolecule         string          `yaml:"ar_molecule"`
	SigMessage         string          `yaml:"sig_message"`
	Records            []GenesisDomain `yaml:"records"`
}

// GenesisDomain seeds the records of one domain.
type GenesisDomain struct {
	Domain  string          `yaml:"domain"`
	Records []GenesisRecord `yaml:"records"`
}

// GenesisRecord is one seeded record. Value is any YAML mapping or sequence.
type GenesisRecord struct {
	ID    string `yaml:"id"`
	Type  string `yaml:"type"`
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

// LoadGenesis reads a genesis YAML file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis: %w", err)
	}
	return ParseGenesis(data)
}

// ParseGenesis decodes genesis YAML, rejecting unknown keys.
func ParseGenesis(data []byte) (*Genesis, error) {
	var g Genesis
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("decode genesis: %w", err)
	}
	if g.ANSContractAddress == "" {
		return nil, fmt.Errorf("genesis: ans_contract_address is required")
	}
	if g.ARMolecule == "" {
		return nil, fmt.Errorf("genesis: ar_molecule is required")
	}
	if g.SigMessage == "" {
		g.SigMessage = DefaultSigMessage
	}
	return &g, nil
}

// State converts the genesis document into a contract state. Seed domains are
// normalized and seed records validated the same way actions are.
func (g *Genesis) State() (*models.ContractState, error) {
	state := &models.ContractState{
		Records:            []models.DomainRecordSet{},
		Signatures:         models.NewSignatureSet(),
		ANSContractAddress: g.ANSContractAddress,
		ARMolecule:         g.ARMolecule,
		SigMessage:         g.SigMessage,
	}
	for _, d := range g.Records {
		domain, err := models.NormalizeDomain(d.Domain)
		if err != nil {
			return nil, fmt.Errorf("genesis domain %q: %w", d.Domain, err)
		}
		if state.DomainIndex(domain) >= 0 {
			return nil, fmt.Errorf("genesis domain %q listed twice", domain)
		}
		set := models.DomainRecordSet{Domain: domain, Records: []models.DnsRecord{}}
		for i, r := range d.Records {
			rec, err := r.toRecord()
			if err != nil {
				return nil, fmt.Errorf("genesis %s record %d: %w", domain, i, err)
			}
			set.Records = append(set.Records, rec)
		}
		state.Records = append(state.Records, set)
	}
	return state, nil
}

func (r GenesisRecord) toRecord() (models.DnsRecord, error) {
	t := models.RecordType(r.Type)
	if !t.IsValid() {
		return models.DnsRecord{}, fmt.Errorf("unknown record type %q", r.Type)
	}
	if r.ID == "" {
		return models.DnsRecord{}, fmt.Errorf("id is required")
	}
	payload, err := json.Marshal(map[string]any{"type": r.Type, "name": r.Name, "value": r.Value})
	if err != nil {
		return models.DnsRecord{}, fmt.Errorf("encode record: %w", err)
	}
	rec, err := validation.Record(t, payload)
	if err != nil {
		return models.DnsRecord{}, err
	}
	rec.ID = r.ID
	return rec, nil
}
