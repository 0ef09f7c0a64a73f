package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureSet(t *testing.T) {
	s := NewSignatureSet("a", "b")
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.False(t, s.Add("a"), "duplicate must be refused")
	assert.True(t, s.Add("c"))
	assert.Equal(t, []string{"a", "b", "c"}, s.Values())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","c"]`, string(data))

	var decoded SignatureSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Contains("b"))
	assert.Equal(t, 3, decoded.Len())
}

func TestContractStateClone(t *testing.T) {
	orig := &ContractState{
		Records: []DomainRecordSet{{
			Domain:  "example",
			Records: []DnsRecord{{ID: "tx1", Type: RecordTypeA, Name: "www", Value: json.RawMessage(`{"ip":"1.2.3.4"}`)}},
		}},
		Signatures: NewSignatureSet("sig1"),
		SigMessage: "hello",
	}

	cp := orig.Clone()
	cp.Records[0].Records[0].Name = "mutated"
	cp.Records[0].Records = append(cp.Records[0].Records, DnsRecord{ID: "tx2"})
	cp.Signatures.Add("sig2")

	assert.Equal(t, "www", orig.Records[0].Records[0].Name)
	assert.Len(t, orig.Records[0].Records, 1)
	assert.False(t, orig.Signatures.Contains("sig2"))
}

func TestContractStateJSON(t *testing.T) {
	data, err := json.Marshal(ContractState{SigMessage: "m"})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"records": [],
		"signatures": [],
		"ans_contract_address": "",
		"ar_molecule": "",
		"sig_message": "m"
	}`, string(data))
}

func TestDecodeState(t *testing.T) {
	t.Run("unified schema is read as is", func(t *testing.T) {
		doc := `{
			"records": [{"domain": "example", "records": [{"id": "tx", "type": "A", "name": "www", "value": {"ip": "1.1.1.1"}}]}],
			"signatures": ["s"],
			"ans_contract_address": "ans",
			"ar_molecule": "http://molecule",
			"sig_message": "msg"
		}`
		state, upgraded, err := DecodeState([]byte(doc))
		require.NoError(t, err)
		assert.False(t, upgraded)
		require.Len(t, state.Records, 1)
		assert.Equal(t, "tx", state.Records[0].Records[0].ID)
		assert.True(t, state.Signatures.Contains("s"))
		assert.Equal(t, "ans", state.ANSContractAddress)
	})

	t.Run("legacy schema is flattened in type order", func(t *testing.T) {
		doc := `{
			"records": [{
				"domain": "old",
				"CNAME": [{"name": "c", "value": "target"}],
				"A": [{"name": "a1", "value": "1.1.1.1"}, {"name": "a2", "value": "2.2.2.2"}],
				"AAAA": [],
				"TXT": [],
				"MX": [{"name": "m", "value": "mail"}]
			}],
			"signatures": []
		}`
		state, upgraded, err := DecodeState([]byte(doc))
		require.NoError(t, err)
		assert.True(t, upgraded)
		recs := state.Records[0].Records
		require.Len(t, recs, 4)
		assert.Equal(t, RecordTypeCNAME, recs[0].Type)
		assert.Equal(t, "a1", recs[1].Name)
		assert.Equal(t, "a2", recs[2].Name)
		assert.Equal(t, RecordTypeMX, recs[3].Type)
		assert.Equal(t, LegacyID("old", RecordTypeCNAME, 0), recs[0].ID)
		assert.Equal(t, LegacyID("old", RecordTypeA, 1), recs[2].ID)
		assert.Equal(t, LegacyID("old", RecordTypeMX, 0), recs[3].ID)
		assert.JSONEq(t, `"mail"`, string(recs[3].Value))

		again, _, err := DecodeState([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, recs, again.Records[0].Records, "decoding the same document twice yields the same ids")
	})

	t.Run("malformed document fails", func(t *testing.T) {
		_, _, err := DecodeState([]byte(`{"records": 5}`))
		require.Error(t, err)
	})
}

func TestLegacyIDIsStableAndDistinct(t *testing.T) {
	assert.Equal(t, LegacyID("old", RecordTypeA, 0), LegacyID("old", RecordTypeA, 0))

	seen := map[string]struct{}{}
	for _, domain := range []string{"old", "other"} {
		for _, typ := range RecordTypes {
			for i := range 3 {
				id := LegacyID(domain, typ, i)
				_, dup := seen[id]
				require.False(t, dup, "%s/%s/%d", domain, typ, i)
				seen[id] = struct{}{}
			}
		}
	}
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal(Result{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":{}}`, string(data))

	data, err = json.Marshal(Result{Records: &DomainRecordSet{Domain: "example"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":{"domain":"example","records":[]}}`, string(data))

	data, err = json.Marshal(Result{State: &ContractState{}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state"`)
}
