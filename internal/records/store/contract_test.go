package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"ansdns/internal/records/models"
	"ansdns/internal/records/ports"
	"ansdns/pkg/platform/sentinel"
)

func sampleState() *models.ContractState {
	return &models.ContractState{
		Records: []models.DomainRecordSet{{
			Domain: "example",
			Records: []models.DnsRecord{
				{ID: "tx-1", Type: models.RecordTypeA, Name: "@", Value: json.RawMessage(`{"ip":"1.2.3.4"}`)},
			},
		}},
		Signatures:         models.NewSignatureSet("sig-1"),
		ANSContractAddress: "ans",
		ARMolecule:         "http://molecule.test/ota",
		SigMessage:         "hello world",
	}
}

// runStoreContract exercises the StateStore behaviour every backend shares.
// s must be empty.
func runStoreContract(t *testing.T, s ports.StateStore) {
	ctx := context.Background()

	t.Run("empty store reports not found", func(t *testing.T) {
		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		err = s.Update(ctx, func(c *models.ContractState) (*models.ContractState, error) {
			t.Fatal("update must not run without state")
			return c, nil
		})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("save then load round trips", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, sampleState()))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ans", got.ANSContractAddress)
		assert.True(t, got.Signatures.Contains("sig-1"))
		require.Len(t, got.Records, 1)
		assert.JSONEq(t, `{"ip":"1.2.3.4"}`, string(got.Records[0].Records[0].Value))
	})

	t.Run("update persists the returned state", func(t *testing.T) {
		err := s.Update(ctx, func(c *models.ContractState) (*models.ContractState, error) {
			c.Signatures.Add("sig-2")
			return c, nil
		})
		require.NoError(t, err)

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"sig-1", "sig-2"}, got.Signatures.Values())
	})

	t.Run("failed update writes nothing", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.Update(ctx, func(c *models.ContractState) (*models.ContractState, error) {
			c.Signatures.Add("sig-3")
			c.Records = nil
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.False(t, got.Signatures.Contains("sig-3"))
		assert.Len(t, got.Records, 1)
	})

	t.Run("loaded state is independent of the store", func(t *testing.T) {
		got, err := s.Load(ctx)
		require.NoError(t, err)
		got.Records[0].Records = nil

		again, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, again.Records[0].Records, 1)
	})

	t.Run("unmigrated legacy document reads back the same ids", func(t *testing.T) {
		legacy := `{"records":[{"domain":"old","A":[{"name":"@","value":{"ip":"1.1.1.1"}},{"name":"www","value":{"ip":"2.2.2.2"}}]}],` +
			`"signatures":[],"ans_contract_address":"ans","ar_molecule":"m","sig_message":"hello world"}`
		require.NoError(t, saveRaw(ctx, s, []byte(legacy)))

		first, err := s.Load(ctx)
		require.NoError(t, err)
		second, err := s.Load(ctx)
		require.NoError(t, err)

		require.Len(t, first.Records[0].Records, 2)
		assert.Equal(t, first.Records[0].Records, second.Records[0].Records)
		assert.Equal(t, models.LegacyID("old", models.RecordTypeA, 1), first.Records[0].Records[1].ID)
	})

	t.Run("legacy document is upgraded and kept on update", func(t *testing.T) {
		legacy := `{"records":[{"domain":"old","A":[{"name":"@","value":{"ip":"1.1.1.1"}}],"TXT":[{"name":"t","value":["x"]}]}],` +
			`"signatures":[],"ans_contract_address":"ans","ar_molecule":"m","sig_message":"hello world"}`
		require.NoError(t, saveRaw(ctx, s, []byte(legacy)))

		require.NoError(t, s.Update(ctx, func(c *models.ContractState) (*models.ContractState, error) {
			return c, nil
		}))
		first, err := s.Load(ctx)
		require.NoError(t, err)
		second, err := s.Load(ctx)
		require.NoError(t, err)

		require.Len(t, first.Records[0].Records, 2)
		assert.Equal(t, models.RecordTypeA, first.Records[0].Records[0].Type)
		assert.Equal(t, models.RecordTypeTXT, first.Records[0].Records[1].Type)
		assert.NotEmpty(t, first.Records[0].Records[0].ID)
		assert.Equal(t, first.Records[0].Records[0].ID, second.Records[0].Records[0].ID)
	})
}

// saveRaw writes a pre-encoded document, bypassing encode.
func saveRaw(ctx context.Context, s ports.StateStore, data []byte) error {
	switch st := s.(type) {
	case *MemoryStore:
		st.mu.Lock()
		defer st.mu.Unlock()
		st.data = data
		return nil
	case *BoltStore:
		return st.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(stateBucket).Put(currentKey, data)
		})
	case *RedisStore:
		return st.client.Set(ctx, st.key, data, 0).Err()
	case *PostgresStore:
		_, err := st.db.ExecContext(ctx, `UPDATE `+st.ident()+` SET state = $1 WHERE id = 1`, string(data))
		return err
	}
	return fmt.Errorf("unsupported store %T", s)
}
