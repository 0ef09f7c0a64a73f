package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ansdns/internal/records/models"
)

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestBoltStore(t *testing.T) {
	s, err := OpenBolt(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	runStoreContract(t, s)
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sampleState()))
	require.NoError(t, s.Close())

	reopened, err := OpenBolt(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "example", got.Records[0].Domain)
}

func TestEncodeRejectsNilState(t *testing.T) {
	_, err := encode(nil)
	assert.Error(t, err)

	s := NewMemoryStore()
	assert.Error(t, s.Save(context.Background(), nil))
	require.NoError(t, s.Save(context.Background(), sampleState()))
	err = s.Update(context.Background(), func(*models.ContractState) (*models.ContractState, error) {
		return nil, nil
	})
	assert.Error(t, err)
}
