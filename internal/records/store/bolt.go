package store

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"ansdns/internal/records/models"
	"ansdns/pkg/platform/sentinel"
)

var (
	stateBucket = []byte("state")
	currentKey  = []byte("current")
)

// BoltStore persists the state in an embedded bbolt file. It is the default
// backend of the CLI and of single-node servers.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(_ context.Context) (*models.ContractState, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(stateBucket).Get(currentKey)
		if v == nil {
			return fmt.Errorf("load state: %w", sentinel.ErrNotFound)
		}
		// Values are only valid for the life of the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (s *BoltStore) Save(_ context.Context, state *models.ContractState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Put(currentKey, data)
	})
}

// Update runs fn inside a bbolt read-write transaction; bbolt allows one
// writer at a time, and an error from fn rolls the transaction back.
func (s *BoltStore) Update(_ context.Context, fn func(*models.ContractState) (*models.ContractState, error)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)
		v := b.Get(currentKey)
		if v == nil {
			return fmt.Errorf("update state: %w", sentinel.ErrNotFound)
		}
		current, err := decode(v)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		data, err := encode(next)
		if err != nil {
			return err
		}
		return b.Put(currentKey, data)
	})
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
