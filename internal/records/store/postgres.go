package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ansdns/internal/records/models"
	"ansdns/pkg/platform/sentinel"
	txctx "ansdns/pkg/platform/tx"
)

// DefaultPostgresTable holds the state row when no table is configured.
const DefaultPostgresTable = "contract_state"

// PostgresStore keeps the state document in a single-row jsonb table. Update
// locks the row with SELECT ... FOR UPDATE, so writers on other instances
// queue behind the running action.
type PostgresStore struct {
	db    *sql.DB
	table string
}

// PostgresStoreOption configures a PostgresStore.
type PostgresStoreOption func(*PostgresStore)

// WithTable overrides DefaultPostgresTable.
func WithTable(table string) PostgresStoreOption {
	return func(s *PostgresStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewPostgresStore constructs a PostgreSQL-backed state store.
func NewPostgresStore(db *sql.DB, opts ...PostgresStoreOption) *PostgresStore {
	s := &PostgresStore{db: db, table: DefaultPostgresTable}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Migrate creates the state table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+s.ident()+` (
		id         SMALLINT PRIMARY KEY CHECK (id = 1),
		state      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*models.ContractState, error) {
	var data []byte
	err := txctx.Pick(ctx, s.db).QueryRowContext(ctx, `SELECT state FROM `+s.ident()+` WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load state: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return decode(data)
}

func (s *PostgresStore) Save(ctx context.Context, state *models.ContractState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	_, err = txctx.Pick(ctx, s.db).ExecContext(ctx, `INSERT INTO `+s.ident()+` (id, state, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`, string(data))
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, fn func(*models.ContractState) (*models.ContractState, error)) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	ctx = txctx.WithTx(ctx, tx)

	var data []byte
	err = tx.QueryRowContext(ctx, `SELECT state FROM `+s.ident()+` WHERE id = 1 FOR UPDATE`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update state: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock state: %w", err)
	}
	current, err := decode(data)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if err = s.Save(ctx, next); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit state tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) ident() string {
	return pq.QuoteIdentifier(s.table)
}
