package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// KVStore 是 repository.KVStore 的 PostgreSQL 实现，值以 jsonb 存储。
type KVStore struct {
	db *pgxpool.Pool
}

func NewKVStore(db *pgxpool.Pool) *KVStore {
	if db == nil {
		panic("postgres pool cannot be nil for KVStore")
	}
	return &KVStore{db: db}
}

// EnsureSchema creates the kv_store table when missing.
func (s *KVStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("postgres: create kv_store: %w", err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT key, value::text
		FROM kv_store
		WHERE key = ANY($1)
	`, keys)
	if err != nil {
		return nil, fmt.Errorf("postgres: select kv_store: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("postgres: scan kv_store row: %w", err)
		}
		out[key] = []byte(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate kv_store: %w", err)
	}
	return out, nil
}

func (s *KVStore) Upsert(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("postgres: upsert %s: %w", key, err)
	}
	return nil
}
