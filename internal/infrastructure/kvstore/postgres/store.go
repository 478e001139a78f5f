package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	qb "github.com/riskibarqy/fantasy-matchday/internal/platform/querybuilder"
)

const kvTable = "kv_state"

// Store keeps scheduler state in the kv_state table.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := qb.Select("value").From(kvTable).Where(qb.Eq("key", key)).ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build get kv query: %w", err)
	}

	var value string
	if err := s.db.GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get kv %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	query, args, err := qb.InsertInto(kvTable).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set kv query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set kv %s: %w", key, err)
	}
	return nil
}

// SetIfAbsent reports whether this call created the key.
func (s *Store) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	query, args, err := qb.InsertInto(kvTable).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build set kv if absent query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("set kv %s if absent: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set kv %s if absent rows affected: %w", key, err)
	}
	return n == 1, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	query, args, err := qb.DeleteFrom(kvTable).Where(qb.Eq("key", key)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete kv query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete kv %s: %w", key, err)
	}
	return nil
}
