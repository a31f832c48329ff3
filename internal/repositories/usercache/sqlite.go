package usercache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (*Entry, error) {
	var e Entry
	err := r.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM user_cache WHERE key = ?`, key,
	).Scan(&e.Value, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user_cache[%s]: %w", key, err)
	}
	return &e, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, r.now())
	if err != nil {
		return fmt.Errorf("failed to set user_cache[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_cache WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete user_cache[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_cache`)
	if err != nil {
		return fmt.Errorf("failed to clear user_cache: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) (map[string]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM user_cache`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user_cache: %w", err)
	}
	defer rows.Close()

	result := make(map[string]Entry)
	for rows.Next() {
		var key string
		var e Entry
		if err := rows.Scan(&key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user_cache row: %w", err)
		}
		result[key] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user_cache rows: %w", err)
	}
	return result, nil
}
