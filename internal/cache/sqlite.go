package cache

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/models"
	"github.com/dmitrijs2005/gophauth/internal/repositories/usercache"
)

// SQLite stores JSON-encoded users in the user_cache table.
type SQLite struct {
	repo usercache.Repository
}

// NewSQLite expects a database migrated with storage.RunMigrations.
func NewSQLite(db dbx.DBTX) *SQLite {
	return &SQLite{repo: usercache.NewSQLiteRepository(db)}
}

func (s *SQLite) Read(ctx context.Context, key string) (*models.User, error) {
	e, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache read: %w", err)
	}
	if e == nil {
		return nil, nil
	}
	return decode(e.Value)
}

func (s *SQLite) Write(ctx context.Context, key string, u models.User) error {
	b, err := encode(u)
	if err != nil {
		return err
	}
	if err := s.repo.Set(ctx, key, b); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

// Clear drops every cached entry.
func (s *SQLite) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
