// Package usercache persists cached identity snapshots in the local SQLite
// database, one opaque value per key.
package usercache

import (
	"context"
	"time"
)

// Entry is a stored value with its last write time.
type Entry struct {
	Value     []byte
	UpdatedAt time.Time
}

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]Entry, error)
	Clear(ctx context.Context) error
}
