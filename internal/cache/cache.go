// Package cache remembers the most recently observed user between
// auth-state events so the façade can answer CurrentUser synchronously.
//
// Three backends are provided: Memory (process-local), SQLite (survives
// restarts of a CLI) and Redis (shared by several processes of one
// deployment). All of them are last-write-wins.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/models"
)

// UserKey is the key under which the façade stores the current user.
const UserKey = "__user_cache_key__"

// Cache is the key-value capability used by the auth façade.
type Cache interface {
	// Read returns (nil, nil) when nothing was written under key.
	Read(ctx context.Context, key string) (*models.User, error)
	Write(ctx context.Context, key string, u models.User) error
}

func encode(u models.User) ([]byte, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode cached user: %w", err)
	}
	return b, nil
}

func decode(b []byte) (*models.User, error) {
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &u, nil
}
