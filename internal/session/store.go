package session

import (
	"context"
	"time"
)

// Data is the payload kept for a login session.
type Data struct {
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists login sessions keyed by session id.
type Store interface {
	// Put stores data under id for ttl.
	Put(ctx context.Context, id string, data Data, ttl time.Duration) error
	// Get returns the session or nil when it is missing or expired.
	Get(ctx context.Context, id string) (*Data, error)
	Delete(ctx context.Context, id string) error
	// Sweep removes expired sessions and reports how many were dropped.
	Sweep(ctx context.Context) (int, error)
	Close() error
}
