// Package session persists portal sessions. A record pairs the portal
// user with the backend credentials needed to rebuild an API client,
// so a portal restart does not log everyone out.
package session

import (
	"context"
	"time"

	"kitaportal/internal/adapters/api"
	"kitaportal/internal/domain/user"
)

// Record is one persisted portal session.
type Record struct {
	Token       string
	User        user.User
	Credentials api.Credentials
	CreatedAt   time.Time
}

// Store is the interface for session persistence.
type Store interface {
	Save(ctx context.Context, record Record) error
	Load(ctx context.Context, token string) (Record, bool, error)
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes sessions created before the cutoff and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}
