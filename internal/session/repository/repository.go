package repository

import (
	"context"
	"time"

	"reportdesk/backend/internal/session/domain"
)

// Repository is the persistence port for refresh sessions. Lookups return
// (nil, nil) when no row matches; errors are reserved for store failures.
type Repository interface {
	// GetByTokenHash returns the session whose refresh secret digest is
	// tokenHash, or nil if none exists.
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	// ListByAccount returns all sessions for the account, newest first.
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Session, error)
	// Create persists the session. The session must have ID and TokenHash set.
	Create(ctx context.Context, s *domain.Session) error
	// Revoke marks the session identified by tokenHash as revoked at
	// revokedAt, recording replacedByHash, but only if it is not already
	// revoked. It reports whether this call won the revocation; a false
	// return with nil error means another caller revoked it first or no
	// such session exists.
	Revoke(ctx context.Context, tokenHash, replacedByHash string, revokedAt time.Time) (bool, error)
	// RevokeAllByAccount revokes every live session for the account.
	RevokeAllByAccount(ctx context.Context, accountID string, revokedAt time.Time) error
	// DeleteExpiredBefore removes sessions whose lifetime ended before
	// cutoff, returning how many rows were removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
