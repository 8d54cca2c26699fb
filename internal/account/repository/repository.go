// Package repository defines persistence for accounts.
package repository

import (
	"context"
	"time"

	"reportdesk/backend/internal/account/domain"
)

// Repository defines persistence for accounts. Getters return (nil, nil) for
// missing rows; an error means the store itself failed. Every mutating call is
// atomic: a single update is never observed half-applied.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListAll(ctx context.Context) ([]*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, a *domain.Account) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// RecordFailedAttempt increments the failed-login counter and sets
	// LockoutUntil to lockUntil when the new count reaches threshold, as one
	// atomic read-modify-write. Concurrent callers never lose an increment or
	// lock twice. Returns the updated account, or (nil, nil) if absent.
	RecordFailedAttempt(ctx context.Context, id string, threshold int, lockUntil time.Time) (*domain.Account, error)

	// ResetFailedAttempts zeroes the counter and clears LockoutUntil after a
	// successful authentication.
	ResetFailedAttempts(ctx context.Context, id string) error
}
