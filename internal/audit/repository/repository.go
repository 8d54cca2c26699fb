package repository

import (
	"context"

	"reportdesk/backend/internal/audit/domain"
)

// Repository is the persistence port for audit events.
type Repository interface {
	// Create persists the entry. The entry must have ID set.
	Create(ctx context.Context, e *domain.AuditLog) error
	// ListByAccount returns entries for the account, newest first, paginated.
	ListByAccount(ctx context.Context, accountID string, limit, offset int32) ([]*domain.AuditLog, error)
}
