package repository

import (
	"context"
	"database/sql"
	"fmt"

	"reportdesk/backend/internal/audit/domain"
)

// PostgresRepository persists audit events in Postgres via database/sql.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the entry. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, account_id, action, detail, ip, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, nullStr(e.AccountID), e.Action, nullStr(e.Detail), nullStr(e.IP), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByAccount returns entries for the account, newest first, paginated.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, action, detail, ip, created_at
		 FROM audit_logs WHERE account_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var (
			e         domain.AuditLog
			accountID sql.NullString
			detail    sql.NullString
			ip        sql.NullString
		)
		if err := rows.Scan(&e.ID, &accountID, &e.Action, &detail, &ip, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.AccountID = accountID.String
		e.Detail = detail.String
		e.IP = ip.String
		out = append(out, &e)
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
