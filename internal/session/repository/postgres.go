package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reportdesk/backend/internal/session/domain"
)

const sessionColumns = `id, account_id, token_hash, expires_at, revoked_at,
	replaced_by_hash, ip_address, user_agent, created_at`

// PostgresRepository persists sessions in Postgres via database/sql (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByTokenHash returns the session whose refresh secret digest is tokenHash,
// or nil if not found. It returns an error only for database failures.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_hash = $1`, tokenHash)
	return scanSession(row)
}

// ListByAccount returns all sessions for the account, newest first.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE account_id = $1 ORDER BY created_at DESC`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create persists the session. The session must have ID and TokenHash set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.AccountID, s.TokenHash, s.ExpiresAt, timeToNull(s.RevokedAt),
		nullStr(s.ReplacedByHash), nullStr(s.IPAddress), nullStr(s.UserAgent),
		s.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Revoke marks the session for tokenHash as revoked, but only if no other
// caller has revoked it first. The single conditional UPDATE is what decides
// the winner when two rotations race on the same parent secret.
func (r *PostgresRepository) Revoke(ctx context.Context, tokenHash, replacedByHash string, revokedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions
		 SET revoked_at = $2, replaced_by_hash = $3
		 WHERE token_hash = $1 AND revoked_at IS NULL`,
		tokenHash, revokedAt, nullStr(replacedByHash))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

// RevokeAllByAccount revokes every live session for the account.
func (r *PostgresRepository) RevokeAllByAccount(ctx context.Context, accountID string, revokedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2
		 WHERE account_id = $1 AND revoked_at IS NULL`,
		accountID, revokedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpiredBefore removes sessions whose lifetime ended before cutoff.
func (r *PostgresRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s          domain.Session
		revokedAt  sql.NullTime
		replacedBy sql.NullString
		ip         sql.NullString
		ua         sql.NullString
	)
	err := row.Scan(&s.ID, &s.AccountID, &s.TokenHash, &s.ExpiresAt, &revokedAt,
		&replacedBy, &ip, &ua, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		s.RevokedAt = &t
	}
	s.ReplacedByHash = replacedBy.String
	s.IPAddress = ip.String
	s.UserAgent = ua.String
	return &s, nil
}

func timeToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
