package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reportdesk/backend/internal/account/domain"
)

const accountColumns = `id, username, email, password_hash, role, is_active,
	failed_login_attempts, lockout_until, employee_id, created_at, updated_at`

// PostgresRepository persists accounts in Postgres via database/sql (pgx stdlib driver).
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the account for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetByUsername returns the account for the username, or nil if not found.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	return scanAccount(row)
}

// GetByEmail returns the account for the normalized email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`,
		domain.NormalizeEmail(email))
	return scanAccount(row)
}

// ListAll returns every account ordered by username.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create persists the account. The account must have ID set and pass Validate.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.Username, a.Email, a.PasswordHash, string(a.Role), a.IsActive,
		a.FailedLoginAttempts, timeToNull(a.LockoutUntil), nullStr(a.EmployeeID),
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update writes the full account row in one statement.
func (r *PostgresRepository) Update(ctx context.Context, a *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET username = $2, email = $3, password_hash = $4, role = $5,
		     is_active = $6, failed_login_attempts = $7, lockout_until = $8,
		     employee_id = $9, updated_at = $10
		 WHERE id = $1`,
		a.ID, a.Username, a.Email, a.PasswordHash, string(a.Role), a.IsActive,
		a.FailedLoginAttempts, timeToNull(a.LockoutUntil), nullStr(a.EmployeeID),
		a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UsernameExists reports whether a row with the username exists.
func (r *PostgresRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// EmailExists reports whether a row with the normalized email exists.
func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`,
		domain.NormalizeEmail(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// RecordFailedAttempt increments the counter and conditionally locks in one
// statement, so concurrent wrong-password attempts are serialized by the row.
func (r *PostgresRepository) RecordFailedAttempt(ctx context.Context, id string, threshold int, lockUntil time.Time) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE accounts
		 SET failed_login_attempts = failed_login_attempts + 1,
		     lockout_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE lockout_until END,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+accountColumns,
		id, threshold, lockUntil)
	return scanAccount(row)
}

// ResetFailedAttempts zeroes the counter and clears the lockout timestamp.
func (r *PostgresRepository) ResetFailedAttempts(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET failed_login_attempts = 0, lockout_until = NULL, updated_at = now()
		 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	var role string
	var lockout sql.NullTime
	var employeeID sql.NullString
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role, &a.IsActive,
		&a.FailedLoginAttempts, &lockout, &employeeID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	a.Role = domain.Role(role)
	if lockout.Valid {
		t := lockout.Time
		a.LockoutUntil = &t
	}
	if employeeID.Valid {
		a.EmployeeID = employeeID.String
	}
	return &a, nil
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
