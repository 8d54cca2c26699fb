// Package domain holds the account entity and its lockout state machine.
package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the authorization role of an account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the three enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Account is the core credential-bearing entity. Mutations that touch the
// lockout state go through methods; callers never set the counter or
// LockoutUntil directly.
type Account struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	Role                Role
	IsActive            bool
	FailedLoginAttempts int
	LockoutUntil        *time.Time // nil when not locked
	EmployeeID          string     // opaque back-reference to a profile record; empty if none
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// View is the public projection of an account. The password hash is never
// serialized outward under any circumstance.
type View struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsActive   bool      `json:"is_active"`
	EmployeeID string    `json:"employee_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NormalizeEmail lowercases and trims an email for unique storage and lookup.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Validate validates the account for persistence. Returns an error describing
// the first validation failure.
func (a *Account) Validate() error {
	if a.Username == "" {
		return errors.New("username is required")
	}
	if a.Email == "" {
		return errors.New("email is required")
	}
	if a.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if !a.Role.Valid() {
		return errors.New("role must be admin, manager, or employee")
	}
	if a.FailedLoginAttempts < 0 {
		return errors.New("failed login attempts must not be negative")
	}
	return nil
}

// LockedOut reports whether the account is currently login-blocked: a
// non-nil LockoutUntil only blocks while it is in the future.
func (a *Account) LockedOut(now time.Time) bool {
	return a.LockoutUntil != nil && now.Before(*a.LockoutUntil)
}

// ClearExpiredLockout re-admits the account to the normal login flow once the
// lockout timer has elapsed. Clearing LockoutUntil always resets the counter.
// Returns true if state changed.
func (a *Account) ClearExpiredLockout(now time.Time) bool {
	if a.LockoutUntil == nil || now.Before(*a.LockoutUntil) {
		return false
	}
	a.LockoutUntil = nil
	a.FailedLoginAttempts = 0
	return true
}

// ResetFailedAttempts records a successful authentication: the counter goes
// back to zero and any lockout is cleared, regardless of prior count.
func (a *Account) ResetFailedAttempts() {
	a.FailedLoginAttempts = 0
	a.LockoutUntil = nil
}

// RecordFailedAttempt increments the failure counter and, when the new count
// reaches threshold, locks the account until lockUntil. Returns true when
// this attempt triggered the lock. Store implementations mirror this logic in
// a single atomic write; the method is the reference semantics.
func (a *Account) RecordFailedAttempt(threshold int, lockUntil time.Time) (locked bool) {
	a.FailedLoginAttempts++
	if a.FailedLoginAttempts >= threshold {
		until := lockUntil
		a.LockoutUntil = &until
		return true
	}
	return false
}

// PublicView returns the outward-facing projection of the account.
func (a *Account) PublicView() View {
	return View{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		Role:       a.Role,
		IsActive:   a.IsActive,
		EmployeeID: a.EmployeeID,
		CreatedAt:  a.CreatedAt,
	}
}
