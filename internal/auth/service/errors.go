package service

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// Sentinel errors for the auth service; the transport layer maps them to
// status codes. Store internals never reach the caller through these.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidToken       = errors.New("invalid refresh token")
	ErrTokenExpired       = errors.New("refresh token expired")
	ErrTokenRevoked       = errors.New("refresh token revoked")
	ErrNotFound           = errors.New("account not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPersistence        = errors.New("persistence failure")
)

// InvalidCredentialsError is a failed credential check carrying how many
// attempts remain before lockout. errors.Is matches ErrInvalidCredentials.
// An unknown username produces the same error with the same Remaining as a
// first wrong password, so the two cases cannot be told apart.
type InvalidCredentialsError struct {
	Remaining int
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials (%d attempts remaining)", e.Remaining)
}

func (e *InvalidCredentialsError) Unwrap() error { return ErrInvalidCredentials }

// LockedError is a login attempt against a locked account. errors.Is matches
// ErrAccountLocked.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.Until.Format(time.RFC3339))
}

func (e *LockedError) Unwrap() error { return ErrAccountLocked }

// storeFailure records the underlying store error in the process log and
// hands the caller the bare ErrPersistence sentinel. Driver and SQL detail
// never travels in the returned error.
func storeFailure(err error) error {
	log.Printf("auth: store error: %v", err)
	return ErrPersistence
}
