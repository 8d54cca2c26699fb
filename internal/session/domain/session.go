package domain

import "time"

// Session is one refresh-token lifetime for an account. The refresh secret
// itself is never stored; TokenHash holds its SHA-256 digest. When a session
// is rotated, ReplacedByHash records the digest of the successor secret so a
// replayed parent can be traced to its chain.
type Session struct {
	ID             string
	AccountID      string
	TokenHash      string
	ExpiresAt      time.Time
	RevokedAt      *time.Time // nil when not revoked
	ReplacedByHash string     // digest of the successor refresh secret; empty until rotated
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
}

// Revoked reports whether the session has been revoked. Revocation is
// terminal: a revoked session never becomes usable again.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// Expired reports whether the session's lifetime has passed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Active reports whether the session can still redeem a refresh: not
// revoked and not expired.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked() && !s.Expired(now)
}
