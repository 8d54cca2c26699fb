package domain

import "time"

// AuditLog is one recorded security event (login, lockout, rotation reuse,
// password or role change).
type AuditLog struct {
	ID        string
	AccountID string
	Action    string
	Detail    string
	IP        string
	CreatedAt time.Time
}
