package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"reportdesk/backend/internal/session/domain"
)

// MemoryRepository is an in-memory session store for tests and local runs.
// All operations are safe for concurrent use.
type MemoryRepository struct {
	mu     sync.Mutex
	byHash map[string]*domain.Session
}

// NewMemoryRepository returns an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byHash: make(map[string]*domain.Session)}
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.RevokedAt != nil {
		t := *s.RevokedAt
		c.RevokedAt = &t
	}
	return &c
}

// GetByTokenHash returns the session for tokenHash, or nil if not found.
func (r *MemoryRepository) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSession(r.byHash[tokenHash]), nil
}

// ListByAccount returns all sessions for the account, newest first.
func (r *MemoryRepository) ListByAccount(_ context.Context, accountID string) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	for _, s := range r.byHash {
		if s.AccountID == accountID {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Create stores a copy of the session keyed by its token hash.
func (r *MemoryRepository) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHash[s.TokenHash] = cloneSession(s)
	return nil
}

// Revoke marks the session for tokenHash as revoked if it is not already,
// reporting whether this call was the one that revoked it.
func (r *MemoryRepository) Revoke(_ context.Context, tokenHash, replacedByHash string, revokedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byHash[tokenHash]
	if !ok || s.RevokedAt != nil {
		return false, nil
	}
	t := revokedAt
	s.RevokedAt = &t
	s.ReplacedByHash = replacedByHash
	return true, nil
}

// RevokeAllByAccount revokes every live session for the account.
func (r *MemoryRepository) RevokeAllByAccount(_ context.Context, accountID string, revokedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byHash {
		if s.AccountID == accountID && s.RevokedAt == nil {
			t := revokedAt
			s.RevokedAt = &t
		}
	}
	return nil
}

// DeleteExpiredBefore removes sessions whose lifetime ended before cutoff.
func (r *MemoryRepository) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, s := range r.byHash {
		if s.ExpiresAt.Before(cutoff) {
			delete(r.byHash, hash)
			n++
		}
	}
	return n, nil
}
