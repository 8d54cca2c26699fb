package repository

import (
	"context"
	"sync"
	"time"

	"reportdesk/backend/internal/account/domain"
)

// MemoryRepository is a mutex-guarded in-memory Repository. It is the
// reference implementation for environments without Postgres (tests,
// local development without DATABASE_URL).
type MemoryRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.Account
}

// NewMemoryRepository returns an empty in-memory account repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*domain.Account)}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAccount(r.byID[id]), nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Username == username {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) ListAll(ctx context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

func (r *MemoryRepository) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = cloneAccount(a)
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[a.ID]; !ok {
		return nil
	}
	r.byID[a.ID] = cloneAccount(a)
	return nil
}

func (r *MemoryRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	a, _ := r.GetByUsername(ctx, username)
	return a != nil, nil
}

func (r *MemoryRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	a, _ := r.GetByEmail(ctx, email)
	return a != nil, nil
}

// RecordFailedAttempt performs the increment-and-maybe-lock under the
// repository mutex, mirroring the single-statement Postgres update.
func (r *MemoryRepository) RecordFailedAttempt(ctx context.Context, id string, threshold int, lockUntil time.Time) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	a.RecordFailedAttempt(threshold, lockUntil)
	a.UpdatedAt = time.Now().UTC()
	return cloneAccount(a), nil
}

func (r *MemoryRepository) ResetFailedAttempts(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		a.ResetFailedAttempts()
		a.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.LockoutUntil != nil {
		t := *a.LockoutUntil
		c.LockoutUntil = &t
	}
	return &c
}
