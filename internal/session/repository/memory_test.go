package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"reportdesk/backend/internal/session/domain"
)

func newSession(hash, accountID string, expiresAt time.Time) *domain.Session {
	return &domain.Session{
		ID:        "sess-" + hash,
		AccountID: accountID,
		TokenHash: hash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	if err := r.Create(ctx, newSession("h1", "acc-1", exp)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	s, err := r.GetByTokenHash(ctx, "h1")
	if err != nil || s == nil {
		t.Fatalf("GetByTokenHash: %v %v", s, err)
	}
	if s.AccountID != "acc-1" {
		t.Errorf("AccountID = %q", s.AccountID)
	}
	missing, err := r.GetByTokenHash(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing row should be (nil, nil), got %v %v", missing, err)
	}
}

func TestMemoryRepository_RevokeOnce(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	r.Create(ctx, newSession("h1", "acc-1", time.Now().Add(time.Hour)))
	now := time.Now().UTC()

	won, err := r.Revoke(ctx, "h1", "h2", now)
	if err != nil || !won {
		t.Fatalf("first Revoke should win, got %v %v", won, err)
	}
	won, err = r.Revoke(ctx, "h1", "h3", now)
	if err != nil || won {
		t.Fatalf("second Revoke should not win, got %v %v", won, err)
	}

	s, _ := r.GetByTokenHash(ctx, "h1")
	if s.RevokedAt == nil || s.ReplacedByHash != "h2" {
		t.Errorf("winner's successor should stick: revokedAt=%v replacedBy=%q", s.RevokedAt, s.ReplacedByHash)
	}
}

func TestMemoryRepository_RevokeMissing(t *testing.T) {
	r := NewMemoryRepository()
	won, err := r.Revoke(context.Background(), "nope", "", time.Now())
	if err != nil || won {
		t.Fatalf("revoking a missing session should be (false, nil), got %v %v", won, err)
	}
}

func TestMemoryRepository_ConcurrentRevokeSingleWinner(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	r.Create(ctx, newSession("h1", "acc-1", time.Now().Add(time.Hour)))

	const racers = 20
	var wg sync.WaitGroup
	wins := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := r.Revoke(ctx, "h1", "succ", time.Now())
			if err != nil {
				t.Errorf("Revoke: %v", err)
			}
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestMemoryRepository_RevokeAllByAccount(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)
	r.Create(ctx, newSession("h1", "acc-1", exp))
	r.Create(ctx, newSession("h2", "acc-1", exp))
	r.Create(ctx, newSession("h3", "acc-2", exp))

	if err := r.RevokeAllByAccount(ctx, "acc-1", time.Now().UTC()); err != nil {
		t.Fatalf("RevokeAllByAccount: %v", err)
	}
	for _, hash := range []string{"h1", "h2"} {
		s, _ := r.GetByTokenHash(ctx, hash)
		if s.RevokedAt == nil {
			t.Errorf("%s should be revoked", hash)
		}
	}
	other, _ := r.GetByTokenHash(ctx, "h3")
	if other.RevokedAt != nil {
		t.Error("sessions of other accounts must be untouched")
	}
}

func TestMemoryRepository_ListByAccount(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	base := time.Now().UTC()
	old := newSession("h1", "acc-1", base.Add(time.Hour))
	old.CreatedAt = base.Add(-time.Hour)
	r.Create(ctx, old)
	r.Create(ctx, newSession("h2", "acc-1", base.Add(time.Hour)))

	list, err := r.ListByAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(list) != 2 || list[0].TokenHash != "h2" {
		t.Errorf("want newest first, got %+v", list)
	}
}

func TestMemoryRepository_DeleteExpiredBefore(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()
	r.Create(ctx, newSession("h1", "acc-1", now.Add(-time.Hour)))
	r.Create(ctx, newSession("h2", "acc-1", now.Add(time.Hour)))

	n, err := r.DeleteExpiredBefore(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpiredBefore = %d, %v; want 1, nil", n, err)
	}
	if s, _ := r.GetByTokenHash(ctx, "h1"); s != nil {
		t.Error("expired session should be gone")
	}
	if s, _ := r.GetByTokenHash(ctx, "h2"); s == nil {
		t.Error("live session should remain")
	}
}
