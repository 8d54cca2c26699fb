package audit

import (
	"context"
	"testing"

	auditrepo "reportdesk/backend/internal/audit/repository"
)

func TestLogger_Record(t *testing.T) {
	repo := auditrepo.NewMemoryRepository()
	l := NewLogger(repo, func(context.Context) string { return "10.0.0.1" }, nil)
	ctx := context.Background()

	l.Record(ctx, "acc-1", "login.success", "")
	l.Record(ctx, "acc-1", "login.failed", "wrong password")
	l.Record(ctx, "acc-2", "account.locked", "")

	entries, err := repo.ListByAccount(ctx, "acc-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByAccount: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.ID == "" {
			t.Error("entry must have an ID")
		}
		if e.IP != "10.0.0.1" {
			t.Errorf("IP = %q", e.IP)
		}
	}
}

func TestLogger_NilRepoDoesNotPanic(t *testing.T) {
	l := NewLogger(nil, nil, nil)
	l.Record(context.Background(), "acc-1", "login.success", "")
}

func TestMemoryRepository_Pagination(t *testing.T) {
	repo := auditrepo.NewMemoryRepository()
	l := NewLogger(repo, nil, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		l.Record(ctx, "acc-1", "login.failed", "")
	}

	page, err := repo.ListByAccount(ctx, "acc-1", 2, 0)
	if err != nil || len(page) != 2 {
		t.Fatalf("first page: %d entries, err %v", len(page), err)
	}
	page, _ = repo.ListByAccount(ctx, "acc-1", 2, 4)
	if len(page) != 1 {
		t.Errorf("last page: %d entries, want 1", len(page))
	}
	page, _ = repo.ListByAccount(ctx, "acc-1", 2, 10)
	if len(page) != 0 {
		t.Errorf("past the end: %d entries, want 0", len(page))
	}
}
