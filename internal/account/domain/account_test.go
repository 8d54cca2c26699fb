package domain

import (
	"testing"
	"time"
)

func validAccount() *Account {
	now := time.Now().UTC()
	return &Account{
		ID:           "acc-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Role:         RoleEmployee,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleEmployee} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	for _, r := range []Role{"", "root", "Admin"} {
		if r.Valid() {
			t.Errorf("%q should be invalid", r)
		}
	}
}

func TestAccount_Validate(t *testing.T) {
	a := validAccount()
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	missingUsername := validAccount()
	missingUsername.Username = ""
	if err := missingUsername.Validate(); err == nil {
		t.Error("missing username should fail")
	}

	badRole := validAccount()
	badRole.Role = "superuser"
	if err := badRole.Validate(); err == nil {
		t.Error("unknown role should fail")
	}

	negative := validAccount()
	negative.FailedLoginAttempts = -1
	if err := negative.Validate(); err == nil {
		t.Error("negative counter should fail")
	}
}

func TestAccount_LockedOut(t *testing.T) {
	now := time.Now().UTC()
	a := validAccount()
	if a.LockedOut(now) {
		t.Error("account without LockoutUntil should not be locked")
	}

	future := now.Add(10 * time.Minute)
	a.LockoutUntil = &future
	if !a.LockedOut(now) {
		t.Error("account with future LockoutUntil should be locked")
	}

	past := now.Add(-time.Minute)
	a.LockoutUntil = &past
	if a.LockedOut(now) {
		t.Error("account with elapsed LockoutUntil should not be locked")
	}
}

func TestAccount_ClearExpiredLockout(t *testing.T) {
	now := time.Now().UTC()
	a := validAccount()
	a.FailedLoginAttempts = 5
	past := now.Add(-time.Second)
	a.LockoutUntil = &past

	if !a.ClearExpiredLockout(now) {
		t.Fatal("elapsed lockout should be cleared")
	}
	if a.LockoutUntil != nil {
		t.Error("LockoutUntil should be nil after clear")
	}
	if a.FailedLoginAttempts != 0 {
		t.Error("counter should reset to 0 when LockoutUntil is cleared")
	}

	// Still-active lockout must not be cleared.
	future := now.Add(time.Minute)
	a.LockoutUntil = &future
	a.FailedLoginAttempts = 5
	if a.ClearExpiredLockout(now) {
		t.Error("active lockout should not be cleared")
	}
}

func TestAccount_RecordFailedAttempt(t *testing.T) {
	now := time.Now().UTC()
	until := now.Add(30 * time.Minute)
	a := validAccount()

	for i := 1; i < 5; i++ {
		if locked := a.RecordFailedAttempt(5, until); locked {
			t.Fatalf("attempt %d should not lock", i)
		}
		if a.FailedLoginAttempts != i {
			t.Fatalf("counter = %d after attempt %d", a.FailedLoginAttempts, i)
		}
	}
	if locked := a.RecordFailedAttempt(5, until); !locked {
		t.Fatal("attempt 5 should lock")
	}
	if a.LockoutUntil == nil || !a.LockoutUntil.Equal(until) {
		t.Errorf("LockoutUntil = %v, want %v", a.LockoutUntil, until)
	}
}

func TestAccount_ResetFailedAttempts(t *testing.T) {
	now := time.Now().UTC()
	until := now.Add(30 * time.Minute)
	a := validAccount()
	a.FailedLoginAttempts = 4
	a.LockoutUntil = &until

	a.ResetFailedAttempts()
	if a.FailedLoginAttempts != 0 || a.LockoutUntil != nil {
		t.Errorf("reset should zero counter and clear lockout, got %d %v",
			a.FailedLoginAttempts, a.LockoutUntil)
	}
}

func TestAccount_PublicViewOmitsHash(t *testing.T) {
	a := validAccount()
	v := a.PublicView()
	if v.ID != a.ID || v.Username != a.Username || v.Email != a.Email || v.Role != a.Role {
		t.Error("view should carry the public fields")
	}
	// View has no hash field by construction; this guards the projection stays complete.
	if v.CreatedAt.IsZero() {
		t.Error("view should carry CreatedAt")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
