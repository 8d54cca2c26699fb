package authz

import (
	"context"
	"testing"
)

func TestEvaluator_Allow(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	ctx := context.Background()

	cases := []struct {
		name     string
		subject  Subject
		action   string
		resource map[string]interface{}
		want     bool
	}{
		{"admin can register", Subject{ID: "a1", Role: "admin"}, "accounts.register", nil, true},
		{"admin can change roles", Subject{ID: "a1", Role: "admin"}, "accounts.set_role", map[string]interface{}{"account_id": "u1"}, true},
		{"manager can list", Subject{ID: "m1", Role: "manager"}, "accounts.list", nil, true},
		{"manager cannot register", Subject{ID: "m1", Role: "manager"}, "accounts.register", nil, false},
		{"manager cannot disable", Subject{ID: "m1", Role: "manager"}, "accounts.set_active", map[string]interface{}{"account_id": "u1"}, false},
		{"employee cannot list", Subject{ID: "u1", Role: "employee"}, "accounts.list", nil, false},
		{"employee can read self", Subject{ID: "u1", Role: "employee"}, "accounts.get", map[string]interface{}{"account_id": "u1"}, true},
		{"employee cannot read others", Subject{ID: "u1", Role: "employee"}, "accounts.get", map[string]interface{}{"account_id": "u2"}, false},
		{"employee can change own password", Subject{ID: "u1", Role: "employee"}, "accounts.change_password", map[string]interface{}{"account_id": "u1"}, true},
		{"unknown role denied", Subject{ID: "x", Role: "wizard"}, "accounts.list", nil, false},
	}
	for _, tc := range cases {
		got, err := e.Allow(ctx, tc.subject, tc.action, tc.resource)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: allow = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEvaluator_HealthCheck(t *testing.T) {
	e, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}
