package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":8080")
	}
	if cfg.JWTIssuer != "reportdesk-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "reportdesk-auth")
	}
	if cfg.JWTAudience != "reportdesk-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "reportdesk-api")
	}
	if cfg.JWTAccessTTL != "15m" {
		t.Errorf("JWTAccessTTL = %q, want %q", cfg.JWTAccessTTL, "15m")
	}
	if cfg.RefreshTTLRaw != "168h" {
		t.Errorf("RefreshTTLRaw = %q, want %q", cfg.RefreshTTLRaw, "168h")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.MaxFailedLogins != 5 {
		t.Errorf("MaxFailedLogins = %d, want 5", cfg.MaxFailedLogins)
	}
	if cfg.LockoutDurationRaw != "30m" {
		t.Errorf("LockoutDurationRaw = %q, want %q", cfg.LockoutDurationRaw, "30m")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":9999")
	os.Setenv("MAX_FAILED_LOGINS", "3")
	os.Setenv("LOCKOUT_DURATION", "1h")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":9999" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":9999")
	}
	if cfg.MaxFailedLogins != 3 {
		t.Errorf("MaxFailedLogins = %d, want 3", cfg.MaxFailedLogins)
	}
	if got := cfg.LockoutDuration(); got != time.Hour {
		t.Errorf("LockoutDuration = %v, want 1h", got)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")
	os.Setenv("BCRYPT_COST", "99")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load with BCRYPT_COST=99 should fail")
	}
}

func TestLoad_InvalidThreshold(t *testing.T) {
	os.Clearenv()
	os.Setenv("GRPC_ADDR", ":8080")
	os.Setenv("MAX_FAILED_LOGINS", "-1")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load with negative MAX_FAILED_LOGINS should fail")
	}
}

func TestTTLAccessors_Fallbacks(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "bogus", RefreshTTLRaw: "", LockoutDurationRaw: "-5m"}
	if got := cfg.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL fallback = %v, want 15m", got)
	}
	if got := cfg.RefreshTTL(); got != 168*time.Hour {
		t.Errorf("RefreshTTL fallback = %v, want 168h", got)
	}
	if got := cfg.LockoutDuration(); got != 30*time.Minute {
		t.Errorf("LockoutDuration fallback = %v, want 30m", got)
	}
}

func TestTTLAccessors_Parsed(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "5m", RefreshTTLRaw: "24h", LockoutDurationRaw: "10m"}
	if got := cfg.AccessTTL(); got != 5*time.Minute {
		t.Errorf("AccessTTL = %v, want 5m", got)
	}
	if got := cfg.RefreshTTL(); got != 24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 24h", got)
	}
	if got := cfg.LockoutDuration(); got != 10*time.Minute {
		t.Errorf("LockoutDuration = %v, want 10m", got)
	}
}
