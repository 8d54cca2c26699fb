package interceptors

import (
	"context"
	"net"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

type fakeRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (f *fakeRecorder) Record(_ context.Context, accountID, action, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, accountID+" "+action+" "+detail)
}

func TestAuditUnary_RecordsAuthenticatedRPC(t *testing.T) {
	rec := &fakeRecorder{}
	interceptor := AuditUnary(rec, map[string]bool{})

	ctx := WithIdentity(context.Background(), "acc-1", "admin")
	if _, err := interceptor(ctx, "request",
		&grpc.UnaryServerInfo{FullMethod: "/test.Service/Do"}, passHandler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(rec.entries))
	}
	if rec.entries[0] != "acc-1 rpc.test.Service.Do OK" {
		t.Errorf("entry = %q", rec.entries[0])
	}
}

func TestAuditUnary_SkipsUnauthenticatedAndSkipped(t *testing.T) {
	rec := &fakeRecorder{}
	skip := map[string]bool{"/grpc.health.v1.Health/Check": true}
	interceptor := AuditUnary(rec, skip)

	// No identity in context.
	interceptor(context.Background(), "request",
		&grpc.UnaryServerInfo{FullMethod: "/test.Service/Do"}, passHandler)

	// Skipped method, even authenticated.
	ctx := WithIdentity(context.Background(), "acc-1", "admin")
	interceptor(ctx, "request",
		&grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, passHandler)

	if len(rec.entries) != 0 {
		t.Errorf("entries = %v, want none", rec.entries)
	}
}

func TestAuditUnary_NilRecorder(t *testing.T) {
	interceptor := AuditUnary(nil, nil)
	ctx := WithIdentity(context.Background(), "acc-1", "admin")
	if _, err := interceptor(ctx, "request",
		&grpc.UnaryServerInfo{FullMethod: "/test.Service/Do"}, passHandler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}
}

func TestClientIP(t *testing.T) {
	base := context.Background()

	ctx := metadata.NewIncomingContext(base, metadata.Pairs("x-forwarded-for", "203.0.113.7, 10.0.0.1"))
	if got := ClientIP(ctx); got != "203.0.113.7" {
		t.Errorf("x-forwarded-for: %q", got)
	}

	ctx = metadata.NewIncomingContext(base, metadata.Pairs("x-real-ip", "198.51.100.2"))
	if got := ClientIP(ctx); got != "198.51.100.2" {
		t.Errorf("x-real-ip: %q", got)
	}

	ctx = peer.NewContext(base, &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("192.0.2.1"), Port: 4321}})
	if got := ClientIP(ctx); got != "192.0.2.1" {
		t.Errorf("peer: %q", got)
	}

	if got := ClientIP(base); got != "unknown" {
		t.Errorf("bare context: %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("user-agent", "grpc-go/1.78.0"))
	if got := UserAgent(ctx); got != "grpc-go/1.78.0" {
		t.Errorf("UserAgent = %q", got)
	}
	if got := UserAgent(context.Background()); got != "" {
		t.Errorf("bare context: %q", got)
	}
}
