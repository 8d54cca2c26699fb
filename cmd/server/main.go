package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	accountrepo "reportdesk/backend/internal/account/repository"
	"reportdesk/backend/internal/audit"
	auditrepo "reportdesk/backend/internal/audit/repository"
	authservice "reportdesk/backend/internal/auth/service"
	"reportdesk/backend/internal/authz"
	"reportdesk/backend/internal/config"
	"reportdesk/backend/internal/db"
	"reportdesk/backend/internal/security"
	"reportdesk/backend/internal/server"
	"reportdesk/backend/internal/server/interceptors"
	sessionrepo "reportdesk/backend/internal/session/repository"
	"reportdesk/backend/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "reportdesk-auth", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	var (
		accounts  authservice.AccountRepo
		sessions  sessionStore
		auditRepo auditrepo.Repository
	)
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL is empty; using in-memory stores (data is lost on restart)")
		accounts = accountrepo.NewMemoryRepository()
		sessions = sessionrepo.NewMemoryRepository()
		auditRepo = auditrepo.NewMemoryRepository()
	} else {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
		accounts = accountrepo.NewPostgresRepository(conn)
		sessions = sessionrepo.NewPostgresRepository(conn)
		auditRepo = auditrepo.NewPostgresRepository(conn)
	}

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())

	evaluator, err := authz.NewEvaluator()
	if err != nil {
		log.Fatalf("authz: %v", err)
	}

	auditLogger := audit.NewLogger(auditRepo, interceptors.ClientIP, providers.LoggerProvider)

	authSvc := authservice.NewAuthService(
		accounts,
		sessions,
		security.NewHasher(cfg.BcryptCost),
		tokens,
		cfg.RefreshTTL(),
		cfg.MaxFailedLogins,
		cfg.LockoutDuration(),
		auditLogger,
	)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	s, healthSrv := server.New(server.Deps{
		Tokens:    tokens,
		Evaluator: evaluator,
		Audit:     auditLogger,
		Auth:      authSvc,
	})

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepExpiredSessions(sweepCtx, sessions)

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	stopSweep()
	s.GracefulStop()
	log.Println("gRPC server stopped")
}

// sessionStore is what main needs from a session repository: the auth
// service operations plus the sweep.
type sessionStore interface {
	authservice.SessionRepo
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// sweepExpiredSessions deletes long-expired session rows once an hour.
// Expiry is enforced lazily at refresh time; this only keeps the table from
// growing without bound.
func sweepExpiredSessions(ctx context.Context, sessions sessionStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-24 * time.Hour)
			n, err := sessions.DeleteExpiredBefore(ctx, cutoff)
			if err != nil {
				log.Printf("session sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("session sweep: removed %d expired sessions", n)
			}
		}
	}
}
