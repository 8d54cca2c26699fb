// seed bootstraps the initial admin account for a fresh deployment.
// Idempotent: does nothing if the admin username already exists.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	accountdomain "reportdesk/backend/internal/account/domain"
	accountrepo "reportdesk/backend/internal/account/repository"
	authservice "reportdesk/backend/internal/auth/service"
	"reportdesk/backend/internal/config"
	"reportdesk/backend/internal/db"
	"reportdesk/backend/internal/security"
	sessionrepo "reportdesk/backend/internal/session/repository"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@example.com"
)

func main() {
	password := flag.String("password", "", "Initial admin password (required)")
	flag.Parse()

	if *password == "" {
		log.Fatal("usage: seed -password <initial admin password>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	accounts := accountrepo.NewPostgresRepository(conn)
	svc := authservice.NewAuthService(
		accounts,
		sessionrepo.NewPostgresRepository(conn),
		security.NewHasher(cfg.BcryptCost),
		nil, // no tokens issued here
		cfg.RefreshTTL(),
		cfg.MaxFailedLogins,
		cfg.LockoutDuration(),
		nil,
	)

	ctx := context.Background()
	view, err := svc.Register(ctx, adminUsername, adminEmail, *password, accountdomain.RoleAdmin, "")
	if err != nil {
		if errors.Is(err, authservice.ErrUsernameTaken) {
			log.Printf("seed: admin account already exists, nothing to do")
			os.Exit(0)
		}
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seed: created admin account %s", view.ID)
}
