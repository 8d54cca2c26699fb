// Package server assembles the gRPC server: interceptor chain, health
// service, and telemetry stats handler. The transport services themselves are
// registered by the host through Deps.Register; this core contributes the
// authentication, authorization, and audit edges they run behind.
package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	authservice "reportdesk/backend/internal/auth/service"
	"reportdesk/backend/internal/authz"
	"reportdesk/backend/internal/security"
	"reportdesk/backend/internal/server/interceptors"
)

// PublicMethods are the full method names reachable without a Bearer token.
// Login and Refresh authenticate by credential or refresh secret instead;
// health checks carry no identity at all.
var PublicMethods = map[string]bool{
	"/reportdesk.auth.v1.AuthService/Login":   true,
	"/reportdesk.auth.v1.AuthService/Refresh": true,
	"/reportdesk.auth.v1.AuthService/Logout":  true,
	"/grpc.health.v1.Health/Check":            true,
	"/grpc.health.v1.Health/Watch":            true,
}

// PolicyActions maps full method names to the RBAC actions the policy
// evaluator decides on. Methods absent from the map are not policy-gated
// beyond authentication.
var PolicyActions = map[string]string{
	"/reportdesk.auth.v1.AccountService/Register":     "accounts.register",
	"/reportdesk.auth.v1.AccountService/ListAccounts": "accounts.list",
	"/reportdesk.auth.v1.AccountService/SetActive":    "accounts.set_active",
	"/reportdesk.auth.v1.AccountService/SetRole":      "accounts.set_role",
}

// SkipAuditMethods are not written to the audit log.
var SkipAuditMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/Watch": true,
}

// Deps holds the dependencies the server is assembled from.
type Deps struct {
	// Tokens validates Bearer access tokens for protected RPCs.
	Tokens *security.TokenProvider
	// Evaluator decides RBAC for the methods in PolicyActions. If nil,
	// those methods are only authentication-gated.
	Evaluator *authz.Evaluator
	// Audit receives one entry per authenticated RPC. If nil, no RPCs are
	// audited.
	Audit interceptors.Recorder
	// Auth is the auth service handed to Register so the host's transport
	// bindings can serve it.
	Auth *authservice.AuthService
	// Register attaches the transport services to the server. The health
	// service is always registered; Register may be nil.
	Register func(grpc.ServiceRegistrar, *authservice.AuthService)
}

// New builds the gRPC server with the auth, authz, and audit interceptors
// chained in that order, the OTel stats handler, and the standard health
// service. The returned health server starts in SERVING state.
func New(deps Deps) (*grpc.Server, *health.Server) {
	chain := []grpc.UnaryServerInterceptor{
		interceptors.AuthUnary(deps.Tokens, PublicMethods),
	}
	if deps.Evaluator != nil {
		chain = append(chain, interceptors.AuthzUnary(deps.Evaluator, PolicyActions))
	}
	chain = append(chain, interceptors.AuditUnary(deps.Audit, SkipAuditMethods))

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(chain...),
	)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(s, healthSrv)

	if deps.Register != nil {
		deps.Register(s, deps.Auth)
	}
	return s, healthSrv
}
