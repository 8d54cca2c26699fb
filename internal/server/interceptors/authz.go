package interceptors

import (
	"context"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"reportdesk/backend/internal/authz"
)

// AuthzUnary returns a unary server interceptor that asks the policy
// evaluator whether the authenticated caller may invoke the RPC. actions maps
// full method names to policy action strings; methods not in the map are not
// policy-gated. Evaluation errors deny.
func AuthzUnary(evaluator *authz.Evaluator, actions map[string]string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		action, gated := actions[info.FullMethod]
		if !gated {
			return handler(ctx, req)
		}
		accountID, ok := GetAccountID(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}
		role, _ := GetRole(ctx)
		allowed, err := evaluator.Allow(ctx, authz.Subject{ID: accountID, Role: role}, action, nil)
		if err != nil {
			log.Printf("authz: evaluation failed for %s: %v", info.FullMethod, err)
			return nil, status.Error(codes.PermissionDenied, "permission denied")
		}
		if !allowed {
			return nil, status.Error(codes.PermissionDenied, "permission denied")
		}
		return handler(ctx, req)
	}
}
