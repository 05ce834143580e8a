package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"smartqueue/backend/internal/auth"
)

const authorizationMetadataKey = "authorization"

type tokenValidator interface {
	Validate(token string) (auth.Claims, error)
}

// staffMethods are the RPCs reserved for the employee role.
var staffMethods = map[string]struct{}{
	fullMethod("ServeNext"):   {},
	fullMethod("ListAll"):     {},
	fullMethod("SetDuration"): {},
	fullMethod("SetHours"):    {},
}

type staffSubjectKey struct{}

// StaffSubject returns the authenticated staff subject set by StaffAuthInterceptor.
func StaffSubject(ctx context.Context) string {
	s, _ := ctx.Value(staffSubjectKey{}).(string)
	return s
}

// WithBearerToken attaches a staff token to an outgoing call.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, authorizationMetadataKey, "Bearer "+token)
}

// StaffAuthInterceptor requires an employee bearer token on staff RPCs.
// Customer RPCs pass through untouched.
func StaffAuthInterceptor(tokens tokenValidator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := staffMethods[info.FullMethod]; !ok {
			return handler(ctx, req)
		}
		if tokens == nil {
			return nil, status.Error(codes.Unauthenticated, auth.ErrLoginDisabled.Error())
		}

		token := bearerToken(ctx)
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		claims, err := tokens.Validate(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		if claims.Role != auth.RoleEmployee {
			return nil, status.Error(codes.PermissionDenied, "access denied")
		}
		return handler(context.WithValue(ctx, staffSubjectKey{}, claims.Subject), req)
	}
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get(authorizationMetadataKey) {
		if token, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}
