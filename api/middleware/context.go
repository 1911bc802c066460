package middleware

import (
	"context"

	"github.com/angelmondragon/foodorder-backend/internal/roles"
	"github.com/google/uuid"
)

type contextKey string

const (
	ctxIdentity contextKey = "identity"
	ctxAccessID contextKey = "access_id"
)

// WithIdentity stores the authenticated caller on ctx.
func WithIdentity(ctx context.Context, identity *roles.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

// IdentityFromContext returns the caller set by Auth, or nil.
func IdentityFromContext(ctx context.Context) *roles.Identity {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxIdentity).(*roles.Identity); ok {
		return v
	}
	return nil
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if identity := IdentityFromContext(ctx); identity != nil {
		return identity.UserID
	}
	return uuid.Nil
}

// RoleFromContext is Unresolved for anonymous requests.
func RoleFromContext(ctx context.Context) roles.Role {
	return IdentityFromContext(ctx).Role()
}

// StoreIDFromContext returns the store an owner manages.
func StoreIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	identity := IdentityFromContext(ctx)
	if identity == nil || identity.StoreID == nil {
		return uuid.Nil, false
	}
	return *identity.StoreID, true
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}
