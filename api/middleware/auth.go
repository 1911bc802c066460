package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/foodorder-backend/api/responses"
	"github.com/angelmondragon/foodorder-backend/internal/roles"
	pkgAuth "github.com/angelmondragon/foodorder-backend/pkg/auth"
	"github.com/angelmondragon/foodorder-backend/pkg/auth/session"
	"github.com/angelmondragon/foodorder-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
	"github.com/angelmondragon/foodorder-backend/pkg/logger"
	"github.com/google/uuid"
)

// IdentityResolver confirms the caller's account still exists. The identity
// used for the request always comes from the token claims, so it stays fixed
// for the lifetime of the session.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*roles.Identity, error)
}

// Auth validates a bearer token and seeds the request context with the
// identity carried by its claims. With a nil resolver deleted accounts are not
// detected until their session ends.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, resolver IdentityResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			identity := identityFromClaims(claims)
			if resolver != nil {
				if _, err := resolver.Resolve(r.Context(), claims.UserID); err != nil {
					if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
						err = pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
					}
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}

			ctx := WithIdentity(r.Context(), identity)
			ctx = context.WithValue(ctx, ctxAccessID, claims.ID)

			if logg != nil {
				fields := map[string]any{
					"user_id":    identity.UserID.String(),
					"actor_role": string(identity.Role()),
				}
				if identity.StoreID != nil {
					fields["store_id"] = identity.StoreID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}

func identityFromClaims(claims *pkgAuth.AccessTokenClaims) *roles.Identity {
	identity := &roles.Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Level:  claims.Level,
	}
	if identity.Role() == roles.RoleOwner {
		identity.StoreID = claims.StoreID
	}
	return identity
}
