package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pasofino/tienda-backend/api/responses"
	pkgauth "github.com/pasofino/tienda-backend/pkg/auth"
	"github.com/pasofino/tienda-backend/pkg/config"
	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/logger"
	"github.com/pasofino/tienda-backend/pkg/types"
)

const sessionCookieName = "sid"

// Identity resolves the cart owner for every request. A valid bearer token
// wins; otherwise the anonymous session cookie is used, minting one on first
// contact. An invalid token is rejected rather than downgraded to a session.
func Identity(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := bearerToken(r); token != "" {
				claims, err := pkgauth.ParseAccessToken(cfg, token)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}
				ctx = WithIdentity(ctx, types.CustomerIdentity(claims.CustomerID))
				if logg != nil {
					ctx = logg.WithCustomerID(ctx, claims.CustomerID.String())
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			sessionKey := sessionKeyFromCookie(r)
			if sessionKey == "" {
				sessionKey = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sessionKey,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx = WithIdentity(ctx, types.SessionIdentity(sessionKey))
			if logg != nil {
				ctx = logg.WithSessionKey(ctx, sessionKey)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCustomer guards endpoints that only make sense for a logged-in
// customer.
func RequireCustomer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if !identity.IsCustomer() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

func sessionKeyFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie == nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
