package middleware

import (
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/response"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/rs/zerolog"
)

// TokenFromRequest returns the session token from the cookie, or from an
// "Authorization: Bearer" header when no cookie is present.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticate attaches the caller's identity to the request context when a valid,
// unrevoked token is presented. Requests without one continue anonymously.
func Authenticate(sessions *session.Manager, revoker session.Revoker, cookieName string, logger zerolog.Logger) func(http.Handler) http.Handler {
	if revoker == nil {
		revoker = session.NopRevoker{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := sessions.Parse(token)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("ignoring invalid session token")
				next.ServeHTTP(w, r)
				return
			}

			revoked, err := revoker.IsRevoked(r.Context(), id.TokenID)
			if err != nil {
				// Revocation cannot be confirmed, so the token is not trusted.
				logger.Warn().Err(err).Msg("failed to check token revocation")
				next.ServeHTTP(w, r)
				return
			}
			if revoked {
				logger.Debug().Str("user_id", id.UserID.String()).Msg("revoked session token")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireLogin rejects requests without an identity.
func RequireLogin(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := session.FromContext(r.Context()); !ok {
				response.Fail(w, r, model.ErrUnauthenticated, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireProfile rejects requests unless the gate reports a logged-in user with a
// complete profile.
func RequireProfile(gate service.Gatekeeper, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := session.FromContext(r.Context())
			if !ok {
				response.Fail(w, r, model.ErrUnauthenticated, logger)
				return
			}

			access, err := gate.Gate(r.Context(), id.UserID)
			if err != nil {
				response.Fail(w, r, err, logger)
				return
			}
			if err := access.Err(); err != nil {
				response.Fail(w, r, err, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
