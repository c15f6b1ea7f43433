package httpx

import (
	"net/http"
	"slices"
	"strings"

	"github.com/paperbark/journal/pkg/jwtx"
	"github.com/paperbark/journal/pkg/slogx"
)

// AccessTokenCookie is the HTTP-only cookie carrying the access token for
// browser clients that cannot set an Authorization header.
const AccessTokenCookie = "access_token"

// TokenFromRequest extracts the access token from a request. An
// Authorization: Bearer header takes priority; the access-token cookie is the
// fallback. Returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// ResolveIdentity verifies the request's access token against the access
// signing context. Any failure, including a missing token, yields an
// anonymous result rather than an error; callers that require authentication
// reject anonymous identities explicitly.
func ResolveIdentity(r *http.Request, access jwtx.SigningContext) (Identity, bool) {
	raw := TokenFromRequest(r)
	if raw == "" {
		return Identity{}, false
	}

	claims, err := access.Verify(raw)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("access token rejected", "err", err)
		return Identity{}, false
	}

	return Identity{
		UserID:   claims.UserID(),
		Username: claims.Username,
		Role:     claims.Role,
	}, true
}

// IdentityMiddleware resolves the request identity once and injects it into
// the request context. It never rejects: anonymous requests continue so that
// public endpoints and the query-surface host share one resolution path.
func IdentityMiddleware(access jwtx.SigningContext) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := ResolveIdentity(r, access); ok {
				r = r.WithContext(ContextWithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests with 401. It assumes
// IdentityMiddleware already ran.
func RequireAuth() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFromContext(r.Context()); !ok {
				writeUnauthenticated(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects anonymous requests with 401 and authenticated requests
// whose role is not in the allowed set with 403. Membership is exact, no role
// implies another unless listed.
func RequireRole(allowed ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeUnauthenticated(w)
				return
			}
			if !slices.Contains(allowed, id.Role) {
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"error":             "forbidden",
					"error_description": "insufficient permissions",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "unauthenticated",
		"error_description": "authentication required",
	})
}
