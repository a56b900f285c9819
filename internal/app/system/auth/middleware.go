// internal/app/system/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/flocklabs/flockhub/internal/app/system/httpjson"
	"github.com/flocklabs/flockhub/internal/domain/models"
)

// CookieName is the cookie the token middleware falls back to when no
// Authorization header is present. The login handler sets it; logout
// clears it.
const CookieName = "flockhub_token"

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// UserLoader resolves a token subject (user id hex) to a user record.
// The user store satisfies this; the token middleware fetches fresh on
// every request so deactivated accounts lose access immediately.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// CurrentUser returns the authenticated user injected by Authenticator,
// with a found flag.
func CurrentUser(r *http.Request) (models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(models.User)
	return u, ok
}

// WithTestUser returns a request carrying the given user in context, for
// handler tests that bypass token verification.
func WithTestUser(r *http.Request, u models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// Authenticator extracts a bearer token from the Authorization header,
// falling back to the CookieName cookie, verifies it, and loads the user
// into the request context. Requests without a usable token pass through
// anonymous; RequireSignedIn decides whether that is acceptable.
func Authenticator(tm *TokenManager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(CookieName); err == nil {
					token = c.Value
				}
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sub, err := tm.VerifyAccessToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			u, err := users.GetByID(r.Context(), sub)
			if err != nil || !u.IsActive {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), currentUserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSignedIn ensures there is a user in context (set by Authenticator).
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httpjson.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin ensures the user in context has the admin flag.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			httpjson.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if !u.IsAdmin {
			httpjson.Error(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
