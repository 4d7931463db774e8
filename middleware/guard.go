package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goRevoke "github.com/MrEthical07/goRevoke"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the guard's verification result for the
// current request, when one exists.
func AuthResultFromContext(ctx context.Context) (*goRevoke.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*goRevoke.AuthResult)
	return res, ok
}

// Guard returns middleware that authenticates the bearer token on every
// request: signature, expiry, and the three revocation checks. Any failure —
// missing header, malformed token, revoked credentials, store outage — answers
// the same 401 so nothing about the rejection reason leaks.
func Guard(engine *goRevoke.Engine) func(http.Handler) http.Handler {
	return guard(engine, "")
}

// RequireRole returns a [Guard] variant that additionally requires the
// verified claims to carry the given role. Authentication failures answer 401;
// an authenticated caller lacking the role answers 403.
func RequireRole(engine *goRevoke.Engine, role string) func(http.Handler) http.Handler {
	return guard(engine, role)
}

// RequireAdmin returns middleware enforcing the administrative role.
func RequireAdmin(engine *goRevoke.Engine) func(http.Handler) http.Handler {
	return RequireRole(engine, goRevoke.RoleAdmin)
}

func guard(engine *goRevoke.Engine, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			var (
				res *goRevoke.AuthResult
				err error
			)
			if role == "" {
				res, err = engine.Authenticate(r.Context(), token)
			} else {
				res, err = engine.AuthenticateRole(r.Context(), token, role)
			}
			if err != nil {
				if errors.Is(err, goRevoke.ErrForbidden) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
