package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/ishos/storefront/api/responses"
	pkgerrors "github.com/ishos/storefront/pkg/errors"
	"github.com/ishos/storefront/pkg/logger"
	"github.com/ishos/storefront/pkg/security"
)

// StaffOnly admits requests carrying "Authorization: Bearer <token>". The
// configured token is either the secret itself or its Argon2id hash. With
// no token configured every request is refused.
func StaffOnly(token string, logg *logger.Logger) func(http.Handler) http.Handler {
	configured := strings.TrimSpace(token)
	match := func(got string) bool {
		return subtle.ConstantTimeCompare([]byte(got), []byte(configured)) == 1
	}
	if security.IsHash(configured) {
		match = func(got string) bool {
			ok, err := security.VerifyToken(got, configured)
			return err == nil && ok
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if configured == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "staff api disabled"))
				return
			}
			scheme, got, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			got = strings.TrimSpace(got)
			if !ok || !strings.EqualFold(scheme, "Bearer") || got == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token"))
				return
			}
			if !match(got) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid staff token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
