package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ishos/storefront/api/responses"
	"github.com/ishos/storefront/internal/session"
	"github.com/ishos/storefront/pkg/config"
	pkgerrors "github.com/ishos/storefront/pkg/errors"
	"github.com/ishos/storefront/pkg/logger"
)

// SessionHeader carries the browser session id for clients that do not
// keep cookies.
const SessionHeader = "X-Session-Id"

type sessionResolver interface {
	Get(context.Context, string) (*session.Session, error)
}

// Session resolves the caller's session from the X-Session-Id header or the
// session cookie, minting a new id when neither is present.
func Session(cfg config.SessionConfig, sessions sessionResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id := strings.TrimSpace(r.Header.Get(SessionHeader))
			if id == "" {
				if c, err := r.Cookie(cfg.CookieName); err == nil {
					id = strings.TrimSpace(c.Value)
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			sess, err := sessions.Get(ctx, id)
			if err != nil {
				responses.WriteError(ctx, logg, w, mapSessionError(err))
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(SessionHeader, sess.ID)

			ctx = WithSession(ctx, sess)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sess.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrInvalidID):
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid session id")
	case errors.Is(err, session.ErrClosed):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "server shutting down")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve session")
	}
}
