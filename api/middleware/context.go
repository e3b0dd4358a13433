package middleware

import (
	"context"

	"github.com/ishos/storefront/internal/session"
	pkgerrors "github.com/ishos/storefront/pkg/errors"
)

type contextKey string

const ctxSession contextKey = "session"

// SessionFromContext returns the session resolved by the Session middleware.
func SessionFromContext(ctx context.Context) *session.Session {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(*session.Session); ok {
		return v
	}
	return nil
}

func SessionIDFromContext(ctx context.Context) string {
	if s := SessionFromContext(ctx); s != nil {
		return s.ID
	}
	return ""
}

// WithSession injects the session into the context for downstream handlers.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, s)
}

// RequireSession is SessionFromContext for handlers mounted behind the
// Session middleware.
func RequireSession(ctx context.Context) (*session.Session, error) {
	if s := SessionFromContext(ctx); s != nil {
		return s, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "session missing from request context")
}
