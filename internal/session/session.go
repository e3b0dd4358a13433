package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ishos/storefront/internal/cart"
	"github.com/ishos/storefront/internal/filters"
	"github.com/ishos/storefront/internal/toast"
)

// Session is the per-visitor state: cart, menu filters and toasts.
// Operations that touch more than one store go through Do so they run as a
// single step.
type Session struct {
	ID      string
	Cart    *cart.Engine
	Filters *filters.Store
	Toasts  *toast.Queue

	mu       sync.Mutex
	lastSeen atomic.Int64
}

func newSession(id string, engine *cart.Engine, now time.Time) *Session {
	s := &Session{
		ID:      id,
		Cart:    engine,
		Filters: filters.NewStore(),
		Toasts:  toast.NewQueue(),
	}
	s.touch(now)
	return s
}

// Do runs fn while holding the session lock. Calls for one session are
// serialized; different sessions never block each other.
func (s *Session) Do(fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// LastSeen is the last time the session was handed out by its Manager.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}
