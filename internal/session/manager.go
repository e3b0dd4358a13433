package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/ishos/storefront/internal/cart"
	"github.com/ishos/storefront/pkg/logger"
	"github.com/ishos/storefront/pkg/metrics"
)

const maxIDLength = 128

var (
	ErrInvalidID = errors.New("session id is required")
	ErrClosed    = errors.New("session manager closed")
)

// Options configure a Manager.
type Options struct {
	Carts   cart.Provider
	TTL     time.Duration
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	Clock   func() time.Time
}

// Manager keeps live sessions in memory and opens new ones on demand,
// rehydrating their carts from the cart provider.
type Manager struct {
	carts   cart.Provider
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Carts == nil {
		return nil, fmt.Errorf("cart provider required")
	}
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	m := &Manager{
		carts:    opts.Carts,
		ttl:      opts.TTL,
		logg:     opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Clock,
		sessions: map[string]*Session{},
	}
	if m.logg == nil {
		m.logg = logger.Nop()
	}
	if m.metrics == nil {
		m.metrics = metrics.Nop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// Get returns the live session for id, opening it if needed. Concurrent
// first requests for the same id share one open.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxIDLength {
		return nil, ErrInvalidID
	}
	if s, ok, err := m.lookup(id); err != nil || ok {
		return s, err
	}

	v, err, _ := m.group.Do(id, func() (any, error) {
		if s, ok, err := m.lookup(id); err != nil || ok {
			return s, err
		}
		// The cart load must not be cut short by whichever request won the race.
		engine := cart.Open(context.WithoutCancel(ctx), cart.Options{
			Storage: m.carts.ForSession(id),
			Logger:  m.logg,
			Metrics: m.metrics.Cart,
			Clock:   m.now,
		})
		s := newSession(id, engine, m.now())

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			return nil, ErrClosed
		}
		m.sessions[id] = s
		m.metrics.Sessions.SetActive(len(m.sessions))
		m.logg.Debug(m.logg.WithSessionID(ctx, id), "session opened")
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) lookup(id string) (*Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	s, ok := m.sessions[id]
	if ok {
		s.touch(m.now())
	}
	return s, ok, nil
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were dropped. Their carts stay in storage and come back on the next Get.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var evicted []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			evicted = append(evicted, s)
			delete(m.sessions, id)
		}
	}
	active := len(m.sessions)
	m.mu.Unlock()

	for _, s := range evicted {
		s.Toasts.Clear()
	}
	m.metrics.Sessions.SetActive(active)
	m.metrics.Sessions.AddEvicted(len(evicted))
	if len(evicted) > 0 {
		m.logg.Info(m.logg.WithFields(ctx, map[string]any{"evicted": len(evicted), "active": active}), "idle sessions evicted")
	}
	return len(evicted)
}

// Close flushes every cart to storage, stops pending toast timers and
// rejects further Gets. Flush failures are combined into the returned
// error.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	var err error
	for id, s := range sessions {
		s.Toasts.Clear()
		if flushErr := s.Cart.Flush(ctx); flushErr != nil {
			err = multierr.Append(err, fmt.Errorf("flush cart for session %s: %w", id, flushErr))
		}
	}
	m.metrics.Sessions.SetActive(0)
	return err
}
