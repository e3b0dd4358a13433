package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/ishos/storefront/internal/cart"
	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/pkg/enums"
	"github.com/ishos/storefront/pkg/metrics"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type countingProvider struct {
	inner cart.Provider
	opens atomic.Int32
}

func (p *countingProvider) ForSession(id string) cart.Storage {
	p.opens.Add(1)
	return p.inner.ForSession(id)
}

func product() catalog.Product {
	return catalog.Product{ID: "p1", Name: "Pistacho", Price: decimal.RequireFromString("4.00"), Category: enums.CategoryGelatos, Available: true}
}

func newTestManager(t *testing.T, provider cart.Provider) (*Manager, *clock) {
	t.Helper()
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	m, err := NewManager(Options{Carts: provider, TTL: time.Hour, Clock: c.now})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, c
}

func TestNewManagerRequiresProviderAndTTL(t *testing.T) {
	if _, err := NewManager(Options{TTL: time.Hour}); err == nil {
		t.Fatal("expected error without cart provider")
	}
	if _, err := NewManager(Options{Carts: cart.NewMemoryProvider()}); err == nil {
		t.Fatal("expected error without ttl")
	}
}

func TestGetReturnsSameSession(t *testing.T) {
	m, _ := newTestManager(t, cart.NewMemoryProvider())
	ctx := context.Background()

	a, err := m.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, err := m.Get(ctx, " abc ")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a != b {
		t.Fatal("expected the same session for the same id")
	}
	other, _ := m.Get(ctx, "xyz")
	if other == a {
		t.Fatal("different ids must not share a session")
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 live sessions, got %d", m.Len())
	}
}

func TestGetRejectsInvalidIDs(t *testing.T) {
	m, _ := newTestManager(t, cart.NewMemoryProvider())
	for _, id := range []string{"", "   ", string(make([]byte, maxIDLength+1))} {
		if _, err := m.Get(context.Background(), id); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID for %q, got %v", id, err)
		}
	}
}

func TestConcurrentFirstGetOpensOnce(t *testing.T) {
	provider := &countingProvider{inner: cart.NewMemoryProvider()}
	m, _ := newTestManager(t, provider)

	var wg sync.WaitGroup
	results := make([]*Session, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Get(context.Background(), "shared")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			results[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range results[1:] {
		if s != results[0] {
			t.Fatal("all callers must receive the same session")
		}
	}
	if got := provider.opens.Load(); got != 1 {
		t.Fatalf("expected one cart open, got %d", got)
	}
}

func TestSweepEvictsIdleSessionsAndKeepsCarts(t *testing.T) {
	provider := cart.NewMemoryProvider()
	reg := prometheus.NewRegistry()
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	m, err := NewManager(Options{Carts: provider, TTL: time.Hour, Clock: c.now, Metrics: metrics.New(reg)})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ctx := context.Background()

	idle, _ := m.Get(ctx, "idle")
	if _, err := idle.Cart.AddItem(ctx, product(), 2, cart.AddOptions{}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	c.advance(45 * time.Minute)
	_, _ = m.Get(ctx, "busy")
	c.advance(30 * time.Minute)

	if n := m.Sweep(ctx); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if m.Len() != 1 {
		t.Fatalf("expected busy session to survive, live=%d", m.Len())
	}

	reopened, err := m.Get(ctx, "idle")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reopened == idle {
		t.Fatal("expected a fresh session after eviction")
	}
	if reopened.Cart.ItemCount() != 2 {
		t.Fatalf("cart should be rehydrated from storage, got %d items", reopened.Cart.ItemCount())
	}
}

func TestDoSerializesOperations(t *testing.T) {
	m, _ := newTestManager(t, cart.NewMemoryProvider())
	s, _ := m.Get(context.Background(), "abc")

	var inside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(func(*Session) error {
				if inside.Add(1) != 1 {
					t.Error("operations overlapped")
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	want := errors.New("boom")
	if err := s.Do(func(*Session) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected Do to return fn's error, got %v", err)
	}
}

type failingProvider struct{}

func (failingProvider) ForSession(string) cart.Storage { return failingStorage{} }

type failingStorage struct{}

func (failingStorage) Load(context.Context) (cart.Cart, bool, error) { return cart.Cart{}, false, nil }
func (failingStorage) Save(context.Context, cart.Cart) error         { return errors.New("down") }
func (failingStorage) Delete(context.Context) error                  { return errors.New("down") }

func TestCloseFlushesAndRejectsFurtherGets(t *testing.T) {
	m, _ := newTestManager(t, failingProvider{})
	ctx := context.Background()

	a, _ := m.Get(ctx, "a")
	b, _ := m.Get(ctx, "b")
	_, _ = m.Get(ctx, "empty")
	_, _ = a.Cart.AddItem(ctx, product(), 1, cart.AddOptions{})
	_, _ = b.Cart.AddItem(ctx, product(), 1, cart.AddOptions{})
	b.Toasts.Show("hola", enums.ToastInfo, time.Hour)

	err := m.Close(ctx)
	if err == nil {
		t.Fatal("expected flush errors to be reported")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 flush errors, got %d: %v", got, err)
	}
	if len(b.Toasts.List()) != 0 {
		t.Fatal("expected toasts to be cleared on close")
	}
	if _, err := m.Get(ctx, "a"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := m.Close(ctx); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
}
