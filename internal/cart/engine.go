package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/pkg/logger"
	"github.com/ishos/storefront/pkg/metrics"
)

const itemIDPrefix = "cart_"

// ErrInvalidQuantity is returned by AddItem for quantities below one.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Options wires an Engine. Everything except Storage is optional.
type Options struct {
	Storage Storage
	Logger  *logger.Logger
	Metrics *metrics.CartMetrics
	Clock   func() time.Time
	NewID   func() string
}

// Engine owns one session's cart. Every mutation recomputes the totals and
// writes the whole cart through to storage. Storage failures are logged and
// counted but never surface to callers; the in-memory cart stays
// authoritative.
type Engine struct {
	mu      sync.RWMutex
	cart    Cart
	storage Storage
	logg    *logger.Logger
	metrics *metrics.CartMetrics
	now     func() time.Time
	newID   func() string
}

// Open builds an Engine and rehydrates it from storage. An absent or
// unreadable stored cart yields an empty one.
func Open(ctx context.Context, opts Options) *Engine {
	e := &Engine{
		storage: opts.Storage,
		logg:    opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Clock,
		newID:   opts.NewID,
	}
	if e.storage == nil {
		e.storage = nopStorage{}
	}
	if e.logg == nil {
		e.logg = logger.Nop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = newItemID
	}

	e.cart = emptyCart(e.nowMillis())
	stored, found, err := e.storage.Load(ctx)
	switch {
	case err != nil:
		e.storageFailed(ctx, "load", err)
	case found:
		e.cart = stored
	}
	return e
}

func newItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return itemIDPrefix + id.String()
}

func (e *Engine) nowMillis() int64 {
	return e.now().UnixMilli()
}

// AddItem appends a new line for product. Lines are never merged, even
// when product, size, flavor and notes all match an existing line.
func (e *Engine) AddItem(ctx context.Context, product catalog.Product, quantity int, opts AddOptions) (Item, error) {
	if quantity < 1 {
		return Item{}, ErrInvalidQuantity
	}

	item := Item{
		ID:             e.newID(),
		ProductID:      product.ID,
		Product:        product.Clone(),
		SelectedFlavor: opts.Flavor,
		Notes:          opts.Notes,
		UnitPrice:      resolveUnitPrice(product, opts.Size),
	}
	if opts.Size != nil {
		size := *opts.Size
		item.SelectedSize = &size
	}
	item.setQuantity(quantity)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart.Items = append(e.cart.Items, item)
	e.commit(ctx, "add")
	return item.clone(), nil
}

// UpdateQuantity sets the quantity of itemID. A quantity of zero or less
// removes the line. It reports whether the line existed; unknown ids leave
// the cart and its stored copy untouched.
func (e *Engine) UpdateQuantity(ctx context.Context, itemID string, quantity int) bool {
	if quantity <= 0 {
		return e.RemoveItem(ctx, itemID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.cart.indexOf(itemID)
	if idx < 0 {
		return false
	}
	e.cart.Items[idx].setQuantity(quantity)
	e.commit(ctx, "update")
	return true
}

// RemoveItem drops itemID from the cart and reports whether it was there.
func (e *Engine) RemoveItem(ctx context.Context, itemID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.cart.indexOf(itemID)
	if idx < 0 {
		return false
	}
	e.cart.Items = append(e.cart.Items[:idx:idx], e.cart.Items[idx+1:]...)
	e.commit(ctx, "remove")
	return true
}

// Clear empties the cart and deletes the stored copy.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart = emptyCart(e.nowMillis())
	e.metrics.IncOperation("clear")
	if err := e.storage.Delete(ctx); err != nil {
		e.storageFailed(ctx, "delete", err)
	}
}

// Flush writes the current cart through once more and returns the storage
// error instead of swallowing it. An empty cart is not written.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.cart.Items) == 0 {
		return nil
	}
	return e.storage.Save(ctx, e.cart.Clone())
}

// commit recomputes totals, stamps the cart and writes it through.
// Callers hold e.mu so stored snapshots keep mutation order.
func (e *Engine) commit(ctx context.Context, op string) {
	e.cart.recompute()
	e.cart.LastUpdated = e.nowMillis()
	e.metrics.IncOperation(op)
	if err := e.storage.Save(ctx, e.cart.Clone()); err != nil {
		e.storageFailed(ctx, "save", err)
	}
}

func (e *Engine) storageFailed(ctx context.Context, op string, err error) {
	e.metrics.IncStorageFailure(op)
	ctx = e.logg.WithFields(ctx, map[string]any{"storage_op": op, "error": err.Error()})
	e.logg.Warn(ctx, "cart storage failed")
}

// Snapshot returns a deep copy of the cart.
func (e *Engine) Snapshot() Cart {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cart.Clone()
}

func (e *Engine) Items() []Item {
	return e.Snapshot().Items
}

// Item returns the line with the given id.
func (e *Engine) Item(itemID string) (Item, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	idx := e.cart.indexOf(itemID)
	if idx < 0 {
		return Item{}, false
	}
	return e.cart.Items[idx].clone(), true
}

func (e *Engine) Total() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cart.Total
}

func (e *Engine) ItemCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cart.ItemCount
}

func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cart.Items) == 0
}
