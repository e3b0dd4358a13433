package cart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/pkg/enums"
	"github.com/ishos/storefront/pkg/logger"
	"github.com/ishos/storefront/pkg/metrics"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func testProduct(id, price string) catalog.Product {
	return catalog.Product{
		ID:        id,
		Name:      "Gelato " + id,
		Price:     dec(price),
		Category:  enums.CategoryGelatos,
		Available: true,
		Sizes:     []catalog.ProductSize{{Name: "Large", Price: dec("7.50")}},
		Flavors:   []string{"Vainilla"},
	}
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func newTestEngine(t *testing.T, storage Storage) (*Engine, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.UnixMilli(1_700_000_000_000)}
	seq := 0
	e := Open(context.Background(), Options{
		Storage: storage,
		Clock:   clock.now,
		NewID: func() string {
			seq++
			return fmt.Sprintf("cart_test_%d", seq)
		},
	})
	return e, clock
}

func TestAddItemWithSizeResolvesSizePrice(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	p := testProduct("p1", "5.00")

	item, err := e.AddItem(context.Background(), p, 3, AddOptions{Size: &p.Sizes[0]})
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if !item.UnitPrice.Equal(dec("7.50")) {
		t.Fatalf("expected unit price 7.50, got %s", item.UnitPrice)
	}
	if !item.Subtotal.Equal(dec("22.50")) {
		t.Fatalf("expected subtotal 22.50, got %s", item.Subtotal)
	}
	if !e.Total().Equal(dec("22.50")) || e.ItemCount() != 3 {
		t.Fatalf("unexpected totals total=%s count=%d", e.Total(), e.ItemCount())
	}
	if item.SelectedSize == nil || item.SelectedSize.Name != "Large" {
		t.Fatalf("expected selected size to be recorded, got %+v", item.SelectedSize)
	}
}

func TestAddItemNeverMergesLines(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	p := testProduct("p1", "4.00")
	ctx := context.Background()

	a, _ := e.AddItem(ctx, p, 1, AddOptions{})
	b, _ := e.AddItem(ctx, p, 2, AddOptions{})

	if a.ID == b.ID {
		t.Fatal("expected distinct item ids")
	}
	if a.ID == p.ID || b.ID == p.ID {
		t.Fatal("item id must differ from product id")
	}
	if len(e.Items()) != 2 {
		t.Fatalf("expected two lines, got %d", len(e.Items()))
	}
	if e.ItemCount() != 3 || !e.Total().Equal(dec("12.00")) {
		t.Fatalf("unexpected totals total=%s count=%d", e.Total(), e.ItemCount())
	}

	// identical options still do not merge
	_, _ = e.AddItem(ctx, p, 1, AddOptions{Flavor: "Vainilla", Notes: "extra"})
	_, _ = e.AddItem(ctx, p, 1, AddOptions{Flavor: "Vainilla", Notes: "extra"})
	if len(e.Items()) != 4 {
		t.Fatalf("expected four lines, got %d", len(e.Items()))
	}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	for _, q := range []int{0, -1} {
		if _, err := e.AddItem(context.Background(), testProduct("p1", "1"), q, AddOptions{}); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", q, err)
		}
	}
	if !e.IsEmpty() {
		t.Fatal("cart should remain empty")
	}
}

func TestUnitPriceIsFrozenAtAddTime(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	p := testProduct("p1", "5.00")

	item, _ := e.AddItem(ctx, p, 1, AddOptions{})
	p.Price = dec("9.00")
	p.Sizes[0].Price = dec("11.00")
	p.Name = "renamed"

	e.UpdateQuantity(ctx, item.ID, 2)
	got, ok := e.Item(item.ID)
	if !ok {
		t.Fatal("item missing")
	}
	if !got.UnitPrice.Equal(dec("5.00")) || !got.Subtotal.Equal(dec("10.00")) {
		t.Fatalf("line was repriced: unit=%s subtotal=%s", got.UnitPrice, got.Subtotal)
	}
	if got.Product.Name != "Gelato p1" {
		t.Fatalf("product snapshot was mutated: %q", got.Product.Name)
	}
}

func TestUpdateQuantityRecomputes(t *testing.T) {
	e, clock := newTestEngine(t, nil)
	ctx := context.Background()
	a, _ := e.AddItem(ctx, testProduct("p1", "2.50"), 1, AddOptions{})
	_, _ = e.AddItem(ctx, testProduct("p2", "1.25"), 2, AddOptions{})

	clock.t = clock.t.Add(time.Second)
	if !e.UpdateQuantity(ctx, a.ID, 4) {
		t.Fatal("expected update to find the line")
	}
	snap := e.Snapshot()
	if !snap.Items[0].Subtotal.Equal(dec("10.00")) {
		t.Fatalf("unexpected line subtotal %s", snap.Items[0].Subtotal)
	}
	if !snap.Total.Equal(dec("12.50")) || snap.ItemCount != 6 {
		t.Fatalf("unexpected totals total=%s count=%d", snap.Total, snap.ItemCount)
	}
	if snap.LastUpdated != clock.t.UnixMilli() {
		t.Fatalf("expected lastUpdated to be refreshed, got %d", snap.LastUpdated)
	}
}

func TestUpdateQuantityNonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -5} {
		t.Run(fmt.Sprint(q), func(t *testing.T) {
			storage := NewMemoryProvider().ForSession("s")
			e, _ := newTestEngine(t, storage)
			ctx := context.Background()
			a, _ := e.AddItem(ctx, testProduct("p1", "3.00"), 2, AddOptions{})
			b, _ := e.AddItem(ctx, testProduct("p2", "1.00"), 1, AddOptions{})

			if !e.UpdateQuantity(ctx, a.ID, q) {
				t.Fatal("expected removal to report the line existed")
			}
			items := e.Items()
			if len(items) != 1 || items[0].ID != b.ID {
				t.Fatalf("expected only %s to remain, got %+v", b.ID, items)
			}
			if !e.Total().Equal(dec("1.00")) || e.ItemCount() != 1 {
				t.Fatalf("unexpected totals total=%s count=%d", e.Total(), e.ItemCount())
			}
			stored, _, _ := storage.Load(ctx)
			if len(stored.Items) != 1 {
				t.Fatalf("stored cart not updated: %+v", stored.Items)
			}
		})
	}
}

func TestUnknownItemIsNoOp(t *testing.T) {
	storage := &recordingStorage{Storage: NewMemoryProvider().ForSession("s")}
	e, clock := newTestEngine(t, storage)
	ctx := context.Background()
	_, _ = e.AddItem(ctx, testProduct("p1", "3.00"), 1, AddOptions{})
	before := e.Snapshot()
	saves := storage.saves

	clock.t = clock.t.Add(time.Minute)
	if e.UpdateQuantity(ctx, "cart_missing", 3) {
		t.Fatal("update on unknown id should report false")
	}
	if e.UpdateQuantity(ctx, "cart_missing", 0) {
		t.Fatal("update-to-zero on unknown id should report false")
	}
	if e.RemoveItem(ctx, "cart_missing") {
		t.Fatal("remove on unknown id should report false")
	}

	after := e.Snapshot()
	if after.LastUpdated != before.LastUpdated || len(after.Items) != 1 || !after.Total.Equal(before.Total) {
		t.Fatalf("cart changed on no-op: before=%+v after=%+v", before, after)
	}
	if storage.saves != saves {
		t.Fatalf("storage written on no-op: %d -> %d", saves, storage.saves)
	}
}

func TestRemoveItem(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	a, _ := e.AddItem(ctx, testProduct("p1", "3.00"), 1, AddOptions{})
	b, _ := e.AddItem(ctx, testProduct("p2", "2.00"), 1, AddOptions{})
	c, _ := e.AddItem(ctx, testProduct("p3", "1.00"), 1, AddOptions{})

	if !e.RemoveItem(ctx, b.ID) {
		t.Fatal("expected removal")
	}
	items := e.Items()
	if len(items) != 2 || items[0].ID != a.ID || items[1].ID != c.ID {
		t.Fatalf("unexpected remaining lines %+v", items)
	}
	if !e.Total().Equal(dec("4.00")) {
		t.Fatalf("unexpected total %s", e.Total())
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	provider := NewMemoryProvider()
	e, _ := newTestEngine(t, provider.ForSession("s1"))
	ctx := context.Background()
	p := testProduct("p1", "5.00")
	_, _ = e.AddItem(ctx, p, 2, AddOptions{Size: &p.Sizes[0], Flavor: "Vainilla", Notes: "sin azúcar"})
	_, _ = e.AddItem(ctx, testProduct("p2", "1.10"), 3, AddOptions{})

	reopened := Open(ctx, Options{Storage: provider.ForSession("s1")})
	want := e.Snapshot()
	got := reopened.Snapshot()

	if len(got.Items) != len(want.Items) {
		t.Fatalf("expected %d items, got %d", len(want.Items), len(got.Items))
	}
	for i := range want.Items {
		w, g := want.Items[i], got.Items[i]
		if w.ID != g.ID || w.Quantity != g.Quantity || !w.UnitPrice.Equal(g.UnitPrice) || !w.Subtotal.Equal(g.Subtotal) {
			t.Fatalf("item %d mismatch: want %+v got %+v", i, w, g)
		}
		if w.SelectedFlavor != g.SelectedFlavor || w.Notes != g.Notes {
			t.Fatalf("item %d options mismatch", i)
		}
	}
	if !got.Total.Equal(want.Total) || got.ItemCount != want.ItemCount || got.LastUpdated != want.LastUpdated {
		t.Fatalf("cart totals mismatch: want %+v got %+v", want, got)
	}
	if got.Items[0].SelectedSize == nil || got.Items[0].SelectedSize.Name != "Large" {
		t.Fatalf("selected size lost in round trip")
	}

	if _, ok := provider.Raw("s2"); ok {
		t.Fatal("sessions must not share storage")
	}
}

func TestClearDeletesStorage(t *testing.T) {
	provider := NewMemoryProvider()
	e, _ := newTestEngine(t, provider.ForSession("s1"))
	ctx := context.Background()
	_, _ = e.AddItem(ctx, testProduct("p1", "5.00"), 1, AddOptions{})

	e.Clear(ctx)
	if !e.IsEmpty() || e.ItemCount() != 0 || !e.Total().IsZero() {
		t.Fatalf("cart not cleared: %+v", e.Snapshot())
	}
	if _, ok := provider.Raw("s1"); ok {
		t.Fatal("stored cart should be deleted")
	}

	rehydrated := Open(ctx, Options{Storage: provider.ForSession("s1")})
	if !rehydrated.IsEmpty() {
		t.Fatal("rehydrated cart should be empty after clear")
	}
}

func TestCorruptStorageYieldsEmptyCart(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	reg := prometheus.NewRegistry()
	m := metrics.NewCartMetrics(reg)

	provider := NewMemoryProvider()
	provider.carts["s1"] = []byte("{not json")

	e := Open(context.Background(), Options{Storage: provider.ForSession("s1"), Logger: logg, Metrics: m})
	if !e.IsEmpty() {
		t.Fatal("expected empty cart from corrupt storage")
	}
	if !strings.Contains(buf.String(), "cart storage failed") || !strings.Contains(buf.String(), `"storage_op":"load"`) {
		t.Fatalf("expected warn log, got %s", buf.String())
	}
	if got := counterValue(t, reg, "ishos_cart_storage_failures_total", "load"); got != 1 {
		t.Fatalf("expected one load failure, got %f", got)
	}
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCartMetrics(reg)
	e := Open(context.Background(), Options{Storage: failingStorage{}, Metrics: m})
	ctx := context.Background()

	item, err := e.AddItem(ctx, testProduct("p1", "2.00"), 2, AddOptions{})
	if err != nil {
		t.Fatalf("storage failure must not surface: %v", err)
	}
	e.UpdateQuantity(ctx, item.ID, 3)
	if e.ItemCount() != 3 || !e.Total().Equal(dec("6.00")) {
		t.Fatalf("in-memory cart should stay authoritative: %+v", e.Snapshot())
	}
	e.Clear(ctx)

	if got := counterValue(t, reg, "ishos_cart_storage_failures_total", "save"); got != 2 {
		t.Fatalf("expected 2 save failures, got %f", got)
	}
	if got := counterValue(t, reg, "ishos_cart_storage_failures_total", "delete"); got != 1 {
		t.Fatalf("expected 1 delete failure, got %f", got)
	}
	if got := counterValue(t, reg, "ishos_cart_operations_total", "clear"); got != 1 {
		t.Fatalf("expected 1 clear op, got %f", got)
	}
}

func TestFlushReturnsStorageErrors(t *testing.T) {
	ctx := context.Background()
	e := Open(ctx, Options{Storage: failingStorage{}})
	if err := e.Flush(ctx); err != nil {
		t.Fatalf("empty cart must not be written: %v", err)
	}
	_, _ = e.AddItem(ctx, testProduct("p1", "2.00"), 1, AddOptions{})
	if err := e.Flush(ctx); err == nil {
		t.Fatal("expected flush to report the storage error")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()
	_, _ = e.AddItem(ctx, testProduct("p1", "2.00"), 1, AddOptions{})

	snap := e.Snapshot()
	snap.Items[0].Quantity = 99
	snap.Items[0].Product.Flavors[0] = "mutated"
	items := e.Items()
	items[0].Notes = "mutated"

	fresh := e.Snapshot()
	if fresh.Items[0].Quantity != 1 || fresh.Items[0].Product.Flavors[0] != "Vainilla" || fresh.Items[0].Notes != "" {
		t.Fatalf("engine state leaked through a copy: %+v", fresh.Items[0])
	}
}

func TestDefaultItemIDs(t *testing.T) {
	e := Open(context.Background(), Options{})
	ctx := context.Background()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		item, _ := e.AddItem(ctx, testProduct("p1", "1"), 1, AddOptions{})
		if !strings.HasPrefix(item.ID, itemIDPrefix) {
			t.Fatalf("unexpected id format %q", item.ID)
		}
		if seen[item.ID] {
			t.Fatalf("duplicate id %q", item.ID)
		}
		seen[item.ID] = true
	}
}

func TestTotalsHoldAcrossRandomSequences(t *testing.T) {
	products := []catalog.Product{
		testProduct("p1", "5.00"),
		testProduct("p2", "3.35"),
		testProduct("p3", "0.99"),
	}

	for seed := uint64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			ctx := context.Background()
			rng := rand.New(rand.NewPCG(seed, seed*7919))
			provider := NewMemoryProvider()
			e, _ := newTestEngine(t, provider.ForSession("s"))

			for step := 0; step < 200; step++ {
				ids := itemIDs(e.Items())
				op := rng.IntN(3)
				switch {
				case op == 0 || len(ids) == 0:
					p := products[rng.IntN(len(products))]
					var opts AddOptions
					if rng.IntN(2) == 0 {
						opts.Size = &p.Sizes[0]
					}
					if _, err := e.AddItem(ctx, p, 1+rng.IntN(5), opts); err != nil {
						t.Fatalf("step %d: AddItem: %v", step, err)
					}
				case op == 1:
					e.UpdateQuantity(ctx, ids[rng.IntN(len(ids))], rng.IntN(6)-1)
				default:
					e.RemoveItem(ctx, ids[rng.IntN(len(ids))])
				}

				snap := e.Snapshot()
				wantTotal := decimal.Zero
				wantCount := 0
				for _, item := range snap.Items {
					if item.Quantity < 1 {
						t.Fatalf("step %d: line %s has quantity %d", step, item.ID, item.Quantity)
					}
					if !item.Subtotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))) {
						t.Fatalf("step %d: line %s subtotal %s != %s x %d", step, item.ID, item.Subtotal, item.UnitPrice, item.Quantity)
					}
					wantTotal = wantTotal.Add(item.Subtotal)
					wantCount += item.Quantity
				}
				if !snap.Total.Equal(wantTotal) || !e.Total().Equal(wantTotal) {
					t.Fatalf("step %d: total %s, want %s", step, snap.Total, wantTotal)
				}
				if snap.ItemCount != wantCount || e.ItemCount() != wantCount {
					t.Fatalf("step %d: itemCount %d, want %d", step, snap.ItemCount, wantCount)
				}
			}

			reopened, _ := newTestEngine(t, provider.ForSession("s"))
			if !reopened.Total().Equal(e.Total()) || reopened.ItemCount() != e.ItemCount() {
				t.Fatalf("stored cart diverged: total %s/%s count %d/%d", reopened.Total(), e.Total(), reopened.ItemCount(), e.ItemCount())
			}
		})
	}
}

func itemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

type recordingStorage struct {
	Storage
	saves int
}

func (r *recordingStorage) Save(ctx context.Context, c Cart) error {
	r.saves++
	return r.Storage.Save(ctx, c)
}

type failingStorage struct{}

func (failingStorage) Load(context.Context) (Cart, bool, error) { return Cart{}, false, nil }
func (failingStorage) Save(context.Context, Cart) error         { return errors.New("unavailable") }
func (failingStorage) Delete(context.Context) error             { return errors.New("unavailable") }

func counterValue(t *testing.T, reg *prometheus.Registry, name, op string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "op" && l.GetValue() == op {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
