package enums

import "testing"

func TestParseCategoryFilter(t *testing.T) {
	got, err := ParseCategoryFilter("")
	if err != nil || got != CategoryAll {
		t.Fatalf("expected all for empty input, got %q err=%v", got, err)
	}
	got, err = ParseCategoryFilter("sorbetes")
	if err != nil || got != CategorySorbetes {
		t.Fatalf("expected sorbetes, got %q err=%v", got, err)
	}
	if _, err := ParseCategoryFilter("helados"); err == nil {
		t.Fatal("expected error for unknown category")
	}
	if CategoryAll.IsValid() {
		t.Fatal("all must not be a product category")
	}
}

func TestCategoriesOrderIsStable(t *testing.T) {
	got := Categories()
	want := []Category{CategoryGelatos, CategorySorbetes, CategoryEspeciales, CategoryExtras}
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q got %q", i, want[i], got[i])
		}
	}
	got[0] = "mutated"
	if Categories()[0] != CategoryGelatos {
		t.Fatal("Categories must return a copy")
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusReady, OrderStatusCompleted, true},
		{OrderStatusPending, OrderStatusReady, false},
		{OrderStatusReady, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusReady, OrderStatusCancelled, true},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatus("shipped"), false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.ok {
			t.Fatalf("%s -> %s: expected %v got %v", tt.from, tt.to, tt.ok, got)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if _, err := ParseSortMode("price-asc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseSortMode("random"); err == nil {
		t.Fatal("expected error for unknown sort mode")
	}
	if _, err := ParseToastKind("warning"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOrderType("delivery"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOrderType("drone"); err == nil {
		t.Fatal("expected error for unknown order type")
	}
	if _, err := ParseOrderStatus("ready"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
