package filters

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/pkg/enums"
)

// MenuFilters is the menu view state of one session.
type MenuFilters struct {
	Category          enums.Category `json:"category"`
	SearchQuery       string         `json:"searchQuery"`
	SortBy            enums.SortMode `json:"sortBy"`
	ShowAvailableOnly bool           `json:"showAvailableOnly"`
}

// Defaults is the state of a fresh session.
func Defaults() MenuFilters {
	return MenuFilters{
		Category: enums.CategoryAll,
		SortBy:   enums.SortByName,
	}
}

// Store holds one session's filters.
type Store struct {
	mu      sync.RWMutex
	current MenuFilters
}

func NewStore() *Store {
	return &Store{current: Defaults()}
}

func (s *Store) Get() MenuFilters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCategory accepts a menu category or enums.CategoryAll.
func (s *Store) SetCategory(category enums.Category) error {
	if category != enums.CategoryAll && !category.IsValid() {
		return fmt.Errorf("invalid category %q", category)
	}
	s.update(func(f *MenuFilters) { f.Category = category })
	return nil
}

func (s *Store) SetSearchQuery(query string) {
	s.update(func(f *MenuFilters) { f.SearchQuery = query })
}

func (s *Store) SetSortBy(mode enums.SortMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid sort mode %q", mode)
	}
	s.update(func(f *MenuFilters) { f.SortBy = mode })
	return nil
}

func (s *Store) SetShowAvailableOnly(show bool) {
	s.update(func(f *MenuFilters) { f.ShowAvailableOnly = show })
}

// Reset restores Defaults.
func (s *Store) Reset() {
	s.update(func(f *MenuFilters) { *f = Defaults() })
}

// Apply projects products through the current filters.
func (s *Store) Apply(products []catalog.Product) []catalog.Product {
	return Apply(s.Get(), products)
}

func (s *Store) update(fn func(*MenuFilters)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.current)
}

// Apply filters products by category, search text and availability, then
// sorts them. The sort is stable so ties keep menu order. The input slice
// is not modified.
func Apply(f MenuFilters, products []catalog.Product) []catalog.Product {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(f.SearchQuery))

	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && f.Category != enums.CategoryAll && p.Category != f.Category {
			continue
		}
		if f.ShowAvailableOnly && !p.Available {
			continue
		}
		if query != "" &&
			!strings.Contains(fold.String(p.Name), query) &&
			!strings.Contains(fold.String(p.Description), query) {
			continue
		}
		out = append(out, p)
	}

	switch f.SortBy {
	case enums.SortByPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case enums.SortByPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	default:
		col := collate.New(language.Spanish, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Name, out[j].Name) < 0 })
	}
	return out
}
