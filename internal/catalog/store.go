package catalog

import (
	"fmt"
	"time"

	"github.com/ishos/storefront/pkg/enums"
)

// Reader is the read-only catalog surface consumed by the cart, filters and
// HTTP layers.
type Reader interface {
	AllProducts() []Product
	Listing() []Product
	ProductsByCategory(category enums.Category) []Product
	FeaturedProducts() []Product
	ProductByID(id string) (Product, bool)
	LookupProduct(id string) (Product, bool)
	Categories() []CategoryInfo
	Config() StoreConfig
	IsOpenAt(t time.Time) bool
}

// Store holds the catalog in memory. It is safe for concurrent use because
// nothing mutates it after New returns.
type Store struct {
	config   StoreConfig
	products []Product
	byID     map[string]int
}

var _ Reader = (*Store)(nil)

// New validates cfg and products and builds a Store. Product order is
// preserved for every query.
func New(cfg StoreConfig, products []Product) (*Store, error) {
	if err := validateStruct("store config", cfg); err != nil {
		return nil, err
	}
	s := &Store{
		config:   cfg.clone(),
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		if err := validateStruct(fmt.Sprintf("product[%d] (id=%q)", i, p.ID), p); err != nil {
			return nil, err
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		s.byID[p.ID] = len(s.products)
		s.products = append(s.products, p.Clone())
	}
	return s, nil
}

func (s *Store) filter(keep func(Product) bool) []Product {
	out := make([]Product, 0)
	for _, p := range s.products {
		if p.Available && keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// AllProducts returns every available product.
func (s *Store) AllProducts() []Product {
	return s.filter(func(Product) bool { return true })
}

// Listing returns every product including unavailable ones, for menus that
// show sold-out items.
func (s *Store) Listing() []Product {
	out := make([]Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) ProductsByCategory(category enums.Category) []Product {
	return s.filter(func(p Product) bool { return p.Category == category })
}

func (s *Store) FeaturedProducts() []Product {
	return s.filter(func(p Product) bool { return p.Featured })
}

// ProductByID returns the product only when it exists and is available.
func (s *Store) ProductByID(id string) (Product, bool) {
	p, ok := s.LookupProduct(id)
	if !ok || !p.Available {
		return Product{}, false
	}
	return p, true
}

// LookupProduct ignores availability.
func (s *Store) LookupProduct(id string) (Product, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}
	return s.products[idx].Clone(), true
}

// Categories returns every category in menu order, each with its available
// products.
func (s *Store) Categories() []CategoryInfo {
	cats := enums.Categories()
	out := make([]CategoryInfo, 0, len(cats))
	for _, c := range cats {
		meta := categoryMetadata[c]
		out = append(out, CategoryInfo{
			ID:          c,
			Name:        meta.name,
			Description: meta.description,
			Products:    s.ProductsByCategory(c),
		})
	}
	return out
}

func (s *Store) Config() StoreConfig {
	return s.config.clone()
}

func (s *Store) IsOpenAt(t time.Time) bool {
	return s.config.IsOpenAt(t)
}
