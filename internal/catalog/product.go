package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/ishos/storefront/pkg/enums"
)

// Product is an item on the menu. Products are immutable once loaded;
// every query hands out a copy.
type Product struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Image       string          `json:"image"`
	Category    enums.Category  `json:"category" validate:"required,category"`
	Available   bool            `json:"available"`
	Featured    bool            `json:"featured"`
	Sizes       []ProductSize   `json:"sizes,omitempty" validate:"omitempty,dive"`
	Flavors     []string        `json:"flavors,omitempty"`
	Allergens   []string        `json:"allergens,omitempty"`
	Ingredients []string        `json:"ingredients,omitempty"`
}

// ProductSize is a named variant carrying its own price.
type ProductSize struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Description string          `json:"description,omitempty"`
}

// Size returns the variant called name.
func (p Product) Size(name string) (ProductSize, bool) {
	for _, s := range p.Sizes {
		if s.Name == name {
			return s, true
		}
	}
	return ProductSize{}, false
}

// HasFlavor reports whether flavor is one of the product's flavors.
func (p Product) HasFlavor(flavor string) bool {
	for _, f := range p.Flavors {
		if f == flavor {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (p Product) Clone() Product {
	out := p
	out.Sizes = cloneSlice(p.Sizes)
	out.Flavors = cloneSlice(p.Flavors)
	out.Allergens = cloneSlice(p.Allergens)
	out.Ingredients = cloneSlice(p.Ingredients)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// CategoryInfo is a category's display metadata joined with its available
// products.
type CategoryInfo struct {
	ID          enums.Category `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Products    []Product      `json:"products"`
}

type categoryMeta struct {
	name        string
	description string
}

var categoryMetadata = map[enums.Category]categoryMeta{
	enums.CategoryGelatos: {
		name:        "Gelatos",
		description: "Nuestros gelatos artesanales cremosos y deliciosos",
	},
	enums.CategorySorbetes: {
		name:        "Sorbetes",
		description: "Sorbetes refrescantes y naturales",
	},
	enums.CategoryEspeciales: {
		name:        "Especiales",
		description: "Productos especiales y de temporada",
	},
	enums.CategoryExtras: {
		name:        "Extras",
		description: "Complementos y accesorios para tu helado",
	},
}
