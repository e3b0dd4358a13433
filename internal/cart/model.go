package cart

import (
	"github.com/shopspring/decimal"

	"github.com/ishos/storefront/internal/catalog"
)

// Item is one line of the cart. UnitPrice is frozen when the line is
// created; later catalog price changes never reprice it.
type Item struct {
	ID             string               `json:"id"`
	ProductID      string               `json:"productId"`
	Product        catalog.Product      `json:"product"`
	Quantity       int                  `json:"quantity"`
	SelectedSize   *catalog.ProductSize `json:"selectedSize,omitempty"`
	SelectedFlavor string               `json:"selectedFlavor,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	UnitPrice      decimal.Decimal      `json:"unitPrice"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
}

func (i Item) clone() Item {
	out := i
	out.Product = i.Product.Clone()
	if i.SelectedSize != nil {
		size := *i.SelectedSize
		out.SelectedSize = &size
	}
	return out
}

func (i *Item) setQuantity(q int) {
	i.Quantity = q
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(q)))
}

// Cart is the persisted aggregate. Total and ItemCount are always derived
// from Items.
type Cart struct {
	Items       []Item          `json:"items"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"itemCount"`
	LastUpdated int64           `json:"lastUpdated"`
}

// Clone returns a deep copy.
func (c Cart) Clone() Cart {
	out := c
	out.Items = make([]Item, len(c.Items))
	for i, item := range c.Items {
		out.Items[i] = item.clone()
	}
	return out
}

func (c *Cart) recompute() {
	total := decimal.Zero
	count := 0
	for _, item := range c.Items {
		total = total.Add(item.Subtotal)
		count += item.Quantity
	}
	c.Total = total
	c.ItemCount = count
}

func (c Cart) indexOf(itemID string) int {
	for i, item := range c.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func emptyCart(nowMillis int64) Cart {
	return Cart{Items: []Item{}, Total: decimal.Zero, LastUpdated: nowMillis}
}

// AddOptions are the customer's choices for a new line.
type AddOptions struct {
	Size   *catalog.ProductSize
	Flavor string
	Notes  string
}

func resolveUnitPrice(product catalog.Product, size *catalog.ProductSize) decimal.Decimal {
	if size != nil {
		return size.Price
	}
	return product.Price
}
