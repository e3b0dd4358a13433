package cart

import (
	cartsvc "github.com/ishos/storefront/internal/cart"
	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/pkg/format"
)

// CartView is the cart plus display strings in the store's currency.
type CartView struct {
	cartsvc.Cart
	TotalDisplay string `json:"totalDisplay"`
	IsEmpty      bool   `json:"isEmpty"`
}

func newCartView(c cartsvc.Cart, settings catalog.Settings) CartView {
	return CartView{
		Cart:         c,
		TotalDisplay: format.Price(c.Total, settings.CurrencySymbol),
		IsEmpty:      len(c.Items) == 0,
	}
}
