package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ishos/storefront/internal/cart"
	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/pkg/enums"
	"github.com/ishos/storefront/pkg/format"
)

const (
	MsgOrderingDisabled    = "Los pedidos en línea no están disponibles en este momento"
	MsgEmptyCart           = "El carrito está vacío"
	MsgDeliveryUnavailable = "La entrega a domicilio no está disponible"
	MsgPickupUnavailable   = "La opción de recoger en tienda no está disponible"
	msgMinimumPrefix       = "El pedido mínimo es de "

	// MsgProductUnavailable takes the product name.
	MsgProductUnavailable = "%s ya no está disponible"
)

type Customer struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	DeliveryNotes string `json:"deliveryNotes,omitempty"`
}

// Order is the immutable record of a submitted cart.
type Order struct {
	ID        uuid.UUID         `json:"id"`
	Customer  Customer          `json:"customer"`
	Items     []cart.Item       `json:"items"`
	OrderType enums.OrderType   `json:"orderType"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Tax       decimal.Decimal   `json:"tax"`
	Total     decimal.Decimal   `json:"total"`
	Status    enums.OrderStatus `json:"status"`
	CreatedAt int64             `json:"createdAt"`
	Notes     string            `json:"notes,omitempty"`
}

// Assemble snapshots c into a pending Order. Tax is the subtotal times the
// store's tax rate, rounded to cents.
func Assemble(c cart.Cart, f Form, settings catalog.Settings, id uuid.UUID, createdAt time.Time) Order {
	snapshot := c.Clone()
	subtotal := snapshot.Total
	tax := subtotal.Mul(settings.TaxRate).Round(2)

	o := Order{
		ID: id,
		Customer: Customer{
			Name:          strings.TrimSpace(f.Name),
			Phone:         strings.TrimSpace(f.Phone),
			Email:         strings.TrimSpace(f.Email),
			DeliveryNotes: strings.TrimSpace(f.DeliveryNotes),
		},
		Items:     snapshot.Items,
		OrderType: f.OrderType,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal.Add(tax),
		Status:    enums.OrderStatusPending,
		CreatedAt: createdAt.UnixMilli(),
		Notes:     strings.TrimSpace(f.Notes),
	}
	if f.OrderType == enums.OrderTypeDelivery {
		o.Customer.Address = strings.TrimSpace(f.Address)
	}
	return o
}

// CheckSubmission applies the store's ordering rules to a cart about to be
// submitted. It complements ValidateForm, which only looks at the form.
func CheckSubmission(c cart.Cart, orderType enums.OrderType, settings catalog.Settings) []string {
	var problems []string
	if !settings.EnableOrdering {
		problems = append(problems, MsgOrderingDisabled)
	}
	if len(c.Items) == 0 {
		problems = append(problems, MsgEmptyCart)
	}
	switch orderType {
	case enums.OrderTypeDelivery:
		if !settings.DeliveryAvailable {
			problems = append(problems, MsgDeliveryUnavailable)
		}
	case enums.OrderTypePickup:
		if !settings.PickupAvailable {
			problems = append(problems, MsgPickupUnavailable)
		}
	}
	if len(c.Items) > 0 && settings.MinOrderAmount.IsPositive() && c.Total.LessThan(settings.MinOrderAmount) {
		symbol := settings.CurrencySymbol
		if symbol == "" {
			symbol = format.DefaultCurrencySymbol
		}
		problems = append(problems, msgMinimumPrefix+format.Price(settings.MinOrderAmount, symbol))
	}
	return problems
}

// Message renders o for WhatsApp.
func (o Order) Message(currencySymbol string) string {
	return FormatWhatsAppMessage(MessageInput{
		Items:          o.Items,
		Subtotal:       o.Subtotal,
		Tax:            o.Tax,
		Total:          o.Total,
		CustomerName:   o.Customer.Name,
		Phone:          o.Customer.Phone,
		OrderType:      o.OrderType,
		Address:        o.Customer.Address,
		Notes:          o.Notes,
		CurrencySymbol: currencySymbol,
	})
}
