package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ishos/storefront/internal/order"
	"github.com/ishos/storefront/pkg/db/models"
	"github.com/ishos/storefront/pkg/enums"
	"github.com/ishos/storefront/pkg/format"
)

// SubmitResult is what the customer gets back after submitting: the order
// and the WhatsApp link that sends it to the shop.
type SubmitResult struct {
	Order       order.Order `json:"order"`
	Message     string      `json:"message"`
	WhatsAppURL string      `json:"whatsappUrl"`
}

// OrderView is a logged order as the shop sees it.
type OrderView struct {
	ID             uuid.UUID          `json:"id"`
	Customer       order.Customer     `json:"customer"`
	Items          []models.OrderItem `json:"items"`
	OrderType      enums.OrderType    `json:"orderType"`
	Status         enums.OrderStatus  `json:"status"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Tax            decimal.Decimal    `json:"tax"`
	Total          decimal.Decimal    `json:"total"`
	CurrencySymbol string             `json:"currencySymbol"`
	Notes          string             `json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
	Display        OrderDisplay       `json:"display"`
}

// OrderDisplay carries the strings the counter screen shows verbatim.
type OrderDisplay struct {
	Total    string `json:"total"`
	Phone    string `json:"phone"`
	PlacedAt string `json:"placedAt"`
}

// shopZone is El Salvador local time (UTC-6, no daylight saving).
var shopZone = time.FixedZone("CST", -6*60*60)

// OrderList wraps a page of orders plus the cursor of the next page.
type OrderList struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

// ListFilters narrows List. A zero value lists everything.
type ListFilters struct {
	Status enums.OrderStatus
}

func toRecord(sessionID string, o order.Order, currencySymbol string) *models.OrderRecord {
	items := make([]models.OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		line := models.OrderItem{
			ItemID:         item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.Product.Name,
			Quantity:       item.Quantity,
			SelectedFlavor: optional(item.SelectedFlavor),
			Notes:          optional(item.Notes),
			UnitPrice:      item.UnitPrice,
			Subtotal:       item.Subtotal,
		}
		if item.SelectedSize != nil {
			line.SelectedSize = optional(item.SelectedSize.Name)
		}
		items = append(items, line)
	}
	return &models.OrderRecord{
		ID:              o.ID,
		SessionID:       sessionID,
		CustomerName:    o.Customer.Name,
		CustomerPhone:   o.Customer.Phone,
		CustomerEmail:   optional(o.Customer.Email),
		CustomerAddress: optional(o.Customer.Address),
		DeliveryNotes:   optional(o.Customer.DeliveryNotes),
		OrderType:       o.OrderType,
		Status:          o.Status,
		Items:           items,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Total:           o.Total,
		CurrencySymbol:  currencySymbol,
		Notes:           optional(o.Notes),
		CreatedAt:       time.UnixMilli(o.CreatedAt).UTC(),
		UpdatedAt:       time.UnixMilli(o.CreatedAt).UTC(),
	}
}

func toView(rec models.OrderRecord) OrderView {
	items := rec.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	return OrderView{
		ID: rec.ID,
		Customer: order.Customer{
			Name:          rec.CustomerName,
			Phone:         rec.CustomerPhone,
			Email:         deref(rec.CustomerEmail),
			Address:       deref(rec.CustomerAddress),
			DeliveryNotes: deref(rec.DeliveryNotes),
		},
		Items:          items,
		OrderType:      rec.OrderType,
		Status:         rec.Status,
		Subtotal:       rec.Subtotal,
		Tax:            rec.Tax,
		Total:          rec.Total,
		CurrencySymbol: rec.CurrencySymbol,
		Notes:          deref(rec.Notes),
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
		Display: OrderDisplay{
			Total:    format.Price(rec.Total, rec.CurrencySymbol),
			Phone:    format.PhoneNumber(rec.CustomerPhone),
			PlacedAt: format.DateMillis(rec.CreatedAt.UnixMilli(), shopZone),
		},
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
