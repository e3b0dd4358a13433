package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ishos/storefront/pkg/enums"
)

// OrderRecord is a submitted order as kept in the order log.
type OrderRecord struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	SessionID       string            `gorm:"column:session_id;not null"`
	CustomerName    string            `gorm:"column:customer_name;not null"`
	CustomerPhone   string            `gorm:"column:customer_phone;not null"`
	CustomerEmail   *string           `gorm:"column:customer_email"`
	CustomerAddress *string           `gorm:"column:customer_address"`
	DeliveryNotes   *string           `gorm:"column:delivery_notes"`
	OrderType       enums.OrderType   `gorm:"column:order_type;type:text;not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Items           []OrderItem       `gorm:"column:items;type:text;serializer:json;not null"`
	Subtotal        decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax             decimal.Decimal   `gorm:"column:tax;type:numeric(12,2);not null"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	CurrencySymbol  string            `gorm:"column:currency_symbol;not null;default:'$'"`
	Notes           *string           `gorm:"column:notes"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (OrderRecord) TableName() string { return "orders" }

// OrderItem is the denormalized line stored inside OrderRecord.Items.
type OrderItem struct {
	ItemID         string          `json:"itemId"`
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	Quantity       int             `json:"quantity"`
	SelectedSize   *string         `json:"selectedSize,omitempty"`
	SelectedFlavor *string         `json:"selectedFlavor,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}
