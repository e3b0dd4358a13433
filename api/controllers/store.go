package controllers

import (
	"net/http"
	"time"

	"github.com/ishos/storefront/api/responses"
	"github.com/ishos/storefront/internal/catalog"
	"github.com/ishos/storefront/internal/order"
	"github.com/ishos/storefront/pkg/format"
)

// StoreView is the storefront header: configuration, whether the shop is
// open right now, and a WhatsApp link with the default greeting.
type StoreView struct {
	catalog.StoreConfig
	IsOpen          bool   `json:"isOpen"`
	ContactURL      string `json:"contactUrl"`
	MinOrderDisplay string `json:"minOrderDisplay"`
	GeneratedAt     int64  `json:"generatedAt"`
}

// StoreInfo serves the store configuration. now is injectable for tests.
func StoreInfo(reader catalog.Reader, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := reader.Config()
		at := now()
		contact := cfg.Store.Contact
		responses.WriteSuccess(w, StoreView{
			StoreConfig:     cfg,
			IsOpen:          reader.IsOpenAt(at),
			ContactURL:      order.WhatsAppURL(contact.WhatsAppNumber, contact.CountryCode(), contact.Greeting()),
			MinOrderDisplay: format.Currency(cfg.Settings.MinOrderAmount, format.DefaultLocale, cfg.Settings.Currency),
			GeneratedAt:     at.UnixMilli(),
		})
	}
}
