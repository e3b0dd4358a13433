package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWhatsAppMessage greets the shop when the config carries none.
const DefaultWhatsAppMessage = "Hola! Me gustaría hacer un pedido:"

const defaultCountryCode = "503"

type StoreConfig struct {
	Store         StoreInfo                `json:"store"`
	BusinessHours map[string]BusinessHours `json:"businessHours"`
	Settings      Settings                 `json:"settings"`
	Messages      Messages                 `json:"messages"`
}

type StoreInfo struct {
	Name    string  `json:"name" validate:"required"`
	Tagline string  `json:"tagline"`
	Logo    string  `json:"logo"`
	Contact Contact `json:"contact"`
	Address Address `json:"address"`
	Social  Social  `json:"social"`
}

type Contact struct {
	WhatsAppNumber      string `json:"whatsappNumber" validate:"required"`
	WhatsAppCountryCode string `json:"whatsappCountryCode"`
	WhatsAppMessage     string `json:"whatsappMessage,omitempty"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
}

// CountryCode falls back to El Salvador's calling code.
func (c Contact) CountryCode() string {
	code := strings.TrimPrefix(strings.TrimSpace(c.WhatsAppCountryCode), "+")
	if code == "" {
		return defaultCountryCode
	}
	return code
}

func (c Contact) Greeting() string {
	if strings.TrimSpace(c.WhatsAppMessage) == "" {
		return DefaultWhatsAppMessage
	}
	return c.WhatsAppMessage
}

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

type Social struct {
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
}

// BusinessHours uses "HH:MM" 24h strings.
type BusinessHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

type Settings struct {
	Currency          string          `json:"currency"`
	CurrencySymbol    string          `json:"currencySymbol"`
	TaxRate           decimal.Decimal `json:"taxRate" validate:"gte=0,lt=1"`
	EnableOrdering    bool            `json:"enableOrdering"`
	MinOrderAmount    decimal.Decimal `json:"minOrderAmount" validate:"gte=0"`
	DeliveryAvailable bool            `json:"deliveryAvailable"`
	PickupAvailable   bool            `json:"pickupAvailable"`
}

type Messages struct {
	WelcomeMessage      string `json:"welcomeMessage"`
	OrderGreeting       string `json:"orderGreeting"`
	ClosedMessage       string `json:"closedMessage"`
	OrderSuccessMessage string `json:"orderSuccessMessage"`
}

// IsOpenAt reports whether t falls inside the business hours configured for
// its weekday. Days missing from the config count as closed. A close time
// at or before the open time spans midnight.
func (c StoreConfig) IsOpenAt(t time.Time) bool {
	hours, ok := c.BusinessHours[strings.ToLower(t.Weekday().String())]
	if !ok || hours.Closed {
		return false
	}
	open, err := parseClock(hours.Open)
	if err != nil {
		return false
	}
	closing, err := parseClock(hours.Close)
	if err != nil {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	if closing <= open {
		return now >= open || now < closing
	}
	return now >= open && now < closing
}

func parseClock(v string) (int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", v, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

func (c StoreConfig) clone() StoreConfig {
	out := c
	if c.BusinessHours != nil {
		out.BusinessHours = make(map[string]BusinessHours, len(c.BusinessHours))
		for k, v := range c.BusinessHours {
			out.BusinessHours[strings.ToLower(k)] = v
		}
	}
	return out
}
