package order

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ishos/storefront/internal/cart"
	"github.com/ishos/storefront/pkg/enums"
	"github.com/ishos/storefront/pkg/format"
)

// DefaultCountryCode is prepended to WhatsApp numbers that lack it.
const DefaultCountryCode = "503"

// MessageInput carries everything the WhatsApp order message shows.
type MessageInput struct {
	Items          []cart.Item
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	CustomerName   string
	Phone          string
	OrderType      enums.OrderType
	Address        string
	Notes          string
	CurrencySymbol string
}

func orderTypeLabel(t enums.OrderType) string {
	if t == enums.OrderTypePickup {
		return "Recoger en tienda"
	}
	return "Entrega a domicilio"
}

// FormatWhatsAppMessage renders the order as a WhatsApp text using its
// native *bold* markup.
func FormatWhatsAppMessage(in MessageInput) string {
	symbol := in.CurrencySymbol
	if symbol == "" {
		symbol = format.DefaultCurrencySymbol
	}

	var b strings.Builder
	b.WriteString("✏️ *PEDIDO*\n\n")

	b.WriteString("📋 *INFORMACIÓN DEL CLIENTE*\n\n")
	b.WriteString("Cliente: " + in.CustomerName + "\n")
	b.WriteString("Teléfono: 📱 " + in.Phone + "\n")
	b.WriteString("Tipo de pedido: 📦 " + orderTypeLabel(in.OrderType) + "\n")
	if in.OrderType == enums.OrderTypeDelivery && in.Address != "" {
		b.WriteString("Dirección: " + in.Address + "\n")
	}

	b.WriteString("\n🛒 *PRODUCTOS*\n\n")
	for i, item := range in.Items {
		b.WriteString(strconv.Itoa(i+1) + ". *" + item.Product.Name + "*")
		if item.SelectedSize != nil {
			b.WriteString(" (" + item.SelectedSize.Name + ")")
		}
		if item.SelectedFlavor != "" {
			b.WriteString("\n   Sabor: " + item.SelectedFlavor)
		}
		b.WriteString("\n   Cantidad: " + strconv.Itoa(item.Quantity))
		b.WriteString("\n   Precio: " + format.Price(item.Subtotal, symbol) + "\n")
		if item.Notes != "" {
			b.WriteString("   Nota: " + item.Notes + "\n")
		}
	}

	b.WriteString("\n")
	if in.Tax.IsPositive() {
		b.WriteString("Subtotal: " + format.Price(in.Subtotal, symbol) + "\n")
		b.WriteString("Impuesto: " + format.Price(in.Tax, symbol) + "\n")
	}
	b.WriteString("💰 *TOTAL: " + format.Price(in.Total, symbol) + "*\n")

	if in.Notes != "" {
		b.WriteString("\n📋 *NOTAS ADICIONALES*\n")
		b.WriteString(in.Notes + "\n")
	}

	b.WriteString("\n✅ *Gracias por tu pedido!*\n")
	b.WriteString("Te contactaremos pronto para confirmar.")
	return b.String()
}

// WhatsAppURL builds the wa.me deep link for phone with message as the
// prefilled text. Non-digits are stripped from phone and countryCode is
// prepended unless the number already starts with it.
func WhatsAppURL(phone, countryCode, message string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	digits := format.Digits(phone)
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return "https://wa.me/" + digits + "?text=" + encodeURIComponent(message)
}

const upperHex = "0123456789ABCDEF"

// encodeURIComponent escapes s the way browsers do for a URI component:
// everything but ASCII letters, digits and -_.!~*'() is percent-encoded as
// UTF-8, so spaces become %20.
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
