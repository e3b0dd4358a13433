// Package format renders prices, phone numbers and dates for customers.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultCurrency       = "USD"
	DefaultCurrencySymbol = "$"
	DefaultLocale         = "es-SV"
)

// Price renders amount with two decimals behind symbol, e.g. "$7.50".
func Price(amount decimal.Decimal, symbol string) string {
	return symbol + amount.StringFixed(2)
}

// Currency renders amount with locale-aware separators and the ISO
// currency's symbol. Unknown locales or currencies fall back to Price.
func Currency(amount decimal.Decimal, locale, code string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Price(amount, DefaultCurrencySymbol)
	}
	p := message.NewPrinter(tag)
	return p.Sprint(currency.Symbol(unit.Amount(amount.Round(2).InexactFloat64())))
}

// PhoneNumber formats an 8-digit local number as XXXX-XXXX. Anything else
// is returned untouched.
func PhoneNumber(phone string) string {
	digits := Digits(phone)
	if len(digits) == 8 {
		return digits[:4] + "-" + digits[4:]
	}
	return phone
}

// Digits strips every non-digit rune from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Date renders t as a long Spanish date with 24h time, for example
// "5 de marzo de 2026, 14:05".
func Date(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d, %02d:%02d",
		t.Day(), monthsES[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// DateMillis is Date for a Unix millisecond timestamp in loc.
func DateMillis(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return Date(time.UnixMilli(ms).In(loc))
}
