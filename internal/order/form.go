package order

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/ishos/storefront/pkg/enums"
	"github.com/ishos/storefront/pkg/format"
)

const (
	MsgNameTooShort     = "El nombre debe tener al menos 2 caracteres"
	MsgInvalidPhone     = "El número de teléfono no es válido"
	MsgInvalidEmail     = "El correo electrónico no es válido"
	MsgAddressRequired  = "La dirección es requerida para entrega a domicilio"
	MsgInvalidOrderType = "El tipo de pedido no es válido"
)

// Form is what the customer fills in at checkout. Field order matters:
// validation messages come out in declaration order.
type Form struct {
	Name          string          `json:"name" validate:"customer_name"`
	Phone         string          `json:"phone" validate:"phone_digits"`
	Email         string          `json:"email,omitempty" validate:"omitempty,loose_email"`
	Address       string          `json:"address,omitempty" validate:"required_if=OrderType delivery"`
	OrderType     enums.OrderType `json:"orderType" validate:"order_type"`
	DeliveryNotes string          `json:"deliveryNotes,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var fieldMessages = map[string]string{
	"Name":      MsgNameTooShort,
	"Phone":     MsgInvalidPhone,
	"Email":     MsgInvalidEmail,
	"Address":   MsgAddressRequired,
	"OrderType": MsgInvalidOrderType,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("customer_name", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= 2
	})
	_ = v.RegisterValidation("phone_digits", func(fl validator.FieldLevel) bool {
		n := len(format.Digits(fl.Field().String()))
		return n >= 8 && n <= 15
	})
	_ = v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("order_type", func(fl validator.FieldLevel) bool {
		return enums.OrderType(fl.Field().String()).IsValid()
	})
	return v
}

// ValidateForm returns the customer-facing problems with f, in a stable
// order. An empty result means the form is acceptable.
func ValidateForm(f Form) []string {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.StructField()]
		if !ok {
			continue
		}
		problems = append(problems, msg)
	}
	return problems
}
