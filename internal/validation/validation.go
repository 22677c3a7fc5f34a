package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cardNumberPattern = regexp.MustCompile(`^[0-9]{16}$`)
)

const requiredFieldsMessage = "please fill in all required fields"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every invalid field of one form.
type Error struct {
	Form   string       `json:"form"`
	Fields []FieldError `json:"fields"`
}

// Error is the short notice shown to the shopper.
func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid %s", e.Form)
	}
	for _, f := range e.Fields {
		if strings.HasSuffix(f.Message, "is required") {
			return requiredFieldsMessage
		}
	}
	return e.Fields[0].Message
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("storeemail", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("cardnumber", func(fl validator.FieldLevel) bool {
		return IsCardNumber(fl.Field().String())
	})

	return &Validator{validate: v}
}

// IsEmail matches user@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsCardNumber reports whether s holds exactly 16 digits once spaces are removed.
func IsCardNumber(s string) bool {
	return cardNumberPattern.MatchString(strings.ReplaceAll(s, " ", ""))
}

func (v *Validator) ValidateDelivery(d domain.DeliveryInfo) error {
	return v.check("delivery", d)
}

// ValidatePayment only inspects card fields when paying by card.
func (v *Validator) ValidatePayment(p domain.PaymentInfo) error {
	switch p.Method {
	case domain.PaymentPayPal, domain.PaymentCOD:
		return nil
	case domain.PaymentCard:
		card := p.Card
		if card == nil {
			card = &domain.CardDetails{}
		}
		return v.check("payment", card)
	default:
		return &Error{Form: "payment", Fields: []FieldError{{Field: "method", Message: "please choose a payment method"}}}
	}
}

func (v *Validator) ValidateContact(m domain.ContactMessage) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	return v.check("contact", m)
}

type designName struct {
	Name string `json:"name" validate:"required,max=120"`
}

func (v *Validator) ValidateDesignName(name string) error {
	return v.check("design", designName{Name: strings.TrimSpace(name)})
}

func (v *Validator) check(form string, s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %s: %w", form, err)
	}

	out := &Error{Form: form, Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "storeemail":
		return "please enter a valid email address"
	case "cardnumber":
		return "card number must be 16 digits"
	case "min", "max":
		if fe.Field() == "cvv" {
			return "CVV must be 3 or 4 digits"
		}
		if fe.Tag() == "max" {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
