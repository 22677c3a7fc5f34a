package domain

import "strings"

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentPayPal PaymentMethod = "paypal"
	PaymentCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentPayPal || m == PaymentCOD
}

type CardDetails struct {
	CardNumber string `json:"cardNumber" validate:"required,cardnumber"`
	CardHolder string `json:"cardHolder" validate:"required"`
	ExpiryDate string `json:"expiryDate" validate:"required"`
	CVV        string `json:"cvv" validate:"required,min=3,max=4"`
}

type PaymentInfo struct {
	Method PaymentMethod `json:"method"`
	Card   *CardDetails  `json:"card,omitempty"`
}

func (p PaymentInfo) Equal(o PaymentInfo) bool {
	if p.Method != o.Method {
		return false
	}
	if p.Card == nil || o.Card == nil {
		return p.Card == o.Card
	}
	return *p.Card == *o.Card
}

// Masked hides everything but the last four card digits and drops the CVV.
func (p PaymentInfo) Masked() PaymentInfo {
	if p.Card == nil {
		return p
	}
	digits := strings.ReplaceAll(p.Card.CardNumber, " ", "")
	last4 := digits
	if len(digits) > 4 {
		last4 = digits[len(digits)-4:]
	}
	return PaymentInfo{
		Method: p.Method,
		Card: &CardDetails{
			CardNumber: "**** **** **** " + last4,
			CardHolder: p.Card.CardHolder,
			ExpiryDate: p.Card.ExpiryDate,
		},
	}
}
