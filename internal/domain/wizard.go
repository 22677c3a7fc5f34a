package domain

import (
	"strings"
	"time"
)

// StepValidator checks the data entered on a wizard step.
type StepValidator interface {
	ValidateDelivery(d DeliveryInfo) error
	ValidatePayment(p PaymentInfo) error
}

// Wizard is the checkout state of one shopper, from cart load to order confirmation.
type Wizard struct {
	ID                string        `json:"id"`
	Owner             string        `json:"owner"`
	Step              CheckoutStep  `json:"step"`
	Cart              Cart          `json:"cart"`
	Delivery          DeliveryInfo  `json:"delivery"`
	Payment           PaymentInfo   `json:"payment"`
	Notes             string        `json:"notes,omitempty"`
	DeliveryValidated bool          `json:"deliveryValidated"`
	PaymentValidated  bool          `json:"paymentValidated"`
	Confirmation      *Confirmation `json:"confirmation,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

func NewWizard(id, owner string, cart Cart) *Wizard {
	now := time.Now()
	return &Wizard{
		ID:        id,
		Owner:     owner,
		Step:      StepDelivery,
		Cart:      cart,
		Payment:   PaymentInfo{Method: PaymentCard},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (w *Wizard) Completed() bool {
	return w.Confirmation != nil
}

// SetDelivery replaces the delivery form. A changed form must be validated again.
func (w *Wizard) SetDelivery(d DeliveryInfo) {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Address = strings.TrimSpace(d.Address)
	d.City = strings.TrimSpace(d.City)
	d.ZipCode = strings.TrimSpace(d.ZipCode)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.TrimSpace(d.Email)
	if d != w.Delivery {
		w.DeliveryValidated = false
	}
	w.Delivery = d
	w.touch()
}

// SetPayment replaces the payment form. Card details are dropped for non-card methods
// and a changed form must be validated again.
func (w *Wizard) SetPayment(p PaymentInfo) {
	if p.Method != PaymentCard {
		p.Card = nil
	} else if p.Card != nil {
		c := *p.Card
		c.CardNumber = strings.TrimSpace(c.CardNumber)
		c.CardHolder = strings.TrimSpace(c.CardHolder)
		c.ExpiryDate = strings.TrimSpace(c.ExpiryDate)
		c.CVV = strings.TrimSpace(c.CVV)
		p.Card = &c
	}
	if !p.Equal(w.Payment) {
		w.PaymentValidated = false
	}
	w.Payment = p
	w.touch()
}

// Advance validates the current step and moves one step forward.
// On a validation failure the step does not change.
func (w *Wizard) Advance(v StepValidator) error {
	switch w.Step {
	case StepDelivery:
		if err := v.ValidateDelivery(w.Delivery); err != nil {
			return err
		}
		w.DeliveryValidated = true
	case StepPayment:
		// delivery edited after it was accepted
		if !w.DeliveryValidated {
			if err := v.ValidateDelivery(w.Delivery); err != nil {
				return err
			}
			w.DeliveryValidated = true
		}
		if err := v.ValidatePayment(w.Payment); err != nil {
			return err
		}
		w.PaymentValidated = true
	case StepConfirm:
		return nil
	default:
		return ErrIllegalTransition
	}

	next := w.Step + 1
	if !CanTransitionTo(w.Step, next) {
		return ErrIllegalTransition
	}
	w.Step = next
	w.touch()
	return nil
}

// Retreat moves one step back without validation, never below Delivery.
func (w *Wizard) Retreat() {
	if w.Step > StepDelivery {
		w.Step--
		w.touch()
	}
}

// Edit jumps from Confirm back to Delivery or Payment.
func (w *Wizard) Edit(step CheckoutStep) error {
	if w.Step != StepConfirm || step == StepConfirm || !CanTransitionTo(w.Step, step) {
		return ErrIllegalTransition
	}
	w.Step = step
	w.touch()
	return nil
}

// ReadyToSubmit reports why the order cannot be placed yet, if it cannot.
func (w *Wizard) ReadyToSubmit() error {
	if w.Step != StepConfirm {
		return ErrNotOnConfirmStep
	}
	if !w.DeliveryValidated || !w.PaymentValidated {
		return ErrStepNotValidated
	}
	if w.Cart.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}

// Complete stores the confirmation and scrubs card data from the wizard.
func (w *Wizard) Complete(c Confirmation) {
	w.Confirmation = &c
	w.Payment = w.Payment.Masked()
	w.touch()
}

// OrderRequest builds the backend order-creation payload.
func (w *Wizard) OrderRequest() OrderRequest {
	items := make([]OrderRequestItem, 0, len(w.Cart.Items))
	for _, item := range w.Cart.Items {
		items = append(items, OrderRequestItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	return OrderRequest{
		Items:           items,
		CustomerName:    w.Delivery.FullName(),
		CustomerEmail:   w.Delivery.Email,
		CustomerPhone:   w.Delivery.Phone,
		ShippingAddress: w.Delivery.ShippingAddress(),
		PaymentMethod:   w.Payment.Method,
		Notes:           w.Notes,
	}
}

func (w *Wizard) touch() {
	w.UpdatedAt = time.Now()
}
