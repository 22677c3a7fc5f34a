package domain

import "fmt"

type CheckoutStep int

const (
	StepDelivery CheckoutStep = iota + 1
	StepPayment
	StepConfirm
)

func (s CheckoutStep) Valid() bool {
	return s >= StepDelivery && s <= StepConfirm
}

// String representation (for logging)
func (s CheckoutStep) String() string {
	switch s {
	case StepDelivery:
		return "DELIVERY"
	case StepPayment:
		return "PAYMENT"
	case StepConfirm:
		return "CONFIRM"
	default:
		return fmt.Sprintf("STEP(%d)", int(s))
	}
}

// CanTransitionTo reports whether the wizard may move from one step to another.
// Forward moves are one step at a time, back moves are one step or an edit jump from Confirm.
func CanTransitionTo(from, to CheckoutStep) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	switch {
	case to == from+1, to == from-1:
		return true
	case from == StepConfirm && to == StepDelivery:
		return true
	default:
		return false
	}
}
