package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from CheckoutStep
		to   CheckoutStep
		want bool
	}{
		{"delivery to payment", StepDelivery, StepPayment, true},
		{"payment to confirm", StepPayment, StepConfirm, true},
		{"payment back to delivery", StepPayment, StepDelivery, true},
		{"confirm back to payment", StepConfirm, StepPayment, true},
		{"confirm edit delivery", StepConfirm, StepDelivery, true},
		{"skip payment", StepDelivery, StepConfirm, false},
		{"stay", StepPayment, StepPayment, false},
		{"below delivery", StepDelivery, CheckoutStep(0), false},
		{"past confirm", StepConfirm, CheckoutStep(4), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestCheckoutStep_String(t *testing.T) {
	assert.Equal(t, "DELIVERY", StepDelivery.String())
	assert.Equal(t, "CONFIRM", StepConfirm.String())
	assert.Equal(t, "STEP(7)", CheckoutStep(7).String())
}
