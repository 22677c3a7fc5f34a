package pricing

import (
	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	DefaultFlatShippingFee       = decimal.NewFromInt(10)
	DefaultFreeShippingThreshold = decimal.NewFromInt(100)
	DefaultTaxRate               = decimal.RequireFromString("0.08")
)

// Calculator derives the order totals shown during checkout.
type Calculator struct {
	policy domain.PricingPolicy
}

func NewCalculator(policy domain.PricingPolicy) *Calculator {
	return &Calculator{policy: policy}
}

func DefaultPolicy() domain.PricingPolicy {
	return domain.PricingPolicy{
		FlatShippingFee:       DefaultFlatShippingFee,
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		TaxRate:               DefaultTaxRate,
	}
}

func (c *Calculator) Policy() domain.PricingPolicy {
	return c.policy
}

// Subtotal prefers the backend's precomputed subtotal and otherwise sums price x quantity.
func (c *Calculator) Subtotal(cart domain.Cart) decimal.Decimal {
	if cart.Subtotal != nil {
		return *cart.Subtotal
	}
	subtotal := decimal.Zero
	for _, item := range cart.Items {
		if item.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}

// Shipping is free strictly above the threshold.
func (c *Calculator) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(c.policy.FreeShippingThreshold) {
		return decimal.Zero
	}
	return c.policy.FlatShippingFee
}

// Tax is rounded to cents.
func (c *Calculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.policy.TaxRate).Round(2)
}

func (c *Calculator) Calculate(cart domain.Cart) domain.Pricing {
	subtotal := c.Subtotal(cart)
	shipping := c.Shipping(subtotal)
	tax := c.Tax(subtotal)

	return domain.Pricing{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
