package domain

import "github.com/shopspring/decimal"

type Pricing struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

type PricingPolicy struct {
	FlatShippingFee       decimal.Decimal `json:"flatShippingFee"`
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	TaxRate               decimal.Decimal `json:"taxRate"`
}
