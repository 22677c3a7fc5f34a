package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
}

// Cart is the backend-owned cart as fetched for one checkout.
// Subtotal is nil when the backend did not precompute it.
type Cart struct {
	Items     []CartItem       `json:"items"`
	Subtotal  *decimal.Decimal `json:"subtotal,omitempty"`
	ItemCount int              `json:"itemCount"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}
