package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderRequestItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

type OrderRequest struct {
	Items           []OrderRequestItem `json:"items"`
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerPhone   string             `json:"customerPhone"`
	ShippingAddress string             `json:"shippingAddress"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod"`
	Notes           string             `json:"notes"`
}

type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand,omitempty"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

// PlacedOrder is what the backend returns for a successful checkout.
type PlacedOrder struct {
	OrderID     string          `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []OrderItem     `json:"items"`
}

// Confirmation is the order summary shown after a successful submission.
type Confirmation struct {
	OrderNumber   string          `json:"orderNumber"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"itemCount"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	Items         []CartItem      `json:"items"`
	PlacedAt      time.Time       `json:"placedAt"`
}

type OrderStatus string

const (
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Known() bool {
	_, ok := statusBadges[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Order is one entry of the shopper's order history.
type Order struct {
	OrderID         string          `json:"orderId"`
	Status          OrderStatus     `json:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Badge is the display style of an order status.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusBadges = map[OrderStatus]Badge{
	OrderStatusConfirmed:  {Label: "Confirmed", Color: "blue"},
	OrderStatusProcessing: {Label: "Processing", Color: "amber"},
	OrderStatusShipped:    {Label: "Shipped", Color: "indigo"},
	OrderStatusDelivered:  {Label: "Delivered", Color: "green"},
	OrderStatusCancelled:  {Label: "Cancelled", Color: "red"},
}

var unknownBadge = Badge{Label: "Unknown", Color: "gray"}

func (s OrderStatus) Badge() Badge {
	if b, ok := statusBadges[s]; ok {
		return b
	}
	return unknownBadge
}
