package backend

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/storefront/internal/domain"
)

// amount decodes a price that may arrive as a number, a numeric string or garbage.
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = d
	return nil
}

// quantity decodes an item count; anything that is not a sane non-negative number reads as 0.
type quantity int

const maxQuantity = math.MaxInt32

func (q *quantity) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > maxQuantity {
		*q = 0
		return nil
	}
	*q = quantity(f)
	return nil
}

// flexID accepts both numeric and string identifiers.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = flexID(s)
		return nil
	}
	*id = flexID(string(b))
	return nil
}

type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

type cartItemDTO struct {
	ProductID flexID   `json:"productId"`
	Name      string   `json:"name"`
	Brand     string   `json:"brand"`
	Image     string   `json:"image"`
	Price     amount   `json:"price"`
	Quantity  quantity `json:"quantity"`
	Size      string   `json:"size"`
	Color     string   `json:"color"`
}

func (d cartItemDTO) toDomain() domain.CartItem {
	return domain.CartItem{
		ProductID: string(d.ProductID),
		Name:      d.Name,
		Brand:     d.Brand,
		Image:     d.Image,
		Price:     d.Price.Decimal,
		Quantity:  int(d.Quantity),
		Size:      d.Size,
		Color:     d.Color,
	}
}

type cartDTO struct {
	Items     []cartItemDTO `json:"items"`
	Subtotal  *amount       `json:"subtotal"`
	ItemCount quantity      `json:"itemCount"`
}

type cartResponse struct {
	envelope
	Cart *cartDTO `json:"cart"`
}

func (d *cartDTO) toDomain() *domain.Cart {
	cart := &domain.Cart{Items: make([]domain.CartItem, 0)}
	if d == nil {
		return cart
	}
	for _, it := range d.Items {
		cart.Items = append(cart.Items, it.toDomain())
	}
	if d.Subtotal != nil {
		sub := d.Subtotal.Decimal
		cart.Subtotal = &sub
	}
	cart.ItemCount = int(d.ItemCount)
	if cart.ItemCount == 0 {
		cart.ItemCount = cart.Count()
	}
	return cart
}

type orderItemDTO struct {
	ProductID flexID   `json:"productId"`
	Name      string   `json:"name"`
	Brand     string   `json:"brand"`
	Image     string   `json:"image"`
	Price     amount   `json:"price"`
	Quantity  quantity `json:"quantity"`
	Size      string   `json:"size"`
	Color     string   `json:"color"`
}

func (d orderItemDTO) toDomain() domain.OrderItem {
	return domain.OrderItem{
		ProductID: string(d.ProductID),
		Name:      d.Name,
		Brand:     d.Brand,
		Image:     d.Image,
		Price:     d.Price.Decimal,
		Quantity:  int(d.Quantity),
		Size:      d.Size,
		Color:     d.Color,
	}
}

type orderDTO struct {
	OrderID         flexID         `json:"orderId"`
	ID              flexID         `json:"_id"`
	Status          string         `json:"status"`
	TotalAmount     amount         `json:"totalAmount"`
	Items           []orderItemDTO `json:"items"`
	ShippingAddress string         `json:"shippingAddress"`
	TrackingNumber  string         `json:"trackingNumber"`
	CreatedAt       timestamp      `json:"createdAt"`
	UpdatedAt       timestamp      `json:"updatedAt"`
}

func (d orderDTO) id() string {
	if d.OrderID != "" {
		return string(d.OrderID)
	}
	return string(d.ID)
}

func (d orderDTO) items() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, it.toDomain())
	}
	return items
}

func (d orderDTO) toPlaced() *domain.PlacedOrder {
	return &domain.PlacedOrder{
		OrderID:     d.id(),
		TotalAmount: d.TotalAmount.Decimal,
		Items:       d.items(),
	}
}

func (d orderDTO) toDomain() domain.Order {
	return domain.Order{
		OrderID:         d.id(),
		Status:          domain.OrderStatus(strings.ToLower(strings.TrimSpace(d.Status))),
		TotalAmount:     d.TotalAmount.Decimal,
		Items:           d.items(),
		ShippingAddress: d.ShippingAddress,
		TrackingNumber:  d.TrackingNumber,
		CreatedAt:       d.CreatedAt.Time,
		UpdatedAt:       d.UpdatedAt.Time,
	}
}

type orderResponse struct {
	envelope
	Order *orderDTO `json:"order"`
}

type ordersResponse struct {
	envelope
	Orders []orderDTO `json:"orders"`
}

type listingDTO struct {
	ID           flexID    `json:"id"`
	MongoID      flexID    `json:"_id"`
	Title        string    `json:"title"`
	Brand        string    `json:"brand"`
	Size         flexID    `json:"size"`
	Condition    string    `json:"condition"`
	Price        amount    `json:"price"`
	Image        string    `json:"image"`
	Description  string    `json:"description"`
	Seller       string    `json:"seller"`
	WantsInTrade string    `json:"wantsInTrade"`
	ListedAt     timestamp `json:"listedAt"`
}

func (d listingDTO) toDomain() domain.Listing {
	id := string(d.ID)
	if id == "" {
		id = string(d.MongoID)
	}
	return domain.Listing{
		ID:           id,
		Title:        d.Title,
		Brand:        d.Brand,
		Size:         string(d.Size),
		Condition:    domain.Condition(strings.ToLower(strings.ReplaceAll(d.Condition, " ", "_"))),
		Price:        d.Price.Decimal,
		Image:        d.Image,
		Description:  d.Description,
		Seller:       d.Seller,
		WantsInTrade: d.WantsInTrade,
		ListedAt:     d.ListedAt.Time,
	}
}

type listingsResponse struct {
	envelope
	Listings []listingDTO `json:"listings"`
}
