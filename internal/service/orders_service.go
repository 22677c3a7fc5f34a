package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
)

const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortTotalAsc  = "total_asc"
	SortTotalDesc = "total_desc"
)

type OrderFilter struct {
	Status domain.OrderStatus
	Search string
	From   time.Time
	To     time.Time
	Sort   string
}

type OrderView struct {
	domain.Order
	Badge domain.Badge `json:"badge"`
}

type OrderHistory struct {
	Orders   []OrderView                `json:"orders"`
	Total    int                        `json:"total"`
	ByStatus map[domain.OrderStatus]int `json:"byStatus"`
}

type TrackingStep struct {
	Status domain.OrderStatus `json:"status"`
	Label  string             `json:"label"`
	State  string             `json:"state"` // done, current, pending
}

type Tracking struct {
	OrderID        string             `json:"orderId"`
	Status         domain.OrderStatus `json:"status"`
	Badge          domain.Badge       `json:"badge"`
	TrackingNumber string             `json:"trackingNumber,omitempty"`
	Steps          []TrackingStep     `json:"steps"`
	Terminal       bool               `json:"terminal"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

var trackingPath = []domain.OrderStatus{
	domain.OrderStatusConfirmed,
	domain.OrderStatusProcessing,
	domain.OrderStatusShipped,
	domain.OrderStatusDelivered,
}

type OrdersService struct {
	orders OrderSource
}

func NewOrdersService(orders OrderSource) *OrdersService {
	return &OrdersService{orders: orders}
}

// History fetches the shopper's orders and applies the filter locally.
// Summary counts cover all orders, not only the filtered ones.
func (s *OrdersService) History(ctx context.Context, sess *session.Session, f OrderFilter) (*OrderHistory, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListOrders(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	h := &OrderHistory{Orders: make([]OrderView, 0, len(orders)), ByStatus: map[domain.OrderStatus]int{}}
	for _, o := range orders {
		h.ByStatus[o.Status]++
		if f.matches(o) {
			h.Orders = append(h.Orders, OrderView{Order: o, Badge: o.Status.Badge()})
		}
	}
	h.Total = len(orders)
	sortOrders(h.Orders, f.Sort)
	return h, nil
}

func (s *OrdersService) Get(ctx context.Context, sess *session.Session, id string) (*OrderView, error) {
	o, err := s.orders.GetOrder(ctx, sess, id)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &OrderView{Order: *o, Badge: o.Status.Badge()}, nil
}

func (s *OrdersService) Track(ctx context.Context, sess *session.Session, id string) (*Tracking, error) {
	o, err := s.orders.GetOrder(ctx, sess, id)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("track order: %w", err)
	}
	t := TrackingFor(*o)
	return &t, nil
}

// Watch polls the order and calls push whenever its status changes.
// It returns once the order reaches a terminal status or ctx ends.
func (s *OrdersService) Watch(ctx context.Context, sess *session.Session, id string, every time.Duration, push func(Tracking) error) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	var last domain.OrderStatus
	for {
		t, err := s.Track(ctx, sess, id)
		if err != nil {
			return err
		}
		if t.Status != last {
			if err := push(*t); err != nil {
				return err
			}
			last = t.Status
		}
		if t.Terminal {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// TrackingFor lays an order out on the confirmed → delivered path.
// A cancelled order shows the steps it passed plus the cancellation.
func TrackingFor(o domain.Order) Tracking {
	t := Tracking{
		OrderID:        o.OrderID,
		Status:         o.Status,
		Badge:          o.Status.Badge(),
		TrackingNumber: o.TrackingNumber,
		Terminal:       o.Status.IsTerminal(),
		UpdatedAt:      o.UpdatedAt,
	}

	if o.Status == domain.OrderStatusCancelled {
		t.Steps = []TrackingStep{
			{Status: domain.OrderStatusConfirmed, Label: domain.OrderStatusConfirmed.Badge().Label, State: "done"},
			{Status: domain.OrderStatusCancelled, Label: domain.OrderStatusCancelled.Badge().Label, State: "current"},
		}
		return t
	}

	current := -1
	for i, st := range trackingPath {
		if st == o.Status {
			current = i
		}
	}
	for i, st := range trackingPath {
		state := "pending"
		switch {
		case current < 0:
		case i < current, i == current && o.Status == domain.OrderStatusDelivered:
			state = "done"
		case i == current:
			state = "current"
		}
		t.Steps = append(t.Steps, TrackingStep{Status: st, Label: st.Badge().Label, State: state})
	}
	return t
}

func (f OrderFilter) validate() error {
	if f.Status != "" && !f.Status.Known() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, f.Status)
	}
	switch f.Sort {
	case "", SortNewest, SortOldest, SortTotalAsc, SortTotalDesc:
	default:
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidFilter, f.Sort)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return fmt.Errorf("%w: date range ends before it starts", ErrInvalidFilter)
	}
	return nil
}

func (f OrderFilter) matches(o domain.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && o.CreatedAt.After(f.To) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(o.OrderID), q) {
		return true
	}
	for _, it := range o.Items {
		if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Brand), q) {
			return true
		}
	}
	return false
}

func sortOrders(orders []OrderView, by string) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		switch by {
		case SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortTotalAsc:
			return a.TotalAmount.LessThan(b.TotalAmount)
		case SortTotalDesc:
			return a.TotalAmount.GreaterThan(b.TotalAmount)
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}
