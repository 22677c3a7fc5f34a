package service

import (
	"context"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
)

// CartFetcher, OrderPlacer and the rest are implemented by backend.Client.
type CartFetcher interface {
	GetCart(ctx context.Context, sess *session.Session) (*domain.Cart, error)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, sess *session.Session, req domain.OrderRequest) (*domain.PlacedOrder, error)
}

type OrderSource interface {
	ListOrders(ctx context.Context, sess *session.Session) ([]domain.Order, error)
	GetOrder(ctx context.Context, sess *session.Session, orderID string) (*domain.Order, error)
}

type ListingSource interface {
	ListListings(ctx context.Context, sess *session.Session) ([]domain.Listing, error)
}

type ContactSender interface {
	SendContact(ctx context.Context, sess *session.Session, msg domain.ContactMessage) error
}

// EventRecorder stores an outbox event for later publishing.
type EventRecorder interface {
	InsertEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
}
