package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/storefront/internal/domain"
)

const (
	EventDesignSaved      = "DesignSaved"
	EventContactSubmitted = "ContactSubmitted"
)

var ErrDesignNotFound = errors.New("design not found")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is a domain event waiting to be published.
type OutboxEvent struct {
	ID          int
	AggregateId string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type DesignRepository interface {
	// SaveDesign stores the design and its DesignSaved event in one transaction.
	SaveDesign(ctx context.Context, d *domain.SavedDesign) error
	GetDesign(ctx context.Context, id, owner string) (*domain.SavedDesign, error)
	ListDesigns(ctx context.Context, owner string) ([]*domain.SavedDesign, error)
}

type OutboxRepository interface {
	InsertEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int) error
}

