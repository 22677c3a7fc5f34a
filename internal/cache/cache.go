package cache

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/storefront/internal/domain"
)

type WizardStore interface {
	GetWizard(ctx context.Context, id string) (*domain.Wizard, error)
	SaveWizard(ctx context.Context, w *domain.Wizard) error
	DeleteWizard(ctx context.Context, id string) error
	// AcquireSubmitLock reports false when another submit or update holds the lock.
	AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, id string) error
}

type DesignStore interface {
	GetDesignSession(ctx context.Context, id string) (*domain.DesignSession, error)
	SaveDesignSession(ctx context.Context, s *domain.DesignSession) error
}

var ErrCacheMiss = errors.New("cache miss")
