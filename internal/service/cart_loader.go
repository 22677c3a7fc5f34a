package service

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
)

// CartLoader collapses concurrent cart fetches for the same shopper into one backend call.
type CartLoader struct {
	backend CartFetcher
	sfg     singleflight.Group
}

func NewCartLoader(backend CartFetcher) *CartLoader {
	return &CartLoader{backend: backend}
}

func (l *CartLoader) Load(ctx context.Context, sess *session.Session) (*domain.Cart, error) {
	v, err, _ := l.sfg.Do(sess.Fingerprint(), func() (interface{}, error) {
		return l.backend.GetCart(ctx, sess)
	})
	if err != nil {
		return nil, err
	}

	if v == nil || v.(*domain.Cart) == nil {
		return &domain.Cart{Items: []domain.CartItem{}}, nil
	}

	// callers sharing a result must not share its slice
	cart := *v.(*domain.Cart)
	cart.Items = append([]domain.CartItem(nil), cart.Items...)
	return &cart, nil
}
