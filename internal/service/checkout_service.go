package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/metric"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/pkg/logger"
)

const defaultSubmitLockTTL = 30 * time.Second

// CheckoutView is what the shopper sees of a wizard. Card data is always masked.
type CheckoutView struct {
	ID                string               `json:"id"`
	Step              domain.CheckoutStep  `json:"step"`
	StepName          string               `json:"stepName"`
	Cart              domain.Cart          `json:"cart"`
	Pricing           domain.Pricing       `json:"pricing"`
	Delivery          domain.DeliveryInfo  `json:"delivery"`
	Payment           domain.PaymentInfo   `json:"payment"`
	Notes             string               `json:"notes,omitempty"`
	DeliveryValidated bool                 `json:"deliveryValidated"`
	PaymentValidated  bool                 `json:"paymentValidated"`
	CanSubmit         bool                 `json:"canSubmit"`
	Confirmation      *domain.Confirmation `json:"confirmation,omitempty"`
}

type CheckoutService struct {
	carts     *CartLoader
	placer    OrderPlacer
	store     cache.WizardStore
	validator domain.StepValidator
	pricing   *pricing.Calculator
	logger    *zap.Logger
	lockTTL   time.Duration
}

func NewCheckoutService(
	carts *CartLoader,
	placer OrderPlacer,
	store cache.WizardStore,
	validator domain.StepValidator,
	calc *pricing.Calculator,
	log *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		placer:    placer,
		store:     store,
		validator: validator,
		pricing:   calc,
		logger:    log,
		lockTTL:   defaultSubmitLockTTL,
	}
}

// Begin loads the shopper's cart and opens a wizard on the delivery step.
func (s *CheckoutService) Begin(ctx context.Context, sess *session.Session) (*CheckoutView, error) {
	cart, err := s.carts.Load(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	w := domain.NewWizard(uuid.NewString(), sess.Fingerprint(), *cart)
	if err := s.store.SaveWizard(ctx, w); err != nil {
		return nil, fmt.Errorf("save checkout: %w", err)
	}

	logger.For(ctx, s.logger).Info("checkout started",
		zap.String("checkout_id", w.ID),
		zap.Int("items", cart.Count()))
	return s.view(w), nil
}

func (s *CheckoutService) Get(ctx context.Context, sess *session.Session, id string) (*CheckoutView, error) {
	w, err := s.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return s.view(w), nil
}

// UpdateDelivery stores the delivery form; notes are kept when nil.
func (s *CheckoutService) UpdateDelivery(ctx context.Context, sess *session.Session, id string, d domain.DeliveryInfo, notes *string) (*CheckoutView, error) {
	return s.mutate(ctx, sess, id, func(w *domain.Wizard) error {
		w.SetDelivery(d)
		if notes != nil {
			w.Notes = strings.TrimSpace(*notes)
		}
		return nil
	})
}

func (s *CheckoutService) UpdatePayment(ctx context.Context, sess *session.Session, id string, p domain.PaymentInfo) (*CheckoutView, error) {
	return s.mutate(ctx, sess, id, func(w *domain.Wizard) error {
		w.SetPayment(p)
		return nil
	})
}

// Advance validates the current step and moves forward. A failed validation leaves the wizard untouched.
func (s *CheckoutService) Advance(ctx context.Context, sess *session.Session, id string) (*CheckoutView, error) {
	return s.mutate(ctx, sess, id, func(w *domain.Wizard) error {
		from := w.Step
		if err := w.Advance(s.validator); err != nil {
			metric.CheckoutStepsTotal.WithLabelValues(from.String(), "invalid").Inc()
			return err
		}
		metric.CheckoutStepsTotal.WithLabelValues(from.String(), "advanced").Inc()
		return nil
	})
}

func (s *CheckoutService) Retreat(ctx context.Context, sess *session.Session, id string) (*CheckoutView, error) {
	return s.mutate(ctx, sess, id, func(w *domain.Wizard) error {
		metric.CheckoutStepsTotal.WithLabelValues(w.Step.String(), "retreated").Inc()
		w.Retreat()
		return nil
	})
}

func (s *CheckoutService) Edit(ctx context.Context, sess *session.Session, id string, step domain.CheckoutStep) (*CheckoutView, error) {
	return s.mutate(ctx, sess, id, func(w *domain.Wizard) error {
		if err := w.Edit(step); err != nil {
			return err
		}
		metric.CheckoutStepsTotal.WithLabelValues(step.String(), "edited").Inc()
		return nil
	})
}

// Submit places the order once. Repeated calls return the stored confirmation
// and a call racing an in-flight submit or edit gets ErrSubmitInProgress.
func (s *CheckoutService) Submit(ctx context.Context, sess *session.Session, id string) (*domain.Confirmation, error) {
	log := logger.For(ctx, s.logger).With(zap.String("checkout_id", id))

	w, err := s.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if w.Completed() {
		metric.OrdersSubmittedTotal.WithLabelValues("replayed").Inc()
		return w.Confirmation, nil
	}
	if err := w.ReadyToSubmit(); err != nil {
		metric.OrdersSubmittedTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// a submit that finished between our load and the lock already stored its confirmation
	w, err = s.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if w.Completed() {
		metric.OrdersSubmittedTotal.WithLabelValues("replayed").Inc()
		return w.Confirmation, nil
	}

	placed, err := s.placer.PlaceOrder(ctx, sess, w.OrderRequest())
	if err != nil {
		metric.OrdersSubmittedTotal.WithLabelValues("failed").Inc()
		log.Warn("order submission failed", zap.Error(err))
		return nil, err
	}

	total := placed.TotalAmount
	if total.IsZero() {
		total = s.pricing.Calculate(w.Cart).Total
	}
	conf := domain.Confirmation{
		OrderNumber:   placed.OrderID,
		Total:         total,
		ItemCount:     w.Cart.Count(),
		CustomerName:  w.Delivery.FullName(),
		CustomerEmail: w.Delivery.Email,
		Items:         w.Cart.Items,
		PlacedAt:      time.Now().UTC(),
	}
	w.Complete(conf)

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.store.SaveWizard(saveCtx, w); err != nil {
		// the order exists; losing the replay record only costs idempotency
		log.Error("failed to store confirmation", zap.Error(err))
	}

	metric.OrdersSubmittedTotal.WithLabelValues("placed").Inc()
	log.Info("order placed", zap.String("order_number", conf.OrderNumber))
	return &conf, nil
}

func (s *CheckoutService) mutate(ctx context.Context, sess *session.Session, id string, fn func(w *domain.Wizard) error) (*CheckoutView, error) {
	w, err := s.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if w.Completed() {
		return nil, ErrOrderAlreadyPlaced
	}

	// every write of an existing wizard holds the lock so a stale copy cannot overwrite a confirmation
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	w, err = s.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if w.Completed() {
		return nil, ErrOrderAlreadyPlaced
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := s.store.SaveWizard(ctx, w); err != nil {
		return nil, fmt.Errorf("save checkout: %w", err)
	}
	return s.view(w), nil
}

func (s *CheckoutService) lock(ctx context.Context, id string) (func(), error) {
	locked, err := s.store.AcquireSubmitLock(ctx, id, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !locked {
		return nil, ErrSubmitInProgress
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := s.store.ReleaseSubmitLock(releaseCtx, id); err != nil {
			logger.For(ctx, s.logger).Warn("failed to release checkout lock",
				zap.String("checkout_id", id), zap.Error(err))
		}
	}, nil
}

func (s *CheckoutService) load(ctx context.Context, sess *session.Session, id string) (*domain.Wizard, error) {
	w, err := s.store.GetWizard(ctx, id)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrWizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkout: %w", err)
	}
	if w.Owner != sess.Fingerprint() {
		return nil, ErrWizardNotFound
	}
	return w, nil
}

func (s *CheckoutService) view(w *domain.Wizard) *CheckoutView {
	return &CheckoutView{
		ID:                w.ID,
		Step:              w.Step,
		StepName:          w.Step.String(),
		Cart:              w.Cart,
		Pricing:           s.pricing.Calculate(w.Cart),
		Delivery:          w.Delivery,
		Payment:           w.Payment.Masked(),
		Notes:             w.Notes,
		DeliveryValidated: w.DeliveryValidated,
		PaymentValidated:  w.PaymentValidated,
		CanSubmit:         !w.Completed() && w.ReadyToSubmit() == nil,
		Confirmation:      w.Confirmation,
	}
}

// PreviewCart returns the shopper's cart with its price breakdown.
func (s *CheckoutService) PreviewCart(ctx context.Context, sess *session.Session) (*domain.Cart, domain.Pricing, error) {
	cart, err := s.carts.Load(ctx, sess)
	if err != nil {
		return nil, domain.Pricing{}, fmt.Errorf("load cart: %w", err)
	}
	return cart, s.pricing.Calculate(*cart), nil
}

func (s *CheckoutService) PricingPolicy() domain.PricingPolicy {
	return s.pricing.Policy()
}
