package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/session"
)

type CheckoutAPI interface {
	Begin(ctx context.Context, sess *session.Session) (*service.CheckoutView, error)
	Get(ctx context.Context, sess *session.Session, id string) (*service.CheckoutView, error)
	UpdateDelivery(ctx context.Context, sess *session.Session, id string, d domain.DeliveryInfo, notes *string) (*service.CheckoutView, error)
	UpdatePayment(ctx context.Context, sess *session.Session, id string, p domain.PaymentInfo) (*service.CheckoutView, error)
	Advance(ctx context.Context, sess *session.Session, id string) (*service.CheckoutView, error)
	Retreat(ctx context.Context, sess *session.Session, id string) (*service.CheckoutView, error)
	Edit(ctx context.Context, sess *session.Session, id string, step domain.CheckoutStep) (*service.CheckoutView, error)
	Submit(ctx context.Context, sess *session.Session, id string) (*domain.Confirmation, error)
	PreviewCart(ctx context.Context, sess *session.Session) (*domain.Cart, domain.Pricing, error)
	PricingPolicy() domain.PricingPolicy
}

type CheckoutHandler struct {
	checkout CheckoutAPI
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout CheckoutAPI, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
		logger:   log,
	}
}

type DeliveryRequestDTO struct {
	domain.DeliveryInfo
	Notes *string `json:"notes,omitempty"`
}

type CartPreviewDTO struct {
	Cart    *domain.Cart   `json:"cart"`
	Pricing domain.Pricing `json:"pricing"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.checkout.Begin(ctx, sessionFrom(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// GET /api/v1/checkout/{checkout_id}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.checkout.Get(ctx, sessionFrom(r), chi.URLParam(r, "checkout_id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// PUT /api/v1/checkout/{checkout_id}/delivery
func (h *CheckoutHandler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req DeliveryRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	view, err := h.checkout.UpdateDelivery(ctx, sessionFrom(r), chi.URLParam(r, "checkout_id"), req.DeliveryInfo, req.Notes)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// PUT /api/v1/checkout/{checkout_id}/payment
func (h *CheckoutHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.PaymentInfo
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	view, err := h.checkout.UpdatePayment(ctx, sessionFrom(r), chi.URLParam(r, "checkout_id"), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// POST /api/v1/checkout/{checkout_id}/advance
func (h *CheckoutHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.checkout.Advance)
}

// POST /api/v1/checkout/{checkout_id}/retreat
func (h *CheckoutHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.checkout.Retreat)
}

// POST /api/v1/checkout/{checkout_id}/edit/{step}
func (h *CheckoutHandler) Edit(w http.ResponseWriter, r *http.Request) {
	step, ok := parseStep(chi.URLParam(r, "step"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_step", "step must be delivery, payment or confirm")
		return
	}
	h.move(w, r, func(ctx context.Context, sess *session.Session, id string) (*service.CheckoutView, error) {
		return h.checkout.Edit(ctx, sess, id, step)
	})
}

// POST /api/v1/checkout/{checkout_id}/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	conf, err := h.checkout.Submit(ctx, sessionFrom(r), chi.URLParam(r, "checkout_id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, conf)
}

// GET /api/v1/cart
func (h *CheckoutHandler) PreviewCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, pricing, err := h.checkout.PreviewCart(ctx, sessionFrom(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, CartPreviewDTO{Cart: cart, Pricing: pricing})
}

// GET /api/v1/shop/pricing-policy
func (h *CheckoutHandler) PricingPolicy(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.checkout.PricingPolicy())
}

func (h *CheckoutHandler) move(w http.ResponseWriter, r *http.Request, fn func(context.Context, *session.Session, string) (*service.CheckoutView, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := fn(ctx, sessionFrom(r), chi.URLParam(r, "checkout_id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// parseStep accepts a step name or its number.
func parseStep(s string) (domain.CheckoutStep, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		step := domain.CheckoutStep(n)
		return step, step.Valid()
	}
	for _, step := range []domain.CheckoutStep{domain.StepDelivery, domain.StepPayment, domain.StepConfirm} {
		if strings.EqualFold(s, step.String()) {
			return step, true
		}
	}
	return 0, false
}
