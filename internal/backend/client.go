// Package backend talks to the shop's REST backend on behalf of a shopper session.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/metric"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/pkg/circuitbreaker"
)

const maxResponseBytes = 4 << 20

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[struct{}]
	logger  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithBreaker(cfg circuitbreaker.Config) Option {
	return func(cl *Client) { cl.cb = cl.newBreaker(cfg) }
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout: timeout,
		logger:  logger,
	}
	c.cb = c.newBreaker(circuitbreaker.DefaultConfig("shop-backend"))
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newBreaker(cfg circuitbreaker.Config) *gobreaker.CircuitBreaker[struct{}] {
	cfg.IsSuccessful = countsAsSuccess
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		c.logger.Warn("backend circuit breaker state changed",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
		metric.BreakerState.WithLabelValues(name).Set(float64(to))
	}
	return circuitbreaker.New[struct{}](cfg)
}

// countsAsSuccess keeps business refusals and caller cancellations from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Business()
}

func (c *Client) GetCart(ctx context.Context, sess *session.Session) (*domain.Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, sess, "cart", http.MethodGet, "/api/cart", nil, &resp); err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return resp.Cart.toDomain(), nil
}

func (c *Client) PlaceOrder(ctx context.Context, sess *session.Session, req domain.OrderRequest) (*domain.PlacedOrder, error) {
	var resp orderResponse
	if err := c.do(ctx, sess, "checkout", http.MethodPost, "/api/shop/checkout", req, &resp); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	if resp.Order == nil {
		return nil, fmt.Errorf("place order: %w", &APIError{Status: http.StatusBadGateway, Message: "backend returned no order"})
	}
	return resp.Order.toPlaced(), nil
}

func (c *Client) ListOrders(ctx context.Context, sess *session.Session) ([]domain.Order, error) {
	var resp ordersResponse
	if err := c.do(ctx, sess, "orders", http.MethodGet, "/api/shop/orders", nil, &resp); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders := make([]domain.Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		orders = append(orders, o.toDomain())
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, sess *session.Session, orderID string) (*domain.Order, error) {
	var resp orderResponse
	path := "/api/shop/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, sess, "order", http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if resp.Order == nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, &APIError{Status: http.StatusNotFound, Message: "order not found"})
	}
	o := resp.Order.toDomain()
	return &o, nil
}

func (c *Client) ListListings(ctx context.Context, sess *session.Session) ([]domain.Listing, error) {
	var resp listingsResponse
	if err := c.do(ctx, sess, "listings", http.MethodGet, "/api/exchange/listings", nil, &resp); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	listings := make([]domain.Listing, 0, len(resp.Listings))
	for _, l := range resp.Listings {
		listings = append(listings, l.toDomain())
	}
	return listings, nil
}

// SendContact posts a contact form; sess may be nil.
func (c *Client) SendContact(ctx context.Context, sess *session.Session, msg domain.ContactMessage) error {
	var resp envelope
	if err := c.do(ctx, sess, "contact", http.MethodPost, "/api/contact", msg, &resp); err != nil {
		return fmt.Errorf("send contact: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, sess *session.Session, endpoint, method, path string, in, out any) error {
	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, c.roundTrip(ctx, sess, endpoint, method, path, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, sess *session.Session, endpoint, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	sess.Apply(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metric.ObserveBackend(endpoint, 0, time.Since(start))
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	metric.ObserveBackend(endpoint, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("backend request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if env.Success != nil && !*env.Success {
		msg := env.text()
		if msg == "" {
			msg = "request was not successful"
		}
		return &APIError{Status: http.StatusUnprocessableEntity, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Status: http.StatusBadGateway, Message: "malformed backend response"}
	}
	return nil
}
