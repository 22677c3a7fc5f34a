package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/pkg/logger"
)

const (
	defaultTrackInterval = 5 * time.Second
	trackWriteWait       = 10 * time.Second
)

type OrdersAPI interface {
	History(ctx context.Context, sess *session.Session, f service.OrderFilter) (*service.OrderHistory, error)
	Get(ctx context.Context, sess *session.Session, id string) (*service.OrderView, error)
	Track(ctx context.Context, sess *session.Session, id string) (*service.Tracking, error)
	Watch(ctx context.Context, sess *session.Session, id string, every time.Duration, push func(service.Tracking) error) error
}

type OrdersHandler struct {
	orders        OrdersAPI
	timeout       time.Duration
	trackInterval time.Duration
	upgrader      websocket.Upgrader
	logger        *zap.Logger
}

// NewOrdersHandler builds the order routes. The tracking websocket accepts same-origin
// browsers plus allowedOrigins; "*" allows any origin.
func NewOrdersHandler(orders OrdersAPI, timeout, trackInterval time.Duration, allowedOrigins []string, log *zap.Logger) *OrdersHandler {
	if trackInterval <= 0 {
		trackInterval = defaultTrackInterval
	}
	return &OrdersHandler{
		orders:        orders,
		timeout:       timeout,
		trackInterval: trackInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// GET /api/v1/orders?status=&search=&from=&to=&sort=
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	filter := service.OrderFilter{
		Status: domain.OrderStatus(strings.ToLower(q.Get("status"))),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
	}
	var err error
	if filter.From, err = parseDate(q.Get("from"), false); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "from must be a date (YYYY-MM-DD) or RFC3339 time")
		return
	}
	if filter.To, err = parseDate(q.Get("to"), true); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "to must be a date (YYYY-MM-DD) or RFC3339 time")
		return
	}

	history, err := h.orders.History(ctx, sessionFrom(r), filter)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.Get(ctx, sessionFrom(r), chi.URLParam(r, "order_id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// GET /api/v1/orders/{order_id}/tracking
func (h *OrdersHandler) GetTracking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	t, err := h.orders.Track(ctx, sessionFrom(r), chi.URLParam(r, "order_id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// GET /api/v1/orders/{order_id}/track (websocket)
// Pushes the tracking timeline on every status change and closes on a terminal status.
func (h *OrdersHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	id := chi.URLParam(r, "order_id")

	// unknown orders get a plain HTTP error before the upgrade
	checkCtx, cancel := context.WithTimeout(r.Context(), h.timeout)
	_, err := h.orders.Track(checkCtx, sess, id)
	cancel()
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		return
	}
	defer conn.Close()

	log := logger.For(r.Context(), h.logger).With(zap.String("order_id", id))
	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	// the read loop only notices the client going away
	go func() {
		defer stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = h.orders.Watch(ctx, sess, id, h.trackInterval, func(t service.Tracking) error {
		_ = conn.SetWriteDeadline(time.Now().Add(trackWriteWait))
		return conn.WriteJSON(t)
	})

	closeCode, reason := websocket.CloseNormalClosure, "order reached a final status"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		return
	default:
		log.Warn("order tracking stopped", zap.Error(err))
		status, body := classify(err)
		_ = conn.WriteJSON(body)
		closeCode, reason = websocket.CloseInternalServerErr, http.StatusText(status)
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(closeCode, reason),
		time.Now().Add(trackWriteWait))
}

// parseDate reads a date or RFC3339 time. A bare date used as an upper bound covers the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
