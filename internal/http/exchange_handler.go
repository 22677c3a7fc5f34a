package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/session"
)

type ExchangeAPI interface {
	Browse(ctx context.Context, sess *session.Session, f service.ListingFilter) (*service.ListingPage, error)
}

type ContactAPI interface {
	Submit(ctx context.Context, sess *session.Session, m domain.ContactMessage) error
}

type ExchangeHandler struct {
	exchange ExchangeAPI
	contact  ContactAPI
	timeout  time.Duration
	logger   *zap.Logger
}

func NewExchangeHandler(exchange ExchangeAPI, contact ContactAPI, timeout time.Duration, log *zap.Logger) *ExchangeHandler {
	return &ExchangeHandler{
		exchange: exchange,
		contact:  contact,
		timeout:  timeout,
		logger:   log,
	}
}

type ContactResponseDTO struct {
	Message string `json:"message"`
}

// GET /api/v1/exchange/listings?brand=&size=&condition=&maxPrice=&search=&sort=&page=&pageSize=
func (h *ExchangeHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	filter := service.ListingFilter{
		Brand:     q.Get("brand"),
		Size:      q.Get("size"),
		Condition: domain.Condition(strings.ToLower(q.Get("condition"))),
		Search:    q.Get("search"),
		Sort:      q.Get("sort"),
	}
	if v := q.Get("maxPrice"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_argument", "maxPrice must be a number")
			return
		}
		filter.MaxPrice = &price
	}
	var err error
	if filter.Page, err = queryInt(q.Get("page")); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "page must be a number")
		return
	}
	if filter.PageSize, err = queryInt(q.Get("pageSize")); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", "pageSize must be a number")
		return
	}

	page, err := h.exchange.Browse(ctx, sessionFrom(r), filter)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// POST /api/v1/contact
func (h *ExchangeHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.ContactMessage
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.contact.Submit(ctx, sessionFrom(r), req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusAccepted, ContactResponseDTO{Message: "thanks, we will get back to you soon"})
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
