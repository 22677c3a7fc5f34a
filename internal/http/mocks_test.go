package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/session"
)

const testToken = "shopper-token"

var nopLogger = zap.NewNop()

// --- checkout ---

type CheckoutMock struct {
	view    *service.CheckoutView
	conf    *domain.Confirmation
	cart    *domain.Cart
	pricing domain.Pricing
	policy  domain.PricingPolicy
	err     error

	mu        sync.Mutex
	gotSess  *session.Session
	gotID    string
	gotNotes *string
	gotDeliv domain.DeliveryInfo
	gotPay   domain.PaymentInfo
	gotStep  domain.CheckoutStep
	lastCall string
}

func (m *CheckoutMock) record(call string, sess *session.Session, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCall = call
	m.gotSess = sess
	m.gotID = id
}

func (m *CheckoutMock) Begin(ctx context.Context, sess *session.Session) (*service.CheckoutView, error) {
	m.record("Begin", sess, "")
	return m.view, m.err
}

func (m *CheckoutMock) Get(ctx context.Context, sess *session.Session, id string) (*service.CheckoutView, error) {
	m.record("Get", sess, id)
	return m.view, m.err
}

func (m *CheckoutMock) UpdateDelivery(ctx context.Context, sess *session.Session, id string, d domain.DeliveryInfo, notes *string) (*service.CheckoutView, error) {
	m.record("UpdateDelivery", sess, id)
	m.gotDeliv = d
	m.gotNotes = notes
	return m.view, m.err
}

func (m *CheckoutMock) UpdatePayment(ctx context.Context, sess *session.Session, id string, p domain.PaymentInfo) (*service.CheckoutView, error) {
	m.record("UpdatePayment", sess, id)
	m.gotPay = p
	return m.view, m.err
}

func (m *CheckoutMock) Advance(ctx context.Context, sess *session.Session, id string) (*service.CheckoutView, error) {
	m.record("Advance", sess, id)
	return m.view, m.err
}

func (m *CheckoutMock) Retreat(ctx context.Context, sess *session.Session, id string) (*service.CheckoutView, error) {
	m.record("Retreat", sess, id)
	return m.view, m.err
}

func (m *CheckoutMock) Edit(ctx context.Context, sess *session.Session, id string, step domain.CheckoutStep) (*service.CheckoutView, error) {
	m.record("Edit", sess, id)
	m.gotStep = step
	return m.view, m.err
}

func (m *CheckoutMock) Submit(ctx context.Context, sess *session.Session, id string) (*domain.Confirmation, error) {
	m.record("Submit", sess, id)
	return m.conf, m.err
}

func (m *CheckoutMock) PreviewCart(ctx context.Context, sess *session.Session) (*domain.Cart, domain.Pricing, error) {
	m.record("PreviewCart", sess, "")
	return m.cart, m.pricing, m.err
}

func (m *CheckoutMock) PricingPolicy() domain.PricingPolicy {
	return m.policy
}

// --- orders ---

type OrdersMock struct {
	history  *service.OrderHistory
	order    *service.OrderView
	tracking *service.Tracking
	updates  []service.Tracking
	err      error
	watchErr error

	gotFilter service.OrderFilter
	gotID     string
}

func (m *OrdersMock) History(ctx context.Context, sess *session.Session, f service.OrderFilter) (*service.OrderHistory, error) {
	m.gotFilter = f
	return m.history, m.err
}

func (m *OrdersMock) Get(ctx context.Context, sess *session.Session, id string) (*service.OrderView, error) {
	m.gotID = id
	return m.order, m.err
}

func (m *OrdersMock) Track(ctx context.Context, sess *session.Session, id string) (*service.Tracking, error) {
	m.gotID = id
	return m.tracking, m.err
}

func (m *OrdersMock) Watch(ctx context.Context, sess *session.Session, id string, every time.Duration, push func(service.Tracking) error) error {
	for _, t := range m.updates {
		if err := push(t); err != nil {
			return err
		}
	}
	return m.watchErr
}

// --- customizer ---

type CustomizerMock struct {
	view  *service.DesignView
	saved *domain.SavedDesign
	list  []*domain.SavedDesign
	err   error

	gotDesign domain.Design
	gotChange domain.DesignChange
	gotName   string
	lastCall  string
}

func (m *CustomizerMock) Start(ctx context.Context, sess *session.Session, initial domain.Design) (*service.DesignView, error) {
	m.lastCall, m.gotDesign = "Start", initial
	return m.view, m.err
}

func (m *CustomizerMock) Get(ctx context.Context, sess *session.Session, id string) (*service.DesignView, error) {
	m.lastCall = "Get"
	return m.view, m.err
}

func (m *CustomizerMock) Change(ctx context.Context, sess *session.Session, id string, c domain.DesignChange) (*service.DesignView, error) {
	m.lastCall, m.gotChange = "Change", c
	return m.view, m.err
}

func (m *CustomizerMock) Undo(ctx context.Context, sess *session.Session, id string) (*service.DesignView, error) {
	m.lastCall = "Undo"
	return m.view, m.err
}

func (m *CustomizerMock) Redo(ctx context.Context, sess *session.Session, id string) (*service.DesignView, error) {
	m.lastCall = "Redo"
	return m.view, m.err
}

func (m *CustomizerMock) Save(ctx context.Context, sess *session.Session, id, name string) (*domain.SavedDesign, error) {
	m.lastCall, m.gotName = "Save", name
	return m.saved, m.err
}

func (m *CustomizerMock) ListSaved(ctx context.Context, sess *session.Session) ([]*domain.SavedDesign, error) {
	m.lastCall = "ListSaved"
	return m.list, m.err
}

func (m *CustomizerMock) GetSaved(ctx context.Context, sess *session.Session, id string) (*domain.SavedDesign, error) {
	m.lastCall = "GetSaved"
	return m.saved, m.err
}

// --- exchange & contact ---

type ExchangeMock struct {
	page      *service.ListingPage
	err       error
	gotFilter service.ListingFilter
}

func (m *ExchangeMock) Browse(ctx context.Context, sess *session.Session, f service.ListingFilter) (*service.ListingPage, error) {
	m.gotFilter = f
	return m.page, m.err
}

type ContactMock struct {
	err     error
	gotSess *session.Session
	got     domain.ContactMessage
	calls   int
}

func (m *ContactMock) Submit(ctx context.Context, sess *session.Session, msg domain.ContactMessage) error {
	m.calls++
	m.gotSess = sess
	m.got = msg
	return m.err
}

// --- helpers ---

type testAPI struct {
	checkout   *CheckoutMock
	orders     *OrdersMock
	customizer *CustomizerMock
	exchange   *ExchangeMock
	contact    *ContactMock
}

const storefrontOrigin = "https://shop.example"

func newTestAPI() *testAPI {
	return &testAPI{
		checkout:   &CheckoutMock{},
		orders:     &OrdersMock{},
		customizer: &CustomizerMock{},
		exchange:   &ExchangeMock{},
		contact:    &ContactMock{},
	}
}

func (a *testAPI) handlers() Handlers {
	return Handlers{
		Checkout: NewCheckoutHandler(a.checkout, 5*time.Second, nopLogger),
		Orders:   NewOrdersHandler(a.orders, 5*time.Second, 10*time.Millisecond, []string{storefrontOrigin}, nopLogger),
		Designs:  NewDesignsHandler(a.customizer, 5*time.Second, nopLogger),
		Exchange: NewExchangeHandler(a.exchange, a.contact, 5*time.Second, nopLogger),
	}
}

func (a *testAPI) router() http.Handler {
	return NewRouter(a.handlers(), RouterConfig{MaxRequestBodySize: 1 << 20}, nopLogger)
}

func authed(r *http.Request) *http.Request {
	r.Header.Set("Authorization", "Bearer "+testToken)
	return r
}

func usd(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
