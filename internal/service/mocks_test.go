package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/session"
)

// MockBackend implements every backend-facing interface of the service package
type MockBackend struct {
	Cart       *domain.Cart
	CartErr    error
	CartCalls  atomic.Int32
	CartGate   chan struct{}
	Placed     *domain.PlacedOrder
	PlaceErr   error
	PlaceGate  chan struct{} // blocks PlaceOrder until closed
	Placing    chan struct{} // signalled when PlaceOrder is entered
	PlaceCalls atomic.Int32
	PlacedReq  domain.OrderRequest
	Orders     []domain.Order
	OrdersErr  error
	OrderByID  map[string][]domain.Order // successive answers per order id
	OrderErr   error
	Listings   []domain.Listing
	ListErr    error
	Contacts   []domain.ContactMessage
	ContactErr error

	mu sync.Mutex
}

func (m *MockBackend) GetCart(_ context.Context, _ *session.Session) (*domain.Cart, error) {
	m.CartCalls.Add(1)
	if m.CartGate != nil {
		<-m.CartGate
	}
	return m.Cart, m.CartErr
}

func (m *MockBackend) PlaceOrder(_ context.Context, _ *session.Session, req domain.OrderRequest) (*domain.PlacedOrder, error) {
	m.PlaceCalls.Add(1)
	if m.PlaceGate != nil {
		signal(m.Placing)
		<-m.PlaceGate
	}
	m.mu.Lock()
	m.PlacedReq = req
	m.mu.Unlock()
	return m.Placed, m.PlaceErr
}

func (m *MockBackend) ListOrders(_ context.Context, _ *session.Session) ([]domain.Order, error) {
	return m.Orders, m.OrdersErr
}

func (m *MockBackend) GetOrder(_ context.Context, _ *session.Session, id string) (*domain.Order, error) {
	if m.OrderErr != nil {
		return nil, m.OrderErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	answers := m.OrderByID[id]
	o := answers[0]
	if len(answers) > 1 {
		m.OrderByID[id] = answers[1:]
	}
	return &o, nil
}

func (m *MockBackend) ListListings(_ context.Context, _ *session.Session) ([]domain.Listing, error) {
	return m.Listings, m.ListErr
}

func (m *MockBackend) SendContact(_ context.Context, _ *session.Session, msg domain.ContactMessage) error {
	if m.ContactErr != nil {
		return m.ContactErr
	}
	m.Contacts = append(m.Contacts, msg)
	return nil
}

// MockWizardStore implements cache.WizardStore in memory, round-tripping through JSON like redis
type MockWizardStore struct {
	mu      sync.Mutex
	Wizards map[string][]byte
	Locks   map[string]bool
	SaveErr error
	LockErr error
	// SaveGate blocks SaveWizard until closed; Saving is signalled on entry
	SaveGate chan struct{}
	Saving   chan struct{}
}

func NewMockWizardStore() *MockWizardStore {
	return &MockWizardStore{Wizards: map[string][]byte{}, Locks: map[string]bool{}}
}

func (m *MockWizardStore) GetWizard(_ context.Context, id string) (*domain.Wizard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Wizards[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	var w domain.Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (m *MockWizardStore) SaveWizard(_ context.Context, w *domain.Wizard) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.SaveGate != nil {
		signal(m.Saving)
		<-m.SaveGate
	}
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Wizards[w.ID] = data
	return nil
}

func (m *MockWizardStore) DeleteWizard(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Wizards, id)
	return nil
}

func (m *MockWizardStore) AcquireSubmitLock(_ context.Context, id string, _ time.Duration) (bool, error) {
	if m.LockErr != nil {
		return false, m.LockErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Locks[id] {
		return false, nil
	}
	m.Locks[id] = true
	return true, nil
}

func (m *MockWizardStore) ReleaseSubmitLock(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Locks, id)
	return nil
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// MockDesignStore implements cache.DesignStore in memory
type MockDesignStore struct {
	Sessions map[string][]byte
}

func NewMockDesignStore() *MockDesignStore {
	return &MockDesignStore{Sessions: map[string][]byte{}}
}

func (m *MockDesignStore) GetDesignSession(_ context.Context, id string) (*domain.DesignSession, error) {
	data, ok := m.Sessions[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	var s domain.DesignSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MockDesignStore) SaveDesignSession(_ context.Context, s *domain.DesignSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.Sessions[s.ID] = data
	return nil
}

// MockRepository implements repository.DesignRepository and EventRecorder
type MockRepository struct {
	Designs   []*domain.SavedDesign
	SaveErr   error
	Events    []*repository.OutboxEvent
	InsertErr error
}

func (m *MockRepository) SaveDesign(_ context.Context, d *domain.SavedDesign) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Designs = append(m.Designs, d)
	return nil
}

func (m *MockRepository) GetDesign(_ context.Context, id, owner string) (*domain.SavedDesign, error) {
	for _, d := range m.Designs {
		if d.ID == id && d.Owner == owner {
			return d, nil
		}
	}
	return nil, repository.ErrDesignNotFound
}

func (m *MockRepository) ListDesigns(_ context.Context, owner string) ([]*domain.SavedDesign, error) {
	var out []*domain.SavedDesign
	for _, d := range m.Designs {
		if d.Owner == owner {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockRepository) InsertEvent(_ context.Context, aggregateID, eventType string, payload []byte) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Events = append(m.Events, &repository.OutboxEvent{
		ID:          len(m.Events) + 1,
		AggregateId: aggregateID,
		EventType:   eventType,
		Payload:     payload,
	})
	return nil
}
