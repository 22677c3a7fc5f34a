package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/pkg/logger"
)

type NameValidator interface {
	ValidateDesignName(name string) error
}

type DesignView struct {
	ID        string          `json:"id"`
	Design    domain.Design   `json:"design"`
	Price     decimal.Decimal `json:"price"`
	CanUndo   bool            `json:"canUndo"`
	CanRedo   bool            `json:"canRedo"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type CustomizerService struct {
	store     cache.DesignStore
	repo      repository.DesignRepository
	validator NameValidator
	depth     int
	logger    *zap.Logger
}

func NewCustomizerService(store cache.DesignStore, repo repository.DesignRepository, v NameValidator, log *zap.Logger) *CustomizerService {
	return &CustomizerService{
		store:     store,
		repo:      repo,
		validator: v,
		depth:     domain.DefaultHistoryDepth,
		logger:    log,
	}
}

func (s *CustomizerService) Start(ctx context.Context, sess *session.Session, initial domain.Design) (*DesignView, error) {
	if initial.Material == "" {
		initial.Material = domain.MaterialCanvas
	}
	if _, err := initial.Price(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ds := &domain.DesignSession{
		ID:        uuid.NewString(),
		Owner:     sess.Fingerprint(),
		History:   domain.NewDesignHistory(initial, s.depth),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveDesignSession(ctx, ds); err != nil {
		return nil, fmt.Errorf("save design session: %w", err)
	}
	return designView(ds)
}

func (s *CustomizerService) Get(ctx context.Context, sess *session.Session, id string) (*DesignView, error) {
	ds, err := s.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return designView(ds)
}

// Change applies a partial edit. An edit producing an unpriceable design is rejected.
func (s *CustomizerService) Change(ctx context.Context, sess *session.Session, id string, c domain.DesignChange) (*DesignView, error) {
	return s.mutate(ctx, sess, id, func(h *domain.DesignHistory) error {
		if _, err := h.Current.Apply(c).Price(); err != nil {
			return err
		}
		h.Apply(c)
		return nil
	})
}

func (s *CustomizerService) Undo(ctx context.Context, sess *session.Session, id string) (*DesignView, error) {
	return s.mutate(ctx, sess, id, func(h *domain.DesignHistory) error {
		return h.Undo()
	})
}

func (s *CustomizerService) Redo(ctx context.Context, sess *session.Session, id string) (*DesignView, error) {
	return s.mutate(ctx, sess, id, func(h *domain.DesignHistory) error {
		return h.Redo()
	})
}

// Save persists the current design under a name; the DesignSaved event is written with it.
func (s *CustomizerService) Save(ctx context.Context, sess *session.Session, id, name string) (*domain.SavedDesign, error) {
	if err := s.validator.ValidateDesignName(name); err != nil {
		return nil, err
	}
	ds, err := s.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	price, err := ds.History.Current.Price()
	if err != nil {
		return nil, err
	}

	saved := &domain.SavedDesign{
		ID:        uuid.NewString(),
		Owner:     ds.Owner,
		Name:      strings.TrimSpace(name),
		Design:    ds.History.Current,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.SaveDesign(ctx, saved); err != nil {
		return nil, fmt.Errorf("save design: %w", err)
	}

	logger.For(ctx, s.logger).Info("design saved",
		zap.String("design_id", saved.ID),
		zap.String("base_model", saved.Design.BaseModel))
	return saved, nil
}

func (s *CustomizerService) ListSaved(ctx context.Context, sess *session.Session) ([]*domain.SavedDesign, error) {
	designs, err := s.repo.ListDesigns(ctx, sess.Fingerprint())
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	return designs, nil
}

func (s *CustomizerService) GetSaved(ctx context.Context, sess *session.Session, id string) (*domain.SavedDesign, error) {
	d, err := s.repo.GetDesign(ctx, id, sess.Fingerprint())
	if errors.Is(err, repository.ErrDesignNotFound) {
		return nil, ErrDesignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get design: %w", err)
	}
	return d, nil
}

func (s *CustomizerService) mutate(ctx context.Context, sess *session.Session, id string, fn func(h *domain.DesignHistory) error) (*DesignView, error) {
	ds, err := s.load(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := fn(&ds.History); err != nil {
		return nil, err
	}
	ds.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveDesignSession(ctx, ds); err != nil {
		return nil, fmt.Errorf("save design session: %w", err)
	}
	return designView(ds)
}

func (s *CustomizerService) load(ctx context.Context, sess *session.Session, id string) (*domain.DesignSession, error) {
	ds, err := s.store.GetDesignSession(ctx, id)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrDesignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load design session: %w", err)
	}
	if ds.Owner != sess.Fingerprint() {
		return nil, ErrDesignNotFound
	}
	return ds, nil
}

func designView(ds *domain.DesignSession) (*DesignView, error) {
	price, err := ds.History.Current.Price()
	if err != nil {
		return nil, err
	}
	return &DesignView{
		ID:        ds.ID,
		Design:    ds.History.Current,
		Price:     price,
		CanUndo:   ds.History.CanUndo(),
		CanRedo:   ds.History.CanRedo(),
		UpdatedAt: ds.UpdatedAt,
	}, nil
}
