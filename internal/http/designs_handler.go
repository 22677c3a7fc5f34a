package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/session"
)

type CustomizerAPI interface {
	Start(ctx context.Context, sess *session.Session, initial domain.Design) (*service.DesignView, error)
	Get(ctx context.Context, sess *session.Session, id string) (*service.DesignView, error)
	Change(ctx context.Context, sess *session.Session, id string, c domain.DesignChange) (*service.DesignView, error)
	Undo(ctx context.Context, sess *session.Session, id string) (*service.DesignView, error)
	Redo(ctx context.Context, sess *session.Session, id string) (*service.DesignView, error)
	Save(ctx context.Context, sess *session.Session, id, name string) (*domain.SavedDesign, error)
	ListSaved(ctx context.Context, sess *session.Session) ([]*domain.SavedDesign, error)
	GetSaved(ctx context.Context, sess *session.Session, id string) (*domain.SavedDesign, error)
}

type DesignsHandler struct {
	customizer CustomizerAPI
	timeout    time.Duration
	logger     *zap.Logger
}

func NewDesignsHandler(customizer CustomizerAPI, timeout time.Duration, log *zap.Logger) *DesignsHandler {
	return &DesignsHandler{
		customizer: customizer,
		timeout:    timeout,
		logger:     log,
	}
}

type SaveDesignRequestDTO struct {
	Name string `json:"name"`
}

// POST /api/v1/designs
func (h *DesignsHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Design
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	view, err := h.customizer.Start(ctx, sessionFrom(r), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// GET /api/v1/designs/{design_id}
func (h *DesignsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.customizer.Get)
}

// POST /api/v1/designs/{design_id}/changes
func (h *DesignsHandler) Change(w http.ResponseWriter, r *http.Request) {
	var req domain.DesignChange
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.step(w, r, func(ctx context.Context, sess *session.Session, id string) (*service.DesignView, error) {
		return h.customizer.Change(ctx, sess, id, req)
	})
}

// POST /api/v1/designs/{design_id}/undo
func (h *DesignsHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.customizer.Undo)
}

// POST /api/v1/designs/{design_id}/redo
func (h *DesignsHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.customizer.Redo)
}

// POST /api/v1/designs/{design_id}/save
func (h *DesignsHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SaveDesignRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	saved, err := h.customizer.Save(ctx, sessionFrom(r), chi.URLParam(r, "design_id"), req.Name)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// GET /api/v1/designs/saved
func (h *DesignsHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	designs, err := h.customizer.ListSaved(ctx, sessionFrom(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if designs == nil {
		designs = make([]*domain.SavedDesign, 0)
	}
	respondJSON(w, http.StatusOK, designs)
}

// GET /api/v1/designs/saved/{design_id}
func (h *DesignsHandler) GetSaved(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	d, err := h.customizer.GetSaved(ctx, sessionFrom(r), chi.URLParam(r, "design_id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *DesignsHandler) step(w http.ResponseWriter, r *http.Request, fn func(context.Context, *session.Session, string) (*service.DesignView, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := fn(ctx, sessionFrom(r), chi.URLParam(r, "design_id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
