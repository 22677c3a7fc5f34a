package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/pkg/logger"
)

type ContactValidator interface {
	ValidateContact(m domain.ContactMessage) error
}

type ContactService struct {
	sender    ContactSender
	events    EventRecorder
	validator ContactValidator
	logger    *zap.Logger
}

func NewContactService(sender ContactSender, events EventRecorder, v ContactValidator, log *zap.Logger) *ContactService {
	return &ContactService{sender: sender, events: events, validator: v, logger: log}
}

// Submit validates and forwards a contact message, then records it as an event.
// sess may be nil for anonymous visitors.
func (s *ContactService) Submit(ctx context.Context, sess *session.Session, m domain.ContactMessage) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	if err := s.validator.ValidateContact(m); err != nil {
		return err
	}

	if err := s.sender.SendContact(ctx, sess, m); err != nil {
		return err
	}

	id := uuid.NewString()
	payload, err := json.Marshal(map[string]any{
		"contact_id":   id,
		"email":        m.Email,
		"subject":      m.Subject,
		"submitted_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal contact event: %w", err)
	}
	// the message already reached the backend, a lost event is only logged
	if err := s.events.InsertEvent(ctx, id, repository.EventContactSubmitted, payload); err != nil {
		logger.For(ctx, s.logger).Error("failed to record contact event", zap.Error(err))
	}
	return nil
}
