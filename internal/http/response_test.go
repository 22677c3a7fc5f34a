package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/validation"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		redirect string
		message  string
	}{
		{
			name:     "empty cart sends shopper back to the shop",
			err:      fmt.Errorf("begin: %w", domain.ErrEmptyCart),
			status:   http.StatusConflict,
			code:     "empty_cart",
			redirect: "/shop",
		},
		{
			name:     "expired session sends shopper to login",
			err:      fmt.Errorf("load cart: %w", &backend.APIError{Status: http.StatusUnauthorized, Message: "jwt expired"}),
			status:   http.StatusUnauthorized,
			code:     "unauthorized",
			redirect: "/login",
		},
		{name: "unknown wizard", err: service.ErrWizardNotFound, status: http.StatusNotFound, code: "not_found"},
		{name: "unknown design", err: service.ErrDesignNotFound, status: http.StatusNotFound, code: "not_found"},
		{name: "unknown order", err: service.ErrOrderNotFound, status: http.StatusNotFound, code: "not_found"},
		{name: "submit racing", err: service.ErrSubmitInProgress, status: http.StatusConflict, code: "submit_in_progress"},
		{name: "wizard already done", err: service.ErrOrderAlreadyPlaced, status: http.StatusConflict, code: "already_placed"},
		{name: "illegal step", err: domain.ErrIllegalTransition, status: http.StatusConflict, code: "illegal_step"},
		{name: "submit off confirm", err: domain.ErrNotOnConfirmStep, status: http.StatusConflict, code: "illegal_step"},
		{name: "unvalidated step", err: domain.ErrStepNotValidated, status: http.StatusConflict, code: "illegal_step"},
		{name: "nothing to undo", err: domain.ErrNothingToUndo, status: http.StatusConflict, code: "empty_history"},
		{name: "nothing to redo", err: domain.ErrNothingToRedo, status: http.StatusConflict, code: "empty_history"},
		{name: "unknown model", err: domain.ErrUnknownModel, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "unknown material", err: domain.ErrUnknownMaterial, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "bad filter", err: fmt.Errorf("%w: unknown sort", service.ErrInvalidFilter), status: http.StatusBadRequest, code: "invalid_argument"},
		{
			name:   "breaker open",
			err:    fmt.Errorf("get cart: %w", backend.ErrUnavailable),
			status: http.StatusServiceUnavailable,
			code:   "backend_unavailable",
		},
		{
			name:    "business rejection keeps backend message",
			err:     &backend.APIError{Status: http.StatusUnprocessableEntity, Message: "Product Air Max is out of stock"},
			status:  http.StatusBadRequest,
			code:    "backend_rejected",
			message: "Product Air Max is out of stock",
		},
		{
			name:    "backend conflict keeps status",
			err:     &backend.APIError{Status: http.StatusConflict, Message: "Cart changed"},
			status:  http.StatusConflict,
			code:    "backend_rejected",
			message: "Cart changed",
		},
		{
			name:   "backend 5xx",
			err:    &backend.APIError{Status: http.StatusInternalServerError, Message: "db down"},
			status: http.StatusBadGateway,
			code:   "backend_error",
		},
		{name: "deadline", err: fmt.Errorf("place order: %w", context.DeadlineExceeded), status: http.StatusGatewayTimeout, code: "timeout"},
		{name: "anything else", err: errors.New("boom"), status: http.StatusInternalServerError, code: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := classify(tt.err)

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.redirect, body.Redirect)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Error)
			}
		})
	}
}

func TestClassify_ValidationErrorListsFields(t *testing.T) {
	err := &validation.Error{Form: "delivery", Fields: []validation.FieldError{
		{Field: "email", Message: "please enter a valid email address"},
	}}

	status, body := classify(fmt.Errorf("advance: %w", err))

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "validation_failed", body.Code)
	assert.Equal(t, "please enter a valid email address", body.Error)
	assert.Len(t, body.Fields, 1)
	assert.Equal(t, "email", body.Fields[0].Field)
}

func TestClassify_InternalDetailsStayHidden(t *testing.T) {
	_, body := classify(errors.New("pq: connection refused"))

	assert.NotContains(t, body.Error, "pq")
}
