package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"github.com/fjod/storefront/internal/validation"
	"github.com/fjod/storefront/pkg/logger"
)

const (
	loginRedirect = "/login"
	shopRedirect  = "/shop"

	fallbackMessage = "something went wrong, please try again"
)

type ErrorResponse struct {
	Error    string                  `json:"error"`
	Code     string                  `json:"code,omitempty"`
	Details  string                  `json:"details,omitempty"`
	Redirect string                  `json:"redirect,omitempty"`
	Fields   []validation.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError turns a service error into the storefront error response.
func handleError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.For(r.Context(), log).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	respondJSON(w, status, body)
}

func classify(err error) (int, ErrorResponse) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:  verr.Error(),
			Code:   "validation_failed",
			Fields: verr.Fields,
		}
	}

	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "empty_cart", Redirect: shopRedirect}
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Error: "please log in again", Code: "unauthorized", Redirect: loginRedirect}
	case errors.Is(err, service.ErrWizardNotFound),
		errors.Is(err, service.ErrDesignNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"}
	case errors.Is(err, service.ErrSubmitInProgress):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "submit_in_progress"}
	case errors.Is(err, service.ErrOrderAlreadyPlaced):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "already_placed"}
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrNotOnConfirmStep),
		errors.Is(err, domain.ErrStepNotValidated):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "illegal_step"}
	case errors.Is(err, domain.ErrNothingToUndo),
		errors.Is(err, domain.ErrNothingToRedo):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "empty_history"}
	case errors.Is(err, domain.ErrUnknownModel),
		errors.Is(err, domain.ErrUnknownMaterial),
		errors.Is(err, service.ErrInvalidFilter):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_argument"}
	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{Error: fallbackMessage, Code: "backend_unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: fallbackMessage, Code: "timeout"}
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallbackMessage
		}
		switch {
		case apiErr.Status == http.StatusConflict:
			return http.StatusConflict, ErrorResponse{Error: msg, Code: "backend_rejected"}
		case apiErr.Business():
			return http.StatusBadRequest, ErrorResponse{Error: msg, Code: "backend_rejected"}
		default:
			return http.StatusBadGateway, ErrorResponse{Error: fallbackMessage, Code: "backend_error", Details: msg}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{Error: fallbackMessage, Code: "internal_error"}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
