package handler

import (
	"net/http"

	"shopcore/internal/middleware"
	"shopcore/internal/model"
	"shopcore/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles the checkout entrypoint.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /api/checkout. The caller is a guest unless the
// request carries an authenticated account.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	identity := model.Identity{AccountID: middleware.AccountID(r.Context())}

	order, err := h.service.Checkout(r.Context(), identity, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}
