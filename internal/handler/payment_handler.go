package handler

import (
	"io"
	"net/http"

	"shopcore/internal/model"
	"shopcore/internal/service"
	"shopcore/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SignatureHeader carries the gateway's webhook signature.
const SignatureHeader = "Stripe-Signature"

// maxWebhookBytes matches the payload limit the gateway documents for events.
const maxWebhookBytes = 64 << 10

// PaymentHandler handles payment intents and gateway webhooks.
type PaymentHandler struct {
	payments  service.PaymentService
	webhooks  service.WebhookService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(payments service.PaymentService, webhooks service.WebhookService, validator *validation.Validator, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments:  payments,
		webhooks:  webhooks,
		validator: validator,
		logger:    logger.With().Str("handler", "payment").Logger(),
	}
}

// CreateIntent handles POST /api/payments/intent.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeError(w, r, model.NewValidationError("request validation failed", map[string]string{
			"order_id": "Must be a valid UUID.",
		}), h.logger)
		return
	}

	intent, err := h.payments.CreateIntent(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, intent)
}

// Webhook handles POST /api/payments/webhook. The raw body is passed on
// untouched since the signature covers its exact bytes.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, r, model.ErrInvalidPayload, h.logger)
		return
	}

	result, err := h.webhooks.Handle(r.Context(), payload, r.Header.Get(SignatureHeader))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
