package handler

import (
	"net/http"

	"shopcore/internal/model"
	"shopcore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// AddItem handles POST /api/carts/items and POST /api/carts/{cartID}/items.
// Without a cart id a new cart is created.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var cartID *uuid.UUID
	if chi.URLParam(r, "cartID") != "" {
		id, err := uuidParam(r, "cartID")
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		cartID = &id
	}

	var req model.AddCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), cartID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if cartID == nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, cart)
}

// Get handles GET /api/carts/{cartID}.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, err := uuidParam(r, "cartID")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), cartID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PATCH /api/carts/{cartID}/items/{productID}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID, err := uuidParam(r, "cartID")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdateCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	cart, err := h.service.UpdateItem(r.Context(), cartID, chi.URLParam(r, "productID"), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/carts/{cartID}/items/{productID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, err := uuidParam(r, "cartID")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.RemoveItem(r.Context(), cartID, chi.URLParam(r, "productID")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
