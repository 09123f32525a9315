package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler exposes the cart view-model.
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

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	h.respond(w, r)(h.service.FetchCart(r.Context(), sess))
}

// Add handles POST /api/cart/items.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.ProductID <= 0 {
		writeError(w, r, model.NewValidationError("product_id", "must be a positive integer"), h.logger)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	h.respond(w, r)(h.service.Add(r.Context(), sess, req.ProductID, req.Quantity))
}

// SetQuantity handles PUT /api/cart/items/{productID}. A quantity of zero or
// less removes the item.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var req model.SetQuantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	h.respond(w, r)(h.service.SetQuantity(r.Context(), sess, productID, req.Quantity))
}

// Decrease handles POST /api/cart/items/{productID}/decrease.
func (h *CartHandler) Decrease(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	req := model.DecreaseRequest{DecreaseBy: 1}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, h.logger) {
		return
	}

	h.respond(w, r)(h.service.Decrease(r.Context(), sess, productID, req.DecreaseBy))
}

// Remove handles DELETE /api/cart/items/{productID}.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	h.respond(w, r)(h.service.Remove(r.Context(), sess, productID))
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	h.respond(w, r)(h.service.Clear(r.Context(), sess))
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request) func(*model.Cart, error) {
	return func(cart *model.Cart, err error) {
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		writeJSON(w, http.StatusOK, cart)
	}
}
