package handler

import (
	"net/http"

	"storefront/internal/checkout"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CheckoutHandler drives the checkout wizard of the calling session.
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

// Begin handles POST /api/checkout.
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusCreated, func(s *session.Session) (checkout.View, error) {
		return h.service.Begin(r.Context(), s)
	})
}

// Current handles GET /api/checkout.
func (h *CheckoutHandler) Current(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, func(s *session.Session) (checkout.View, error) {
		return h.service.Current(r.Context(), s)
	})
}

// Abandon handles DELETE /api/checkout.
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.Abandon(r.Context(), sess); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Shipping handles PUT /api/checkout/shipping.
func (h *CheckoutHandler) Shipping(w http.ResponseWriter, r *http.Request) {
	var addr model.ShippingAddress
	if !decodeJSON(w, r, &addr, h.logger) {
		return
	}
	h.run(w, r, http.StatusOK, func(s *session.Session) (checkout.View, error) {
		return h.service.SubmitShipping(r.Context(), s, addr)
	})
}

// ShippingMethod handles PUT /api/checkout/shipping-method.
func (h *CheckoutHandler) ShippingMethod(w http.ResponseWriter, r *http.Request) {
	var req model.ShippingMethodRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.run(w, r, http.StatusOK, func(s *session.Session) (checkout.View, error) {
		return h.service.SelectShippingMethod(r.Context(), s, req.Method)
	})
}

// Payment handles PUT /api/checkout/payment.
func (h *CheckoutHandler) Payment(w http.ResponseWriter, r *http.Request) {
	var sel model.PaymentSelection
	if !decodeJSON(w, r, &sel, h.logger) {
		return
	}
	h.run(w, r, http.StatusOK, func(s *session.Session) (checkout.View, error) {
		return h.service.SubmitPayment(r.Context(), s, sel)
	})
}

// ApplyPromo handles POST /api/checkout/promo.
func (h *CheckoutHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req model.PromoRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.run(w, r, http.StatusOK, func(s *session.Session) (checkout.View, error) {
		return h.service.ApplyPromo(r.Context(), s, req.Code)
	})
}

// RemovePromo handles DELETE /api/checkout/promo.
func (h *CheckoutHandler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, func(s *session.Session) (checkout.View, error) {
		return h.service.RemovePromo(r.Context(), s)
	})
}

// Back handles POST /api/checkout/back.
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, func(s *session.Session) (checkout.View, error) {
		return h.service.Back(r.Context(), s)
	})
}

// Edit handles POST /api/checkout/edit/{step}.
func (h *CheckoutHandler) Edit(w http.ResponseWriter, r *http.Request) {
	step := chi.URLParam(r, "step")
	h.run(w, r, http.StatusOK, func(s *session.Session) (checkout.View, error) {
		return h.service.Edit(r.Context(), s, step)
	})
}

// Submit handles POST /api/checkout/submit.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, func(s *session.Session) (checkout.View, error) {
		return h.service.Submit(r.Context(), s)
	})
}

func (h *CheckoutHandler) run(w http.ResponseWriter, r *http.Request, status int, fn func(*session.Session) (checkout.View, error)) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	view, err := fn(sess)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, status, view)
}
