package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/response"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout and order history requests.
type CheckoutHandler struct {
	checkout service.CheckoutService
	logger   zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(checkout service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /checkout.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	result, err := h.checkout.Checkout(r.Context(), currentUser(r), &req)
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{"order": result})
}

// ListOrders handles GET /get_user_orders.
func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.checkout.ListOrders(r.Context(), currentUser(r))
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{"orders": orders})
}

// GetOrder handles GET /orders/{code}.
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.GetOrder(r.Context(), currentUser(r), chi.URLParam(r, "code"))
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{"order": order})
}
