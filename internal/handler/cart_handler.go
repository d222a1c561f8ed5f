package handler

import (
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/model"
	"storefront/internal/response"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// Legacy /update_cart actions.
const (
	actionRemove         = "remove"
	actionUpdateQuantity = "update_quantity"
)

// CartHandler handles cart ledger requests. Every route requires a complete profile.
type CartHandler struct {
	cart   service.CartService
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:   cart,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

// Add handles POST /add_to_cart.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req model.AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	count, err := h.cart.Add(r.Context(), currentUser(r), &req)
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{
		"cart_count": count,
		"message":    "Product added to cart!",
	})
}

// ChangeQuantity handles POST /update_cart_quantity.
func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	var req model.ChangeQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}
	h.changeQuantity(w, r, req.Name, req.Change)
}

// Remove handles POST /remove_from_cart.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req model.RemoveFromCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}
	h.remove(w, r, req.Name)
}

// Update handles the legacy POST /update_cart dispatcher.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	switch strings.TrimSpace(req.Action) {
	case actionRemove:
		h.remove(w, r, req.Name)
	case actionUpdateQuantity:
		h.changeQuantity(w, r, req.Name, req.Change)
	default:
		response.Fail(w, r, model.NewValidationError(model.ErrCodeInvalidField, "Invalid action"), h.logger)
	}
}

func (h *CartHandler) changeQuantity(w http.ResponseWriter, r *http.Request, name string, change *int) {
	delta := 0
	if change != nil {
		delta = *change
	}

	count, err := h.cart.ChangeQuantity(r.Context(), currentUser(r), name, delta)
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{"cart_count": count})
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request, name string) {
	count, err := h.cart.Remove(r.Context(), currentUser(r), name)
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{"cart_count": count})
}

// Data handles GET /get_cart_data. The body is a bare array.
func (h *CartHandler) Data(w http.ResponseWriter, r *http.Request) {
	lines, err := h.cart.List(r.Context(), currentUser(r))
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, lines)
}

// Count handles GET /get_cart_count.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.cart.Count(r.Context(), currentUser(r))
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{"count": count})
}

// Clear handles /clear_cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), currentUser(r)); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{"count": 0})
}

// Total handles GET /get_cart_total?coins_used=N.
func (h *CartHandler) Total(w http.ResponseWriter, r *http.Request) {
	var coins int64
	if s := strings.TrimSpace(r.URL.Query().Get("coins_used")); s != "" {
		var err error
		if coins, err = strconv.ParseInt(s, 10, 64); err != nil {
			response.Fail(w, r, model.NewValidationError(model.ErrCodeInvalidCoins, "coins_used must be a whole number"), h.logger)
			return
		}
	}

	total, err := h.cart.Total(r.Context(), currentUser(r), coins)
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{
		"subtotal":     total.Subtotal,
		"discount":     total.Discount,
		"delivery":     total.Delivery,
		"coins_used":   total.CoinsUsed,
		"total":        total.Total,
		"coin_balance": total.CoinBalance,
	})
}
