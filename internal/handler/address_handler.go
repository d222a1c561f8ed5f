package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/response"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AddressHandler handles address book requests.
type AddressHandler struct {
	addresses service.AddressService
	logger    zerolog.Logger
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(addresses service.AddressService, logger zerolog.Logger) *AddressHandler {
	return &AddressHandler{
		addresses: addresses,
		logger:    logger.With().Str("handler", "address").Logger(),
	}
}

// List handles GET /get_user_addresses.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addresses.List(r.Context(), currentUser(r))
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, response.Fields{"addresses": addresses})
}

// Add handles POST /add_address.
func (h *AddressHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req model.AddressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	address, err := h.addresses.Add(r.Context(), currentUser(r), &req)
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusCreated, response.Fields{"address": address})
}

// Delete handles DELETE /delete_address/{id}.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	addressID, ok := h.addressID(w, r)
	if !ok {
		return
	}

	if err := h.addresses.Delete(r.Context(), currentUser(r), addressID); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, nil)
}

// SetDefault handles POST /set_default_address/{id}.
func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	addressID, ok := h.addressID(w, r)
	if !ok {
		return
	}

	if err := h.addresses.SetDefault(r.Context(), currentUser(r), addressID); err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.OK(w, http.StatusOK, nil)
}

func (h *AddressHandler) addressID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, model.NewValidationError(model.ErrCodeInvalidField, "invalid address ID format"), h.logger)
		return uuid.Nil, false
	}
	return id, true
}
