package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/response"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProductHandler handles product catalogue requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products with optional category filter and pagination.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 10
	if s := query.Get("limit"); s != "" {
		var err error
		if limit, err = strconv.Atoi(s); err != nil {
			response.Fail(w, r, model.NewValidationError(model.ErrCodeInvalidField, "invalid limit parameter"), h.logger)
			return
		}
	}

	offset := 0
	if s := query.Get("offset"); s != "" {
		var err error
		if offset, err = strconv.Atoi(s); err != nil {
			response.Fail(w, r, model.NewValidationError(model.ErrCodeInvalidField, "invalid offset parameter"), h.logger)
			return
		}
	}

	products, err := h.service.GetAll(r.Context(), query.Get("category"), limit, offset)
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// GetByName handles GET /api/products/{name}.
func (h *ProductHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	product, err := h.service.GetByName(r.Context(), name)
	if err != nil {
		response.Fail(w, r, err, h.logger)
		return
	}

	response.JSON(w, http.StatusOK, product)
}
