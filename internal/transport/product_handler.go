package transport

import (
	"errors"
	"net/http"

	"product-catalog/internal/domain"
	"product-catalog/internal/middleware"
	"product-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload.
// Fields are pointers so that a missing field can be told apart from a zero value.
type CreateProductRequest struct {
	Name     *string          `json:"name" validate:"required"`
	Quantity *int             `json:"quantity" validate:"required"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
	Status   *bool            `json:"status" validate:"required"`
}

// UpdateProductRequest represents the partial update payload
type UpdateProductRequest struct {
	Name     *string          `json:"name"`
	Quantity *int             `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
	Status   *bool            `json:"status"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.Query)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product creation validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := domain.NewProductIn(*req.Name, *req.Quantity, *req.Price, *req.Status)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	product, err := h.productService.Create(r.Context(), in)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Get handles retrieval of a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Query handles listing products within an optional price range
func (h *ProductHandler) Query(w http.ResponseWriter, r *http.Request) {
	var query service.ProductQuery
	var invalid []middleware.ValidationError

	bounds := []struct {
		param string
		dest  **decimal.Decimal
	}{
		{"price_min", &query.PriceMin},
		{"price_max", &query.PriceMax},
	}

	for _, bound := range bounds {
		raw := r.URL.Query().Get(bound.param)
		if raw == "" {
			continue
		}

		value, err := decimal.NewFromString(raw)
		if err != nil {
			invalid = append(invalid, middleware.NewValidationError(bound.param, "decimal"))
			continue
		}
		*bound.dest = &value
	}

	if len(invalid) > 0 {
		middleware.RespondWithValidationErrors(w, invalid)
		return
	}

	products, err := h.productService.Query(r.Context(), query)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Update handles a partial product update
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		h.logger.Debug("Product update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Update(r.Context(), id, domain.ProductUpdate{
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
		Status:   req.Status,
	})
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles product removal
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	middleware.RespondNoContent(w)
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			middleware.NewValidationError("id", "uuid"),
		})
		return uuid.Nil, false
	}
	return id, true
}

// respondWithServiceError is the only place error kinds become status codes
func (h *ProductHandler) respondWithServiceError(w http.ResponseWriter, err error) {
	var (
		notFoundErr   *domain.NotFoundError
		insertionErr  *domain.InsertionError
		validationErr *domain.ValidationError
		conversionErr *domain.ConversionError
	)

	switch {
	case errors.As(err, &notFoundErr):
		middleware.RespondWithError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &insertionErr):
		middleware.RespondWithError(w, http.StatusBadRequest, insertionErr.Message)
	case errors.As(err, &validationErr):
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			middleware.NewValidationError(validationErr.Field, validationErr.Constraint),
		})
	case errors.As(err, &conversionErr):
		middleware.RespondWithConversionErrors(w, []middleware.ConversionError{{
			Field:   domain.FieldPrice,
			Value:   conversionErr.Value,
			Message: "Value cannot be stored without rounding",
		}})
	default:
		h.logger.Error("Product request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
