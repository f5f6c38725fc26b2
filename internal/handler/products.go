package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/enum"
	"github.com/halipro/api/internal/service"
)

// ProductStore is satisfied by *database.Queries; narrow interface for testability.
type ProductStore interface {
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	ListProducts(ctx context.Context) ([]database.Product, error)
	UpdateProduct(ctx context.Context, arg database.UpdateProductParams) (database.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type ProductHandler struct {
	store  ProductStore
	logger zerolog.Logger
}

func NewProductHandler(store ProductStore, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{store: store, logger: logger}
}

var validUnits = map[string]bool{
	enum.ProductUnitSquareMeter: true,
	enum.ProductUnitPiece:       true,
	enum.ProductUnitSet:         true,
	enum.ProductUnitLinearMeter: true,
}

type productRequest struct {
	Category string          `json:"category"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
}

type productResponse struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Price     string    `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

func toProductResponse(p database.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Category:  p.Category,
		Name:      p.Name,
		Unit:      p.Unit,
		Price:     numericToString(p.Price),
		CreatedAt: p.CreatedAt,
	}
}

func (r productRequest) validate() string {
	if r.Category == "" || r.Name == "" {
		return "category and name are required"
	}
	if !validUnits[r.Unit] {
		return "invalid unit"
	}
	if r.Price.IsNegative() {
		return "price cannot be negative"
	}
	return ""
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	product, err := h.store.CreateProduct(r.Context(), database.CreateProductParams{
		Category: req.Category,
		Name:     req.Name,
		Unit:     req.Unit,
		Price:    service.DecimalToNumeric(req.Price),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "product already exists in this category")
			return
		}
		h.logger.Error().Err(err).Msg("create product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list products")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error().Err(err).Msg("get product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), database.UpdateProductParams{
		ID:       id,
		Category: req.Category,
		Name:     req.Name,
		Unit:     req.Unit,
		Price:    service.DecimalToNumeric(req.Price),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "product already exists in this category")
			return
		}
		h.logger.Error().Err(err).Msg("update product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusConflict, "product has associated order items")
			return
		}
		h.logger.Error().Err(err).Msg("delete product")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
