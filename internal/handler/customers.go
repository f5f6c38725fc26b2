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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/halipro/api/internal/database"
)

// CustomerStore is satisfied by *database.Queries; narrow interface for testability.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error)
	ListCustomers(ctx context.Context, arg database.ListCustomersParams) ([]database.Customer, error)
	UpdateCustomer(ctx context.Context, arg database.UpdateCustomerParams) (database.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]database.Order, error)
	GetRegion(ctx context.Context, id uuid.UUID) (database.Region, error)
}

type CustomerHandler struct {
	store  CustomerStore
	logger zerolog.Logger
}

func NewCustomerHandler(store CustomerStore, logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{store: store, logger: logger}
}

type customerRequest struct {
	Name     string     `json:"name"`
	Phone    string     `json:"phone"`
	Address  string     `json:"address"`
	RegionID *uuid.UUID `json:"region_id"`
}

type customerResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	RegionID   *uuid.UUID `json:"region_id"`
	RegionName *string    `json:"region_name"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toCustomerResponse(c database.Customer) customerResponse {
	resp := customerResponse{
		ID:         c.ID,
		Name:       c.Name,
		Phone:      c.Phone,
		Address:    c.Address,
		RegionName: textPtr(c.RegionName),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.RegionID.Valid {
		id := uuid.UUID(c.RegionID.Bytes)
		resp.RegionID = &id
	}
	return resp
}

func (h *CustomerHandler) resolveRegion(ctx context.Context, id *uuid.UUID) (pgtype.UUID, pgtype.Text, error) {
	if id == nil {
		return pgtype.UUID{}, pgtype.Text{}, nil
	}
	region, err := h.store.GetRegion(ctx, *id)
	if err != nil {
		return pgtype.UUID{}, pgtype.Text{}, err
	}
	return pgtype.UUID{Bytes: region.ID, Valid: true}, pgtype.Text{String: region.Name, Valid: true}, nil
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required")
		return
	}

	regionID, regionName, err := h.resolveRegion(r.Context(), req.RegionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "region not found")
			return
		}
		h.logger.Error().Err(err).Msg("get region")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	customer, err := h.store.CreateCustomer(r.Context(), database.CreateCustomerParams{
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		RegionID:   regionID,
		RegionName: regionName,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "customer with this phone already exists")
			return
		}
		h.logger.Error().Err(err).Msg("create customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	params := database.ListCustomersParams{Limit: limit, Offset: offset}
	if q := r.URL.Query().Get("q"); q != "" {
		params.Search = pgtype.Text{String: q, Valid: true}
	}

	customers, err := h.store.ListCustomers(r.Context(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("list customers")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, toCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := h.store.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error().Err(err).Msg("get customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

// Orders returns the customer's order history, newest first.
func (h *CustomerHandler) Orders(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if _, err := h.store.GetCustomer(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error().Err(err).Msg("get customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	orders, err := h.store.ListOrdersByCustomer(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Msg("list customer orders")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o, nil))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required")
		return
	}

	regionID, regionName, err := h.resolveRegion(r.Context(), req.RegionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "region not found")
			return
		}
		h.logger.Error().Err(err).Msg("get region")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	customer, err := h.store.UpdateCustomer(r.Context(), database.UpdateCustomerParams{
		ID:         id,
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		RegionID:   regionID,
		RegionName: regionName,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "customer with this phone already exists")
			return
		}
		h.logger.Error().Err(err).Msg("update customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if err := h.store.DeleteCustomer(r.Context(), id); err != nil {
		if isForeignKeyViolation(err) {
			writeError(w, http.StatusConflict, "customer has associated orders")
			return
		}
		h.logger.Error().Err(err).Msg("delete customer")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
