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

	"github.com/halipro/api/internal/database"
)

// DriverStore is satisfied by *database.Queries; narrow interface for testability.
type DriverStore interface {
	CreateDriver(ctx context.Context, arg database.CreateDriverParams) (database.Driver, error)
	GetDriver(ctx context.Context, id uuid.UUID) (database.Driver, error)
	ListDrivers(ctx context.Context, activeOnly bool) ([]database.Driver, error)
	UpdateDriver(ctx context.Context, arg database.UpdateDriverParams) (database.Driver, error)
	DeleteDriver(ctx context.Context, id uuid.UUID) error
}

type DriverHandler struct {
	store  DriverStore
	logger zerolog.Logger
}

func NewDriverHandler(store DriverStore, logger zerolog.Logger) *DriverHandler {
	return &DriverHandler{store: store, logger: logger}
}

type driverRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	VehicleName  string `json:"vehicle_name"`
	VehiclePlate string `json:"vehicle_plate"`
	IsActive     *bool  `json:"is_active"`
}

type driverResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	VehicleName  string    `json:"vehicle_name"`
	VehiclePlate string    `json:"vehicle_plate"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func toDriverResponse(d database.Driver) driverResponse {
	return driverResponse{
		ID:           d.ID,
		Name:         d.Name,
		Phone:        d.Phone,
		VehicleName:  d.VehicleName,
		VehiclePlate: d.VehiclePlate,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
	}
}

func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req driverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	driver, err := h.store.CreateDriver(r.Context(), database.CreateDriverParams{
		Name:         req.Name,
		Phone:        req.Phone,
		VehicleName:  req.VehicleName,
		VehiclePlate: req.VehiclePlate,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("create driver")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toDriverResponse(driver))
}

func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	drivers, err := h.store.ListDrivers(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error().Err(err).Msg("list drivers")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp := make([]driverResponse, 0, len(drivers))
	for _, d := range drivers {
		resp = append(resp, toDriverResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid driver id")
		return
	}
	var req driverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	driver, err := h.store.UpdateDriver(r.Context(), database.UpdateDriverParams{
		ID:           id,
		Name:         req.Name,
		Phone:        req.Phone,
		VehicleName:  req.VehicleName,
		VehiclePlate: req.VehiclePlate,
		IsActive:     isActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "driver not found")
			return
		}
		h.logger.Error().Err(err).Msg("update driver")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toDriverResponse(driver))
}

func (h *DriverHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid driver id")
		return
	}
	if err := h.store.DeleteDriver(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Msg("delete driver")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
