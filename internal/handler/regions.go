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

// RegionStore is satisfied by *database.Queries; narrow interface for testability.
type RegionStore interface {
	CreateRegion(ctx context.Context, name string) (database.Region, error)
	ListRegions(ctx context.Context) ([]database.Region, error)
	UpdateRegion(ctx context.Context, id uuid.UUID, name string) (database.Region, error)
	DeleteRegion(ctx context.Context, id uuid.UUID) error
}

type RegionHandler struct {
	store  RegionStore
	logger zerolog.Logger
}

func NewRegionHandler(store RegionStore, logger zerolog.Logger) *RegionHandler {
	return &RegionHandler{store: store, logger: logger}
}

type regionRequest struct {
	Name string `json:"name"`
}

type regionResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *RegionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req regionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	region, err := h.store.CreateRegion(r.Context(), req.Name)
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "region already exists")
			return
		}
		h.logger.Error().Err(err).Msg("create region")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, regionResponse{ID: region.ID, Name: region.Name, CreatedAt: region.CreatedAt})
}

func (h *RegionHandler) List(w http.ResponseWriter, r *http.Request) {
	regions, err := h.store.ListRegions(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list regions")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp := make([]regionResponse, 0, len(regions))
	for _, region := range regions {
		resp = append(resp, regionResponse{ID: region.ID, Name: region.Name, CreatedAt: region.CreatedAt})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *RegionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid region id")
		return
	}
	var req regionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	region, err := h.store.UpdateRegion(r.Context(), id, req.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "region not found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "region already exists")
			return
		}
		h.logger.Error().Err(err).Msg("update region")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, regionResponse{ID: region.ID, Name: region.Name, CreatedAt: region.CreatedAt})
}

func (h *RegionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid region id")
		return
	}
	if err := h.store.DeleteRegion(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Msg("delete region")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
