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

// TemplateStore is satisfied by *database.Queries; narrow interface for testability.
type TemplateStore interface {
	CreateMessageTemplate(ctx context.Context, title, content string) (database.MessageTemplate, error)
	ListMessageTemplates(ctx context.Context) ([]database.MessageTemplate, error)
	UpdateMessageTemplate(ctx context.Context, id uuid.UUID, title, content string) (database.MessageTemplate, error)
	DeleteMessageTemplate(ctx context.Context, id uuid.UUID) error
}

// TemplateHandler manages reusable customer notification texts. Templates
// carry placeholders like {customer_name} that the mobile client substitutes
// before opening the messaging app.
type TemplateHandler struct {
	store  TemplateStore
	logger zerolog.Logger
}

func NewTemplateHandler(store TemplateStore, logger zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{store: store, logger: logger}
}

type templateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type templateResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTemplateResponse(t database.MessageTemplate) templateResponse {
	return templateResponse{ID: t.ID, Title: t.Title, Content: t.Content, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}

	template, err := h.store.CreateMessageTemplate(r.Context(), req.Title, req.Content)
	if err != nil {
		h.logger.Error().Err(err).Msg("create template")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateResponse(template))
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.ListMessageTemplates(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list templates")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp := make([]templateResponse, 0, len(templates))
	for _, t := range templates {
		resp = append(resp, toTemplateResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}

	template, err := h.store.UpdateMessageTemplate(r.Context(), id, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		h.logger.Error().Err(err).Msg("update template")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toTemplateResponse(template))
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	if err := h.store.DeleteMessageTemplate(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Msg("delete template")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
