package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/halipro/api/internal/auth"
	"github.com/halipro/api/internal/database"
)

// UserStore is satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

type AuthHandler struct {
	store  UserStore
	tokens *auth.Manager
	logger zerolog.Logger
}

func NewAuthHandler(store UserStore, tokens *auth.Manager, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
}

func toUserResponse(u database.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error().Err(err).Msg("get user by email")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issueTokens(w, user)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	userID, err := h.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.logger.Error().Err(err).Msg("get user by id")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusUnauthorized, "account disabled")
		return
	}

	h.issueTokens(w, user)
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, user database.User) {
	access, err := h.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		h.logger.Error().Err(err).Msg("generate access token")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	refresh, err := h.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("generate refresh token")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         toUserResponse(user),
	})
}
