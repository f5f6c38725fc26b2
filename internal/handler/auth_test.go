package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/halipro/api/internal/auth"
	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/enum"
)

type mockUserStore struct {
	users map[string]database.User
}

func (m *mockUserStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	u, ok := m.users[email]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return database.User{}, pgx.ErrNoRows
}

func setupAuthRouter(t *testing.T) (*chi.Mux, *mockUserStore, *auth.Manager) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := &mockUserStore{users: map[string]database.User{
		"owner@halipro.test": {
			ID:             uuid.New(),
			Email:          "owner@halipro.test",
			HashedPassword: string(hashed),
			FullName:       "Owner",
			Role:           enum.UserRoleOwner,
			IsActive:       true,
		},
	}}
	manager := auth.NewManager("test-secret")
	h := NewAuthHandler(store, manager, zerolog.Nop())

	r := chi.NewRouter()
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	return r, store, manager
}

func TestLogin(t *testing.T) {
	r, _, manager := setupAuthRouter(t)

	t.Run("success", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "owner@halipro.test",
			"password": "correct-horse",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp tokenResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		claims, err := manager.ValidateAccessToken(resp.AccessToken)
		if err != nil {
			t.Fatalf("access token invalid: %v", err)
		}
		if claims.Role != enum.UserRoleOwner {
			t.Errorf("Role = %s, want OWNER", claims.Role)
		}
		if resp.User.Email != "owner@halipro.test" {
			t.Errorf("User.Email = %s", resp.User.Email)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "owner@halipro.test",
			"password": "wrong",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "nobody@halipro.test",
			"password": "whatever",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRefresh(t *testing.T) {
	r, store, manager := setupAuthRouter(t)
	owner := store.users["owner@halipro.test"]

	t.Run("success", func(t *testing.T) {
		refresh, err := manager.GenerateRefreshToken(owner.ID)
		if err != nil {
			t.Fatalf("GenerateRefreshToken: %v", err)
		}
		rec := doRequest(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{
			"refresh_token": refresh,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{
			"refresh_token": "junk",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unknown subject", func(t *testing.T) {
		refresh, err := manager.GenerateRefreshToken(uuid.New())
		if err != nil {
			t.Fatalf("GenerateRefreshToken: %v", err)
		}
		rec := doRequest(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{
			"refresh_token": refresh,
		})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}
