package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/halipro/api/internal/auth"
	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/enum"
	"github.com/halipro/api/internal/middleware"
)

type mockProductStore struct {
	products  map[uuid.UUID]database.Product
	deleteErr error
}

func newMockProductStore() *mockProductStore {
	return &mockProductStore{products: make(map[uuid.UUID]database.Product)}
}

func (m *mockProductStore) CreateProduct(_ context.Context, arg database.CreateProductParams) (database.Product, error) {
	for _, p := range m.products {
		if p.Category == arg.Category && p.Name == arg.Name {
			return database.Product{}, &pgconn.PgError{Code: "23505"}
		}
	}
	p := database.Product{
		ID:        uuid.New(),
		Category:  arg.Category,
		Name:      arg.Name,
		Unit:      arg.Unit,
		Price:     arg.Price,
		CreatedAt: time.Now(),
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductStore) GetProduct(_ context.Context, id uuid.UUID) (database.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProductStore) ListProducts(_ context.Context) ([]database.Product, error) {
	var result []database.Product
	for _, p := range m.products {
		result = append(result, p)
	}
	return result, nil
}

func (m *mockProductStore) UpdateProduct(_ context.Context, arg database.UpdateProductParams) (database.Product, error) {
	p, ok := m.products[arg.ID]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	p.Category = arg.Category
	p.Name = arg.Name
	p.Unit = arg.Unit
	p.Price = arg.Price
	m.products[arg.ID] = p
	return p, nil
}

func (m *mockProductStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.products, id)
	return nil
}

func setupProductRouter(t *testing.T, store ProductStore) (*chi.Mux, string) {
	t.Helper()
	manager := auth.NewManager("test-secret")
	token, err := manager.GenerateAccessToken(uuid.New(), enum.UserRoleOwner)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	h := NewProductHandler(store, zerolog.Nop())
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(manager))
		r.Post("/products", h.Create)
		r.Get("/products", h.List)
		r.Get("/products/{id}", h.Get)
		r.Put("/products/{id}", h.Update)
		r.Delete("/products/{id}", h.Delete)
	})
	return r, token
}

func TestProductCreate(t *testing.T) {
	store := newMockProductStore()
	r, token := setupProductRouter(t, store)

	rec := doRequest(t, r, http.MethodPost, "/products", token, map[string]any{
		"category": "Carpet",
		"name":     "Machine Carpet",
		"unit":     enum.ProductUnitSquareMeter,
		"price":    "25",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	t.Run("duplicate name conflicts", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/products", token, map[string]any{
			"category": "Carpet",
			"name":     "Machine Carpet",
			"unit":     enum.ProductUnitSquareMeter,
			"price":    "30",
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("invalid unit rejected", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/products", token, map[string]any{
			"category": "Carpet",
			"name":     "Runner",
			"unit":     "KILOGRAM",
			"price":    "10",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("negative price rejected", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/products", token, map[string]any{
			"category": "Carpet",
			"name":     "Runner",
			"unit":     enum.ProductUnitPiece,
			"price":    "-5",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestProductGetNotFound(t *testing.T) {
	r, token := setupProductRouter(t, newMockProductStore())
	rec := doRequest(t, r, http.MethodGet, "/products/"+uuid.NewString(), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProductDeleteWithOrderItems(t *testing.T) {
	store := newMockProductStore()
	store.deleteErr = &pgconn.PgError{Code: "23503"}
	r, token := setupProductRouter(t, store)

	rec := doRequest(t, r, http.MethodDelete, "/products/"+uuid.NewString(), token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}
