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

type mockCustomerStore struct {
	customers map[uuid.UUID]database.Customer
	regions   map[uuid.UUID]database.Region
	byPhone   map[string]uuid.UUID
	deleteErr error
}

func newMockCustomerStore() *mockCustomerStore {
	return &mockCustomerStore{
		customers: make(map[uuid.UUID]database.Customer),
		regions:   make(map[uuid.UUID]database.Region),
		byPhone:   make(map[string]uuid.UUID),
	}
}

func (m *mockCustomerStore) CreateCustomer(_ context.Context, arg database.CreateCustomerParams) (database.Customer, error) {
	if _, exists := m.byPhone[arg.Phone]; exists {
		return database.Customer{}, &pgconn.PgError{Code: "23505"}
	}
	c := database.Customer{
		ID:         uuid.New(),
		Name:       arg.Name,
		Phone:      arg.Phone,
		Address:    arg.Address,
		RegionID:   arg.RegionID,
		RegionName: arg.RegionName,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.customers[c.ID] = c
	m.byPhone[c.Phone] = c.ID
	return c, nil
}

func (m *mockCustomerStore) GetCustomer(_ context.Context, id uuid.UUID) (database.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return database.Customer{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCustomerStore) ListCustomers(_ context.Context, _ database.ListCustomersParams) ([]database.Customer, error) {
	var result []database.Customer
	for _, c := range m.customers {
		result = append(result, c)
	}
	return result, nil
}

func (m *mockCustomerStore) UpdateCustomer(_ context.Context, arg database.UpdateCustomerParams) (database.Customer, error) {
	c, ok := m.customers[arg.ID]
	if !ok {
		return database.Customer{}, pgx.ErrNoRows
	}
	c.Name = arg.Name
	c.Phone = arg.Phone
	c.Address = arg.Address
	m.customers[arg.ID] = c
	return c, nil
}

func (m *mockCustomerStore) DeleteCustomer(_ context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.customers, id)
	return nil
}

func (m *mockCustomerStore) ListOrdersByCustomer(_ context.Context, _ uuid.UUID) ([]database.Order, error) {
	return nil, nil
}

func (m *mockCustomerStore) GetRegion(_ context.Context, id uuid.UUID) (database.Region, error) {
	r, ok := m.regions[id]
	if !ok {
		return database.Region{}, pgx.ErrNoRows
	}
	return r, nil
}

func setupCustomerRouter(t *testing.T, store CustomerStore) (*chi.Mux, string) {
	t.Helper()
	manager := auth.NewManager("test-secret")
	token, err := manager.GenerateAccessToken(uuid.New(), enum.UserRoleStaff)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	h := NewCustomerHandler(store, zerolog.Nop())
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(manager))
		r.Post("/customers", h.Create)
		r.Get("/customers", h.List)
		r.Get("/customers/{id}", h.Get)
		r.Get("/customers/{id}/orders", h.Orders)
		r.Put("/customers/{id}", h.Update)
		r.Delete("/customers/{id}", h.Delete)
	})
	return r, token
}

func TestCustomerCreate(t *testing.T) {
	store := newMockCustomerStore()
	r, token := setupCustomerRouter(t, store)

	rec := doRequest(t, r, http.MethodPost, "/customers", token, map[string]string{
		"name":    "Ayse Yilmaz",
		"phone":   "5551234",
		"address": "Main Street 1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	t.Run("duplicate phone conflicts", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/customers", token, map[string]string{
			"name":  "Someone Else",
			"phone": "5551234",
		})
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("missing phone rejected", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/customers", token, map[string]string{"name": "No Phone"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown region rejected", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/customers", token, map[string]any{
			"name":      "Region Test",
			"phone":     "5559999",
			"region_id": uuid.NewString(),
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestCustomerCreateWithRegion(t *testing.T) {
	store := newMockCustomerStore()
	regionID := uuid.New()
	store.regions[regionID] = database.Region{ID: regionID, Name: "Center"}
	r, token := setupCustomerRouter(t, store)

	rec := doRequest(t, r, http.MethodPost, "/customers", token, map[string]any{
		"name":      "Ayse Yilmaz",
		"phone":     "5551234",
		"region_id": regionID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	for _, c := range store.customers {
		if !c.RegionName.Valid || c.RegionName.String != "Center" {
			t.Errorf("RegionName = %+v, want Center snapshot", c.RegionName)
		}
	}
}

func TestCustomerGetNotFound(t *testing.T) {
	r, token := setupCustomerRouter(t, newMockCustomerStore())
	rec := doRequest(t, r, http.MethodGet, "/customers/"+uuid.NewString(), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCustomerDeleteWithOrders(t *testing.T) {
	store := newMockCustomerStore()
	store.deleteErr = &pgconn.PgError{Code: "23503"}
	r, token := setupCustomerRouter(t, store)

	rec := doRequest(t, r, http.MethodDelete, "/customers/"+uuid.NewString(), token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestCustomerOrdersUnknownCustomer(t *testing.T) {
	r, token := setupCustomerRouter(t, newMockCustomerStore())
	rec := doRequest(t, r, http.MethodGet, "/customers/"+uuid.NewString()+"/orders", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
