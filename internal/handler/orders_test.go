package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/halipro/api/internal/auth"
	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/enum"
	"github.com/halipro/api/internal/middleware"
	"github.com/halipro/api/internal/service"
	"github.com/halipro/api/internal/ws"
)

type mockOrderStore struct {
	orders     map[uuid.UUID]database.Order
	items      map[uuid.UUID][]database.OrderItem
	lastParams database.ListOrdersParams
}

func (m *mockOrderStore) GetOrder(_ context.Context, id uuid.UUID) (database.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return order, nil
}

func (m *mockOrderStore) ListOrders(_ context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	m.lastParams = arg
	var result []database.Order
	for _, o := range m.orders {
		result = append(result, o)
	}
	return result, nil
}

func (m *mockOrderStore) ListOrderItemsByOrder(_ context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	return m.items[orderID], nil
}

type mockLifecycle struct {
	createFn  func(ctx context.Context, input service.CreateOrderInput) (*service.OrderWithItems, error)
	updateFn  func(ctx context.Context, id uuid.UUID, input service.UpdateOrderInput) (*service.OrderWithItems, error)
	advanceFn func(ctx context.Context, id uuid.UUID, resolution string) (database.Order, error)
	cancelFn  func(ctx context.Context, id uuid.UUID) (database.Order, error)
	settleFn  func(ctx context.Context, id uuid.UUID) (database.Order, error)
}

func (m *mockLifecycle) CreateOrder(ctx context.Context, input service.CreateOrderInput) (*service.OrderWithItems, error) {
	return m.createFn(ctx, input)
}

func (m *mockLifecycle) UpdateOrder(ctx context.Context, id uuid.UUID, input service.UpdateOrderInput) (*service.OrderWithItems, error) {
	return m.updateFn(ctx, id, input)
}

func (m *mockLifecycle) Advance(ctx context.Context, id uuid.UUID, resolution string) (database.Order, error) {
	return m.advanceFn(ctx, id, resolution)
}

func (m *mockLifecycle) Cancel(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.cancelFn(ctx, id)
}

func (m *mockLifecycle) Settle(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.settleFn(ctx, id)
}

type recordingHub struct {
	events []ws.Event
}

func (r *recordingHub) Broadcast(_ string, event ws.Event) {
	r.events = append(r.events, event)
}

type stubReceipts struct{}

func (stubReceipts) OrderReceipt(database.Order, []database.OrderItem) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

func testOrder(id uuid.UUID, status string) database.Order {
	return database.Order{
		ID:            id,
		OrderNumber:   "HLP-00001",
		CustomerID:    uuid.New(),
		CustomerName:  "Ali Veli",
		CustomerPhone: "5550001",
		Status:        status,
		PickupDate:    time.Now(),
		DeliveryDate:  time.Now(),
	}
}

func setupOrderRouter(t *testing.T, store OrderStore, svc OrderLifecycle, hub Broadcaster) (*chi.Mux, string) {
	t.Helper()
	manager := auth.NewManager("test-secret")
	token, err := manager.GenerateAccessToken(uuid.New(), enum.UserRoleOwner)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	h := NewOrderHandler(store, svc, hub, stubReceipts{}, zerolog.Nop())
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(manager))
		r.Post("/orders", h.Create)
		r.Get("/orders", h.List)
		r.Get("/orders/{id}", h.Get)
		r.Post("/orders/{id}/advance", h.Advance)
		r.Post("/orders/{id}/cancel", h.Cancel)
		r.Post("/orders/{id}/settle", h.Settle)
		r.Get("/orders/{id}/receipt", h.Receipt)
	})
	return r, token
}

func doRequest(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOrderCreate(t *testing.T) {
	orderID := uuid.New()
	svc := &mockLifecycle{
		createFn: func(_ context.Context, input service.CreateOrderInput) (*service.OrderWithItems, error) {
			if input.CustomerName != "Ali Veli" {
				t.Errorf("CustomerName = %q", input.CustomerName)
			}
			if len(input.Items) != 1 {
				t.Fatalf("items = %d, want 1", len(input.Items))
			}
			return &service.OrderWithItems{Order: testOrder(orderID, enum.OrderStatusToBePickedUp)}, nil
		},
	}
	hub := &recordingHub{}
	r, token := setupOrderRouter(t, &mockOrderStore{}, svc, hub)

	rec := doRequest(t, r, http.MethodPost, "/orders", token, map[string]any{
		"customer_name":  "Ali Veli",
		"customer_phone": "5550001",
		"items":          []map[string]any{{"product_id": uuid.New(), "quantity": "6"}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderCreated {
		t.Errorf("events = %+v, want one order.created", hub.events)
	}
}

func TestOrderCreateEmptyItems(t *testing.T) {
	svc := &mockLifecycle{
		createFn: func(context.Context, service.CreateOrderInput) (*service.OrderWithItems, error) {
			return nil, service.ErrEmptyItems
		},
	}
	r, token := setupOrderRouter(t, &mockOrderStore{}, svc, &recordingHub{})

	rec := doRequest(t, r, http.MethodPost, "/orders", token, map[string]any{
		"customer_name":  "Ali Veli",
		"customer_phone": "5550001",
		"items":          []any{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestOrderGetNotFound(t *testing.T) {
	r, token := setupOrderRouter(t, &mockOrderStore{orders: map[uuid.UUID]database.Order{}}, &mockLifecycle{}, &recordingHub{})
	rec := doRequest(t, r, http.MethodGet, "/orders/"+uuid.NewString(), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestOrderAdvance(t *testing.T) {
	orderID := uuid.New()

	t.Run("plain advance", func(t *testing.T) {
		svc := &mockLifecycle{
			advanceFn: func(_ context.Context, id uuid.UUID, resolution string) (database.Order, error) {
				if resolution != "" {
					t.Errorf("resolution = %q, want empty", resolution)
				}
				return testOrder(id, enum.OrderStatusPickedUp), nil
			},
		}
		hub := &recordingHub{}
		r, token := setupOrderRouter(t, &mockOrderStore{}, svc, hub)

		rec := doRequest(t, r, http.MethodPost, "/orders/"+orderID.String()+"/advance", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp orderResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != enum.OrderStatusPickedUp {
			t.Errorf("status = %s, want PICKED_UP", resp.Status)
		}
		if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderAdvanced {
			t.Errorf("events = %+v, want one order.advanced", hub.events)
		}
	})

	t.Run("delivery needs resolution", func(t *testing.T) {
		svc := &mockLifecycle{
			advanceFn: func(context.Context, uuid.UUID, string) (database.Order, error) {
				return database.Order{}, &service.CreditResolutionRequiredError{RemainingAmount: decimal.RequireFromString("80")}
			},
		}
		r, token := setupOrderRouter(t, &mockOrderStore{}, svc, &recordingHub{})

		rec := doRequest(t, r, http.MethodPost, "/orders/"+orderID.String()+"/advance", token, nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["remaining_amount"] != "80.00" {
			t.Errorf("remaining_amount = %q, want 80.00", body["remaining_amount"])
		}
	})

	t.Run("resolution forwarded", func(t *testing.T) {
		svc := &mockLifecycle{
			advanceFn: func(_ context.Context, id uuid.UUID, resolution string) (database.Order, error) {
				if resolution != enum.CreditResolutionCreditDebt {
					t.Errorf("resolution = %q, want CREDIT_DEBT", resolution)
				}
				order := testOrder(id, enum.OrderStatusDelivered)
				order.IsCreditDebt = true
				return order, nil
			},
		}
		r, token := setupOrderRouter(t, &mockOrderStore{}, svc, &recordingHub{})

		rec := doRequest(t, r, http.MethodPost, "/orders/"+orderID.String()+"/advance", token,
			map[string]string{"resolution": enum.CreditResolutionCreditDebt})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("terminal order", func(t *testing.T) {
		svc := &mockLifecycle{
			advanceFn: func(context.Context, uuid.UUID, string) (database.Order, error) {
				return database.Order{}, service.ErrTerminalStatus
			},
		}
		r, token := setupOrderRouter(t, &mockOrderStore{}, svc, &recordingHub{})

		rec := doRequest(t, r, http.MethodPost, "/orders/"+orderID.String()+"/advance", token, nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})
}

func TestOrderSettle(t *testing.T) {
	orderID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := &mockLifecycle{
			settleFn: func(_ context.Context, id uuid.UUID) (database.Order, error) {
				return testOrder(id, enum.OrderStatusDelivered), nil
			},
		}
		hub := &recordingHub{}
		r, token := setupOrderRouter(t, &mockOrderStore{}, svc, hub)

		rec := doRequest(t, r, http.MethodPost, "/orders/"+orderID.String()+"/settle", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderSettled {
			t.Errorf("events = %+v, want one order.settled", hub.events)
		}
	})

	t.Run("no outstanding debt", func(t *testing.T) {
		svc := &mockLifecycle{
			settleFn: func(context.Context, uuid.UUID) (database.Order, error) {
				return database.Order{}, service.ErrNotCreditDebt
			},
		}
		r, token := setupOrderRouter(t, &mockOrderStore{}, svc, &recordingHub{})

		rec := doRequest(t, r, http.MethodPost, "/orders/"+orderID.String()+"/settle", token, nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})
}

func TestOrderCancelTerminal(t *testing.T) {
	svc := &mockLifecycle{
		cancelFn: func(context.Context, uuid.UUID) (database.Order, error) {
			return database.Order{}, service.ErrTerminalStatus
		},
	}
	r, token := setupOrderRouter(t, &mockOrderStore{}, svc, &recordingHub{})

	rec := doRequest(t, r, http.MethodPost, "/orders/"+uuid.NewString()+"/cancel", token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestOrderListFilters(t *testing.T) {
	store := &mockOrderStore{orders: map[uuid.UUID]database.Order{}}
	r, token := setupOrderRouter(t, store, &mockLifecycle{}, &recordingHub{})

	rec := doRequest(t, r, http.MethodGet, "/orders?status=WASHING&credit=true&q=ali&limit=500", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !store.lastParams.Status.Valid || store.lastParams.Status.String != "WASHING" {
		t.Errorf("Status = %+v, want WASHING", store.lastParams.Status)
	}
	if !store.lastParams.CreditOnly {
		t.Error("CreditOnly = false, want true")
	}
	if !store.lastParams.Search.Valid || store.lastParams.Search.String != "ali" {
		t.Errorf("Search = %+v, want ali", store.lastParams.Search)
	}
	if store.lastParams.Limit != 100 {
		t.Errorf("Limit = %d, want clamped to 100", store.lastParams.Limit)
	}
}

func TestOrderReceipt(t *testing.T) {
	orderID := uuid.New()
	store := &mockOrderStore{
		orders: map[uuid.UUID]database.Order{orderID: testOrder(orderID, enum.OrderStatusReady)},
	}
	r, token := setupOrderRouter(t, store, &mockLifecycle{}, &recordingHub{})

	rec := doRequest(t, r, http.MethodGet, "/orders/"+orderID.String()+"/receipt", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %s, want application/pdf", ct)
	}
}

func TestOrderRequiresAuth(t *testing.T) {
	r, _ := setupOrderRouter(t, &mockOrderStore{}, &mockLifecycle{}, &recordingHub{})
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
