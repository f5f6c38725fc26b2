package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/middleware"
	"github.com/halipro/api/internal/service"
	"github.com/halipro/api/internal/ws"
)

// OrderStore is satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// OrderLifecycle is satisfied by *service.OrderService.
type OrderLifecycle interface {
	CreateOrder(ctx context.Context, input service.CreateOrderInput) (*service.OrderWithItems, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, input service.UpdateOrderInput) (*service.OrderWithItems, error)
	Advance(ctx context.Context, id uuid.UUID, resolution string) (database.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (database.Order, error)
	Settle(ctx context.Context, id uuid.UUID) (database.Order, error)
}

// Broadcaster is satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(topic string, event ws.Event)
}

// ReceiptRenderer is satisfied by *pdf.Generator.
type ReceiptRenderer interface {
	OrderReceipt(order database.Order, items []database.OrderItem) ([]byte, error)
}

type OrderHandler struct {
	store    OrderStore
	service  OrderLifecycle
	hub      Broadcaster
	receipts ReceiptRenderer
	logger   zerolog.Logger
}

func NewOrderHandler(store OrderStore, svc OrderLifecycle, hub Broadcaster, receipts ReceiptRenderer, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{store: store, service: svc, hub: hub, receipts: receipts, logger: logger}
}

type orderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type createOrderRequest struct {
	CustomerID      *uuid.UUID         `json:"customer_id"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	CustomerAddress string             `json:"customer_address"`
	RegionID        *uuid.UUID         `json:"region_id"`
	DriverID        *uuid.UUID         `json:"driver_id"`
	Items           []orderItemRequest `json:"items"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	PaidAmount      decimal.Decimal    `json:"paid_amount"`
	PickupDate      time.Time          `json:"pickup_date"`
	DeliveryDate    time.Time          `json:"delivery_date"`
	Notes           string             `json:"notes"`
}

type orderItemResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	ProductCategory string    `json:"product_category"`
	ProductUnit     string    `json:"product_unit"`
	UnitPrice       string    `json:"unit_price"`
	Quantity        string    `json:"quantity"`
	LineTotal       string    `json:"line_total"`
}

type orderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	OrderNumber        string              `json:"order_number"`
	CustomerID         uuid.UUID           `json:"customer_id"`
	CustomerName       string              `json:"customer_name"`
	CustomerPhone      string              `json:"customer_phone"`
	CustomerAddress    string              `json:"customer_address"`
	CustomerRegionName *string             `json:"customer_region_name"`
	DriverID           *uuid.UUID          `json:"driver_id"`
	DriverName         *string             `json:"driver_name"`
	DriverVehiclePlate *string             `json:"driver_vehicle_plate"`
	Status             string              `json:"status"`
	TotalAmount        string              `json:"total_amount"`
	DiscountAmount     string              `json:"discount_amount"`
	DiscountedTotal    string              `json:"discounted_total"`
	PaidAmount         string              `json:"paid_amount"`
	RemainingAmount    string              `json:"remaining_amount"`
	IsCreditDebt       bool                `json:"is_credit_debt"`
	PickupDate         time.Time           `json:"pickup_date"`
	DeliveryDate       time.Time           `json:"delivery_date"`
	Notes              *string             `json:"notes"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Items              []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		CustomerID:         o.CustomerID,
		CustomerName:       o.CustomerName,
		CustomerPhone:      o.CustomerPhone,
		CustomerAddress:    o.CustomerAddress,
		CustomerRegionName: textPtr(o.CustomerRegionName),
		DriverName:         textPtr(o.DriverName),
		DriverVehiclePlate: textPtr(o.DriverVehiclePlate),
		Status:             o.Status,
		TotalAmount:        numericToString(o.TotalAmount),
		DiscountAmount:     numericToString(o.DiscountAmount),
		DiscountedTotal:    numericToString(o.DiscountedTotal),
		PaidAmount:         numericToString(o.PaidAmount),
		RemainingAmount:    numericToString(o.RemainingAmount),
		IsCreditDebt:       o.IsCreditDebt,
		PickupDate:         o.PickupDate,
		DeliveryDate:       o.DeliveryDate,
		Notes:              textPtr(o.Notes),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	if o.DriverID.Valid {
		id := uuid.UUID(o.DriverID.Bytes)
		resp.DriverID = &id
	}
	for _, it := range items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			ProductCategory: it.ProductCategory,
			ProductUnit:     it.ProductUnit,
			UnitPrice:       numericToString(it.UnitPrice),
			Quantity:        numericToString(it.Quantity),
			LineTotal:       numericToString(it.LineTotal),
		})
	}
	return resp
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.CreateOrderInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		DiscountAmount:  req.DiscountAmount,
		PaidAmount:      req.PaidAmount,
		PickupDate:      req.PickupDate,
		DeliveryDate:    req.DeliveryDate,
		Notes:           req.Notes,
		CreatedBy:       claims.UserID,
	}
	if req.CustomerID != nil {
		input.CustomerID = uuid.NullUUID{UUID: *req.CustomerID, Valid: true}
	}
	if req.RegionID != nil {
		input.RegionID = uuid.NullUUID{UUID: *req.RegionID, Valid: true}
	}
	if req.DriverID != nil {
		input.DriverID = uuid.NullUUID{UUID: *req.DriverID, Valid: true}
	}
	now := time.Now()
	if input.PickupDate.IsZero() {
		input.PickupDate = now
	}
	if input.DeliveryDate.IsZero() {
		input.DeliveryDate = now
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, service.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	result, err := h.service.CreateOrder(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.publish(ws.EventOrderCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	params := database.ListOrdersParams{Limit: limit, Offset: offset}

	if status := r.URL.Query().Get("status"); status != "" {
		params.Status = pgtype.Text{String: status, Valid: true}
	}
	if r.URL.Query().Get("credit") == "true" {
		params.CreditOnly = true
	}
	if q := r.URL.Query().Get("q"); q != "" {
		params.Search = pgtype.Text{String: q, Valid: true}
	}
	var err error
	if params.PickupFrom, params.PickupTo, err = parseRangeParams(r, "pickup_from", "pickup_to"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid pickup date range")
		return
	}
	if params.DeliveryFrom, params.DeliveryTo, err = parseRangeParams(r, "delivery_from", "delivery_to"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid delivery date range")
		return
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("list orders")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o, nil))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error().Err(err).Msg("get order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	items, err := h.store.ListOrderItemsByOrder(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Msg("list order items")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.UpdateOrderInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		DiscountAmount:  req.DiscountAmount,
		PaidAmount:      req.PaidAmount,
		PickupDate:      req.PickupDate,
		DeliveryDate:    req.DeliveryDate,
		Notes:           req.Notes,
	}
	if req.RegionID != nil {
		input.RegionID = uuid.NullUUID{UUID: *req.RegionID, Valid: true}
	}
	if req.DriverID != nil {
		input.DriverID = uuid.NullUUID{UUID: *req.DriverID, Valid: true}
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, service.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	result, err := h.service.UpdateOrder(r.Context(), id, input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.publish(ws.EventOrderUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

type advanceRequest struct {
	Resolution string `json:"resolution"`
}

// Advance moves the order to its next status. The body is optional; it only
// matters at the delivery step when a balance is outstanding.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.Advance(r.Context(), id, req.Resolution)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := toOrderResponse(order, nil)
	h.publish(ws.EventOrderAdvanced, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := toOrderResponse(order, nil)
	h.publish(ws.EventOrderCancelled, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.service.Settle(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := toOrderResponse(order, nil)
	h.publish(ws.EventOrderSettled, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error().Err(err).Msg("get order")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	items, err := h.store.ListOrderItemsByOrder(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Msg("list order items")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	data, err := h.receipts.OrderReceipt(order, items)
	if err != nil {
		h.logger.Error().Err(err).Msg("render receipt")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", order.OrderNumber))
	_, _ = w.Write(data)
}

func (h *OrderHandler) publish(eventType string, resp orderResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal ws payload")
		return
	}
	h.hub.Broadcast(ws.TopicOrders, ws.Event{Type: eventType, Payload: payload})
}

func (h *OrderHandler) writeServiceError(w http.ResponseWriter, err error) {
	var credErr *service.CreditResolutionRequiredError
	if errors.As(err, &credErr) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":            credErr.Error(),
			"remaining_amount": credErr.RemainingAmount.StringFixed(2),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrCustomerRequired),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrInvalidResolution),
		errors.Is(err, service.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOrderNotEditable),
		errors.Is(err, service.ErrTerminalStatus),
		errors.Is(err, service.ErrStatusConflict),
		errors.Is(err, service.ErrCreditResolutionRequired),
		errors.Is(err, service.ErrNotCreditDebt):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, pgx.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.logger.Error().Err(err).Msg("order operation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseRangeParams(r *http.Request, fromKey, toKey string) (pgtype.Timestamptz, pgtype.Timestamptz, error) {
	var from, to pgtype.Timestamptz
	if raw := r.URL.Query().Get(fromKey); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			return from, to, err
		}
		from = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if raw := r.URL.Query().Get(toKey); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			return from, to, err
		}
		if len(raw) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1)
		}
		to = pgtype.Timestamptz{Time: t, Valid: true}
	}
	return from, to, nil
}
