package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/enum"
	"github.com/halipro/api/internal/middleware"
	"github.com/halipro/api/internal/service"
)

// LedgerStore is satisfied by *database.Queries; narrow interface for testability.
type LedgerStore interface {
	CreateExpense(ctx context.Context, arg database.CreateLedgerEntryParams) (database.LedgerEntry, error)
	ListExpenses(ctx context.Context, arg database.ListLedgerEntriesParams) ([]database.LedgerEntry, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) (int64, error)
	CreateIncome(ctx context.Context, arg database.CreateLedgerEntryParams) (database.LedgerEntry, error)
	ListIncomes(ctx context.Context, arg database.ListLedgerEntriesParams) ([]database.LedgerEntry, error)
	DeleteIncome(ctx context.Context, id uuid.UUID) (int64, error)
}

// LedgerHandler serves the cash book: manual expenses and additional incomes
// outside the order flow.
type LedgerHandler struct {
	store  LedgerStore
	logger zerolog.Logger
}

func NewLedgerHandler(store LedgerStore, logger zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{store: store, logger: logger}
}

type ledgerEntryRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	EntryDate   time.Time       `json:"entry_date"`
}

type ledgerEntryResponse struct {
	ID          uuid.UUID `json:"id"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	EntryDate   time.Time `json:"entry_date"`
	CreatedAt   time.Time `json:"created_at"`
}

func toLedgerEntryResponse(e database.LedgerEntry) ledgerEntryResponse {
	return ledgerEntryResponse{
		ID:          e.ID,
		Amount:      numericToString(e.Amount),
		Category:    e.Category,
		Description: e.Description,
		EntryDate:   e.EntryDate,
		CreatedAt:   e.CreatedAt,
	}
}

type createEntryFunc func(ctx context.Context, arg database.CreateLedgerEntryParams) (database.LedgerEntry, error)
type listEntriesFunc func(ctx context.Context, arg database.ListLedgerEntriesParams) ([]database.LedgerEntry, error)
type deleteEntryFunc func(ctx context.Context, id uuid.UUID) (int64, error)

func (h *LedgerHandler) create(w http.ResponseWriter, r *http.Request, defaultCategory string, fn createEntryFunc) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	var req ledgerEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.Category == "" {
		req.Category = defaultCategory
	}
	if req.EntryDate.IsZero() {
		req.EntryDate = time.Now()
	}

	entry, err := fn(r.Context(), database.CreateLedgerEntryParams{
		Amount:      service.DecimalToNumeric(req.Amount),
		Category:    req.Category,
		Description: req.Description,
		EntryDate:   req.EntryDate,
		CreatedBy:   claims.UserID,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("create ledger entry")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toLedgerEntryResponse(entry))
}

func (h *LedgerHandler) list(w http.ResponseWriter, r *http.Request, fn listEntriesFunc) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	limit, offset := parsePagination(r)

	entries, err := fn(r.Context(), database.ListLedgerEntriesParams{
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("list ledger entries")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	resp := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toLedgerEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) delete(w http.ResponseWriter, r *http.Request, fn deleteEntryFunc) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	affected, err := fn(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Msg("delete ledger entry")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if affected == 0 {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LedgerHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, enum.ExpenseCategoryGeneral, h.store.CreateExpense)
}

func (h *LedgerHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.store.ListExpenses)
}

func (h *LedgerHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.store.DeleteExpense)
}

func (h *LedgerHandler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, enum.IncomeCategoryOther, h.store.CreateIncome)
}

func (h *LedgerHandler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.store.ListIncomes)
}

func (h *LedgerHandler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.store.DeleteIncome)
}
