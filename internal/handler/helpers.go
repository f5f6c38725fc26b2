package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// parsePagination reads limit/offset query params, clamping limit to 100.
func parsePagination(r *http.Request) (int32, int32) {
	limit := int32(defaultLimit)
	offset := int32(0)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			if n > maxLimit {
				n = maxLimit
			}
			limit = int32(n)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = int32(n)
		}
	}
	return limit, offset
}

// parseDateRange reads from/to query params as RFC 3339 or plain dates. The
// "to" bound is exclusive; a plain date is widened to the start of the next
// day so a single-day range covers the whole day.
func parseDateRange(r *http.Request) (pgtype.Timestamptz, pgtype.Timestamptz, error) {
	var from, to pgtype.Timestamptz
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			return from, to, err
		}
		from = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
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

func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid || n.Int == nil {
		return "0.00"
	}
	return decimal.NewFromBigInt(n.Int, n.Exp).StringFixed(2)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
