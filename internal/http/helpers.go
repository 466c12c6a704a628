package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobtrack/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// formatDollars renders cents for the UI, e.g. "$825.50".
func formatDollars(m core.Money) string {
	if m.Cents < 0 {
		return "-$" + core.Money{Cents: -m.Cents}.String()
	}
	return "$" + m.String()
}

// parseID reads a positive int64 from a form or query value.
func parseID(v string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q", v)
	}
	return id, nil
}

// queryProjectID reads the optional project_id parameter; 0 means unset.
func queryProjectID(r *http.Request) int64 {
	v := strings.TrimSpace(r.URL.Query().Get("project_id"))
	if v == "" {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// formDate parses an optional YYYY-MM-DD form value.
func formDate(form url.Values, field string) (core.Date, error) {
	d, err := core.ParseDate(form.Get(field))
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: field, Reason: "must be YYYY-MM-DD"}
	}
	return d, nil
}

// formMoney parses a decimal amount form value into cents. Empty means zero.
func formMoney(form url.Values, field string) (core.Money, error) {
	v := strings.TrimSpace(form.Get(field))
	if v == "" {
		return core.Money{}, nil
	}
	cents, err := core.ParseDecimalToCents(v)
	if err != nil {
		return core.Money{}, &core.ValidationError{Field: field, Reason: "must be a non-negative amount"}
	}
	return core.Money{Cents: cents}, nil
}

// formHours parses a decimal hours form value into tenths. Empty means zero.
func formHours(form url.Values, field string) (core.Hours, error) {
	v := strings.TrimSpace(form.Get(field))
	if v == "" {
		return core.Hours{}, nil
	}
	tenths, err := core.ParseHoursToTenths(v)
	if err != nil {
		return core.Hours{}, &core.ValidationError{Field: field, Reason: "must be non-negative hours"}
	}
	return core.Hours{Tenths: tenths}, nil
}

// redirectWithFlash sends the browser back to path with a one-shot message
// carried in the query string (post-redirect-get).
func redirectWithFlash(w http.ResponseWriter, r *http.Request, path, flash string) {
	u := url.URL{Path: path}
	q := u.Query()
	if flash != "" {
		q.Set("ok", flash)
	}
	if pid := r.FormValue("project_id"); pid != "" {
		q.Set("project_id", pid)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// redirectWithError is redirectWithFlash for failures.
func redirectWithError(w http.ResponseWriter, r *http.Request, path string, err error) {
	u := url.URL{Path: path}
	q := u.Query()
	q.Set("err", userMessage(err))
	if pid := r.FormValue("project_id"); pid != "" {
		q.Set("project_id", pid)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// userMessage translates typed core errors into user-visible text. The core
// itself never produces UI strings.
func userMessage(err error) string {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return "Invalid " + strings.ReplaceAll(ve.Field, "_", " ") + ": " + ve.Reason
	case errors.Is(err, core.ErrNotFound):
		return "Record not found"
	case errors.Is(err, core.ErrHasDependents):
		return "Project still has tasks, expenses, or income; delete those first"
	case errors.Is(err, core.ErrReceiptIO):
		return "Receipt file could not be stored; the record was not changed"
	default:
		return "Something went wrong saving your changes"
	}
}

// writeDomainError maps typed core errors onto HTTP status codes for
// non-page endpoints (downloads, receipts).
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, userMessage(err), http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrNotFound):
		http.Error(w, userMessage(err), http.StatusNotFound)
	case errors.Is(err, core.ErrHasDependents):
		http.Error(w, userMessage(err), http.StatusConflict)
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
		http.Error(w, userMessage(err), http.StatusInternalServerError)
	}
}

// pageFlash pulls the one-shot messages out of the query string.
func pageFlash(r *http.Request) (ok, errMsg string) {
	return r.URL.Query().Get("ok"), r.URL.Query().Get("err")
}

// requireMethod enforces the allowed method, answering 405 otherwise.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}
