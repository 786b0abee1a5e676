package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/models"
)

type stubLedger struct {
	balance int
	err     error
}

func (s *stubLedger) HasSufficientBalance(_ context.Context, _ uuid.UUID, amount int) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.balance >= amount, nil
}

// injectUser wraps a handler to pre-set the user in context, simulating what
// UserAuth would do upstream.
func injectUser(u *models.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// echo200 proves the middleware let the request through and that the body
// was restored for the handler.
var echo200 = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
})

func TestBalanceCheck_SufficientBalance(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	handler := injectUser(user, BalanceCheck(&stubLedger{balance: 10})(echo200))

	body := `{"offering_id":"x","credit_amount":5}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != body {
		t.Errorf("body not restored for handler: got %q", rec.Body.String())
	}
}

func TestBalanceCheck_InsufficientBalance(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	handler := injectUser(user, BalanceCheck(&stubLedger{balance: 3})(echo200))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"credit_amount":5}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
}

func TestBalanceCheck_InvalidAmount(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	handler := injectUser(user, BalanceCheck(&stubLedger{balance: 100})(echo200))

	for _, body := range []string{`{"credit_amount":0}`, `{"credit_amount":-2}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestBalanceCheck_NoUser(t *testing.T) {
	handler := BalanceCheck(&stubLedger{balance: 100})(echo200)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"credit_amount":5}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
