package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// BalanceChecker is the subset of the ledger used for the early balance gate.
type BalanceChecker interface {
	HasSufficientBalance(ctx context.Context, userID uuid.UUID, amount int) (bool, error)
}

// parsedAmount extracts just the amount; the handler decodes the full body
// itself from the restored reader.
type parsedAmount struct {
	CreditAmount int `json:"credit_amount"`
}

// BalanceCheck rejects credit-funded exchange requests early when the
// authenticated user's balance cannot cover credit_amount. It reads the body
// to extract the amount, then replaces r.Body so downstream handlers can
// re-read it. The authoritative check is the conditional debit inside the
// exchange transaction; this gate just fails fast.
func BalanceCheck(ledger BalanceChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromCtx(r.Context())
			if user == nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			bodyBytes, err := io.ReadAll(r.Body)
			r.Body.Close()
			if err != nil {
				http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
				return
			}
			// Restore body for the handler.
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			var amount parsedAmount
			if err := json.Unmarshal(bodyBytes, &amount); err != nil {
				http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
				return
			}
			if amount.CreditAmount <= 0 {
				http.Error(w, `{"error":"credit_amount must be > 0"}`, http.StatusBadRequest)
				return
			}

			ok, err := ledger.HasSufficientBalance(r.Context(), user.ID, amount.CreditAmount)
			if err != nil {
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Error(w, `{"error":"insufficient credit balance"}`, http.StatusPaymentRequired)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
