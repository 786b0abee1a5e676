package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxCreditTransactionAmount caps a single credit movement. Spends are
// additionally bounded by the balance; earns by this cap alone, so anything
// that will later pay out credits must respect it up front.
const MaxCreditTransactionAmount = 100

// Credit transaction reasons.
const (
	CreditReasonSignupBonus     = "signup bonus"
	CreditReasonExchangeSpend   = "credit-funded exchange"
	CreditReasonTeachingPayment = "teaching payment"
	CreditReasonRefund          = "exchange refund"
)

// CreditTransaction is an immutable ledger entry. Amount is signed:
// positive = earned, negative = spent. The sum of a user's entries
// always equals their account balance.
type CreditTransaction struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Amount      int        `json:"amount"`
	Description string     `json:"description"`
	RelatedID   *uuid.UUID `json:"related_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
