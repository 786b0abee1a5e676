package models

import (
	"time"

	"github.com/google/uuid"
)

// Exchange statuses, derived from the statuses of the underlying swaps.
const (
	ExchangeStatusPending   = "pending"
	ExchangeStatusCompleted = "completed"
	ExchangeStatusCancelled = "cancelled"
)

// Exchange aggregates one or two swaps between exactly two users.
// A reciprocal exchange has two swaps, one in each direction, and no
// credits. An asymmetric exchange has a single swap (Swap2ID nil) funded
// by CreditAmount debited from the learner.
type Exchange struct {
	ID           uuid.UUID  `json:"id"`
	User1ID      uuid.UUID  `json:"user1_id"`
	User2ID      uuid.UUID  `json:"user2_id"`
	Swap1ID      uuid.UUID  `json:"swap1_id"`
	Swap2ID      *uuid.UUID `json:"swap2_id,omitempty"`
	CreditAmount *int       `json:"credit_amount,omitempty"`
	Status       string     `json:"status"`
	CreatedBy    uuid.UUID  `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreditFunded reports whether the exchange is asymmetric (single swap
// paid for with credits).
func (e *Exchange) CreditFunded() bool {
	return e.Swap2ID == nil && e.CreditAmount != nil
}

// Counterpart returns the other party of the exchange.
func (e *Exchange) Counterpart(userID uuid.UUID) uuid.UUID {
	if e.User1ID == userID {
		return e.User2ID
	}
	return e.User1ID
}
