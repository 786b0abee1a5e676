package models

import (
	"time"

	"github.com/google/uuid"
)

// StartingCreditBalance is granted when a credit account is first created.
const StartingCreditBalance = 5

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatar_url"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreditAccount is the single balance row per user. Created lazily on first
// read; mutated only through ledger spend/earn, never overwritten directly.
type CreditAccount struct {
	UserID    uuid.UUID `json:"user_id"`
	Balance   int       `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
