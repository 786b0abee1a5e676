package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationExchangeProposed = "exchange_proposed"
	NotificationSwapAccepted     = "swap_accepted"
	NotificationSwapDeclined     = "swap_declined"
	NotificationSwapCancelled    = "swap_cancelled"
	NotificationSwapCompleted    = "swap_completed"
	NotificationExchangeComplete = "exchange_completed"
)

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Type      string     `json:"type"`
	Content   string     `json:"content"`
	RelatedID *uuid.UUID `json:"related_id,omitempty"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
}
