package models

import (
	"time"

	"github.com/google/uuid"
)

// Swap statuses. Terminal states are completed, declined and cancelled;
// no transition leaves a terminal state.
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusCompleted = "completed"
	SwapStatusDeclined  = "declined"
	SwapStatusCancelled = "cancelled"
)

// Swap is one directional teach/learn pairing for a single skill.
type Swap struct {
	ID         uuid.UUID  `json:"id"`
	OfferingID uuid.UUID  `json:"offering_id"`
	RequestID  *uuid.UUID `json:"request_id,omitempty"`
	TeacherID  uuid.UUID  `json:"teacher_id"`
	LearnerID  uuid.UUID  `json:"learner_id"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SwapStatusTerminal reports whether status permits no further transitions.
func SwapStatusTerminal(status string) bool {
	switch status {
	case SwapStatusCompleted, SwapStatusDeclined, SwapStatusCancelled:
		return true
	}
	return false
}

// HasParticipant reports whether userID is the teacher or the learner.
func (s *Swap) HasParticipant(userID uuid.UUID) bool {
	return s.TeacherID == userID || s.LearnerID == userID
}

// Counterpart returns the other participant of the swap.
func (s *Swap) Counterpart(userID uuid.UUID) uuid.UUID {
	if s.TeacherID == userID {
		return s.LearnerID
	}
	return s.TeacherID
}
