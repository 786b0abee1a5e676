package swap

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillswap/backend/internal/models"
)

// Store is the repository surface the swap service needs.
type Store interface {
	Create(ctx context.Context, tx pgx.Tx, s *models.Swap) error
	FindActive(ctx context.Context, offeringID uuid.UUID, requestID *uuid.UUID) (*models.Swap, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Swap, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Swap, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []string, to string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Swap, error)
}

// OfferingGetter resolves the offering a swap teaches.
type OfferingGetter interface {
	GetOffering(ctx context.Context, id uuid.UUID) (*models.SkillOffering, error)
}

// Service implements the swap state machine. Mutating methods take a pgx.Tx
// because swaps only ever change inside an exchange's transaction boundary.
type Service interface {
	Propose(ctx context.Context, tx pgx.Tx, offeringID, teacherID, learnerID uuid.UUID, requestID *uuid.UUID) (*models.Swap, error)
	Accept(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error)
	Complete(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error)
	Decline(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error)
	Cancel(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error)
	Get(ctx context.Context, swapID uuid.UUID) (*models.Swap, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Swap, error)
}

type service struct {
	store     Store
	offerings OfferingGetter
}

func NewService(store Store, offerings OfferingGetter) Service {
	return &service{store: store, offerings: offerings}
}

var _ Service = (*service)(nil)

// Propose creates a pending swap, or returns the existing non-terminal swap
// for the same (offering, request) pair. Callers racing on the same pair are
// both routed to the one surviving row.
func (s *service) Propose(ctx context.Context, tx pgx.Tx, offeringID, teacherID, learnerID uuid.UUID, requestID *uuid.UUID) (*models.Swap, error) {
	if teacherID == learnerID {
		return nil, models.ErrInvalidParticipants
	}

	offering, err := s.offerings.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	if offering.UserID != teacherID {
		return nil, models.ErrForbidden
	}
	if !offering.IsActive {
		return nil, models.ErrConflict
	}

	if existing, err := s.store.FindActive(ctx, offeringID, requestID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	sw := &models.Swap{
		ID:         uuid.New(),
		OfferingID: offeringID,
		RequestID:  requestID,
		TeacherID:  teacherID,
		LearnerID:  learnerID,
	}
	if err := s.store.Create(ctx, tx, sw); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			// Lost the race; redirect to the winner.
			if existing, ferr := s.store.FindActive(ctx, offeringID, requestID); ferr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return sw, nil
}

// Accept moves pending -> accepted. Only the teacher may accept.
func (s *service) Accept(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, tx, swapID, byUserID,
		[]string{models.SwapStatusPending}, models.SwapStatusAccepted,
		func(sw *models.Swap) error {
			if sw.TeacherID != byUserID {
				return models.ErrForbidden
			}
			return nil
		})
}

// Complete moves accepted -> completed. Either participant may complete.
func (s *service) Complete(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, tx, swapID, byUserID,
		[]string{models.SwapStatusAccepted}, models.SwapStatusCompleted, s.participantOnly(byUserID))
}

// Decline moves pending/accepted -> declined.
func (s *service) Decline(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, tx, swapID, byUserID,
		[]string{models.SwapStatusPending, models.SwapStatusAccepted}, models.SwapStatusDeclined, s.participantOnly(byUserID))
}

// Cancel moves pending/accepted -> cancelled.
func (s *service) Cancel(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, tx, swapID, byUserID,
		[]string{models.SwapStatusPending, models.SwapStatusAccepted}, models.SwapStatusCancelled, s.participantOnly(byUserID))
}

func (s *service) participantOnly(byUserID uuid.UUID) func(*models.Swap) error {
	return func(sw *models.Swap) error {
		if !sw.HasParticipant(byUserID) {
			return models.ErrForbidden
		}
		return nil
	}
}

// transition locks the swap, runs the permission check, then applies the
// conditional status update. The row lock plus the status guard make
// concurrent conflicting transitions serialize: the loser sees
// ErrInvalidState, never a double apply.
func (s *service) transition(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID, from []string, to string, allowed func(*models.Swap) error) (*models.Swap, error) {
	sw, err := s.store.GetForUpdate(ctx, tx, swapID)
	if err != nil {
		return nil, err
	}
	if err := allowed(sw); err != nil {
		return nil, err
	}
	ok, err := s.store.UpdateStatus(ctx, tx, swapID, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrInvalidState
	}
	sw.Status = to
	return sw, nil
}

func (s *service) Get(ctx context.Context, swapID uuid.UUID) (*models.Swap, error) {
	return s.store.GetByID(ctx, swapID)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Swap, error) {
	return s.store.ListByUser(ctx, userID)
}
