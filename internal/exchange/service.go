package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillswap/backend/internal/models"
	"github.com/skillswap/backend/internal/notify"
)

// Store is the persistence surface the service needs.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, tx pgx.Tx, e *models.Exchange) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Exchange, error)
	GetBySwapID(ctx context.Context, tx pgx.Tx, swapID uuid.UUID) (*models.Exchange, error)
	FindByPair(ctx context.Context, offeringID uuid.UUID, requestID *uuid.UUID) (*models.Exchange, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []string, to string) (bool, error)
	SwapStatus(ctx context.Context, tx pgx.Tx, swapID uuid.UUID) (string, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Exchange, error)
}

// SwapService is the slice of the swap service the orchestrator drives
// inside its transactions.
type SwapService interface {
	Propose(ctx context.Context, tx pgx.Tx, offeringID, teacherID, learnerID uuid.UUID, requestID *uuid.UUID) (*models.Swap, error)
	Accept(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error)
	Complete(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error)
	Decline(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error)
	Cancel(ctx context.Context, tx pgx.Tx, swapID, byUserID uuid.UUID) (*models.Swap, error)
}

// LedgerService is the slice of the credit ledger the orchestrator uses.
type LedgerService interface {
	HasSufficientBalance(ctx context.Context, userID uuid.UUID, amount int) (bool, error)
	SpendTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error)
	EarnTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error)
	RefundTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, relatedID *uuid.UUID) (uuid.UUID, error)
}

type OfferingGetter interface {
	GetOffering(ctx context.Context, id uuid.UUID) (*models.SkillOffering, error)
}

// InsertNotificationTxFunc enqueues a notification delivery within the given
// transaction. Provided by main using river.Client.InsertTx.
type InsertNotificationTxFunc func(ctx context.Context, tx pgx.Tx, args notify.DeliverNotificationArgs) error

type Service interface {
	InitiateReciprocal(ctx context.Context, initiatorID, offeringByInitiator, counterpartID, offeringByCounterpart uuid.UUID) (*models.Exchange, error)
	InitiateCreditFunded(ctx context.Context, learnerID, offeringID uuid.UUID, amount int) (*models.Exchange, error)
	AcceptSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error)
	DeclineSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error)
	CancelSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error)
	CompleteSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error)
	FindExisting(ctx context.Context, offeringID uuid.UUID, requestID *uuid.UUID) (*models.Exchange, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Exchange, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Exchange, error)
}

type service struct {
	store              Store
	swaps              SwapService
	ledger             LedgerService
	offerings          OfferingGetter
	insertNotification InsertNotificationTxFunc
}

// NewService creates the exchange orchestrator. insertNotification is
// typically a closure over river.Client.InsertTx.
func NewService(store Store, swaps SwapService, ledger LedgerService, offerings OfferingGetter, insertNotification InsertNotificationTxFunc) Service {
	return &service{
		store:              store,
		swaps:              swaps,
		ledger:             ledger,
		offerings:          offerings,
		insertNotification: insertNotification,
	}
}

func (s *service) InitiateReciprocal(ctx context.Context, initiatorID, offeringByInitiator, counterpartID, offeringByCounterpart uuid.UUID) (*models.Exchange, error) {
	if initiatorID == counterpartID {
		return nil, models.ErrInvalidParticipants
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Counterpart teaches the initiator.
	swap1, err := s.swaps.Propose(ctx, tx, offeringByCounterpart, counterpartID, initiatorID, nil)
	if err != nil {
		return nil, err
	}
	// If the swap pre-existed it may already belong to an exchange.
	if existing, err := s.store.GetBySwapID(ctx, tx, swap1.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, tx.Commit(ctx)
	}

	// Initiator teaches the counterpart.
	swap2, err := s.swaps.Propose(ctx, tx, offeringByInitiator, initiatorID, counterpartID, nil)
	if err != nil {
		return nil, err
	}
	if existing, err := s.store.GetBySwapID(ctx, tx, swap2.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, tx.Commit(ctx)
	}

	e := &models.Exchange{
		ID:        uuid.New(),
		User1ID:   initiatorID,
		User2ID:   counterpartID,
		Swap1ID:   swap1.ID,
		Swap2ID:   &swap2.ID,
		Status:    models.ExchangeStatusPending,
		CreatedBy: initiatorID,
	}
	if err := s.store.Create(ctx, tx, e); err != nil {
		return nil, err
	}
	if err := s.notify(ctx, tx, counterpartID, models.NotificationExchangeProposed, "You have a new exchange proposal", e.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) InitiateCreditFunded(ctx context.Context, learnerID, offeringID uuid.UUID, amount int) (*models.Exchange, error) {
	// The upper bound matches the ledger's per-transaction cap. An amount the
	// teacher payout would reject must never be debited in the first place.
	if amount <= 0 || amount > models.MaxCreditTransactionAmount {
		return nil, models.ErrInvalidAmount
	}
	offering, err := s.offerings.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	teacherID := offering.UserID
	if teacherID == learnerID {
		return nil, models.ErrInvalidParticipants
	}
	// Fail fast before opening a transaction. The conditional debit below
	// still guards against concurrent spends.
	if ok, err := s.ledger.HasSufficientBalance(ctx, learnerID, amount); err != nil {
		return nil, err
	} else if !ok {
		return nil, models.ErrInsufficientBalance
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sw, err := s.swaps.Propose(ctx, tx, offeringID, teacherID, learnerID, nil)
	if err != nil {
		return nil, err
	}
	if existing, err := s.store.GetBySwapID(ctx, tx, sw.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, tx.Commit(ctx)
	}

	e := &models.Exchange{
		ID:           uuid.New(),
		User1ID:      learnerID,
		User2ID:      teacherID,
		Swap1ID:      sw.ID,
		CreditAmount: &amount,
		Status:       models.ExchangeStatusPending,
		CreatedBy:    learnerID,
	}
	if err := s.store.Create(ctx, tx, e); err != nil {
		return nil, err
	}
	if _, err := s.ledger.SpendTx(ctx, tx, learnerID, amount, models.CreditReasonExchangeSpend, &e.ID); err != nil {
		return nil, err
	}
	if err := s.notify(ctx, tx, teacherID, models.NotificationExchangeProposed, "You have a new exchange proposal", e.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) AcceptSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, swapID, byUserID, s.swaps.Accept, models.NotificationSwapAccepted, "Your swap was accepted")
}

func (s *service) DeclineSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, swapID, byUserID, s.swaps.Decline, models.NotificationSwapDeclined, "Your swap was declined")
}

func (s *service) CancelSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, swapID, byUserID, s.swaps.Cancel, models.NotificationSwapCancelled, "Your swap was cancelled")
}

func (s *service) CompleteSwap(ctx context.Context, swapID, byUserID uuid.UUID) (*models.Swap, error) {
	return s.transition(ctx, swapID, byUserID, s.swaps.Complete, models.NotificationSwapCompleted, "Your swap was marked completed")
}

// transition runs a swap state change plus the derived exchange bookkeeping
// in a single transaction.
func (s *service) transition(ctx context.Context, swapID, byUserID uuid.UUID,
	move func(context.Context, pgx.Tx, uuid.UUID, uuid.UUID) (*models.Swap, error),
	notifType, notifContent string) (*models.Swap, error) {

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sw, err := move(ctx, tx, swapID, byUserID)
	if err != nil {
		return nil, err
	}

	e, err := s.store.GetBySwapID(ctx, tx, sw.ID)
	if err != nil {
		return nil, err
	}
	if e != nil {
		switch sw.Status {
		case models.SwapStatusCompleted:
			if err := s.settleIfComplete(ctx, tx, e, sw, byUserID); err != nil {
				return nil, err
			}
		case models.SwapStatusDeclined, models.SwapStatusCancelled:
			if err := s.cancelExchange(ctx, tx, e, sw, byUserID); err != nil {
				return nil, err
			}
		}
	}

	relatedID := sw.ID
	if e != nil {
		relatedID = e.ID
	}
	if err := s.notify(ctx, tx, sw.Counterpart(byUserID), notifType, notifContent, relatedID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return sw, nil
}

// settleIfComplete completes the exchange once every swap in it is
// completed, paying the teacher if the exchange was credit-funded.
func (s *service) settleIfComplete(ctx context.Context, tx pgx.Tx, e *models.Exchange, sw *models.Swap, byUserID uuid.UUID) error {
	if e.Swap2ID != nil {
		siblingID := *e.Swap2ID
		if siblingID == sw.ID {
			siblingID = e.Swap1ID
		}
		status, err := s.store.SwapStatus(ctx, tx, siblingID)
		if err != nil {
			return err
		}
		if status != models.SwapStatusCompleted {
			return nil
		}
	}
	ok, err := s.store.UpdateStatus(ctx, tx, e.ID, []string{models.ExchangeStatusPending}, models.ExchangeStatusCompleted)
	if err != nil {
		return err
	}
	if !ok {
		// Already settled or cancelled concurrently.
		return nil
	}
	if e.CreditFunded() {
		if _, err := s.ledger.EarnTx(ctx, tx, sw.TeacherID, *e.CreditAmount, models.CreditReasonTeachingPayment, &e.ID); err != nil {
			return fmt.Errorf("pay teacher: %w", err)
		}
	}
	// The completing user already knows; tell the other party.
	other := e.User1ID
	if byUserID == e.User1ID {
		other = e.User2ID
	}
	return s.notify(ctx, tx, other, models.NotificationExchangeComplete, "Your exchange is complete", e.ID)
}

// cancelExchange cancels the exchange after one of its swaps was declined
// or cancelled, winds down the sibling swap, and refunds spent credits.
func (s *service) cancelExchange(ctx context.Context, tx pgx.Tx, e *models.Exchange, sw *models.Swap, byUserID uuid.UUID) error {
	ok, err := s.store.UpdateStatus(ctx, tx, e.ID, []string{models.ExchangeStatusPending}, models.ExchangeStatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if e.Swap2ID != nil {
		siblingID := *e.Swap2ID
		if siblingID == sw.ID {
			siblingID = e.Swap1ID
		}
		// Both swaps share the same two participants, so byUserID may wind
		// down the sibling too. A sibling already in a terminal state stays
		// where it is.
		if _, err := s.swaps.Cancel(ctx, tx, siblingID, byUserID); err != nil && !errors.Is(err, models.ErrInvalidState) {
			return err
		}
	}
	if e.CreditFunded() {
		learnerID := sw.LearnerID
		if _, err := s.ledger.RefundTx(ctx, tx, learnerID, *e.CreditAmount, &e.ID); err != nil {
			return fmt.Errorf("refund learner: %w", err)
		}
	}
	return nil
}

func (s *service) notify(ctx context.Context, tx pgx.Tx, userID uuid.UUID, notifType, content string, relatedID uuid.UUID) error {
	if s.insertNotification == nil {
		return nil
	}
	related := relatedID
	return s.insertNotification(ctx, tx, notify.DeliverNotificationArgs{
		UserID:    userID,
		Type:      notifType,
		Content:   content,
		RelatedID: &related,
	})
}

func (s *service) FindExisting(ctx context.Context, offeringID uuid.UUID, requestID *uuid.UUID) (*models.Exchange, error) {
	return s.store.FindByPair(ctx, offeringID, requestID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Exchange, error) {
	return s.store.GetByID(ctx, id)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Exchange, error) {
	return s.store.ListByUser(ctx, userID)
}
