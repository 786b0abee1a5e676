package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillswap/backend/internal/models"
)

// AccountRepo is the minimal account store interface for the ledger.
type AccountRepo interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.CreditAccount, error)
	Deduct(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (newBalance int, err error)
	Add(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (newBalance int, err error)
}

// TransactionRepo is the minimal ledger-entry store interface.
type TransactionRepo interface {
	CreateEntry(ctx context.Context, tx pgx.Tx, t *models.CreditTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error)
}

// TxBeginner opens transactions for the pool-scoped spend/earn wrappers.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	HasSufficientBalance(ctx context.Context, userID uuid.UUID, amount int) (bool, error)
	Spend(ctx context.Context, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error)
	Earn(ctx context.Context, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error)
	SpendTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error)
	EarnTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error)
	RefundTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, relatedID *uuid.UUID) (uuid.UUID, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error)
}

type service struct {
	accounts AccountRepo
	entries  TransactionRepo
	db       TxBeginner
}

// NewService creates a ledger service. All three dependencies are usually
// the same *Repository; they are split so tests can swap in memory fakes.
func NewService(accounts AccountRepo, entries TransactionRepo, db TxBeginner) Service {
	return &service{accounts: accounts, entries: entries, db: db}
}

var _ Service = (*service)(nil)

func (s *service) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	acc, err := s.accounts.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

func (s *service) HasSufficientBalance(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	if amount < 0 {
		return false, models.ErrInvalidAmount
	}
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// SpendTx debits the account and appends the matching negative ledger entry
// inside the caller's transaction. The conditional update serializes
// concurrent spends so the balance never goes negative.
func (s *service) SpendTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error) {
	if amount <= 0 {
		return uuid.Nil, models.ErrInvalidAmount
	}
	if _, err := s.accounts.GetOrCreate(ctx, userID); err != nil {
		return uuid.Nil, err
	}
	if _, err := s.accounts.Deduct(ctx, tx, userID, amount); err != nil {
		return uuid.Nil, err
	}
	entry := &models.CreditTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      -amount,
		Description: reason,
		RelatedID:   relatedID,
	}
	if err := s.entries.CreateEntry(ctx, tx, entry); err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}

// EarnTx credits the account and appends the matching positive ledger entry
// inside the caller's transaction.
func (s *service) EarnTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error) {
	if amount <= 0 || amount > models.MaxCreditTransactionAmount {
		return uuid.Nil, models.ErrInvalidAmount
	}
	return s.credit(ctx, tx, userID, amount, reason, relatedID)
}

// RefundTx returns previously spent credits. Unlike EarnTx it is not capped:
// the amount was already validated when it was spent.
func (s *service) RefundTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, relatedID *uuid.UUID) (uuid.UUID, error) {
	if amount <= 0 {
		return uuid.Nil, models.ErrInvalidAmount
	}
	return s.credit(ctx, tx, userID, amount, models.CreditReasonRefund, relatedID)
}

func (s *service) credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error) {
	if _, err := s.accounts.GetOrCreate(ctx, userID); err != nil {
		return uuid.Nil, err
	}
	if _, err := s.accounts.Add(ctx, tx, userID, amount); err != nil {
		return uuid.Nil, err
	}
	entry := &models.CreditTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Description: reason,
		RelatedID:   relatedID,
	}
	if err := s.entries.CreateEntry(ctx, tx, entry); err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}

// Spend runs SpendTx in its own transaction.
func (s *service) Spend(ctx context.Context, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)
	id, err := s.SpendTx(ctx, tx, userID, amount, reason, relatedID)
	if err != nil {
		return uuid.Nil, err
	}
	return id, tx.Commit(ctx)
}

// Earn runs EarnTx in its own transaction.
func (s *service) Earn(ctx context.Context, userID uuid.UUID, amount int, reason string, relatedID *uuid.UUID) (uuid.UUID, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)
	id, err := s.EarnTx(ctx, tx, userID, amount, reason, relatedID)
	if err != nil {
		return uuid.Nil, err
	}
	return id, tx.Commit(ctx)
}

func (s *service) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.entries.ListByUser(ctx, userID, limit, offset)
}
