package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillswap/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// GetOrCreate returns the user's credit account, creating it with the
// starting balance on first access. Creation also writes the matching
// signup-bonus ledger entry so the reconciliation invariant holds from
// the very first row.
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.CreditAccount, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var created bool
	var a models.CreditAccount
	row := tx.QueryRow(ctx, `
		INSERT INTO credit_accounts (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING user_id, balance, created_at, updated_at
	`, userID, models.StartingCreditBalance)
	if err := row.Scan(&a.UserID, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err == nil {
		created = true
	} else if !errors.Is(err, pgx.ErrNoRows) {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	if created {
		_, err = tx.Exec(ctx, `
			INSERT INTO credit_transactions (id, user_id, amount, description)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), userID, models.StartingCreditBalance, models.CreditReasonSignupBonus)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return &a, nil
	}

	row = tx.QueryRow(ctx, `
		SELECT user_id, balance, created_at, updated_at
		FROM credit_accounts WHERE user_id = $1
	`, userID)
	if err := row.Scan(&a.UserID, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &a, nil
}

// Deduct atomically subtracts amount if balance >= amount. Returns the new
// balance, or ErrInsufficientBalance when the conditional update matches no
// row. Call within a transaction.
func (r *Repository) Deduct(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (int, error) {
	var newBalance int
	err := tx.QueryRow(ctx, `
		UPDATE credit_accounts SET balance = balance - $1, updated_at = now()
		WHERE user_id = $2 AND balance >= $1
		RETURNING balance
	`, amount, userID).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, models.ErrInsufficientBalance
	}
	return newBalance, err
}

// Add credits amount to the account and returns the new balance.
func (r *Repository) Add(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (int, error) {
	var newBalance int
	err := tx.QueryRow(ctx, `
		UPDATE credit_accounts SET balance = balance + $1, updated_at = now()
		WHERE user_id = $2
		RETURNING balance
	`, amount, userID).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	return newBalance, err
}

// CreateEntry inserts a ledger entry inside the given transaction.
func (r *Repository) CreateEntry(ctx context.Context, tx pgx.Tx, t *models.CreditTransaction) error {
	return tx.QueryRow(ctx, `
		INSERT INTO credit_transactions (id, user_id, amount, description, related_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, t.ID, t.UserID, t.Amount, t.Description, t.RelatedID).Scan(&t.CreatedAt)
}

// ListByUser returns a page of the user's ledger entries, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, amount, description, related_id, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.CreditTransaction
	for rows.Next() {
		var t models.CreditTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Description, &t.RelatedID, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
