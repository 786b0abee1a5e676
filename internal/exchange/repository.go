package exchange

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillswap/backend/internal/models"
)

const exchangeCols = `id, user1_id, user2_id, swap1_id, swap2_id, credit_amount, status, created_by, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *Repository) Create(ctx context.Context, tx pgx.Tx, e *models.Exchange) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO exchanges (id, user1_id, user2_id, swap1_id, swap2_id, credit_amount, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7)
		RETURNING created_at, updated_at
	`, e.ID, e.User1ID, e.User2ID, e.Swap1ID, e.Swap2ID, e.CreditAmount, e.CreatedBy).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return models.ErrDuplicate
		case "23503":
			return models.ErrNotFound
		}
	}
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Exchange, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+exchangeCols+` FROM exchanges WHERE id = $1`, id)
	e, err := scanExchange(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return e, err
}

// GetBySwapID locks and returns the exchange containing the given swap,
// or (nil, nil) when the swap belongs to no exchange.
func (r *Repository) GetBySwapID(ctx context.Context, tx pgx.Tx, swapID uuid.UUID) (*models.Exchange, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+exchangeCols+` FROM exchanges
		WHERE swap1_id = $1 OR swap2_id = $1
		FOR UPDATE
	`, swapID)
	e, err := scanExchange(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// FindByPair returns the pending exchange whose swap covers the given
// offering/request pair, or (nil, nil) when there is none.
func (r *Repository) FindByPair(ctx context.Context, offeringID uuid.UUID, requestID *uuid.UUID) (*models.Exchange, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT e.id, e.user1_id, e.user2_id, e.swap1_id, e.swap2_id, e.credit_amount,
		       e.status, e.created_by, e.created_at, e.updated_at
		FROM exchanges e
		JOIN swaps s ON s.id IN (e.swap1_id, e.swap2_id)
		WHERE e.status = 'pending'
		  AND s.offering_id = $1
		  AND s.request_id IS NOT DISTINCT FROM $2
		ORDER BY e.created_at DESC
		LIMIT 1
	`, offeringID, requestID)
	e, err := scanExchange(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// UpdateStatus moves the exchange to the given status if its current
// status is one of from. Returns false when the guard did not match.
func (r *Repository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []string, to string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE exchanges SET status = $1, updated_at = now()
		WHERE id = $2 AND status = ANY($3)
	`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SwapStatus locks the swap row and returns its current status. Used to
// decide whether the sibling swap of an exchange has already finished.
func (r *Repository) SwapStatus(ctx context.Context, tx pgx.Tx, swapID uuid.UUID) (string, error) {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM swaps WHERE id = $1 FOR UPDATE`, swapID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", models.ErrNotFound
	}
	return status, err
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Exchange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+exchangeCols+` FROM exchanges
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Exchange
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanExchange(row pgx.Row) (*models.Exchange, error) {
	var e models.Exchange
	err := row.Scan(&e.ID, &e.User1ID, &e.User2ID, &e.Swap1ID, &e.Swap2ID, &e.CreditAmount,
		&e.Status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
