package swap

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

const swapCols = "id, offering_id, request_id, teacher_id, learner_id, status, created_at, updated_at"

func scanSwap(row pgx.Row) (*models.Swap, error) {
	var s models.Swap
	err := row.Scan(&s.ID, &s.OfferingID, &s.RequestID, &s.TeacherID, &s.LearnerID,
		&s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a pending swap inside the given transaction. The partial
// unique index on (offering_id, request_id) for non-terminal swaps turns a
// concurrent duplicate proposal into ErrDuplicate; the caller re-reads the
// winning row.
func (r *Repository) Create(ctx context.Context, tx pgx.Tx, s *models.Swap) error {
	row := tx.QueryRow(ctx, `
		INSERT INTO swaps (id, offering_id, request_id, teacher_id, learner_id, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING status, created_at, updated_at
	`, s.ID, s.OfferingID, s.RequestID, s.TeacherID, s.LearnerID)
	if err := row.Scan(&s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrDuplicate
		}
		return err
	}
	return nil
}

// FindActive returns the non-terminal swap for the (offering, request) pair,
// or nil when none exists.
func (r *Repository) FindActive(ctx context.Context, offeringID uuid.UUID, requestID *uuid.UUID) (*models.Swap, error) {
	s, err := scanSwap(r.pool.QueryRow(ctx, `
		SELECT `+swapCols+` FROM swaps
		WHERE offering_id = $1 AND request_id IS NOT DISTINCT FROM $2
		  AND status IN ('pending', 'accepted')
	`, offeringID, requestID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Swap, error) {
	s, err := scanSwap(r.pool.QueryRow(ctx, `
		SELECT `+swapCols+` FROM swaps WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return s, err
}

// GetForUpdate locks the swap row for the duration of the transaction.
func (r *Repository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Swap, error) {
	s, err := scanSwap(tx.QueryRow(ctx, `
		SELECT `+swapCols+` FROM swaps WHERE id = $1 FOR UPDATE
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return s, err
}

// UpdateStatus moves the swap to the target status only if its current
// status is one of from. Reports whether a row was updated; false means the
// transition lost a race or was never legal.
func (r *Repository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from []string, to string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE swaps SET status = $1, updated_at = now()
		WHERE id = $2 AND status = ANY($3)
	`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListByUser returns swaps where the user is teacher or learner, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Swap, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+swapCols+` FROM swaps
		WHERE teacher_id = $1 OR learner_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Swap
	for rows.Next() {
		s, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
