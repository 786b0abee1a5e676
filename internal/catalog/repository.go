package catalog

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

const offeringCols = "id, user_id, title, description, category_id, experience_level, teaching_method, is_active, created_at, updated_at"

func scanOffering(row pgx.Row) (*models.SkillOffering, error) {
	var o models.SkillOffering
	err := row.Scan(&o.ID, &o.UserID, &o.Title, &o.Description, &o.CategoryID,
		&o.ExperienceLevel, &o.TeachingMethod, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanRequest(row pgx.Row) (*models.SkillRequest, error) {
	var q models.SkillRequest
	err := row.Scan(&q.ID, &q.UserID, &q.Title, &q.Description, &q.CategoryID,
		&q.ExperienceLevel, &q.TeachingMethod, &q.IsActive, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// mapFKViolation turns a foreign-key violation (bad category or user id)
// into ErrNotFound.
func mapFKViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return models.ErrNotFound
	}
	return err
}

// mapRestrictViolation turns a foreign-key violation on delete into
// ErrConflict: some swap, possibly a terminal one the open-swap count
// ignores, still references the row.
func mapRestrictViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return models.ErrConflict
	}
	return err
}

func (r *Repository) CreateOffering(ctx context.Context, o *models.SkillOffering) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO skill_offerings (id, user_id, title, description, category_id, experience_level, teaching_method, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING is_active, created_at, updated_at
	`, o.ID, o.UserID, o.Title, o.Description, o.CategoryID, o.ExperienceLevel, o.TeachingMethod)
	if err := row.Scan(&o.IsActive, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return mapFKViolation(err)
	}
	return nil
}

func (r *Repository) CreateRequest(ctx context.Context, q *models.SkillRequest) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO skill_requests (id, user_id, title, description, category_id, experience_level, teaching_method, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING is_active, created_at, updated_at
	`, q.ID, q.UserID, q.Title, q.Description, q.CategoryID, q.ExperienceLevel, q.TeachingMethod)
	if err := row.Scan(&q.IsActive, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return mapFKViolation(err)
	}
	return nil
}

func (r *Repository) GetOffering(ctx context.Context, id uuid.UUID) (*models.SkillOffering, error) {
	o, err := scanOffering(r.pool.QueryRow(ctx, `
		SELECT `+offeringCols+` FROM skill_offerings WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return o, err
}

func (r *Repository) GetRequest(ctx context.Context, id uuid.UUID) (*models.SkillRequest, error) {
	q, err := scanRequest(r.pool.QueryRow(ctx, `
		SELECT `+offeringCols+` FROM skill_requests WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return q, err
}

func (r *Repository) SetOfferingActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE skill_offerings SET is_active = $2, updated_at = now() WHERE id = $1
	`, id, active)
	return err
}

func (r *Repository) SetRequestActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE skill_requests SET is_active = $2, updated_at = now() WHERE id = $1
	`, id, active)
	return err
}

func (r *Repository) DeleteOffering(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM skill_offerings WHERE id = $1", id)
	return mapRestrictViolation(err)
}

func (r *Repository) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM skill_requests WHERE id = $1", id)
	return mapRestrictViolation(err)
}

// CountOpenSwapsByOffering returns how many non-terminal swaps reference the
// offering. Used to block deletes that would orphan an active swap.
func (r *Repository) CountOpenSwapsByOffering(ctx context.Context, offeringID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM swaps
		WHERE offering_id = $1 AND status IN ('pending', 'accepted')
	`, offeringID).Scan(&n)
	return n, err
}

func (r *Repository) CountOpenSwapsByRequest(ctx context.Context, requestID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM swaps
		WHERE request_id = $1 AND status IN ('pending', 'accepted')
	`, requestID).Scan(&n)
	return n, err
}

func (r *Repository) ListActiveOfferingsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.SkillOffering, error) {
	return r.listOfferings(ctx, `
		SELECT `+offeringCols+` FROM skill_offerings
		WHERE user_id = $1 AND is_active ORDER BY created_at DESC
	`, ownerID)
}

func (r *Repository) ListActiveOfferingsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.SkillOffering, error) {
	return r.listOfferings(ctx, `
		SELECT `+offeringCols+` FROM skill_offerings
		WHERE category_id = $1 AND is_active ORDER BY created_at DESC
	`, categoryID)
}

func (r *Repository) listOfferings(ctx context.Context, query string, arg any) ([]*models.SkillOffering, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.SkillOffering
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *Repository) ListActiveRequestsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.SkillRequest, error) {
	return r.listRequests(ctx, `
		SELECT `+offeringCols+` FROM skill_requests
		WHERE user_id = $1 AND is_active ORDER BY created_at DESC
	`, ownerID)
}

func (r *Repository) ListActiveRequestsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.SkillRequest, error) {
	return r.listRequests(ctx, `
		SELECT `+offeringCols+` FROM skill_requests
		WHERE category_id = $1 AND is_active ORDER BY created_at DESC
	`, categoryID)
}

func (r *Repository) listRequests(ctx context.Context, query string, arg any) ([]*models.SkillRequest, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.SkillRequest
	for rows.Next() {
		q, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

func (r *Repository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
