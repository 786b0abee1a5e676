package auth

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

// Create inserts a new user and seeds their credit account with the starting
// balance, recording the signup bonus in the ledger, all in one transaction.
func (r *Repository) Create(ctx context.Context, email, username, passwordHash string) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	u := &models.User{ID: uuid.New(), Email: email, Username: username, PasswordHash: passwordHash}
	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, email, username, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.Username, u.PasswordHash).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrDuplicate
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO credit_accounts (user_id, balance) VALUES ($1, $2)
	`, u.ID, models.StartingCreditBalance); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO credit_transactions (id, user_id, amount, description)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), u.ID, models.StartingCreditBalance, models.CreditReasonSignupBonus); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail returns the user for login. Returns nil when not found.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.scanUser(r.pool.QueryRow(ctx, `
		SELECT id, email, username, bio, avatar_url, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := r.scanUser(r.pool.QueryRow(ctx, `
		SELECT id, email, username, bio, avatar_url, password_hash, created_at, updated_at
		FROM users WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return u, err
}

// UpdateProfile updates the mutable profile fields and returns the new row.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, username, bio, avatarURL string) (*models.User, error) {
	u, err := r.scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET username = $1, bio = $2, avatar_url = $3, updated_at = now()
		WHERE id = $4
		RETURNING id, email, username, bio, avatar_url, password_hash, created_at, updated_at
	`, username, bio, avatarURL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, models.ErrDuplicate
	}
	return u, err
}

func (r *Repository) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Bio, &u.AvatarURL, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
