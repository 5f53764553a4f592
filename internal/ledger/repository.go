package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/earnstack/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, u *models.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, coin, avatar_url, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, u.Email, u.Name, u.Role, u.Coin, u.AvatarURL, u.PasswordHash).Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail returns the user, or nil when the email is not registered.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT email, name, role, coin, avatar_url, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(&u.Email, &u.Name, &u.Role, &u.Coin, &u.AvatarURL, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT email, name, role, coin, avatar_url, password_hash, created_at, updated_at
		FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Email, &u.Name, &u.Role, &u.Coin, &u.AvatarURL, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

func (r *Repository) SetRole(ctx context.Context, email, role string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET role = $2, updated_at = now() WHERE email = $1
	`, email, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE email = $1", email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreditTx adds amount to the user's coin balance inside the given
// transaction and returns the new balance.
func (r *Repository) CreditTx(ctx context.Context, tx pgx.Tx, email string, amount int) (newBalance int, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE users SET coin = coin + $1, updated_at = now()
		WHERE email = $2
		RETURNING coin
	`, amount, email).Scan(&newBalance)
	return newBalance, err
}

// DebitTx atomically deducts amount if the balance covers it. The guard is
// part of the UPDATE itself so two concurrent debits can never drive the
// balance negative. Returns pgx.ErrNoRows when the guard (or the user)
// does not match.
func (r *Repository) DebitTx(ctx context.Context, tx pgx.Tx, email string, amount int) (newBalance int, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE users SET coin = coin - $1, updated_at = now()
		WHERE email = $2 AND coin >= $1
		RETURNING coin
	`, amount, email).Scan(&newBalance)
	return newBalance, err
}
