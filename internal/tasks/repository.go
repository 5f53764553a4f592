package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"
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

func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, t *models.Task) error {
	return tx.QueryRow(ctx, `
		INSERT INTO tasks (id, buyer_email, title, detail, image_url, payable_amount, required_workers, completion_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, t.ID, t.BuyerEmail, t.Title, t.Detail, t.ImageURL, t.PayableAmount, t.RequiredWorkers, t.CompletionDate).Scan(&t.CreatedAt)
}

// GetByID returns the task, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, buyer_email, title, detail, image_url, payable_amount, required_workers, completion_date, created_at
		FROM tasks WHERE id = $1
	`, id).Scan(&t.ID, &t.BuyerEmail, &t.Title, &t.Detail, &t.ImageURL, &t.PayableAmount, &t.RequiredWorkers, &t.CompletionDate, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListOpen returns tasks that still have open worker slots, newest first.
func (r *Repository) ListOpen(ctx context.Context) ([]*models.Task, error) {
	return r.list(ctx, `
		SELECT id, buyer_email, title, detail, image_url, payable_amount, required_workers, completion_date, created_at
		FROM tasks WHERE required_workers > 0 ORDER BY created_at DESC
	`)
}

func (r *Repository) ListAll(ctx context.Context) ([]*models.Task, error) {
	return r.list(ctx, `
		SELECT id, buyer_email, title, detail, image_url, payable_amount, required_workers, completion_date, created_at
		FROM tasks ORDER BY created_at DESC
	`)
}

func (r *Repository) ListByBuyer(ctx context.Context, buyerEmail string) ([]*models.Task, error) {
	return r.list(ctx, `
		SELECT id, buyer_email, title, detail, image_url, payable_amount, required_workers, completion_date, created_at
		FROM tasks WHERE buyer_email = $1 ORDER BY created_at DESC
	`, buyerEmail)
}

func (r *Repository) list(ctx context.Context, sql string, args ...any) ([]*models.Task, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.BuyerEmail, &t.Title, &t.Detail, &t.ImageURL, &t.PayableAmount, &t.RequiredWorkers, &t.CompletionDate, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ClaimCapacityTx decrements required_workers only while it is positive.
// The check and the decrement are one statement, so two submissions racing
// for the last slot cannot both win. Returns pgx.ErrNoRows when no row
// matched the guard.
func (r *Repository) ClaimCapacityTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE tasks SET required_workers = required_workers - 1
		WHERE id = $1 AND required_workers > 0
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ReleaseCapacityTx restores one worker slot after a rejection.
func (r *Repository) ReleaseCapacityTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE tasks SET required_workers = required_workers + 1
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
