package submissions

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

func (r *Repository) InsertTx(ctx context.Context, tx pgx.Tx, s *models.Submission) error {
	return tx.QueryRow(ctx, `
		INSERT INTO submissions (id, task_id, task_title, worker_email, worker_name, buyer_email, detail, payable_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, s.ID, s.TaskID, s.TaskTitle, s.WorkerEmail, s.WorkerName, s.BuyerEmail, s.Detail, s.PayableAmount, s.Status).Scan(&s.CreatedAt)
}

// GetByID returns the submission, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var s models.Submission
	err := r.pool.QueryRow(ctx, `
		SELECT id, task_id, task_title, worker_email, worker_name, buyer_email, detail, payable_amount, status, created_at
		FROM submissions WHERE id = $1
	`, id).Scan(&s.ID, &s.TaskID, &s.TaskTitle, &s.WorkerEmail, &s.WorkerName, &s.BuyerEmail, &s.Detail, &s.PayableAmount, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// SetStatusTx flips the status only when the current value matches from.
// Status transitions are one-way; the UPDATE guard is what makes a second
// approve (or a reject after approve) a no-op instead of a double write.
// Returns pgx.ErrNoRows when no row matched.
func (r *Repository) SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE submissions SET status = $3 WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListForWorker returns one page of the worker's submissions, newest first,
// plus the total count for the filter.
func (r *Repository) ListForWorker(ctx context.Context, email string, limit, offset int) ([]*models.Submission, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM submissions WHERE worker_email = $1
	`, email).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, task_id, task_title, worker_email, worker_name, buyer_email, detail, payable_amount, status, created_at
		FROM submissions WHERE worker_email = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, email, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []*models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.TaskID, &s.TaskTitle, &s.WorkerEmail, &s.WorkerName, &s.BuyerEmail, &s.Detail, &s.PayableAmount, &s.Status, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, &s)
	}
	return list, total, rows.Err()
}

// ListPendingForBuyer returns the buyer's review queue, newest first.
func (r *Repository) ListPendingForBuyer(ctx context.Context, buyerEmail string) ([]*models.Submission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, task_id, task_title, worker_email, worker_name, buyer_email, detail, payable_amount, status, created_at
		FROM submissions WHERE buyer_email = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`, buyerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.TaskID, &s.TaskTitle, &s.WorkerEmail, &s.WorkerName, &s.BuyerEmail, &s.Detail, &s.PayableAmount, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
