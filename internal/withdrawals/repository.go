package withdrawals

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

func (r *Repository) Insert(ctx context.Context, w *models.Withdrawal) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO withdrawals (id, worker_email, worker_name, withdrawal_coin, withdrawal_amount, payment_system, account_number, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING withdraw_date
	`, w.ID, w.WorkerEmail, w.WorkerName, w.WithdrawalCoin, w.WithdrawalAmount, w.PaymentSystem, w.AccountNumber, w.Status).Scan(&w.Date)
}

// GetByID returns the withdrawal, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.pool.QueryRow(ctx, `
		SELECT id, worker_email, worker_name, withdrawal_coin, withdrawal_amount, payment_system, account_number, status, withdraw_date
		FROM withdrawals WHERE id = $1
	`, id).Scan(&w.ID, &w.WorkerEmail, &w.WorkerName, &w.WithdrawalCoin, &w.WithdrawalAmount, &w.PaymentSystem, &w.AccountNumber, &w.Status, &w.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

// ApproveTx flips pending to approved. The status guard is part of the
// UPDATE so a replayed approval matches no row. Returns pgx.ErrNoRows when
// nothing matched.
func (r *Repository) ApproveTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE withdrawals SET status = $2 WHERE id = $1 AND status = $3
	`, id, models.WithdrawalApproved, models.WithdrawalPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) ListAll(ctx context.Context) ([]*models.Withdrawal, error) {
	return r.list(ctx, `
		SELECT id, worker_email, worker_name, withdrawal_coin, withdrawal_amount, payment_system, account_number, status, withdraw_date
		FROM withdrawals ORDER BY withdraw_date DESC
	`)
}

func (r *Repository) ListForWorker(ctx context.Context, email string) ([]*models.Withdrawal, error) {
	return r.list(ctx, `
		SELECT id, worker_email, worker_name, withdrawal_coin, withdrawal_amount, payment_system, account_number, status, withdraw_date
		FROM withdrawals WHERE worker_email = $1 ORDER BY withdraw_date DESC
	`, email)
}

func (r *Repository) list(ctx context.Context, sql string, args ...any) ([]*models.Withdrawal, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		if err := rows.Scan(&w.ID, &w.WorkerEmail, &w.WorkerName, &w.WithdrawalCoin, &w.WithdrawalAmount, &w.PaymentSystem, &w.AccountNumber, &w.Status, &w.Date); err != nil {
			return nil, err
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}
