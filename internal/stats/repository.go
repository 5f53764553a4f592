package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/earnstack/backend/internal/models"
)

type WorkerStats struct {
	TotalSubmissions   int `json:"totalSubmissions"`
	PendingSubmissions int `json:"pendingSubmissions"`
	TotalEarnings      int `json:"totalEarnings"`
}

type BuyerStats struct {
	TaskCount     int     `json:"taskCount"`
	PendingSlots  int     `json:"pendingSlots"`
	TotalPayments float64 `json:"totalPayments"`
}

type AdminStats struct {
	TotalWorkers  int     `json:"totalWorkers"`
	TotalBuyers   int     `json:"totalBuyers"`
	TotalCoins    int     `json:"totalCoins"`
	TotalPayments float64 `json:"totalPayments"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TopWorkers returns the highest-balance workers, richest first.
func (r *Repository) TopWorkers(ctx context.Context, limit int) ([]*models.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT email, name, role, coin, avatar_url, password_hash, created_at, updated_at
		FROM users WHERE role = $1 ORDER BY coin DESC LIMIT $2
	`, models.RoleWorker, limit)
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

func (r *Repository) WorkerStats(ctx context.Context, email string) (*WorkerStats, error) {
	var s WorkerStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'pending'),
		       COALESCE(sum(payable_amount) FILTER (WHERE status = 'approved'), 0)
		FROM submissions WHERE worker_email = $1
	`, email).Scan(&s.TotalSubmissions, &s.PendingSubmissions, &s.TotalEarnings)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) BuyerStats(ctx context.Context, email string) (*BuyerStats, error) {
	var s BuyerStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*), COALESCE(sum(required_workers), 0)
		FROM tasks WHERE buyer_email = $1
	`, email).Scan(&s.TaskCount, &s.PendingSlots)
	if err != nil {
		return nil, err
	}
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(amount_paid), 0) FROM payments WHERE email = $1
	`, email).Scan(&s.TotalPayments)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) AdminStats(ctx context.Context) (*AdminStats, error) {
	var s AdminStats
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE role = 'worker'),
		       count(*) FILTER (WHERE role = 'buyer'),
		       COALESCE(sum(coin), 0)
		FROM users
	`).Scan(&s.TotalWorkers, &s.TotalBuyers, &s.TotalCoins)
	if err != nil {
		return nil, err
	}
	err = r.pool.QueryRow(ctx, `SELECT COALESCE(sum(amount_paid), 0) FROM payments`).Scan(&s.TotalPayments)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
