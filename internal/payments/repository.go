package payments

import (
	"context"

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

func (r *Repository) InsertTx(ctx context.Context, tx pgx.Tx, p *models.Payment) error {
	return tx.QueryRow(ctx, `
		INSERT INTO payments (id, email, coin, amount_paid)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, p.ID, p.Email, p.Coin, p.AmountPaid).Scan(&p.CreatedAt)
}

func (r *Repository) ListFor(ctx context.Context, email string) ([]*models.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, coin, amount_paid, created_at
		FROM payments WHERE email = $1 ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.Email, &p.Coin, &p.AmountPaid, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
