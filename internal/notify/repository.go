package notify

import (
	"context"

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

// Insert appends the notification row. ON CONFLICT DO NOTHING keeps the
// write idempotent across River job retries.
func (r *Repository) Insert(ctx context.Context, n *models.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, to_email, message, action_route, time, unread)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (id) DO NOTHING
	`, n.ID, n.ToEmail, n.Message, n.ActionRoute, n.Time)
	return err
}

func (r *Repository) ListFor(ctx context.Context, email string) ([]*models.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, to_email, message, action_route, time, unread
		FROM notifications WHERE to_email = $1 ORDER BY time DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.ToEmail, &n.Message, &n.ActionRoute, &n.Time, &n.Unread); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// MarkRead flips the unread flag, the only mutation allowed after append.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET unread = FALSE WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
