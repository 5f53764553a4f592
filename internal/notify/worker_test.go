package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/earnstack/backend/internal/models"
)

type mockInserter struct {
	mu   sync.Mutex
	rows []*models.Notification
}

func (m *mockInserter) Insert(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.rows = append(m.rows, &cp)
	return nil
}

func TestDeliverWorker(t *testing.T) {
	repo := &mockInserter{}
	w := NewDeliverWorker(repo, nil)

	args := DeliverArgs{
		ID:          uuid.New(),
		ToEmail:     "buyer@x.com",
		Message:     "W has submitted work for your task",
		ActionRoute: "/dashboard/buyer-home",
		At:          time.Now().UTC(),
	}
	if err := w.Work(context.Background(), &river.Job[DeliverArgs]{Args: args}); err != nil {
		t.Fatalf("Work: %v", err)
	}

	if len(repo.rows) != 1 {
		t.Fatalf("inserted rows: got %d, want 1", len(repo.rows))
	}
	row := repo.rows[0]
	if row.ID != args.ID || row.ToEmail != args.ToEmail || row.Message != args.Message {
		t.Errorf("row does not match job args: %+v", row)
	}
	if !row.Unread {
		t.Error("delivered notifications start unread")
	}
}

func TestSinkAppendTx(t *testing.T) {
	var captured []DeliverArgs
	sink := NewSink(func(_ context.Context, _ pgx.Tx, args DeliverArgs) error {
		captured = append(captured, args)
		return nil
	})

	err := sink.AppendTx(context.Background(), nil, "w@x.com", "You have earned 10 coins", "/dashboard/worker-home")
	if err != nil {
		t.Fatalf("AppendTx: %v", err)
	}

	if len(captured) != 1 {
		t.Fatalf("enqueued jobs: got %d, want 1", len(captured))
	}
	got := captured[0]
	if got.ToEmail != "w@x.com" || got.ActionRoute != "/dashboard/worker-home" {
		t.Errorf("unexpected args: %+v", got)
	}
	if got.ID == uuid.Nil {
		t.Error("sink must assign the row id at enqueue time")
	}
	if got.At.IsZero() {
		t.Error("sink must timestamp the notification")
	}
}
