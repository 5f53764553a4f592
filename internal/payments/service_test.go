package payments

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/earnstack/backend/internal/models"
)

type noopTx struct{}

func (noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(ctx context.Context) error          { return nil }
func (noopTx) Rollback(ctx context.Context) error        { return nil }
func (noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row        { return nil }
func (noopTx) Conn() *pgx.Conn                                                      { return nil }

type mockPayStore struct {
	mu   sync.Mutex
	rows []*models.Payment
}

func (m *mockPayStore) InsertTx(_ context.Context, _ pgx.Tx, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *mockPayStore) ListFor(_ context.Context, email string) ([]*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Payment
	for _, p := range m.rows {
		if p.Email == email {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockCreditor struct {
	mu       sync.Mutex
	balances map[string]int
}

func (m *mockCreditor) Credit(_ context.Context, _ pgx.Tx, email string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances == nil {
		m.balances = make(map[string]int)
	}
	m.balances[email] += amount
	return nil
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	store := &mockPayStore{}
	cred := &mockCreditor{}
	svc := NewService(noopTx{}, store, cred)

	p, err := svc.Record(ctx, "buyer@x.com", 100, 9.99)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if p.Coin != 100 || p.AmountPaid != 9.99 {
		t.Errorf("payment record: %+v", p)
	}
	if got := cred.balances["buyer@x.com"]; got != 100 {
		t.Errorf("credited coins: got %d, want 100", got)
	}
	history, _ := svc.ListFor(ctx, "buyer@x.com")
	if len(history) != 1 {
		t.Errorf("history length: got %d, want 1", len(history))
	}
}

func TestRecord_Invalid(t *testing.T) {
	svc := NewService(noopTx{}, &mockPayStore{}, &mockCreditor{})
	if _, err := svc.Record(context.Background(), "", 10, 1); !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("missing email: expected ErrInvalidPayment, got %v", err)
	}
	if _, err := svc.Record(context.Background(), "b@x.com", 0, 1); !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("zero coins: expected ErrInvalidPayment, got %v", err)
	}
}
