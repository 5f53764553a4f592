package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/earnstack/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory Store mock. The conditional debit mirrors the SQL guard: the
// balance check and the decrement happen under one lock.
// ---------------------------------------------------------------------------

type mockStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMockStore(users ...*models.User) *mockStore {
	m := &mockStore{users: make(map[string]*models.User)}
	for _, u := range users {
		cp := *u
		m.users[u.Email] = &cp
	}
	return m
}

func (m *mockStore) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return errors.New("duplicate key")
	}
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *mockStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockStore) List(_ context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.User
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockStore) SetRole(_ context.Context, email, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Role = role
	return nil
}

func (m *mockStore) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, email)
	return nil
}

func (m *mockStore) CreditTx(_ context.Context, _ pgx.Tx, email string, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	u.Coin += amount
	return u.Coin, nil
}

func (m *mockStore) DebitTx(_ context.Context, _ pgx.Tx, email string, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok || u.Coin < amount {
		return 0, pgx.ErrNoRows
	}
	u.Coin -= amount
	return u.Coin, nil
}

func (m *mockStore) balance(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email].Coin
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func TestRegister_StartingCoins(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := NewService(store)

	buyer, created, err := svc.Register(ctx, RegisterParams{Email: "buyer@x.com", Name: "B", Role: models.RoleBuyer})
	if err != nil {
		t.Fatalf("Register buyer: %v", err)
	}
	if !created {
		t.Error("expected created=true for new buyer")
	}
	if buyer.Coin != models.StartingCoinsBuyer {
		t.Errorf("buyer starting coins: got %d, want %d", buyer.Coin, models.StartingCoinsBuyer)
	}

	worker, _, err := svc.Register(ctx, RegisterParams{Email: "worker@x.com", Name: "W", Role: models.RoleWorker})
	if err != nil {
		t.Fatalf("Register worker: %v", err)
	}
	if worker.Coin != models.StartingCoinsDefault {
		t.Errorf("worker starting coins: got %d, want %d", worker.Coin, models.StartingCoinsDefault)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := NewService(store)

	first, created, err := svc.Register(ctx, RegisterParams{Email: "w@x.com", Role: models.RoleWorker})
	if err != nil || !created {
		t.Fatalf("first Register: created=%v err=%v", created, err)
	}

	// Simulate coins earned between registrations.
	if _, err := store.CreditTx(ctx, nil, "w@x.com", 40); err != nil {
		t.Fatalf("CreditTx: %v", err)
	}

	second, created, err := svc.Register(ctx, RegisterParams{Email: "w@x.com", Role: models.RoleWorker})
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if created {
		t.Error("expected created=false on re-registration")
	}
	if second.Coin != first.Coin+40 {
		t.Errorf("re-registration must not reset balance: got %d, want %d", second.Coin, first.Coin+40)
	}
}

// ---------------------------------------------------------------------------
// Debit / credit
// ---------------------------------------------------------------------------

func TestDebit_Insufficient(t *testing.T) {
	ctx := context.Background()
	store := newMockStore(&models.User{Email: "w@x.com", Role: models.RoleWorker, Coin: 30})
	svc := NewService(store)

	if err := svc.Debit(ctx, nil, "w@x.com", 31); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := store.balance("w@x.com"); got != 30 {
		t.Errorf("failed debit must not move coins: got %d, want 30", got)
	}

	if err := svc.Debit(ctx, nil, "w@x.com", 30); err != nil {
		t.Fatalf("exact-balance debit: %v", err)
	}
	if got := store.balance("w@x.com"); got != 0 {
		t.Errorf("balance after debit: got %d, want 0", got)
	}
}

func TestDebit_UnknownUser(t *testing.T) {
	svc := NewService(newMockStore())
	if err := svc.Debit(context.Background(), nil, "ghost@x.com", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDebit_RejectsNonPositiveAmount(t *testing.T) {
	store := newMockStore(&models.User{Email: "w@x.com", Coin: 10})
	svc := NewService(store)
	for _, amount := range []int{0, -5} {
		if err := svc.Debit(context.Background(), nil, "w@x.com", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestCredit_UnknownUser(t *testing.T) {
	svc := NewService(newMockStore())
	if err := svc.Credit(context.Background(), nil, "ghost@x.com", 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// Concurrent debits against one balance: with 50 coins and ten racing debits
// of 10, exactly five may win and the balance must land on zero, never below.
func TestDebit_ConcurrentNeverNegative(t *testing.T) {
	ctx := context.Background()
	store := newMockStore(&models.User{Email: "w@x.com", Role: models.RoleWorker, Coin: 50})
	svc := NewService(store)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Debit(ctx, nil, "w@x.com", 10)
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientBalance):
			insufficient++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 5 || insufficient != 5 {
		t.Errorf("got %d successes and %d declines, want 5 and 5", ok, insufficient)
	}
	if got := store.balance("w@x.com"); got != 0 {
		t.Errorf("final balance: got %d, want 0", got)
	}
}

// ---------------------------------------------------------------------------
// Role / delete mapping
// ---------------------------------------------------------------------------

func TestSetRole_UnknownUser(t *testing.T) {
	svc := NewService(newMockStore())
	if err := svc.SetRole(context.Background(), "ghost@x.com", models.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	store := newMockStore(&models.User{Email: "w@x.com"})
	svc := NewService(store)
	if err := svc.DeleteUser(context.Background(), "w@x.com"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), "w@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
