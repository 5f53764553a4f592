package withdrawals

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/earnstack/backend/internal/ledger"
	"github.com/earnstack/backend/internal/models"
	"github.com/earnstack/backend/internal/notify"
)

// ErrNotFound is returned when the referenced withdrawal does not exist.
var ErrNotFound = errors.New("withdrawal not found")

// ErrInvalidState is returned when approving an already-approved withdrawal.
var ErrInvalidState = errors.New("withdrawal is not pending")

// ErrInvalidRequest is returned for malformed request input.
var ErrInvalidRequest = errors.New("invalid withdrawal request")

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the persistence interface for withdrawals.
type Store interface {
	Insert(ctx context.Context, w *models.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	ApproveTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ListAll(ctx context.Context) ([]*models.Withdrawal, error)
	ListForWorker(ctx context.Context, email string) ([]*models.Withdrawal, error)
}

// Debitor is the slice of the ledger the workflow consumes. The debit is
// expected to fail when the worker's balance no longer covers the coins.
type Debitor interface {
	Debit(ctx context.Context, tx pgx.Tx, email string, amount int) error
}

// RequestParams is the validated input for a withdrawal request.
type RequestParams struct {
	WorkerEmail      string
	WorkerName       string
	WithdrawalCoin   int
	WithdrawalAmount float64
	PaymentSystem    string
	AccountNumber    string
}

// ApproveResult distinguishes an applied approval from a soft decline when
// the worker's balance has shrunk since the request was made.
type ApproveResult struct {
	Declined   bool
	Message    string
	Withdrawal *models.Withdrawal
}

type Service interface {
	Request(ctx context.Context, p RequestParams) (*models.Withdrawal, error)
	Approve(ctx context.Context, id uuid.UUID) (*ApproveResult, error)
	ListAll(ctx context.Context) ([]*models.Withdrawal, error)
	ListForWorker(ctx context.Context, email string) ([]*models.Withdrawal, error)
}

type service struct {
	db     TxBeginner
	store  Store
	ledger Debitor
	sink   notify.Sink
}

func NewService(db TxBeginner, store Store, ledgerSvc Debitor, sink notify.Sink) Service {
	return &service{db: db, store: store, ledger: ledgerSvc, sink: sink}
}

var _ Service = (*service)(nil)

// Request records a pending withdrawal. The balance is deliberately not
// checked here; it is checked when an admin approves, against the balance
// at that moment.
func (s *service) Request(ctx context.Context, p RequestParams) (*models.Withdrawal, error) {
	if p.WorkerEmail == "" || p.WithdrawalCoin <= 0 {
		return nil, ErrInvalidRequest
	}
	w := &models.Withdrawal{
		ID:               uuid.New(),
		WorkerEmail:      p.WorkerEmail,
		WorkerName:       p.WorkerName,
		WithdrawalCoin:   p.WithdrawalCoin,
		WithdrawalAmount: p.WithdrawalAmount,
		PaymentSystem:    p.PaymentSystem,
		AccountNumber:    p.AccountNumber,
		Status:           models.WithdrawalPending,
	}
	if err := s.store.Insert(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Approve debits the worker's coins and flips the record to approved as one
// transaction. When the balance cannot cover the coins the whole unit rolls
// back and the record stays pending. The admin client expects a soft decline
// rather than an error in that case.
func (s *service) Approve(ctx context.Context, id uuid.UUID) (*ApproveResult, error) {
	w, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrNotFound
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.store.ApproveTx(ctx, tx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	if err := s.ledger.Debit(ctx, tx, w.WorkerEmail, w.WithdrawalCoin); err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return &ApproveResult{Declined: true, Message: "Insufficient coins"}, nil
		}
		return nil, err
	}

	msg := fmt.Sprintf("Your withdrawal of %d coins has been approved", w.WithdrawalCoin)
	if err := s.sink.AppendTx(ctx, tx, w.WorkerEmail, msg, "/dashboard/withdrawals"); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	w.Status = models.WithdrawalApproved
	return &ApproveResult{Withdrawal: w}, nil
}

func (s *service) ListAll(ctx context.Context) ([]*models.Withdrawal, error) {
	return s.store.ListAll(ctx)
}

func (s *service) ListForWorker(ctx context.Context, email string) ([]*models.Withdrawal, error) {
	return s.store.ListForWorker(ctx, email)
}
