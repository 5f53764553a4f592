package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/earnstack/backend/internal/models"
)

// ErrInvalidPayment is returned for a non-positive coin purchase.
var ErrInvalidPayment = errors.New("invalid payment")

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store interface {
	InsertTx(ctx context.Context, tx pgx.Tx, p *models.Payment) error
	ListFor(ctx context.Context, email string) ([]*models.Payment, error)
}

// Creditor is the slice of the ledger a coin purchase needs.
type Creditor interface {
	Credit(ctx context.Context, tx pgx.Tx, email string, amount int) error
}

type Service interface {
	Record(ctx context.Context, email string, coin int, amountPaid float64) (*models.Payment, error)
	ListFor(ctx context.Context, email string) ([]*models.Payment, error)
}

type service struct {
	db     TxBeginner
	store  Store
	ledger Creditor
}

func NewService(db TxBeginner, store Store, ledgerSvc Creditor) Service {
	return &service{db: db, store: store, ledger: ledgerSvc}
}

var _ Service = (*service)(nil)

// Record persists the purchase and credits the buyer's coins as one
// transaction.
func (s *service) Record(ctx context.Context, email string, coin int, amountPaid float64) (*models.Payment, error) {
	if email == "" || coin <= 0 {
		return nil, ErrInvalidPayment
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p := &models.Payment{
		ID:         uuid.New(),
		Email:      email,
		Coin:       coin,
		AmountPaid: amountPaid,
	}
	if err := s.store.InsertTx(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := s.ledger.Credit(ctx, tx, email, coin); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListFor(ctx context.Context, email string) ([]*models.Payment, error) {
	return s.store.ListFor(ctx, email)
}
