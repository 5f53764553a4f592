package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/earnstack/backend/internal/ledger"
	"github.com/earnstack/backend/internal/models"
)

// ErrCapacityExhausted is returned when a submission races for a task with
// no open slots left.
var ErrCapacityExhausted = errors.New("task has no open slots")

// ErrNotFound is returned when the referenced task does not exist.
var ErrNotFound = errors.New("task not found")

// ErrInvalidTask is returned for malformed creation input.
var ErrInvalidTask = errors.New("invalid task fields")

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the persistence interface for tasks.
type Store interface {
	CreateTx(ctx context.Context, tx pgx.Tx, t *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListOpen(ctx context.Context) ([]*models.Task, error)
	ListAll(ctx context.Context) ([]*models.Task, error)
	ListByBuyer(ctx context.Context, buyerEmail string) ([]*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClaimCapacityTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ReleaseCapacityTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// Budget bounds. The funding total is payable x slots; capping the factors
// keeps the product far inside int range, so it can never overflow into a
// zero or negative total that would skip the debit.
const (
	maxPayableAmount   = 1_000_000
	maxRequiredWorkers = 10_000
)

// CreateParams is the validated input for task creation.
type CreateParams struct {
	BuyerEmail      string
	Title           string
	Detail          string
	ImageURL        string
	PayableAmount   int
	RequiredWorkers int
	CompletionDate  *time.Time
}

// CreateResult distinguishes a funded task from a soft decline. Insufficient
// funds is not an error at this boundary: the existing client expects a 200
// with an error flag.
type CreateResult struct {
	Declined bool
	Message  string
	Task     *models.Task
}

type Service interface {
	Create(ctx context.Context, p CreateParams) (*CreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListOpen(ctx context.Context) ([]*models.Task, error)
	ListAll(ctx context.Context) ([]*models.Task, error)
	ListByBuyer(ctx context.Context, buyerEmail string) ([]*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClaimCapacity(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ReleaseCapacity(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

type service struct {
	db     TxBeginner
	store  Store
	ledger ledger.Service
}

func NewService(db TxBeginner, store Store, ledgerSvc ledger.Service) Service {
	return &service{db: db, store: store, ledger: ledgerSvc}
}

var _ Service = (*service)(nil)

// Create debits the full budget (payable x slots) from the buyer and
// persists the task as one transaction. A failed debit leaves nothing
// behind.
func (s *service) Create(ctx context.Context, p CreateParams) (*CreateResult, error) {
	if p.BuyerEmail == "" || p.Title == "" ||
		p.PayableAmount <= 0 || p.PayableAmount > maxPayableAmount ||
		p.RequiredWorkers < 0 || p.RequiredWorkers > maxRequiredWorkers {
		return nil, ErrInvalidTask
	}
	total := p.PayableAmount * p.RequiredWorkers

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if total > 0 {
		if err := s.ledger.Debit(ctx, tx, p.BuyerEmail, total); err != nil {
			if errors.Is(err, ledger.ErrInsufficientBalance) || errors.Is(err, ledger.ErrNotFound) {
				return &CreateResult{Declined: true, Message: "Insufficient coins"}, nil
			}
			return nil, err
		}
	}

	t := &models.Task{
		ID:              uuid.New(),
		BuyerEmail:      p.BuyerEmail,
		Title:           p.Title,
		Detail:          p.Detail,
		ImageURL:        p.ImageURL,
		PayableAmount:   p.PayableAmount,
		RequiredWorkers: p.RequiredWorkers,
		CompletionDate:  p.CompletionDate,
	}
	if err := s.store.CreateTx(ctx, tx, t); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &CreateResult{Task: t}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *service) ListOpen(ctx context.Context) ([]*models.Task, error) {
	return s.store.ListOpen(ctx)
}

func (s *service) ListAll(ctx context.Context) ([]*models.Task, error) {
	return s.store.ListAll(ctx)
}

func (s *service) ListByBuyer(ctx context.Context, buyerEmail string) ([]*models.Task, error) {
	return s.store.ListByBuyer(ctx, buyerEmail)
}

// Delete removes the task unconditionally. Reserved coins are not returned
// to the buyer.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// ClaimCapacity takes one worker slot inside the caller's transaction.
func (s *service) ClaimCapacity(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	err := s.store.ClaimCapacityTx(ctx, tx, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		t, gerr := s.store.GetByID(ctx, id)
		if gerr != nil {
			return gerr
		}
		if t == nil {
			return ErrNotFound
		}
		return ErrCapacityExhausted
	}
	return err
}

// ReleaseCapacity restores one worker slot after a rejection. The buyer's
// debit for that slot is intentionally not reversed.
func (s *service) ReleaseCapacity(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	err := s.store.ReleaseCapacityTx(ctx, tx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
