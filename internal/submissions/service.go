package submissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/earnstack/backend/internal/models"
	"github.com/earnstack/backend/internal/notify"
	"github.com/earnstack/backend/internal/tasks"
)

// ErrNotFound is returned when the referenced submission does not exist.
var ErrNotFound = errors.New("submission not found")

// ErrInvalidState is returned for a transition attempted on a non-pending
// submission. Approve and reject are terminal; there is no way back.
var ErrInvalidState = errors.New("submission is not pending")

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the persistence interface for submissions.
type Store interface {
	InsertTx(ctx context.Context, tx pgx.Tx, s *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) error
	ListForWorker(ctx context.Context, email string, limit, offset int) ([]*models.Submission, int, error)
	ListPendingForBuyer(ctx context.Context, buyerEmail string) ([]*models.Submission, error)
}

// TaskCapacity is the slice of the task lifecycle the workflow consumes.
type TaskCapacity interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ClaimCapacity(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ReleaseCapacity(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// Payer is the slice of the ledger the workflow consumes.
type Payer interface {
	Credit(ctx context.Context, tx pgx.Tx, email string, amount int) error
}

// SubmitParams is the validated input for a new submission. Task title,
// buyer and payable amount are resolved from the stored task, never from
// the request body.
type SubmitParams struct {
	TaskID      uuid.UUID
	WorkerEmail string
	WorkerName  string
	Detail      string
}

type Service interface {
	Submit(ctx context.Context, p SubmitParams) (*models.Submission, error)
	Approve(ctx context.Context, id uuid.UUID) error
	Reject(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	ListForWorker(ctx context.Context, email string, page, size int) ([]*models.Submission, int, error)
	ListPendingForBuyer(ctx context.Context, buyerEmail string) ([]*models.Submission, error)
}

type service struct {
	db     TxBeginner
	store  Store
	tasks  TaskCapacity
	ledger Payer
	sink   notify.Sink
}

func NewService(db TxBeginner, store Store, taskSvc TaskCapacity, ledgerSvc Payer, sink notify.Sink) Service {
	return &service{db: db, store: store, tasks: taskSvc, ledger: ledgerSvc, sink: sink}
}

var _ Service = (*service)(nil)

// Submit claims one worker slot and records the pending submission as a
// single transaction. When the claim fails nothing is persisted and no
// notification is emitted.
func (s *service) Submit(ctx context.Context, p SubmitParams) (*models.Submission, error) {
	task, err := s.tasks.Get(ctx, p.TaskID)
	if err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			return nil, tasks.ErrNotFound
		}
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.tasks.ClaimCapacity(ctx, tx, p.TaskID); err != nil {
		return nil, err
	}

	sub := &models.Submission{
		ID:            uuid.New(),
		TaskID:        task.ID,
		TaskTitle:     task.Title,
		WorkerEmail:   p.WorkerEmail,
		WorkerName:    p.WorkerName,
		BuyerEmail:    task.BuyerEmail,
		Detail:        p.Detail,
		PayableAmount: task.PayableAmount,
		Status:        models.SubmissionPending,
	}
	if err := s.store.InsertTx(ctx, tx, sub); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s has submitted work for your task %q", p.WorkerName, task.Title)
	if err := s.sink.AppendTx(ctx, tx, task.BuyerEmail, msg, "/dashboard/buyer-home"); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return sub, nil
}

// Approve flips pending to approved and pays the worker in one transaction.
// The conditional status flip is the idempotency guard: a second approve
// matches no row and the worker is never credited twice.
func (s *service) Approve(ctx context.Context, id uuid.UUID) error {
	sub, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.flipStatus(ctx, tx, id, models.SubmissionApproved); err != nil {
		return err
	}
	if err := s.ledger.Credit(ctx, tx, sub.WorkerEmail, sub.PayableAmount); err != nil {
		return err
	}

	msg := fmt.Sprintf("You have earned %d coins from %s for completing %q", sub.PayableAmount, sub.BuyerEmail, sub.TaskTitle)
	if err := s.sink.AppendTx(ctx, tx, sub.WorkerEmail, msg, "/dashboard/worker-home"); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Reject flips pending to rejected and restores the task's worker slot.
// No coin moves: the buyer's original debit for this slot stays spent.
func (s *service) Reject(ctx context.Context, id uuid.UUID) error {
	sub, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.flipStatus(ctx, tx, id, models.SubmissionRejected); err != nil {
		return err
	}
	if err := s.tasks.ReleaseCapacity(ctx, tx, sub.TaskID); err != nil {
		// The task may have been deleted by an admin since submission;
		// the rejection itself still stands.
		if !errors.Is(err, tasks.ErrNotFound) {
			return err
		}
	}

	msg := fmt.Sprintf("Your submission for %q was rejected by %s", sub.TaskTitle, sub.BuyerEmail)
	if err := s.sink.AppendTx(ctx, tx, sub.WorkerEmail, msg, "/dashboard/worker-home"); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	return s.get(ctx, id)
}

func (s *service) ListForWorker(ctx context.Context, email string, page, size int) ([]*models.Submission, int, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}
	return s.store.ListForWorker(ctx, email, size, (page-1)*size)
}

func (s *service) ListPendingForBuyer(ctx context.Context, buyerEmail string) ([]*models.Submission, error) {
	return s.store.ListPendingForBuyer(ctx, buyerEmail)
}

func (s *service) get(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	sub, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

func (s *service) flipStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, to string) error {
	err := s.store.SetStatusTx(ctx, tx, id, models.SubmissionPending, to)
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		sub, gerr := s.store.GetByID(ctx, id)
		if gerr != nil {
			return gerr
		}
		if sub == nil {
			return ErrNotFound
		}
		return ErrInvalidState
	}
	return err
}
